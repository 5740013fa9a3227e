package http

import (
	"errors"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phuslu/log"

	"github.com/acadia-lms/acadia/internal/exam"
	"github.com/acadia-lms/acadia/internal/grading"
	"github.com/acadia-lms/acadia/internal/rbac"
)

func StartAttemptHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := rbac.SubjectFromContext(r.Context())
		examID := chi.URLParam(r, "examID")
		if _, err := store.GetExam(r.Context(), examID); err != nil {
			if errors.Is(err, exam.ErrNotFound) {
				nethttp.Error(w, "not found", nethttp.StatusNotFound)
				return
			}
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		a := exam.Attempt{
			ID:        newID(),
			ExamID:    examID,
			UserID:    sub,
			Status:    exam.AttemptInProgress,
			Responses: map[string]string{},
			StartedAt: nowUnix(),
		}
		if err := store.NewAttempt(r.Context(), a); err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, nethttp.StatusCreated, a)
	}
}

func SaveResponsesHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := rbac.SubjectFromContext(r.Context())
		id := chi.URLParam(r, "attemptID")
		var req struct {
			Responses map[string]string `json:"responses"`
		}
		if err := readJSON(r, &req); err != nil || req.Responses == nil {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		a, err := store.GetAttempt(r.Context(), id)
		if errors.Is(err, exam.ErrNotFound) {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if a.UserID != sub {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		switch err := store.SaveResponses(r.Context(), id, req.Responses); {
		case errors.Is(err, exam.ErrAlreadySubmitted):
			nethttp.Error(w, "already submitted", nethttp.StatusConflict)
		case err != nil:
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
		default:
			w.WriteHeader(nethttp.StatusNoContent)
		}
	}
}

// SubmitAttemptHandler finalizes an attempt and auto-grades the
// multiple-choice answers. Open answers near the model answer earn partial
// credit; the rest is left for the teacher.
func SubmitAttemptHandler(store exam.Store, grader *grading.Grader) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := rbac.SubjectFromContext(r.Context())
		id := chi.URLParam(r, "attemptID")
		a, err := store.GetAttempt(r.Context(), id)
		if errors.Is(err, exam.ErrNotFound) {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if a.UserID != sub {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		rec, err := store.GetExam(r.Context(), a.ExamID)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		results, score := grader.GradeAll(rec.Questions, a.Responses)
		now := nowUnix()
		switch err := store.Submit(r.Context(), id, score, now); {
		case errors.Is(err, exam.ErrAlreadySubmitted):
			nethttp.Error(w, "already submitted", nethttp.StatusConflict)
			return
		case err != nil:
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		log.Info().Str("attempt_id", id).Str("exam_id", a.ExamID).
			Float64("score", score).Msg("attempt submitted")
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"id":           id,
			"status":       exam.AttemptSubmitted,
			"score":        score,
			"max_points":   rec.TotalPoints,
			"results":      results,
			"submitted_at": now,
		})
	}
}

func GetAttemptHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := rbac.SubjectFromContext(r.Context())
		role, _ := rbac.RoleFromContext(r.Context())
		a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if errors.Is(err, exam.ErrNotFound) {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if a.UserID != sub && !rbac.NewChecker(role).Has("attempt:view") {
			nethttp.Error(w, "forbidden", nethttp.StatusForbidden)
			return
		}
		writeJSON(w, nethttp.StatusOK, a)
	}
}

func ListAttemptsHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		as, err := store.ListAttempts(r.Context(), chi.URLParam(r, "examID"))
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, nethttp.StatusOK, as)
	}
}
