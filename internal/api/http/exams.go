package http

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phuslu/log"

	"github.com/acadia-lms/acadia/internal/exam"
	"github.com/acadia-lms/acadia/internal/examgen"
	"github.com/acadia-lms/acadia/internal/rbac"
	"github.com/acadia-lms/acadia/internal/storage"
)

// GenerateExamHandler runs the full pipeline for a course: extract and
// structure every selected material, synthesize and select questions, render
// the exam, the answer-annotated copy and the answer sheet, and persist the
// lot.
func GenerateExamHandler(dbh *sql.DB, blobs storage.BlobStore, store exam.Store, gen *examgen.Generator) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := rbac.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		var req struct {
			Title                    string                             `json:"title"`
			Description              string                             `json:"description"`
			MaterialIDs              []string                           `json:"material_ids"`
			NumQuestions             int                                `json:"num_questions"`
			NumConcepts              int                                `json:"num_concepts"`
			NumOptions               int                                `json:"num_options"`
			DifficultyDistribution   map[examgen.Difficulty]float64   `json:"difficulty_distribution"`
			QuestionTypeDistribution map[examgen.QuestionType]float64 `json:"question_type_distribution"`
			NumVariants              int                              `json:"num_variants"`
		}
		if err := readJSON(r, &req); err != nil {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}

		cfg := examgen.DefaultExamConfig(req.Title)
		cfg.Description = req.Description
		if req.NumQuestions > 0 {
			cfg.NumQuestions = req.NumQuestions
		}
		if req.NumConcepts > 0 {
			cfg.NumConcepts = req.NumConcepts
		}
		if req.NumOptions > 0 {
			cfg.NumOptions = req.NumOptions
		}
		if req.DifficultyDistribution != nil {
			cfg.DifficultyDistribution = req.DifficultyDistribution
		}
		if req.QuestionTypeDistribution != nil {
			cfg.QuestionTypeDistribution = req.QuestionTypeDistribution
		}

		keys, err := materialKeys(dbh, courseID, req.MaterialIDs)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if len(keys) == 0 {
			nethttp.Error(w, "course has no materials", nethttp.StatusUnprocessableEntity)
			return
		}

		var materials []examgen.StructuredContent
		for _, key := range keys {
			p, err := blobs.Abs(key)
			if err != nil {
				continue
			}
			sc, err := gen.ExtractAndStructure(p)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("material skipped")
				continue
			}
			materials = append(materials, sc)
		}

		// num_variants > 1 produces parallel forms of the same exam; each
		// variant gets its own record and document set.
		var exams []examgen.Exam
		if req.NumVariants > 1 {
			variants, err := gen.GenerateVariants(materials, cfg, req.NumVariants)
			if err != nil {
				writeGenerateError(w, err)
				return
			}
			exams = variants
		} else {
			generated, err := gen.GenerateExam(materials, cfg)
			if err != nil {
				writeGenerateError(w, err)
				return
			}
			exams = []examgen.Exam{generated}
		}

		recs := make([]exam.Record, 0, len(exams))
		for i, generated := range exams {
			title := generated.Title
			if len(exams) > 1 {
				title = fmt.Sprintf("%s (Forma %c)", generated.Title, 'A'+i)
			}
			id := newID()
			prefix := fmt.Sprintf("courses/%s/exams/%s", courseID, id)
			rec := exam.Record{
				ID:          id,
				CourseID:    courseID,
				Title:       title,
				Description: generated.Description,
				TotalPoints: generated.TotalPoints,
				Questions:   generated.Questions,
				ExamKey:     prefix + "/exam.pdf",
				AnswerKey:   prefix + "/answer-key.pdf",
				SheetKey:    prefix + "/answer-sheet.pdf",
				CreatedBy:   sub,
				CreatedAt:   nowUnix(),
			}
			generated.Title = title

			if err := renderAll(blobs, generated, rec); err != nil {
				nethttp.Error(w, "render error", nethttp.StatusInternalServerError)
				return
			}
			if err := store.PutExam(r.Context(), rec); err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
			log.Info().Str("exam_id", id).Str("course_id", courseID).
				Int("questions", len(rec.Questions)).Float64("points", rec.TotalPoints).
				Msg("exam generated")
			recs = append(recs, rec)
		}
		if len(recs) == 1 {
			writeJSON(w, nethttp.StatusCreated, recs[0])
			return
		}
		writeJSON(w, nethttp.StatusCreated, recs)
	}
}

func materialKeys(dbh *sql.DB, courseID string, ids []string) ([]string, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(ids) > 0 {
		// Filter client side rather than building an IN clause that both
		// drivers accept.
		want := make(map[string]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		rows, err = dbh.Query(`SELECT id, blob_key FROM materials WHERE course_id = $1 ORDER BY uploaded_at`, courseID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var keys []string
		for rows.Next() {
			var id, key string
			if err := rows.Scan(&id, &key); err != nil {
				return nil, err
			}
			if want[id] {
				keys = append(keys, key)
			}
		}
		return keys, rows.Err()
	}
	rows, err = dbh.Query(`SELECT blob_key FROM materials WHERE course_id = $1 ORDER BY uploaded_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func renderAll(blobs storage.BlobStore, generated examgen.Exam, rec exam.Record) error {
	examPath, err := blobs.Abs(rec.ExamKey)
	if err != nil {
		return err
	}
	if _, err := examgen.RenderExamDocument(generated, examPath, false); err != nil {
		return err
	}
	answerPath, err := blobs.Abs(rec.AnswerKey)
	if err != nil {
		return err
	}
	if _, err := examgen.RenderExamDocument(generated, answerPath, true); err != nil {
		return err
	}
	sheetPath, err := blobs.Abs(rec.SheetKey)
	if err != nil {
		return err
	}
	_, err = examgen.RenderAnswerSheet(generated, sheetPath)
	return err
}

func writeGenerateError(w nethttp.ResponseWriter, err error) {
	var cfgErr *examgen.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		nethttp.Error(w, cfgErr.Error(), nethttp.StatusBadRequest)
	case errors.Is(err, examgen.ErrInsufficientMaterial):
		nethttp.Error(w, "materials do not yield enough questions", nethttp.StatusUnprocessableEntity)
	default:
		nethttp.Error(w, "generation failed", nethttp.StatusInternalServerError)
	}
}

func ListExamsHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		recs, err := store.ListExams(r.Context(), courseID)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		// Listing omits question bodies; fetch one exam for detail.
		for i := range recs {
			recs[i].Questions = nil
		}
		writeJSON(w, nethttp.StatusOK, recs)
	}
}

func GetExamHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		rec, err := store.GetExam(r.Context(), chi.URLParam(r, "examID"))
		if errors.Is(err, exam.ErrNotFound) {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		role, _ := rbac.RoleFromContext(r.Context())
		if role == "student" {
			rec.Questions = exam.QuestionsPublic(rec.Questions)
		}
		writeJSON(w, nethttp.StatusOK, rec)
	}
}

func DeleteExamHandler(store exam.Store, blobs storage.BlobStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "examID")
		rec, err := store.GetExam(r.Context(), id)
		if errors.Is(err, exam.ErrNotFound) {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if err := store.DeleteExam(r.Context(), id); err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		for _, key := range []string{rec.ExamKey, rec.AnswerKey, rec.SheetKey} {
			if err := blobs.Delete(key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("blob delete failed")
			}
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

// ExamDocumentHandler streams one of the three rendered PDFs. which selects
// the document: "exam", "answer-key" or "answer-sheet".
func ExamDocumentHandler(store exam.Store, blobs storage.BlobStore, which string) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		rec, err := store.GetExam(r.Context(), chi.URLParam(r, "examID"))
		if errors.Is(err, exam.ErrNotFound) {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		var key string
		switch which {
		case "exam":
			key = rec.ExamKey
		case "answer-key":
			key = rec.AnswerKey
		case "answer-sheet":
			key = rec.SheetKey
		default:
			nethttp.Error(w, "unknown document", nethttp.StatusNotFound)
			return
		}
		rc, err := blobs.Get(key)
		if err != nil {
			nethttp.Error(w, "blob missing", nethttp.StatusInternalServerError)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%s.pdf", rec.Title, which)))
		_, _ = io.Copy(w, rc)
	}
}
