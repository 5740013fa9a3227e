package http

import (
	"database/sql"
	"errors"
	"strings"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
)

type Enrollment struct {
	CourseID   string   `json:"course_id"`
	StudentID  string   `json:"student_id"`
	SectionID  string   `json:"section_id,omitempty"`
	Username   string   `json:"username,omitempty"`
	FullName   string   `json:"full_name,omitempty"`
	EnrolledAt int64    `json:"enrolled_at"`
	Grade      *float64 `json:"grade,omitempty"`
}

func EnrollHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		var req struct {
			StudentID string `json:"student_id"`
			SectionID string `json:"section_id"`
		}
		if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.StudentID) == "" {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		var exists int
		if err := dbh.QueryRow(`SELECT COUNT(1) FROM users WHERE id = $1 AND role = 'student'`, req.StudentID).Scan(&exists); err != nil || exists == 0 {
			nethttp.Error(w, "unknown student", nethttp.StatusNotFound)
			return
		}
		var sectionID any
		if req.SectionID != "" {
			var active int
			err := dbh.QueryRow(`SELECT active FROM sections WHERE id = $1 AND course_id = $2`,
				req.SectionID, courseID).Scan(&active)
			if errors.Is(err, sql.ErrNoRows) || (err == nil && active == 0) {
				nethttp.Error(w, "unknown section", nethttp.StatusNotFound)
				return
			}
			if err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
			sectionID = req.SectionID
		}
		_, err := dbh.Exec(`
INSERT INTO enrollments (course_id, student_id, section_id, enrolled_at) VALUES ($1,$2,$3,$4)
ON CONFLICT (course_id, student_id) DO NOTHING`,
			courseID, req.StudentID, sectionID, nowUnix())
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, nethttp.StatusCreated, map[string]string{
			"course_id":  courseID,
			"student_id": req.StudentID,
			"section_id": req.SectionID,
		})
	}
}

func UnenrollHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		studentID := chi.URLParam(r, "studentID")
		res, err := dbh.Exec(`DELETE FROM enrollments WHERE course_id = $1 AND student_id = $2`, courseID, studentID)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}

func ListEnrollmentsHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		rows, err := dbh.Query(`
SELECT e.course_id, e.student_id, e.section_id, u.username, u.full_name, e.enrolled_at, e.grade
  FROM enrollments e JOIN users u ON u.id = e.student_id
 WHERE e.course_id = $1 ORDER BY u.username`, courseID)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []Enrollment{}
		for rows.Next() {
			var e Enrollment
			var section sql.NullString
			var grade sql.NullFloat64
			if err := rows.Scan(&e.CourseID, &e.StudentID, &section, &e.Username, &e.FullName, &e.EnrolledAt, &grade); err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
			e.SectionID = section.String
			if grade.Valid {
				g := grade.Float64
				e.Grade = &g
			}
			out = append(out, e)
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}
