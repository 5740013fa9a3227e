package http

import (
	"database/sql"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acadia-lms/acadia/internal/rbac"
)

// SetGradeHandler records a final course grade for an enrolled student.
func SetGradeHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := rbac.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")
		studentID := chi.URLParam(r, "studentID")
		var req struct {
			Grade float64 `json:"grade"`
		}
		if err := readJSON(r, &req); err != nil || req.Grade < 0 || req.Grade > 100 {
			nethttp.Error(w, "grade must be in [0,100]", nethttp.StatusBadRequest)
			return
		}
		res, err := dbh.Exec(`
UPDATE enrollments SET grade = $1, graded_by = $2, graded_at = $3
 WHERE course_id = $4 AND student_id = $5`,
			req.Grade, sub, nowUnix(), courseID, studentID)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			nethttp.Error(w, "not enrolled", nethttp.StatusNotFound)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"course_id":  courseID,
			"student_id": studentID,
			"grade":      req.Grade,
		})
	}
}

// StudentGradesHandler lists a student's grades across their courses.
// Students may only read their own; teachers and admins may read anyone's
// (enforced by the route's RequireOwnerOr guard).
func StudentGradesHandler(dbh *sql.DB) nethttp.HandlerFunc {
	type gradeRow struct {
		CourseID   string   `json:"course_id"`
		CourseName string   `json:"course_name"`
		Grade      *float64 `json:"grade"`
		GradedAt   *int64   `json:"graded_at,omitempty"`
	}
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		studentID := chi.URLParam(r, "studentID")
		rows, err := dbh.Query(`
SELECT c.id, c.name, e.grade, e.graded_at
  FROM enrollments e JOIN courses c ON c.id = e.course_id
 WHERE e.student_id = $1 ORDER BY c.name`, studentID)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []gradeRow{}
		for rows.Next() {
			var g gradeRow
			var grade sql.NullFloat64
			var gradedAt sql.NullInt64
			if err := rows.Scan(&g.CourseID, &g.CourseName, &grade, &gradedAt); err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
			if grade.Valid {
				v := grade.Float64
				g.Grade = &v
			}
			if gradedAt.Valid {
				v := gradedAt.Int64
				g.GradedAt = &v
			}
			out = append(out, g)
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}
