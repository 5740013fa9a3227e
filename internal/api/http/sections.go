package http

import (
	"database/sql"
	"errors"
	"strings"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
)

// Section groups enrolled students within a course (a class period or
// cohort). Sections are deactivated rather than deleted so enrollment
// history keeps its reference.
type Section struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"created_at"`
}

func CreateSectionHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		var req struct {
			Name string `json:"name"`
		}
		if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		var exists int
		if err := dbh.QueryRow(`SELECT COUNT(1) FROM courses WHERE id = $1`, courseID).Scan(&exists); err != nil || exists == 0 {
			nethttp.Error(w, "unknown course", nethttp.StatusNotFound)
			return
		}
		s := Section{
			ID:        newID(),
			CourseID:  courseID,
			Name:      strings.TrimSpace(req.Name),
			Active:    true,
			CreatedAt: nowUnix(),
		}
		if _, err := dbh.Exec(`INSERT INTO sections (id, course_id, name, active, created_at) VALUES ($1,$2,$3,1,$4)`,
			s.ID, s.CourseID, s.Name, s.CreatedAt); err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, nethttp.StatusCreated, s)
	}
}

func ListSectionsHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		rows, err := dbh.Query(`
SELECT id, course_id, name, active, created_at
  FROM sections WHERE course_id = $1 AND active = 1 ORDER BY name`, courseID)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []Section{}
		for rows.Next() {
			s, err := scanSection(rows)
			if err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
			out = append(out, s)
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func scanSection(row rowScanner) (Section, error) {
	var s Section
	var active int
	err := row.Scan(&s.ID, &s.CourseID, &s.Name, &active, &s.CreatedAt)
	s.Active = active != 0
	return s, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func GetSectionHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "sectionID")
		row := dbh.QueryRow(`SELECT id, course_id, name, active, created_at FROM sections WHERE id = $1`, id)
		s, err := scanSection(row)
		if errors.Is(err, sql.ErrNoRows) {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, nethttp.StatusOK, s)
	}
}

func UpdateSectionHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "sectionID")
		var req struct {
			Name string `json:"name"`
		}
		if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		res, err := dbh.Exec(`UPDATE sections SET name = $1 WHERE id = $2`, strings.TrimSpace(req.Name), id)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]string{"id": id})
	}
}

// DeleteSectionHandler deactivates a section; enrollments keep pointing at
// it and history stays intact.
func DeleteSectionHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "sectionID")
		res, err := dbh.Exec(`UPDATE sections SET active = 0 WHERE id = $1 AND active = 1`, id)
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

// SectionEnrollHandler enrolls a student into a section; the course
// enrollment is derived from the section. Re-enrolling an already enrolled
// student moves them into this section.
func SectionEnrollHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sectionID := chi.URLParam(r, "sectionID")
		var req struct {
			StudentID string `json:"student_id"`
		}
		if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.StudentID) == "" {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}

		var courseID string
		var active int
		err := dbh.QueryRow(`SELECT course_id, active FROM sections WHERE id = $1`, sectionID).Scan(&courseID, &active)
		if errors.Is(err, sql.ErrNoRows) {
			nethttp.Error(w, "unknown section", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		if active == 0 {
			nethttp.Error(w, "section inactive", nethttp.StatusConflict)
			return
		}

		var exists int
		if err := dbh.QueryRow(`SELECT COUNT(1) FROM users WHERE id = $1 AND role = 'student'`, req.StudentID).Scan(&exists); err != nil || exists == 0 {
			nethttp.Error(w, "unknown student", nethttp.StatusNotFound)
			return
		}

		var current sql.NullString
		err = dbh.QueryRow(`SELECT section_id FROM enrollments WHERE course_id = $1 AND student_id = $2`,
			courseID, req.StudentID).Scan(&current)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := dbh.Exec(`
INSERT INTO enrollments (course_id, student_id, section_id, enrolled_at) VALUES ($1,$2,$3,$4)`,
				courseID, req.StudentID, sectionID, nowUnix()); err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
		case err != nil:
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		case current.Valid && current.String == sectionID:
			nethttp.Error(w, "already enrolled in this section", nethttp.StatusConflict)
			return
		default:
			if _, err := dbh.Exec(`UPDATE enrollments SET section_id = $1 WHERE course_id = $2 AND student_id = $3`,
				sectionID, courseID, req.StudentID); err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
		}
		writeJSON(w, nethttp.StatusCreated, map[string]string{
			"course_id":  courseID,
			"section_id": sectionID,
			"student_id": req.StudentID,
		})
	}
}

func ListSectionEnrollmentsHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sectionID := chi.URLParam(r, "sectionID")
		var exists int
		if err := dbh.QueryRow(`SELECT COUNT(1) FROM sections WHERE id = $1`, sectionID).Scan(&exists); err != nil || exists == 0 {
			nethttp.Error(w, "unknown section", nethttp.StatusNotFound)
			return
		}
		rows, err := dbh.Query(`
SELECT e.course_id, e.student_id, u.username, u.full_name, e.enrolled_at, e.grade
  FROM enrollments e JOIN users u ON u.id = e.student_id
 WHERE e.section_id = $1 ORDER BY u.username`, sectionID)
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []Enrollment{}
		for rows.Next() {
			var e Enrollment
			var grade sql.NullFloat64
			if err := rows.Scan(&e.CourseID, &e.StudentID, &e.Username, &e.FullName, &e.EnrolledAt, &grade); err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
			e.SectionID = sectionID
			if grade.Valid {
				g := grade.Float64
				e.Grade = &g
			}
			out = append(out, e)
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}
