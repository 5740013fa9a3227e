package http

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acadia-lms/acadia/internal/rbac"
)

type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
}

func CreateCourseHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := rbac.SubjectFromContext(r.Context())
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		c := Course{
			ID:          newID(),
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			CreatedBy:   sub,
			CreatedAt:   nowUnix(),
		}
		if _, err := dbh.Exec(`INSERT INTO courses (id, name, description, created_by, created_at) VALUES ($1,$2,$3,$4,$5)`,
			c.ID, c.Name, c.Description, c.CreatedBy, c.CreatedAt); err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, nethttp.StatusCreated, c)
	}
}

func ListCoursesHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := rbac.SubjectFromContext(r.Context())
		role, _ := rbac.RoleFromContext(r.Context())

		q := strings.TrimSpace(r.URL.Query().Get("q"))
		limit := 50
		offset := 0
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			if v > 200 {
				v = 200
			}
			limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
			offset = v
		}

		var (
			rows *sql.Rows
			err  error
		)
		switch role {
		case "student":
			// Students only see courses they are enrolled in.
			rows, err = dbh.Query(`
SELECT c.id, c.name, c.description, c.created_by, c.created_at
  FROM courses c JOIN enrollments e ON e.course_id = c.id
 WHERE e.student_id = $1 AND c.name LIKE '%' || $2 || '%'
 ORDER BY c.created_at DESC LIMIT $3 OFFSET $4`, sub, q, limit, offset)
		case "teacher":
			rows, err = dbh.Query(`
SELECT id, name, description, created_by, created_at
  FROM courses WHERE created_by = $1 AND name LIKE '%' || $2 || '%'
 ORDER BY created_at DESC LIMIT $3 OFFSET $4`, sub, q, limit, offset)
		default:
			rows, err = dbh.Query(`
SELECT id, name, description, created_by, created_at
  FROM courses WHERE name LIKE '%' || $1 || '%'
 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, q, limit, offset)
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []Course{}
		for rows.Next() {
			var c Course
			if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt); err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
			out = append(out, c)
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func GetCourseHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "courseID")
		var c Course
		err := dbh.QueryRow(`SELECT id, name, description, created_by, created_at FROM courses WHERE id = $1`, id).
			Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			nethttp.Error(w, "not found", nethttp.StatusNotFound)
			return
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, nethttp.StatusOK, c)
	}
}

func UpdateCourseHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "courseID")
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		res, err := dbh.Exec(`UPDATE courses SET name = $1, description = $2 WHERE id = $3`,
			strings.TrimSpace(req.Name), strings.TrimSpace(req.Description), id)
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

func DeleteCourseHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "courseID")
		res, err := dbh.Exec(`DELETE FROM courses WHERE id = $1`, id)
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
