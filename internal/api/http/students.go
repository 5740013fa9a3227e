package http

import (
	"database/sql"
	"errors"
	"strings"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

type Student struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func CreateStudentHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			FullName string `json:"full_name"`
			Email    string `json:"email"`
		}
		if err := readJSON(r, &req); err != nil ||
			strings.TrimSpace(req.Username) == "" || req.Password == "" {
			nethttp.Error(w, "bad json", nethttp.StatusBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			nethttp.Error(w, "hash error", nethttp.StatusInternalServerError)
			return
		}
		s := Student{
			ID:       newID(),
			Username: strings.TrimSpace(req.Username),
			FullName: strings.TrimSpace(req.FullName),
			Email:    strings.TrimSpace(req.Email),
		}
		_, err = dbh.Exec(`
INSERT INTO users (id, username, pass_hash, role, full_name, email, created_at)
VALUES ($1,$2,$3,'student',$4,$5,$6)`,
			s.ID, s.Username, string(hash), s.FullName, s.Email, nowUnix())
		if err != nil {
			// unique(username) is the usual culprit
			nethttp.Error(w, "username taken", nethttp.StatusConflict)
			return
		}
		writeJSON(w, nethttp.StatusCreated, s)
	}
}

func ListStudentsHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		var (
			rows *sql.Rows
			err  error
		)
		if q != "" {
			rows, err = dbh.Query(`
SELECT id, username, full_name, email FROM users
 WHERE role = 'student' AND (username LIKE '%' || $1 || '%' OR full_name LIKE '%' || $1 || '%')
 ORDER BY username`, q)
		} else {
			rows, err = dbh.Query(`
SELECT id, username, full_name, email FROM users WHERE role = 'student' ORDER BY username`)
		}
		if err != nil {
			nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []Student{}
		for rows.Next() {
			var s Student
			if err := rows.Scan(&s.ID, &s.Username, &s.FullName, &s.Email); err != nil {
				nethttp.Error(w, "db error", nethttp.StatusInternalServerError)
				return
			}
			out = append(out, s)
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func GetStudentHandler(dbh *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id := chi.URLParam(r, "studentID")
		var s Student
		err := dbh.QueryRow(`SELECT id, username, full_name, email FROM users WHERE id = $1 AND role = 'student'`, id).
			Scan(&s.ID, &s.Username, &s.FullName, &s.Email)
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
