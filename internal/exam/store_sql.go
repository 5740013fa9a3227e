package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/acadia-lms/acadia/internal/examgen"
)

// SQLStore implements Store on the shared *sql.DB. Statements stick to
// $1-style placeholders, which both sqlite and postgres accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutExam(ctx context.Context, rec Record) error {
	qj, err := json.Marshal(rec.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO exams (id, course_id, title, description, total_points, questions_json,
                   exam_key, answer_key, sheet_key, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, rec.CourseID, rec.Title, rec.Description, rec.TotalPoints, string(qj),
		rec.ExamKey, rec.AnswerKey, rec.SheetKey, rec.CreatedBy, rec.CreatedAt)
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, course_id, title, description, total_points, questions_json,
       exam_key, answer_key, sheet_key, created_by, created_at
FROM exams WHERE id = $1`, id)
	return scanExam(row)
}

func (s *SQLStore) ListExams(ctx context.Context, courseID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, course_id, title, description, total_points, questions_json,
       exam_key, answer_key, sheet_key, created_by, created_at
FROM exams WHERE course_id = $1 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		rec, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteExam(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExam(row rowScanner) (Record, error) {
	var rec Record
	var qj string
	err := row.Scan(&rec.ID, &rec.CourseID, &rec.Title, &rec.Description,
		&rec.TotalPoints, &qj, &rec.ExamKey, &rec.AnswerKey, &rec.SheetKey,
		&rec.CreatedBy, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(qj), &rec.Questions); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *SQLStore) NewAttempt(ctx context.Context, a Attempt) error {
	rj, err := json.Marshal(a.Responses)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO attempts (id, exam_id, user_id, status, score, responses_json, started_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.ExamID, a.UserID, a.Status, a.Score, string(rj), a.StartedAt)
	return err
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, exam_id, user_id, status, score, responses_json, started_at, submitted_at
FROM attempts WHERE id = $1`, id)
	return scanAttempt(row)
}

func (s *SQLStore) ListAttempts(ctx context.Context, examID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, exam_id, user_id, status, score, responses_json, started_at, submitted_at
FROM attempts WHERE exam_id = $1 ORDER BY started_at`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var rj string
	var submitted sql.NullInt64
	err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Status, &a.Score, &rj,
		&a.StartedAt, &submitted)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrNotFound
	}
	if err != nil {
		return Attempt{}, err
	}
	a.SubmittedAt = submitted.Int64
	if err := json.Unmarshal([]byte(rj), &a.Responses); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) SaveResponses(ctx context.Context, id string, responses map[string]string) error {
	rj, err := json.Marshal(responses)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE attempts SET responses_json = $1 WHERE id = $2 AND status = $3`,
		string(rj), id, AttemptInProgress)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		a, gerr := s.GetAttempt(ctx, id)
		if gerr != nil {
			return gerr
		}
		if a.Status == AttemptSubmitted {
			return ErrAlreadySubmitted
		}
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Submit(ctx context.Context, id string, score float64, submittedAt int64) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE attempts SET status = $1, score = $2, submitted_at = $3
WHERE id = $4 AND status = $5`,
		AttemptSubmitted, score, submittedAt, id, AttemptInProgress)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		a, gerr := s.GetAttempt(ctx, id)
		if gerr != nil {
			return gerr
		}
		if a.Status == AttemptSubmitted {
			return ErrAlreadySubmitted
		}
		return ErrNotFound
	}
	return nil
}

// QuestionsPublic strips answers so a student-facing payload never leaks
// the key.
func QuestionsPublic(qs []examgen.Question) []examgen.Question {
	out := make([]examgen.Question, len(qs))
	copy(out, qs)
	for i := range out {
		out[i].CorrectAnswer = ""
	}
	return out
}
