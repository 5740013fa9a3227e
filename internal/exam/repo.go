package exam

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("exam: not found")
	ErrAlreadySubmitted = errors.New("exam: attempt already submitted")
)

// Store persists exams and attempts.
type Store interface {
	PutExam(ctx context.Context, rec Record) error
	GetExam(ctx context.Context, id string) (Record, error)
	ListExams(ctx context.Context, courseID string) ([]Record, error)
	DeleteExam(ctx context.Context, id string) error

	NewAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, examID string) ([]Attempt, error)
	SaveResponses(ctx context.Context, id string, responses map[string]string) error
	Submit(ctx context.Context, id string, score float64, submittedAt int64) error
}
