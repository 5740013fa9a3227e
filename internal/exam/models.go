package exam

import "github.com/acadia-lms/acadia/internal/examgen"

// Record is a generated exam persisted alongside its rendered documents.
type Record struct {
	ID          string             `json:"id"`
	CourseID    string             `json:"course_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	TotalPoints float64            `json:"total_points"`
	Questions   []examgen.Question `json:"questions,omitempty"`
	ExamKey     string             `json:"-"`
	AnswerKey   string             `json:"-"`
	SheetKey    string             `json:"-"`
	CreatedBy   string             `json:"created_by"`
	CreatedAt   int64              `json:"created_at"`
}

const (
	AttemptInProgress = "in_progress"
	AttemptSubmitted  = "submitted"
)

// Attempt is one student's pass at an exam.
type Attempt struct {
	ID          string            `json:"id"`
	ExamID      string            `json:"exam_id"`
	UserID      string            `json:"user_id"`
	Status      string            `json:"status"`
	Score       float64           `json:"score"`
	Responses   map[string]string `json:"responses,omitempty"`
	StartedAt   int64             `json:"started_at"`
	SubmittedAt int64             `json:"submitted_at,omitempty"`
}
