package grading

import (
	"strconv"

	"github.com/acadia-lms/acadia/internal/examgen"
)

// Result is the outcome of grading one response.
type Result struct {
	Points      float64 `json:"points"`
	MaxPoints   float64 `json:"max_points"`
	NeedsManual bool    `json:"needs_manual"`
}

// Strategy scores a single response against a question.
type Strategy interface {
	Grade(q examgen.Question, response string) Result
}

// Grader dispatches by question type.
type Grader struct {
	strategies map[examgen.QuestionType]Strategy
}

func NewGrader() *Grader {
	return &Grader{strategies: map[examgen.QuestionType]Strategy{
		examgen.TypeMultipleChoice: choiceStrategy{},
		examgen.TypeOpen:           openStrategy{},
	}}
}

func (g *Grader) Grade(q examgen.Question, response string) Result {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{MaxPoints: q.Points, NeedsManual: true}
	}
	return s.Grade(q, response)
}

// GradeAll scores every response and returns the auto-gradable subtotal.
// Responses are keyed by 1-based question number, matching the numbering
// on the rendered documents.
func (g *Grader) GradeAll(qs []examgen.Question, responses map[string]string) (map[string]Result, float64) {
	out := make(map[string]Result, len(qs))
	var total float64
	for i, q := range qs {
		key := strconv.Itoa(i + 1)
		r := g.Grade(q, responses[key])
		out[key] = r
		if !r.NeedsManual {
			total += r.Points
		}
	}
	return out, total
}

// choiceStrategy awards full points for an exact match with the expected
// answer, comparing either the option text or its letter.
type choiceStrategy struct{}

func (choiceStrategy) Grade(q examgen.Question, response string) Result {
	res := Result{MaxPoints: q.Points}
	if response == "" {
		return res
	}
	if normalize(response) == normalize(q.CorrectAnswer) {
		res.Points = q.Points
		return res
	}
	// Accept "A".."D" referring to the option positions.
	if len(response) == 1 {
		idx := int(response[0]|0x20) - 'a'
		if idx >= 0 && idx < len(q.Options) && q.Options[idx] == q.CorrectAnswer {
			res.Points = q.Points
		}
	}
	return res
}

// openStrategy gives full credit on a near-exact match, partial credit when
// the response is close to the model answer, and defers to a human
// otherwise.
type openStrategy struct{}

func (openStrategy) Grade(q examgen.Question, response string) Result {
	res := Result{MaxPoints: q.Points}
	if response == "" {
		return res
	}
	sim := similarity(normalize(response), normalize(q.CorrectAnswer))
	switch {
	case sim >= 0.9:
		res.Points = q.Points
	case sim >= 0.6:
		res.Points = q.Points / 2
		res.NeedsManual = true
	default:
		res.NeedsManual = true
	}
	return res
}
