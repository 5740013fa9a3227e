package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/acadia-lms/acadia/internal/examgen"
)

func mcQuestion() examgen.Question {
	return examgen.Question{
		Content:       "¿Qué es la fotosíntesis?",
		Type:          examgen.TypeMultipleChoice,
		Difficulty:    examgen.DifficultyMedium,
		Points:        3,
		Options:       []string{"el proceso correcto", "otra cosa", "nada", "tampoco"},
		CorrectAnswer: "el proceso correcto",
	}
}

func openQuestion() examgen.Question {
	return examgen.Question{
		Content:       "Explique el concepto de fotosíntesis",
		Type:          examgen.TypeOpen,
		Difficulty:    examgen.DifficultyMedium,
		Points:        5,
		CorrectAnswer: "el proceso por el cual las plantas convierten luz en energía",
	}
}

func TestChoiceGrading(t *testing.T) {
	g := NewGrader()
	q := mcQuestion()

	tests := []struct {
		name     string
		response string
		points   float64
	}{
		{"exact", "el proceso correcto", 3},
		{"case and punctuation ignored", "El Proceso Correcto.", 3},
		{"letter upper", "A", 3},
		{"letter lower", "a", 3},
		{"wrong option", "otra cosa", 0},
		{"wrong letter", "B", 0},
		{"blank", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.Grade(q, tt.response)
			assert.Equal(t, tt.points, res.Points)
			assert.Equal(t, 3.0, res.MaxPoints)
			assert.False(t, res.NeedsManual)
		})
	}
}

func TestOpenGrading(t *testing.T) {
	g := NewGrader()
	q := openQuestion()

	res := g.Grade(q, q.CorrectAnswer)
	assert.Equal(t, 5.0, res.Points)
	assert.False(t, res.NeedsManual)

	res = g.Grade(q, "una respuesta totalmente distinta")
	assert.Equal(t, 0.0, res.Points)
	assert.True(t, res.NeedsManual)

	res = g.Grade(q, "")
	assert.Equal(t, 0.0, res.Points)
	assert.False(t, res.NeedsManual)
}

func TestGradeAllKeysByQuestionNumber(t *testing.T) {
	g := NewGrader()
	qs := []examgen.Question{mcQuestion(), openQuestion(), mcQuestion()}
	responses := map[string]string{
		"1": "el proceso correcto",
		"3": "nada",
	}
	results, total := g.GradeAll(qs, responses)
	assert.Len(t, results, 3)
	assert.Equal(t, 3.0, results["1"].Points)
	assert.Equal(t, 0.0, results["3"].Points)
	// Only auto-graded points count toward the subtotal.
	assert.Equal(t, 3.0, total)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hola mundo", normalize("  ¡Hola,   MUNDO!  "))
	assert.Equal(t, "energía química", normalize("Energía Química."))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("abc", "abc"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 1, levenshtein("gato", "pato"))
	assert.Equal(t, 1.0, similarity("x", "x"))
	assert.Equal(t, 0.0, similarity("abcd", "wxyz"))
}
