package examgen

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOptions(t *testing.T) {
	longAnswer := "el proceso que usan las plantas para convertir la luz solar en energía química"

	tests := []struct {
		name    string
		correct string
		n       int
	}{
		{"long answer", longAnswer, 4},
		{"short answer uses placeholders", "energía química", 4},
		{"six options", longAnswer, 6},
		{"two options", "respuesta muy corta", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(1); seed <= 50; seed++ {
				rng := rand.New(rand.NewSource(seed))
				options := GenerateOptions(tt.correct, tt.n, rng)

				require.Len(t, options, tt.n)

				seen := map[string]int{}
				for _, o := range options {
					seen[o]++
				}
				assert.Equal(t, 1, seen[tt.correct], "correct answer must appear exactly once")
				for o, count := range seen {
					assert.Equal(t, 1, count, "duplicate option %q", o)
				}
			}
		})
	}
}

func TestGenerateOptionsShortAnswerAllPlaceholders(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	options := GenerateOptions("cuatro palabras o menos", 4, rng)
	require.Len(t, options, 4)

	placeholders := 0
	for _, o := range options {
		if strings.HasPrefix(o, "Opción incorrecta") {
			placeholders++
		}
	}
	assert.Equal(t, 3, placeholders)
}

func TestSynthesizeDefinitionQuestions(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	c := Concept{
		Kind:       KindDefinition,
		Term:       "Fotosíntesis",
		Content:    "el proceso que usan las plantas para convertir la luz en energía",
		Difficulty: DifficultyMedium,
	}

	questions := SynthesizeQuestions(c, 4, rng)
	require.Len(t, questions, 2)

	open, mc := questions[0], questions[1]
	assert.Equal(t, TypeOpen, open.Type)
	assert.Equal(t, "¿Qué es Fotosíntesis?", open.Content)
	assert.Equal(t, 5.0, open.Points)
	assert.Empty(t, open.Options)
	assert.Equal(t, c.Content, open.CorrectAnswer)

	assert.Equal(t, TypeMultipleChoice, mc.Type)
	assert.Equal(t, 3.0, mc.Points)
	require.Len(t, mc.Options, 4)
	assert.Contains(t, mc.Options, mc.CorrectAnswer)
}

func TestSynthesizeSectionQuestions(t *testing.T) {
	c := Concept{
		Kind:       KindSectionContent,
		Term:       "Respiración",
		Content:    "La respiración celular ocurre en las mitocondrias y produce ATP para la célula.",
		Difficulty: DifficultyMedium,
	}

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		questions := SynthesizeQuestions(c, 4, rng)
		require.Len(t, questions, 2)

		open, tf := questions[0], questions[1]
		assert.Equal(t, TypeOpen, open.Type)
		assert.Equal(t, "Explique el concepto de Respiración", open.Content)

		assert.Equal(t, TypeMultipleChoice, tf.Type)
		assert.Equal(t, DifficultyEasy, tf.Difficulty)
		assert.Equal(t, 2.0, tf.Points)
		assert.Equal(t, []string{"Verdadero", "Falso"}, tf.Options)

		switch tf.CorrectAnswer {
		case "Verdadero":
			assert.Contains(t, tf.Content, c.Content)
		case "Falso":
			assert.NotContains(t, tf.Content, c.Content)
			assert.Contains(t, tf.Content, "NO")
		default:
			t.Fatalf("unexpected answer %q", tf.CorrectAnswer)
		}
	}
}

func TestSynthesizeListQuestions(t *testing.T) {
	items := []string{
		"1. Absorción de luz",
		"2. Transporte de electrones",
		"3. Síntesis de ATP",
		"4. Fijación del carbono",
	}
	c := Concept{
		Kind:       KindListItems,
		Term:       "Lista",
		Content:    strings.Join(items, "\n"),
		Difficulty: DifficultyEasy,
	}

	rng := rand.New(rand.NewSource(3))
	questions := SynthesizeQuestions(c, 4, rng)
	require.Len(t, questions, 2)

	mc, open := questions[0], questions[1]
	assert.Equal(t, TypeMultipleChoice, mc.Type)
	assert.Equal(t, DifficultyMedium, mc.Difficulty)
	require.Len(t, mc.Options, 4)
	assert.Equal(t, "Elemento que no es parte de Lista", mc.CorrectAnswer)
	assert.Contains(t, mc.Options, mc.CorrectAnswer)
	for _, o := range mc.Options {
		assert.NotContains(t, o, "1.", "options must be de-bulleted")
	}

	assert.Equal(t, TypeOpen, open.Type)
	assert.Equal(t, 4.0, open.Points)
	assert.Equal(t, "Absorción de luz, Transporte de electrones, Síntesis de ATP", open.CorrectAnswer)
}

func TestSynthesizeListTooShortForQuestions(t *testing.T) {
	// A 3-item list is a valid concept but yields no questions: the fake
	// "not part of" option needs three real items plus headroom.
	c := Concept{
		Kind:    KindListItems,
		Term:    "Lista",
		Content: "- uno\n- dos\n- tres",
	}
	rng := rand.New(rand.NewSource(1))
	assert.Empty(t, SynthesizeQuestions(c, 4, rng))
}

func TestOpenQuestionsNeverCarryOptions(t *testing.T) {
	concepts := []Concept{
		{Kind: KindDefinition, Term: "A", Content: "una definición suficientemente larga para mutaciones de palabras", Difficulty: DifficultyMedium},
		{Kind: KindSectionContent, Term: "B", Content: "contenido de sección con varias palabras para el enunciado", Difficulty: DifficultyMedium},
		{Kind: KindListItems, Term: "C", Content: "- a\n- b\n- c\n- d"},
	}
	rng := rand.New(rand.NewSource(11))
	for _, c := range concepts {
		for _, q := range SynthesizeQuestions(c, 4, rng) {
			switch q.Type {
			case TypeOpen:
				assert.Empty(t, q.Options)
			case TypeMultipleChoice:
				assert.NotEmpty(t, q.Options)
				assert.Contains(t, q.Options, q.CorrectAnswer)
			}
		}
	}
}
