package examgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func photosynthesisMaterial() StructuredContent {
	return StructuredContent{
		Sections: []Section{
			{Title: generalSection},
			{Title: "Photosynthesis", Paragraphs: []string{
				"Photosynthesis is the process plants use to convert light into energy.",
			}},
		},
		Definitions: map[string]string{
			"Photosynthesis": "the process plants use to convert light into energy",
		},
	}
}

func TestGenerateExamFromPhotosynthesisMaterial(t *testing.T) {
	g := NewSeededGenerator(1)
	cfg := DefaultExamConfig("Parcial de Biología")
	cfg.Description = "Generado a partir de los materiales del curso"

	material := photosynthesisMaterial()
	concepts := ExtractConcepts(material)
	require.GreaterOrEqual(t, len(concepts), 2)

	exam, err := g.GenerateExam([]StructuredContent{material}, cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.Title, exam.Title)
	assert.GreaterOrEqual(t, len(exam.Questions), 4)

	total := 0.0
	for _, q := range exam.Questions {
		total += q.Points
		switch q.Type {
		case TypeMultipleChoice:
			assert.Contains(t, q.Options, q.CorrectAnswer)
		case TypeOpen:
			assert.Empty(t, q.Options)
		}
	}
	assert.Equal(t, total, exam.TotalPoints)
}

func TestGenerateExamReproducibleWithSeed(t *testing.T) {
	cfg := DefaultExamConfig("Examen")
	materials := []StructuredContent{photosynthesisMaterial()}

	a, err := NewSeededGenerator(99).GenerateExam(materials, cfg)
	require.NoError(t, err)
	b, err := NewSeededGenerator(99).GenerateExam(materials, cfg)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestGenerateExamEmptyMaterials(t *testing.T) {
	g := NewSeededGenerator(1)
	_, err := g.GenerateExam(nil, DefaultExamConfig("Examen"))
	assert.ErrorIs(t, err, ErrInsufficientMaterial)

	_, err = g.GenerateExam([]StructuredContent{{Sections: []Section{{Title: generalSection}}}}, DefaultExamConfig("Examen"))
	assert.ErrorIs(t, err, ErrInsufficientMaterial)
}

func TestGenerateExamConfigValidation(t *testing.T) {
	g := NewSeededGenerator(1)
	materials := []StructuredContent{photosynthesisMaterial()}

	tests := []struct {
		name   string
		mutate func(*ExamConfig)
	}{
		{"distribution does not sum to 1", func(c *ExamConfig) {
			c.DifficultyDistribution = map[Difficulty]float64{DifficultyEasy: 0.5, DifficultyMedium: 0.2}
		}},
		{"type distribution does not sum to 1", func(c *ExamConfig) {
			c.QuestionTypeDistribution = map[QuestionType]float64{TypeMultipleChoice: 0.9, TypeOpen: 0.3}
		}},
		{"zero questions", func(c *ExamConfig) { c.NumQuestions = 0 }},
		{"negative concepts", func(c *ExamConfig) { c.NumConcepts = -1 }},
		{"one option", func(c *ExamConfig) { c.NumOptions = 1 }},
		{"missing title", func(c *ExamConfig) { c.Title = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultExamConfig("Examen")
			tt.mutate(&cfg)
			_, err := g.GenerateExam(materials, cfg)
			var cfgErr *ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestGenerateVariantsDiffer(t *testing.T) {
	g := NewSeededGenerator(7)

	// Enough material that different seeds produce different selections.
	text := "Conceptos\n" +
		"La fotosíntesis se define como el proceso de conversión de luz en energía. " +
		"El ATP es la moneda energética de la célula. " +
		"La mitocondria es el orgánulo encargado de la respiración celular. " +
		"El cloroplasto es el orgánulo donde ocurre la fotosíntesis en las plantas. " +
		"La glucólisis se define como la ruta metabólica que degrada la glucosa en piruvato.\n"
	material := StructureContent(text)

	cfg := DefaultExamConfig("Examen")
	cfg.NumQuestions = 4
	cfg.NumConcepts = 3

	variants, err := g.GenerateVariants([]StructuredContent{material}, cfg, 3)
	require.NoError(t, err)
	require.Len(t, variants, 3)
	for _, v := range variants {
		assert.NotEmpty(t, v.Questions)
	}

	// Each parallel form is pinned to its own derived seed.
	again, err := g.GenerateVariants([]StructuredContent{material}, cfg, 3)
	require.NoError(t, err)
	assert.Equal(t, variants, again)

	_, err = g.GenerateVariants([]StructuredContent{material}, cfg, 0)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
