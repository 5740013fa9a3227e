package examgen

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"
)

// distributionTolerance is how far fraction sums may drift from 1 before a
// config is rejected.
const distributionTolerance = 0.01

// Generator runs the document-to-exam pipeline. A Generator is safe for
// concurrent use: every generation builds its own random source, so parallel
// requests share nothing but the validator.
type Generator struct {
	seed     int64 // 0 means seed from the clock per call
	validate *validator.Validate
}

func NewGenerator() *Generator { return NewSeededGenerator(0) }

// NewSeededGenerator fixes the random seed so selection, distractors and
// true/false coin flips are reproducible.
func NewSeededGenerator(seed int64) *Generator {
	v := validator.New()
	// distribution: map fractions must sum to ~1
	_ = v.RegisterValidation("distribution", func(fl validator.FieldLevel) bool {
		sum := 0.0
		iter := fl.Field().MapRange()
		for iter.Next() {
			sum += iter.Value().Float()
		}
		return math.Abs(sum-1) <= distributionTolerance
	})
	return &Generator{seed: seed, validate: v}
}

func (g *Generator) rng(offset int64) *rand.Rand {
	seed := g.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed + offset))
}

// ValidateConfig rejects malformed exam configurations before any synthesis
// work starts.
func (g *Generator) ValidateConfig(cfg ExamConfig) error {
	if err := g.validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return &ConfigError{Field: errs[0].Field(), Reason: reasonFor(errs[0])}
		}
		return &ConfigError{Field: "config", Reason: err.Error()}
	}
	return nil
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "distribution":
		return "fractions must sum to 1"
	case "gt":
		return "must be positive"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "required":
		return "is required"
	}
	return fe.Tag()
}

// ExtractAndStructure reads a document from disk, extracts its text and
// structures it into sections, definitions and lists.
func (g *Generator) ExtractAndStructure(path string) (StructuredContent, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return StructuredContent{}, err
	}
	return StructureContent(ExtractText(doc)), nil
}

// GenerateExam assembles an exam from structured course materials under the
// config's difficulty and type quotas.
func (g *Generator) GenerateExam(materials []StructuredContent, cfg ExamConfig) (Exam, error) {
	return g.generate(materials, cfg, 0)
}

// GenerateVariants produces n parallel forms of the same exam by re-running
// selection with a distinct derived seed per variant.
func (g *Generator) GenerateVariants(materials []StructuredContent, cfg ExamConfig, n int) ([]Exam, error) {
	if n <= 0 {
		return nil, &ConfigError{Field: "NumVariants", Reason: "must be positive"}
	}
	exams := make([]Exam, 0, n)
	for i := 0; i < n; i++ {
		exam, err := g.generate(materials, cfg, int64(i))
		if err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}
	return exams, nil
}

func (g *Generator) generate(materials []StructuredContent, cfg ExamConfig, seedOffset int64) (Exam, error) {
	if err := g.ValidateConfig(cfg); err != nil {
		return Exam{}, err
	}

	var concepts []Concept
	for _, m := range materials {
		concepts = append(concepts, ExtractConcepts(m)...)
	}
	if len(concepts) == 0 {
		return Exam{}, ErrInsufficientMaterial
	}

	rng := g.rng(seedOffset)
	selected := SelectConcepts(concepts, cfg.NumConcepts, cfg.DifficultyDistribution, rng)

	var pool []Question
	for _, c := range selected {
		pool = append(pool, SynthesizeQuestions(c, cfg.NumOptions, rng)...)
	}

	questions := SelectQuestions(pool, cfg.NumQuestions, cfg.QuestionTypeDistribution, rng)
	if len(questions) == 0 {
		// Concepts existed but none survived synthesis (e.g. only 3-item
		// lists). An empty exam would be misleading, so surface it.
		return Exam{}, ErrInsufficientMaterial
	}

	total := 0.0
	for _, q := range questions {
		total += q.Points
	}

	log.Debug().
		Int("concepts", len(concepts)).
		Int("selected_concepts", len(selected)).
		Int("question_pool", len(pool)).
		Int("questions", len(questions)).
		Float64("total_points", total).
		Msg("exam assembled")

	return Exam{
		Title:       cfg.Title,
		Description: cfg.Description,
		Questions:   questions,
		TotalPoints: total,
	}, nil
}
