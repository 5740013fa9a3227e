package examgen

// Format identifies the source encoding of an uploaded course material.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatTxt  Format = "txt"
)

// Difficulty buckets concepts and questions for quota sampling.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuestionType discriminates rendered question layouts.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeOpen           QuestionType = "open"
)

// ConceptKind tags where in the structured content a concept came from.
type ConceptKind string

const (
	KindDefinition     ConceptKind = "definition"
	KindSectionContent ConceptKind = "section_content"
	KindListItems      ConceptKind = "list_items"
)

// RawDocument is the transient input to a single extraction call.
type RawDocument struct {
	Path    string
	Format  Format
	Content []byte
}

// Section is a titled run of paragraphs in document order.
type Section struct {
	Title      string
	Paragraphs []string
}

// StructuredContent is the immutable result of structuring one document's
// raw text: titled sections, term definitions and itemized lists.
type StructuredContent struct {
	Sections        []Section
	Definitions     map[string]string
	Lists           [][]string
	TotalParagraphs int
}

// Section returns the section with the given title, if present.
func (c StructuredContent) Section(title string) (Section, bool) {
	for _, s := range c.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

// Concept is a unit of extracted knowledge eligible to become questions.
type Concept struct {
	Kind       ConceptKind
	Term       string
	Content    string
	Difficulty Difficulty
}

// Question is a synthesized exam item. Options is populated for
// multiple-choice questions only and always contains CorrectAnswer.
type Question struct {
	Content       string       `json:"content"`
	Type          QuestionType `json:"type"`
	Difficulty    Difficulty   `json:"difficulty"`
	Points        float64      `json:"points"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
}

// Exam is the pipeline's final output.
type Exam struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	TotalPoints float64    `json:"total_points"`
}

// ExamConfig drives concept and question selection. Distribution fractions
// must sum to 1 within a small tolerance; counts must be positive.
type ExamConfig struct {
	Title                    string                   `json:"title" validate:"required"`
	Description              string                   `json:"description"`
	NumQuestions             int                      `json:"num_questions" validate:"gt=0"`
	NumConcepts              int                      `json:"num_concepts" validate:"gt=0"`
	NumOptions               int                      `json:"num_options" validate:"gte=2"`
	DifficultyDistribution   map[Difficulty]float64   `json:"difficulty_distribution" validate:"required,distribution"`
	QuestionTypeDistribution map[QuestionType]float64 `json:"question_type_distribution" validate:"required,distribution"`
}

// DefaultExamConfig mirrors the defaults teachers get when they leave the
// generation form untouched.
func DefaultExamConfig(title string) ExamConfig {
	return ExamConfig{
		Title:        title,
		NumQuestions: 20,
		NumConcepts:  10,
		NumOptions:   4,
		DifficultyDistribution: map[Difficulty]float64{
			DifficultyEasy:   0.3,
			DifficultyMedium: 0.5,
			DifficultyHard:   0.2,
		},
		QuestionTypeDistribution: map[QuestionType]float64{
			TypeMultipleChoice: 0.7,
			TypeOpen:           0.3,
		},
	}
}
