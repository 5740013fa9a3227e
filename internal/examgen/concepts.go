package examgen

import (
	"sort"
	"strings"
)

// minListConceptItems is the smallest list worth turning into a concept.
const minListConceptItems = 3

// ExtractConcepts flattens structured content into the list of concepts the
// synthesizer can work with: one per definition, one per titled section with
// at least one paragraph, one per list with enough items.
func ExtractConcepts(content StructuredContent) []Concept {
	var concepts []Concept

	terms := make([]string, 0, len(content.Definitions))
	for term := range content.Definitions {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		concepts = append(concepts, Concept{
			Kind:       KindDefinition,
			Term:       term,
			Content:    content.Definitions[term],
			Difficulty: DifficultyMedium,
		})
	}

	for _, sec := range content.Sections {
		if sec.Title == generalSection || len(sec.Paragraphs) == 0 {
			continue
		}
		concepts = append(concepts, Concept{
			Kind:       KindSectionContent,
			Term:       sec.Title,
			Content:    sec.Paragraphs[0],
			Difficulty: DifficultyMedium,
		})
	}

	for _, items := range content.Lists {
		if len(items) < minListConceptItems {
			continue
		}
		concepts = append(concepts, Concept{
			Kind:       KindListItems,
			Term:       "Lista",
			Content:    strings.Join(items, "\n"),
			Difficulty: DifficultyEasy,
		})
	}

	return concepts
}
