package examgen

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const generalSection = "general"

var (
	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+\w`)
	definitionRe      = regexp.MustCompile(`([^.!?]+)(?:\ses\s|\sse\sdefine\scomo\s|\sse\srefiere\sa\s)([^.!?]+)[.!?]`)
	bulletRe          = regexp.MustCompile(`^\s*(\d+\.|•|\*|-)\s`)
)

// paragraphClass is the classifier's tagged decision for one paragraph.
type paragraphClass int

const (
	classBody paragraphClass = iota
	classTitle
)

// classifyParagraph decides whether a paragraph is a section title or body
// text. A paragraph is a title when any of these hold: it is short (fewer
// than 100 characters and 7 words) without a trailing period, it carries a
// numbered-heading prefix ("1.", "2.3.1 ..."), or it is fully upper-case and
// longer than 5 characters.
func classifyParagraph(p string) paragraphClass {
	if utf8.RuneCountInString(p) < 100 && len(strings.Fields(p)) < 7 && !strings.HasSuffix(p, ".") {
		return classTitle
	}
	if numberedHeadingRe.MatchString(p) {
		return classTitle
	}
	if isAllUpper(p) && utf8.RuneCountInString(p) > 5 {
		return classTitle
	}
	return classBody
}

// isAllUpper reports whether s contains at least one letter and no lower-case
// letter.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// StructureContent segments raw text into titled sections and extracts term
// definitions and itemized lists. The walk is a single fold over non-empty
// trimmed lines: a line classified as a title opens (or re-opens) the section
// keyed by its own text, anything else lands in the current section, starting
// from a synthetic "general" bucket.
func StructureContent(text string) StructuredContent {
	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	sections := []Section{{Title: generalSection}}
	current := 0
	index := map[string]int{generalSection: 0}

	for _, p := range paragraphs {
		if classifyParagraph(p) == classTitle {
			if i, ok := index[p]; ok {
				// A repeated title reopens its section from scratch.
				sections[i].Paragraphs = nil
				current = i
			} else {
				sections = append(sections, Section{Title: p})
				current = len(sections) - 1
				index[p] = current
			}
			continue
		}
		sections[current].Paragraphs = append(sections[current].Paragraphs, p)
	}

	return StructuredContent{
		Sections:        sections,
		Definitions:     extractDefinitions(sections),
		Lists:           extractLists(paragraphs),
		TotalParagraphs: len(paragraphs),
	}
}

// extractDefinitions scans every paragraph for "<term> es <definition>",
// "<term> se define como <definition>" and "<term> se refiere a
// <definition>" patterns terminated by sentence punctuation. A term matched
// twice keeps its last definition.
func extractDefinitions(sections []Section) map[string]string {
	defs := make(map[string]string)
	for _, sec := range sections {
		for _, p := range sec.Paragraphs {
			for _, m := range definitionRe.FindAllStringSubmatch(p, -1) {
				term := strings.TrimSpace(m[1])
				def := strings.TrimSpace(m[2])
				if term != "" && def != "" {
					defs[term] = def
				}
			}
		}
	}
	return defs
}

// extractLists groups consecutive bullet or numbered items, scanning
// paragraphs in original document order. A list closes at the first
// non-item paragraph or at end of input.
func extractLists(paragraphs []string) [][]string {
	var lists [][]string
	var items []string
	inList := false

	for _, p := range paragraphs {
		if bulletRe.MatchString(p) {
			if !inList {
				inList = true
				items = nil
			}
			items = append(items, p)
		} else if inList {
			inList = false
			if len(items) > 0 {
				lists = append(lists, items)
			}
		}
	}
	if inList && len(items) > 0 {
		lists = append(lists, items)
	}
	return lists
}
