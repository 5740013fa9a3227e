package examgen

import (
	"fmt"
	"math/rand"
	"strings"
)

// SynthesizeQuestions generates the question variants a single concept
// supports. Definitions yield an open "what is" item and a multiple-choice
// item with generated distractors; section content yields an open
// explanation item and a true/false statement; lists yield a "which is NOT
// part of" item plus an enumeration item, provided enough items survive
// de-bulleting.
func SynthesizeQuestions(c Concept, numOptions int, rng *rand.Rand) []Question {
	switch c.Kind {
	case KindDefinition:
		return []Question{
			{
				Content:       fmt.Sprintf("¿Qué es %s?", c.Term),
				Type:          TypeOpen,
				Difficulty:    c.Difficulty,
				Points:        5,
				CorrectAnswer: c.Content,
			},
			{
				Content:       fmt.Sprintf("¿Cuál de las siguientes opciones describe correctamente %s?", c.Term),
				Type:          TypeMultipleChoice,
				Difficulty:    c.Difficulty,
				Points:        3,
				Options:       GenerateOptions(c.Content, numOptions, rng),
				CorrectAnswer: c.Content,
			},
		}
	case KindSectionContent:
		statement, answer := trueFalseStatement(c.Content, rng)
		return []Question{
			{
				Content:       fmt.Sprintf("Explique el concepto de %s", c.Term),
				Type:          TypeOpen,
				Difficulty:    c.Difficulty,
				Points:        5,
				CorrectAnswer: c.Content,
			},
			{
				Content:       fmt.Sprintf("Indique si la siguiente afirmación es verdadera o falsa: %q", statement),
				Type:          TypeMultipleChoice,
				Difficulty:    DifficultyEasy,
				Points:        2,
				Options:       []string{"Verdadero", "Falso"},
				CorrectAnswer: answer,
			},
		}
	case KindListItems:
		return listQuestions(c, rng)
	}
	return nil
}

// trueFalseStatement keeps the statement verbatim half the time. Otherwise
// it falsifies it by prefixing a negation marker to one interior word,
// chosen uniformly between the third word and the third-from-last; short
// statements (five words or fewer) are left untouched.
func trueFalseStatement(content string, rng *rand.Rand) (statement, answer string) {
	if rng.Intn(2) == 0 {
		return content, "Verdadero"
	}
	words := strings.Fields(content)
	if len(words) > 5 {
		pos := 2 + rng.Intn(len(words)-4)
		words[pos] = "NO" + words[pos]
	}
	return strings.Join(words, " "), "Falso"
}

// minListQuestionItems: a list needs one more item than the three shown as
// real options, so the synthetic "not part of" option has room to hide.
const minListQuestionItems = 4

func listQuestions(c Concept, rng *rand.Rand) []Question {
	var items []string
	for _, raw := range strings.Split(c.Content, "\n") {
		item := strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(raw), ""))
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) < minListQuestionItems {
		return nil
	}

	real := sampleStrings(items, 3, rng)
	fake := fmt.Sprintf("Elemento que no es parte de %s", c.Term)
	options := append(real, fake)
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	return []Question{
		{
			Content:       fmt.Sprintf("¿Cuál de los siguientes NO es parte de %s?", c.Term),
			Type:          TypeMultipleChoice,
			Difficulty:    DifficultyMedium,
			Points:        3,
			Options:       options,
			CorrectAnswer: fake,
		},
		{
			Content:       fmt.Sprintf("Enumere al menos 3 elementos que forman parte de %s", c.Term),
			Type:          TypeOpen,
			Difficulty:    DifficultyMedium,
			Points:        4,
			CorrectAnswer: strings.Join(items[:3], ", "),
		},
	}
}

// GenerateOptions produces n options containing correct exactly once, in
// randomized order. Distractors are mutations of the correct answer
// (negation prefix, word removal, neighbor swap); whenever a mutation
// collapses back to the original or duplicates an earlier option, a numbered
// placeholder takes its slot so the count always comes out to n. Answers of
// four words or fewer skip mutation entirely.
func GenerateOptions(correct string, n int, rng *rand.Rand) []string {
	options := []string{correct}
	words := strings.Fields(correct)

	for len(options) < n {
		if len(words) <= 4 {
			options = append(options, fmt.Sprintf("Opción incorrecta %d", len(options)))
			continue
		}
		fake := mutateWords(words, rng)
		if fake != "" && fake != correct && !containsString(options, fake) {
			options = append(options, fake)
		} else {
			options = append(options, fmt.Sprintf("Opción incorrecta %d", len(options)))
		}
	}

	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options
}

// mutateWords applies 1..min(3, len/3) random edits to a copy of the word
// sequence and rejoins the survivors.
func mutateWords(words []string, rng *rand.Rand) string {
	fake := append([]string(nil), words...)
	changes := 1 + rng.Intn(min(3, len(words)/3))

	for i := 0; i < changes; i++ {
		pos := rng.Intn(len(fake))
		switch rng.Intn(3) {
		case 0: // negate
			fake[pos] = "NO-" + fake[pos]
		case 1: // delete
			fake[pos] = ""
		case 2: // swap with right neighbor
			if pos < len(fake)-1 {
				fake[pos], fake[pos+1] = fake[pos+1], fake[pos]
			}
		}
	}

	kept := fake[:0:0]
	for _, w := range fake {
		if w != "" {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// sampleStrings draws k items uniformly without replacement.
func sampleStrings(pool []string, k int, rng *rand.Rand) []string {
	idx := rng.Perm(len(pool))[:k]
	out := make([]string, 0, k)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
