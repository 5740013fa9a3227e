package examgen

import "math/rand"

// difficultyOrder fixes the round-robin order for distributing leftover
// quota among difficulty groups.
var difficultyOrder = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// typeOrder does the same for question types.
var typeOrder = []QuestionType{TypeMultipleChoice, TypeOpen}

// quotaSample selects up to target items from grouped pools following a
// fractional distribution over group keys. Each group's base quota is
// floor(target × fraction) capped at availability; the remainder is handed
// out one slot at a time in the fixed key order until every group is
// exhausted or the target is met. Within a group the draw is uniform without
// replacement. An empty pool yields an empty selection.
func quotaSample[K comparable, T any](groups map[K][]T, order []K, target int, dist map[K]float64, rng *rand.Rand) []T {
	quotas := make(map[K]int, len(dist))
	remaining := target
	for _, key := range order {
		frac, ok := dist[key]
		if !ok {
			continue
		}
		q := int(float64(target) * frac)
		if avail := len(groups[key]); q > avail {
			q = avail
		}
		quotas[key] = q
		remaining -= q
	}

	for remaining > 0 {
		gave := false
		for _, key := range order {
			if remaining == 0 {
				break
			}
			if _, ok := quotas[key]; !ok {
				continue
			}
			if len(groups[key]) > quotas[key] {
				quotas[key]++
				remaining--
				gave = true
			}
		}
		if !gave {
			break
		}
	}

	var selected []T
	for _, key := range order {
		quota := quotas[key]
		pool := groups[key]
		if quota == 0 || len(pool) == 0 {
			continue
		}
		for _, i := range rng.Perm(len(pool))[:quota] {
			selected = append(selected, pool[i])
		}
	}
	return selected
}

// SelectConcepts rations concepts by difficulty before synthesis.
func SelectConcepts(concepts []Concept, target int, dist map[Difficulty]float64, rng *rand.Rand) []Concept {
	if len(concepts) == 0 {
		return nil
	}
	groups := make(map[Difficulty][]Concept)
	for _, c := range concepts {
		d := c.Difficulty
		if d == "" {
			d = DifficultyMedium
		}
		groups[d] = append(groups[d], c)
	}
	return quotaSample(groups, difficultyOrder, target, dist, rng)
}

// SelectQuestions rations synthesized questions by type and orders the
// result multiple-choice first, preserving selection order within each type.
func SelectQuestions(questions []Question, target int, dist map[QuestionType]float64, rng *rand.Rand) []Question {
	if len(questions) == 0 {
		return nil
	}
	groups := make(map[QuestionType][]Question)
	for _, q := range questions {
		groups[q.Type] = append(groups[q.Type], q)
	}
	selected := quotaSample(groups, typeOrder, target, dist, rng)

	ordered := make([]Question, 0, len(selected))
	for _, q := range selected {
		if q.Type == TypeMultipleChoice {
			ordered = append(ordered, q)
		}
	}
	for _, q := range selected {
		if q.Type != TypeMultipleChoice {
			ordered = append(ordered, q)
		}
	}
	return ordered
}
