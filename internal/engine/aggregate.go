package engine

import "sort"

// SelectOptions turns one collecting window's candidate pool into the
// option set shown during selecting. Frequency mode ranks by descending
// mention count with ties kept in first-seen order; arrival mode keeps the
// pool order as-is. The result is padded to exactly rules.MaxOptions from
// the seed vocabulary, skipping seeds already used in the story or already
// present, and never contains duplicates.
func SelectOptions(candidates []Candidate, history map[string]bool, rules Rules) []string {
	ranked := append([]Candidate(nil), candidates...)
	if rules.Aggregation == AggregateByFrequency {
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Count > ranked[j].Count
		})
	}

	options := make([]string, 0, rules.MaxOptions)
	for _, c := range ranked {
		if len(options) == rules.MaxOptions {
			break
		}
		if !containsWord(options, c.Word) {
			options = append(options, c.Word)
		}
	}

	for _, seed := range seedVocabulary {
		if len(options) == rules.MaxOptions {
			break
		}
		if history[seed] || containsWord(options, seed) {
			continue
		}
		options = append(options, seed)
	}

	return options
}
