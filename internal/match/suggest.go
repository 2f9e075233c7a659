package match

import "sort"

// MinSimilarity is the lowest normalized similarity Suggest accepts.
const MinSimilarity = 0.5

// Candidate is a scored suggestion.
type Candidate struct {
	Name  string
	Score float64
}

// Rank scores every candidate against name and returns those reaching
// MinSimilarity, best first. Equal scores keep the order of candidates.
func Rank(name string, candidates []string) []Candidate {
	key := NormalizeKey(name)
	if key == "" {
		return nil
	}

	var out []Candidate

	for _, c := range candidates {
		if c == name {
			continue
		}

		score := Similarity(key, NormalizeKey(c))
		if score >= MinSimilarity {
			out = append(out, Candidate{Name: c, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}

// Suggest returns the candidate name most likely meant by name.
func Suggest(name string, candidates []string) (string, bool) {
	ranked := Rank(name, candidates)
	if len(ranked) == 0 {
		return "", false
	}

	return ranked[0].Name, true
}
