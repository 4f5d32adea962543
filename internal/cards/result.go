package cards

import (
	"math"
	"sort"
)

// CardResult is the recognition outcome for one card slot. Rank and Suit are
// family symbols ("A", "h") and stay empty when the slot is empty or the
// match failed its gate. Scores are per template label, before family
// aggregation.
type CardResult struct {
	Rank               string             `json:"rank,omitempty"`
	Suit               string             `json:"suit,omitempty"`
	RankConfidence     float64            `json:"rank_confidence"`
	SuitConfidence     float64            `json:"suit_confidence"`
	CombinedConfidence float64            `json:"combined_confidence"`
	IsUncertain        bool               `json:"is_uncertain"`
	RankScores         map[string]float64 `json:"rank_scores,omitempty"`
	SuitScores         map[string]float64 `json:"suit_scores,omitempty"`
}

// Present reports whether both rank and suit were accepted.
func (c CardResult) Present() bool {
	return c.Rank != "" && c.Suit != ""
}

// Label returns the compact card notation ("Ah"), or "" when not present.
func (c CardResult) Label() string {
	if !c.Present() {
		return ""
	}
	return c.Rank + c.Suit
}

// Result groups the per-slot outcomes of one recognition pass.
type Result struct {
	Hero  [2]CardResult `json:"hero"`
	Board [5]CardResult `json:"board"`
}

// BoardCount returns how many board slots hold a fully recognized card.
func (r Result) BoardCount() int {
	n := 0
	for _, c := range r.Board {
		if c.Present() {
			n++
		}
	}
	return n
}

// AggregateFamilies folds per-label scores into per-family maxima, so
// multiple visual variants of one symbol never split votes.
func AggregateFamilies(scores map[string]float64) map[string]float64 {
	families := make(map[string]float64, len(scores))
	for label, score := range scores {
		f := familyOf(label)
		if best, ok := families[f]; !ok || score > best {
			families[f] = score
		}
	}
	return families
}

// familyOf strips the variant suffix from a template label.
func familyOf(label string) string {
	for i := 0; i < len(label); i++ {
		if label[i] == '_' {
			return label[:i]
		}
	}
	return label
}

// TopTwo returns the best family with its score and the runner-up score.
// Ties break alphabetically so the selection is deterministic. With fewer
// than two families the runner-up score is 0.
func TopTwo(families map[string]float64) (label string, top1, top2 float64) {
	if len(families) == 0 {
		return "", 0, 0
	}
	names := make([]string, 0, len(families))
	for f := range families {
		names = append(names, f)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := families[names[i]], families[names[j]]
		if si != sj {
			return si > sj
		}
		return names[i] < names[j]
	})
	label = names[0]
	top1 = families[label]
	if len(names) > 1 {
		top2 = families[names[1]]
	}
	return label, top1, top2
}

// Sigmoid is the bounded confidence transform 1/(1+e^-x).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
