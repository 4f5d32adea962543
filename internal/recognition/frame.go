package recognition

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/textrec"
)

// Frame is the structured outcome of one recognition cycle. Frames are
// immutable once published; the next cycle supersedes them.
type Frame struct {
	Timestamp   time.Time                     `json:"timestamp"`
	Street      Street                        `json:"street"`
	HeroCards   [2]cards.CardResult           `json:"hero_cards"`
	BoardCards  [5]cards.CardResult           `json:"board_cards"`
	TextResults map[string]textrec.TextResult `json:"text_results"`
}

// Summary renders a multi-line diagnostic view of the frame.
func (f *Frame) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "street: %s\n", f.Street)
	fmt.Fprintf(&b, "hero:   %s\n", formatCards(f.HeroCards[:]))
	fmt.Fprintf(&b, "board:  %s\n", formatCards(f.BoardCards[:]))

	zones := make([]string, 0, len(f.TextResults))
	for name := range f.TextResults {
		zones = append(zones, name)
	}
	sort.Strings(zones)
	for _, name := range zones {
		r := f.TextResults[name]
		state := "ok"
		if !r.IsValid {
			state = "invalid"
		}
		display := r.Text
		if display == "" {
			display = "-"
		}
		fmt.Fprintf(&b, "%s: %s (%s, conf %.2f)\n", name, display, state, r.Confidence)
	}
	return b.String()
}

func formatCards(slots []cards.CardResult) string {
	parts := make([]string, 0, len(slots))
	for _, c := range slots {
		switch {
		case !c.Present():
			parts = append(parts, "--")
		case c.IsUncertain:
			parts = append(parts, fmt.Sprintf("%s? (%.2f)", c.Label(), c.CombinedConfidence))
		default:
			parts = append(parts, fmt.Sprintf("%s (%.2f)", c.Label(), c.CombinedConfidence))
		}
	}
	return strings.Join(parts, "  ")
}
