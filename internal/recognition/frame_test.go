package recognition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/textrec"
)

func TestFrameSummary(t *testing.T) {
	f := &Frame{
		Street: StreetFlop,
		HeroCards: [2]cards.CardResult{
			{Rank: "A", Suit: "h", CombinedConfidence: 0.92},
			{Rank: "K", Suit: "d", CombinedConfidence: 0.45, IsUncertain: true},
		},
		BoardCards: [5]cards.CardResult{
			{Rank: "7", Suit: "c", CombinedConfidence: 0.88},
			{Rank: "8", Suit: "c", CombinedConfidence: 0.90},
			{Rank: "9", Suit: "c", CombinedConfidence: 0.91},
		},
		TextResults: map[string]textrec.TextResult{
			"pot":    {Text: "12.50", Confidence: 0.93, IsValid: true},
			"name_1": {Confidence: 0.20},
		},
	}

	want := "street: flop\n" +
		"hero:   Ah (0.92)  Kd? (0.45)\n" +
		"board:  7c (0.88)  8c (0.90)  9c (0.91)  --  --\n" +
		"name_1: - (invalid, conf 0.20)\n" +
		"pot: 12.50 (ok, conf 0.93)\n"
	assert.Equal(t, want, f.Summary())
}

func TestFrameSummaryEmpty(t *testing.T) {
	f := &Frame{Street: StreetPreflop}

	want := "street: preflop\n" +
		"hero:   --  --\n" +
		"board:  --  --  --  --  --\n"
	assert.Equal(t, want, f.Summary())
}
