package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/recognition"
	"github.com/tablesight/tablesight/internal/textrec"
)

func card(rank, suit string) cards.CardResult {
	return cards.CardResult{Rank: rank, Suit: suit, CombinedConfidence: 0.9}
}

func uncertain(rank, suit string) cards.CardResult {
	c := card(rank, suit)
	c.IsUncertain = true
	c.CombinedConfidence = 0.3
	return c
}

func TestFromFrameAssemblesState(t *testing.T) {
	ts := time.Date(2025, 11, 3, 20, 15, 0, 0, time.UTC)
	frame := &recognition.Frame{
		Timestamp:  ts,
		Street:     recognition.StreetFlop,
		HeroCards:  [2]cards.CardResult{card("A", "h"), card("K", "d")},
		BoardCards: [5]cards.CardResult{card("7", "c"), card("8", "c"), card("9", "c")},
		TextResults: map[string]textrec.TextResult{
			"pot":     {IsValid: true, Value: textrec.NumValue(12.5)},
			"stack_1": {IsValid: true, Value: textrec.NumValue(842)},
			"stack_2": {Value: textrec.NumValue(99)}, // invalid, dropped
			"name_1":  {IsValid: true, Value: textrec.StrValue("villain42")},
		},
	}

	gs := FromFrame(frame)

	assert.Equal(t, ts, gs.Timestamp)
	assert.Equal(t, recognition.StreetFlop, gs.Street)
	assert.Equal(t, []Card{{RankAce, SuitHearts}, {RankKing, SuitDiamonds}}, gs.Hero)
	assert.Equal(t, []Card{{RankSeven, SuitClubs}, {RankEight, SuitClubs}, {RankNine, SuitClubs}}, gs.Board)
	assert.InDelta(t, 12.5, gs.Pot, 1e-9)
	assert.Equal(t, map[string]float64{"1": 842}, gs.Stacks)
	assert.Equal(t, map[string]string{"1": "villain42"}, gs.Names)
	assert.NotEmpty(t, gs.HandClass)
}

func TestFromFrameDropsUncertainCards(t *testing.T) {
	frame := &recognition.Frame{
		Street:     recognition.StreetFlop,
		HeroCards:  [2]cards.CardResult{card("A", "h"), card("K", "d")},
		BoardCards: [5]cards.CardResult{card("7", "c"), uncertain("8", "c"), card("9", "c")},
	}

	gs := FromFrame(frame)

	assert.Equal(t, []Card{{RankSeven, SuitClubs}, {RankNine, SuitClubs}}, gs.Board)
	assert.Empty(t, gs.HandClass, "two board cards are not enough to classify")
}

func TestFromFrameNeedsBothHoleCards(t *testing.T) {
	frame := &recognition.Frame{
		HeroCards:  [2]cards.CardResult{card("A", "h")},
		BoardCards: [5]cards.CardResult{card("7", "c"), card("8", "c"), card("9", "c")},
	}

	gs := FromFrame(frame)

	assert.Len(t, gs.Hero, 1)
	assert.Empty(t, gs.HandClass)
}

func TestFromFrameDuplicateCardMeansMisread(t *testing.T) {
	frame := &recognition.Frame{
		HeroCards:  [2]cards.CardResult{card("A", "h"), card("K", "d")},
		BoardCards: [5]cards.CardResult{card("A", "h"), card("8", "c"), card("9", "c")},
	}

	gs := FromFrame(frame)

	assert.Len(t, gs.Board, 3, "the board keeps what was recognized")
	assert.Empty(t, gs.HandClass, "a duplicated card cannot be classified")
}

func TestFromFrameNil(t *testing.T) {
	assert.Equal(t, GameState{}, FromFrame(nil))
}

func TestHandClassAcrossStreets(t *testing.T) {
	hero := []Card{{RankAce, SuitHearts}, {RankAce, SuitDiamonds}}
	flop := []Card{{RankSeven, SuitClubs}, {RankEight, SuitClubs}, {RankNine, SuitHearts}}
	turn := append(append([]Card{}, flop...), Card{RankKing, SuitDiamonds})
	river := append(append([]Card{}, turn...), Card{RankAce, SuitSpades})

	assert.Empty(t, handClass(hero, flop[:2]))
	assert.NotEmpty(t, handClass(hero, flop))
	assert.NotEmpty(t, handClass(hero, turn), "six cards classify via best five")
	assert.NotEmpty(t, handClass(hero, river))
}
