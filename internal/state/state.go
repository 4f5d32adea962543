package state

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/paulhankin/poker"

	"github.com/tablesight/tablesight/internal/cards"
	"github.com/tablesight/tablesight/internal/recognition"
)

// GameState is one frame's recognition output as typed poker state.
// Only confidently recognized cards and valid text readings make it in.
type GameState struct {
	Timestamp time.Time          `json:"timestamp"`
	Street    recognition.Street `json:"street"`
	Hero      []Card             `json:"hero"`
	Board     []Card             `json:"board"`
	Pot       float64            `json:"pot"`
	Stacks    map[string]float64 `json:"stacks"`
	Names     map[string]string  `json:"names"`
	HandClass string             `json:"hand_class,omitempty"`
}

// FromFrame assembles game state from a recognition frame. Uncertain
// cards are dropped rather than guessed; text zones contribute by
// naming convention (pot, stack_<seat>, name_<seat>).
func FromFrame(f *recognition.Frame) GameState {
	if f == nil {
		return GameState{}
	}

	gs := GameState{
		Timestamp: f.Timestamp,
		Street:    f.Street,
		Stacks:    map[string]float64{},
		Names:     map[string]string{},
	}
	for _, r := range f.HeroCards {
		if c, ok := certainCard(r); ok {
			gs.Hero = append(gs.Hero, c)
		}
	}
	for _, r := range f.BoardCards {
		if c, ok := certainCard(r); ok {
			gs.Board = append(gs.Board, c)
		}
	}

	for zone, res := range f.TextResults {
		if !res.IsValid {
			continue
		}
		switch {
		case zone == "pot" && res.Value.IsNum:
			gs.Pot = res.Value.Num
		case strings.HasPrefix(zone, "stack_") && res.Value.IsNum:
			gs.Stacks[strings.TrimPrefix(zone, "stack_")] = res.Value.Num
		case strings.HasPrefix(zone, "name_") && !res.Value.IsNum:
			gs.Names[strings.TrimPrefix(zone, "name_")] = res.Value.Str
		}
	}

	gs.HandClass = handClass(gs.Hero, gs.Board)
	return gs
}

func certainCard(r cards.CardResult) (Card, bool) {
	if !r.Present() || r.IsUncertain {
		return Card{}, false
	}
	c, err := ParseCard(r.Label())
	if err != nil {
		return Card{}, false
	}
	return c, true
}

// handClass describes the best hand the hero and board cards make.
// It needs both hole cards and at least a flop; duplicate cards mean a
// misrecognition and yield no class.
func handClass(hero, board []Card) string {
	if len(hero) < 2 || len(board) < 3 {
		return ""
	}

	seen := map[Card]bool{}
	all := make([]poker.Card, 0, len(hero)+len(board))
	for _, c := range hero {
		all = appendPokerCard(all, c, seen)
	}
	for _, c := range board {
		all = appendPokerCard(all, c, seen)
	}
	if all == nil || len(all) != len(hero)+len(board) {
		return ""
	}

	desc, err := describeHand(all)
	if err != nil {
		slog.Debug("Hand classification failed", "error", err)
		return ""
	}
	return desc
}

func appendPokerCard(all []poker.Card, c Card, seen map[Card]bool) []poker.Card {
	if all == nil || seen[c] {
		return nil
	}
	seen[c] = true
	pc, err := toPokerCard(c)
	if err != nil {
		return nil
	}
	return append(all, pc)
}

func describeHand(all []poker.Card) (string, error) {
	if len(all) != 6 {
		return poker.Describe(all)
	}

	// The evaluator describes 5- and 7-card hands only; on the turn,
	// pick the best five of six.
	var best [5]poker.Card
	var bestScore int16
	for skip := range all {
		var hand [5]poker.Card
		n := 0
		for i, c := range all {
			if i == skip {
				continue
			}
			hand[n] = c
			n++
		}
		if score := poker.Eval5(&hand); skip == 0 || score > bestScore {
			bestScore = score
			best = hand
		}
	}
	return poker.Describe(best[:])
}

// toPokerCard converts to the evaluator's representation. Its suit
// numbering runs clubs, diamonds, hearts, spades.
func toPokerCard(c Card) (pc poker.Card, err error) {
	var s poker.Suit
	switch c.Suit {
	case SuitClubs:
		s = poker.Suit(0)
	case SuitDiamonds:
		s = poker.Suit(1)
	case SuitHearts:
		s = poker.Suit(2)
	case SuitSpades:
		s = poker.Suit(3)
	default:
		return pc, fmt.Errorf("card %s: no evaluator suit", c)
	}
	return poker.MakeCard(s, poker.Rank(c.Rank))
}
