// Package state assembles recognition frames into typed game state:
// parsed cards, street, pot and stacks, and a best-hand classification.
package state

import (
	"fmt"
	"strings"
)

// Rank is a card rank, numbered the way hand evaluation expects:
// ace 1 through king 13.
type Rank byte

const (
	RankAce   Rank = 1
	RankTwo   Rank = 2
	RankThree Rank = 3
	RankFour  Rank = 4
	RankFive  Rank = 5
	RankSix   Rank = 6
	RankSeven Rank = 7
	RankEight Rank = 8
	RankNine  Rank = 9
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
)

// String returns the rank symbol ("A", "2".."10", "J", "Q", "K").
func (r Rank) String() string {
	switch r {
	case RankAce:
		return "A"
	case RankTen:
		return "10"
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	}
	if r >= RankTwo && r <= RankNine {
		return string('0' + byte(r))
	}
	return "?"
}

// Suit is a card suit, backed by its lowercase letter.
type Suit byte

const (
	SuitClubs    Suit = 'c'
	SuitDiamonds Suit = 'd'
	SuitHearts   Suit = 'h'
	SuitSpades   Suit = 's'
)

// String returns the suit letter ("c", "d", "h", "s").
func (s Suit) String() string {
	switch s {
	case SuitClubs, SuitDiamonds, SuitHearts, SuitSpades:
		return string(byte(s))
	}
	return "?"
}

// Card is one playing card.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// String returns the compact notation ("Ah", "10d").
func (c Card) String() string { return c.Rank.String() + c.Suit.String() }

// MarshalText renders the card in compact notation for JSON payloads.
func (c Card) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText parses compact notation.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

var rankSymbols = map[string]Rank{
	"A": RankAce, "2": RankTwo, "3": RankThree, "4": RankFour,
	"5": RankFive, "6": RankSix, "7": RankSeven, "8": RankEight,
	"9": RankNine, "10": RankTen, "T": RankTen, "J": RankJack,
	"Q": RankQueen, "K": RankKing,
}

// ParseCard parses compact card notation: a rank symbol ("A", "7",
// "10" or "T") followed by a suit letter. Case-insensitive.
func ParseCard(s string) (Card, error) {
	if len(s) < 2 {
		return Card{}, fmt.Errorf("card %q too short", s)
	}

	rank, ok := rankSymbols[strings.ToUpper(s[:len(s)-1])]
	if !ok {
		return Card{}, fmt.Errorf("card %q: unknown rank %q", s, s[:len(s)-1])
	}
	switch Suit(strings.ToLower(s)[len(s)-1]) {
	case SuitClubs:
		return Card{rank, SuitClubs}, nil
	case SuitDiamonds:
		return Card{rank, SuitDiamonds}, nil
	case SuitHearts:
		return Card{rank, SuitHearts}, nil
	case SuitSpades:
		return Card{rank, SuitSpades}, nil
	}
	return Card{}, fmt.Errorf("card %q: unknown suit %q", s, s[len(s)-1:])
}
