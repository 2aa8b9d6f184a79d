package engine

import (
	"fmt"
	"math/rand"
)

const ranks = "  23456789TJQKA"

func FullDeck() []Card {
	deck := make([]Card, 0, 52)
	for s := 0; s < 4; s++ {
		for rnk := 2; rnk <= 14; rnk++ {
			deck = append(deck, Card{Rank: rnk, Suit: "cdhs"[s]})
		}
	}
	return deck
}

// Shuffle deals a fresh deck in place using r.
func Shuffle(deck []Card, r *rand.Rand) {
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

func (c Card) String() string {
	if c.Rank < 2 || c.Rank > 14 {
		return "??"
	}
	return fmt.Sprintf("%c%c", ranks[c.Rank], c.Suit)
}

// ParseCard reads the two-character form produced by Card.String.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("bad card %q", s)
	}
	rank := 0
	for r := 2; r <= 14; r++ {
		if ranks[r] == s[0] {
			rank = r
		}
	}
	switch s[1] {
	case 'c', 'd', 'h', 's':
	default:
		rank = 0
	}
	if rank == 0 {
		return Card{}, fmt.Errorf("bad card %q", s)
	}
	return Card{Rank: rank, Suit: s[1]}, nil
}

func CardStrings(cs []Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

// SeedStream is a splitmix64 sequence; each slot draws its own deck seed from it.
type SeedStream struct{ state uint64 }

func NewSeedStream(base uint64) *SeedStream { return &SeedStream{state: base} }

func (s *SeedStream) Next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}
