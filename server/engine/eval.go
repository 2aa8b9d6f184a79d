package engine

import (
	poker "github.com/paulhankin/poker"
)

// Convert our engine.Card -> library card.
func toPH(c Card) poker.Card {
	var s poker.Suit
	switch c.Suit {
	case 'c':
		s = poker.Club
	case 'd':
		s = poker.Diamond
	case 'h':
		s = poker.Heart
	default:
		s = poker.Spade
	}
	// Our ranks: 2..14 (Ace=14). Library: 1..13 (Ace=1).
	r := poker.Rank(c.Rank)
	if c.Rank == 14 {
		r = poker.Rank(1)
	}
	card, _ := poker.MakeCard(s, r)
	return card
}

// Score7 ranks two hole cards plus a full board. Higher is stronger.
func Score7(hole [2]Card, board [5]Card) int16 {
	var a7 [7]poker.Card
	a7[0], a7[1] = toPH(hole[0]), toPH(hole[1])
	for i, c := range board {
		a7[2+i] = toPH(c)
	}
	return poker.Eval7(&a7)
}

// Compare returns +1 if a beats b at showdown, -1 if b wins and 0 on a tie.
func Compare(a, b [2]Card, board [5]Card) int {
	sa, sb := Score7(a, board), Score7(b, board)
	switch {
	case sa > sb:
		return 1
	case sa < sb:
		return -1
	}
	return 0
}

// Describe names the best five-card hand in cards, e.g. "two pair".
func Describe(cards []Card) string {
	pcs := make([]poker.Card, len(cards))
	for i, c := range cards {
		pcs[i] = toPH(c)
	}
	d, err := poker.Describe(pcs)
	if err != nil {
		return ""
	}
	return d
}
