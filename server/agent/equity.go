package agent

import (
	"math/rand"

	"matchup-arena/server/engine"
)

// Equity estimates the chance hole wins against one random hand, ties
// counting half. On the river the villain combos are enumerated exactly;
// earlier streets run out samples random boards and villain hands.
func Equity(hole []engine.Card, board []engine.Card, samples int, r *rand.Rand) float64 {
	used := map[engine.Card]bool{}
	for _, c := range hole {
		used[c] = true
	}
	for _, c := range board {
		used[c] = true
	}
	avail := make([]engine.Card, 0, 52)
	for _, c := range engine.FullDeck() {
		if !used[c] {
			avail = append(avail, c)
		}
	}
	hero := [2]engine.Card{hole[0], hole[1]}

	if len(board) == 5 {
		b := [5]engine.Card(board)
		var total, win, tie int
		for i := 0; i < len(avail); i++ {
			for j := i + 1; j < len(avail); j++ {
				total++
				switch engine.Compare(hero, [2]engine.Card{avail[i], avail[j]}, b) {
				case 1:
					win++
				case 0:
					tie++
				}
			}
		}
		return (float64(win) + 0.5*float64(tie)) / float64(total)
	}

	if samples < 1 {
		samples = 1
	}
	need := 2 + 5 - len(board)
	var score float64
	for s := 0; s < samples; s++ {
		// partial Fisher-Yates: the first need cards are the draw
		for i := 0; i < need; i++ {
			j := i + r.Intn(len(avail)-i)
			avail[i], avail[j] = avail[j], avail[i]
		}
		var b [5]engine.Card
		copy(b[:], board)
		copy(b[len(board):], avail[2:need])
		switch engine.Compare(hero, [2]engine.Card{avail[0], avail[1]}, b) {
		case 1:
			score++
		case 0:
			score += 0.5
		}
	}
	return score / float64(samples)
}
