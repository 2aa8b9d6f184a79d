package evaluator

import (
	"sort"

	"matchup-arena/server/results"
	"matchup-arena/server/tracker"
)

// stats is a dense n*n accumulator keyed by pair cell a*n+b.
type stats struct {
	n       int
	wins    [tracker.Seats][]int
	draws   []int
	moves   []int
	games   []int
	seconds []float64
	quota   []int // games needed before the cell finalizes
	closed  []bool
	ignored int
}

func newStats(t *tracker.Tracker) *stats {
	n := len(t.Names())
	s := &stats{
		n:       n,
		draws:   make([]int, n*n),
		moves:   make([]int, n*n),
		games:   make([]int, n*n),
		seconds: make([]float64, n*n),
		quota:   make([]int, n*n),
		closed:  make([]bool, n*n),
	}
	for seat := range s.wins {
		s.wins[seat] = make([]int, n*n)
	}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			c := a*n + b
			s.quota[c] = t.Residual(a, b)
			// nothing left to play, so nothing to report
			s.closed[c] = s.quota[c] == 0
		}
	}
	return s
}

// scatterAdd adds val(k) into totals at cells[k]; negative cells are skipped.
func scatterAdd[T int | float64](totals []T, cells []int, val func(k int) T) {
	for k, c := range cells {
		if c >= 0 {
			totals[c] += val(k)
		}
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// record folds one tick into the accumulator and returns the open cells it touched.
func (s *stats) record(pairs []tracker.Pair, tr Transition, perSlot float64) []int {
	cells := make([]int, len(pairs))
	for k, p := range pairs {
		c := int(p.A)*s.n + int(p.B)
		if s.closed[c] {
			s.ignored++
			c = -1
		}
		cells[k] = c
	}

	won := func(k int) bool {
		for _, r := range tr.Rewards[k] {
			if r == 1 {
				return true
			}
		}
		return false
	}
	for seat := range s.wins {
		scatterAdd(s.wins[seat], cells, func(k int) int { return b2i(tr.Rewards[k][seat] == 1) })
	}
	scatterAdd(s.moves, cells, func(int) int { return 1 })
	scatterAdd(s.seconds, cells, func(int) float64 { return perSlot })
	scatterAdd(s.games, cells, func(k int) int { return b2i(tr.Terminal[k]) })
	scatterAdd(s.draws, cells, func(k int) int { return b2i(tr.Terminal[k] && !won(k)) })

	return cells
}

// finalize closes every touched cell that reached its quota and returns the
// records, ordered by cell.
func (s *stats) finalize(cells []int, names []string) []results.Result {
	seen := map[int]bool{}
	var ready []int
	for _, c := range cells {
		if c < 0 || seen[c] {
			continue
		}
		seen[c] = true
		if !s.closed[c] && s.games[c] >= s.quota[c] {
			ready = append(ready, c)
		}
	}
	if len(ready) == 0 {
		return nil
	}
	sort.Ints(ready)

	out := make([]results.Result, 0, len(ready))
	for _, c := range ready {
		out = append(out, results.Result{
			AgentA:   names[c/s.n],
			AgentB:   names[c%s.n],
			SeatWins: [2]int{s.wins[0][c], s.wins[1][c]},
			Draws:    s.draws[c],
			Moves:    s.moves[c],
			Games:    s.games[c],
			Seconds:  s.seconds[c],
		})
		s.closed[c] = true
	}
	return out
}

func (s *stats) open() int {
	n := 0
	for _, c := range s.closed {
		if !c {
			n++
		}
	}
	return n
}
