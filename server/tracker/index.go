package tracker

// Selector picks the agent to dispatch from per-agent due counts. It must
// return the index of a maximum; anything else falls back to FirstMax.
type Selector func(counts []int) int

// FirstMax breaks ties toward the lowest ordinal.
func FirstMax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

// LastMax breaks ties toward the highest ordinal.
func LastMax(counts []int) int {
	best := len(counts) - 1
	for i := len(counts) - 1; i >= 0; i-- {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return max(best, 0)
}

// liveIndices lays out residual[k] copies of pair k, row-major.
func liveIndices(residual []int, n, total int) []Pair {
	out := make([]Pair, 0, total)
	for k, r := range residual {
		p := Pair{A: int32(k / n), B: int32(k % n)}
		for ; r > 0; r-- {
			out = append(out, p)
		}
	}
	return out
}
