package results

import (
	"context"
	"sort"
	"sync"
)

// Result is one finalized matchup: AgentA played seat 0, AgentB seat 1.
type Result struct {
	AgentA   string  `json:"agent_a"`
	AgentB   string  `json:"agent_b"`
	SeatWins [2]int  `json:"seat_wins"`
	Draws    int     `json:"draws"`
	Moves    int     `json:"moves"`
	Games    int     `json:"games"`
	Seconds  float64 `json:"total_time"`
}

// ScoreA is AgentA's mean score, counting a draw as half a win.
func (r Result) ScoreA() float64 {
	if r.Games == 0 {
		return 0.5
	}
	return (float64(r.SeatWins[0]) + 0.5*float64(r.Draws)) / float64(r.Games)
}

// Sink consumes finalized results. Emit is called at most once per matchup
// per run, from the scheduling goroutine.
type Sink interface {
	Emit(ctx context.Context, rs []Result) error
}

type SinkFunc func(ctx context.Context, rs []Result) error

func (f SinkFunc) Emit(ctx context.Context, rs []Result) error { return f(ctx, rs) }

// Multi fans out to every sink, stopping at the first error.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, rs []Result) error {
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, rs); err != nil {
			return err
		}
	}
	return nil
}

// Collector keeps results in memory; safe for concurrent readers.
type Collector struct {
	mu  sync.RWMutex
	all []Result
}

func (c *Collector) Emit(_ context.Context, rs []Result) error {
	c.mu.Lock()
	c.all = append(c.all, rs...)
	c.mu.Unlock()
	return nil
}

func (c *Collector) Results() []Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Result(nil), c.all...)
}

func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.all)
}

// Merge sums records that share an ordered pair, e.g. from sharded runs,
// and returns them sorted by (AgentA, AgentB).
func Merge(parts ...[]Result) []Result {
	type key struct{ a, b string }
	acc := map[key]*Result{}
	for _, rs := range parts {
		for _, r := range rs {
			k := key{r.AgentA, r.AgentB}
			m, ok := acc[k]
			if !ok {
				cp := r
				acc[k] = &cp
				continue
			}
			m.SeatWins[0] += r.SeatWins[0]
			m.SeatWins[1] += r.SeatWins[1]
			m.Draws += r.Draws
			m.Moves += r.Moves
			m.Games += r.Games
			m.Seconds += r.Seconds
		}
	}
	out := make([]Result, 0, len(acc))
	for _, r := range acc {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AgentA != out[j].AgentA {
			return out[i].AgentA < out[j].AgentA
		}
		return out[i].AgentB < out[j].AgentB
	})
	return out
}
