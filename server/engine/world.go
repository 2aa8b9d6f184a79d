package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"matchup-arena/server/evaluator"
)

// World holds one Hand per slot of the tracker's pool. Slots handed to Step
// are distinct, so hands are stepped in parallel without locking.
type World struct {
	hands   []*Hand
	workers int
}

// NewWorld deals n hands with deck seeds drawn from seed.
func NewWorld(n int, seed uint64, workers int) *World {
	if workers < 1 {
		workers = 1
	}
	seeds := NewSeedStream(seed)
	w := &World{hands: make([]*Hand, n), workers: workers}
	for i := range w.hands {
		w.hands[i] = NewHand(seeds.Next())
	}
	return w
}

func (w *World) Len() int { return len(w.hands) }

func (w *World) Seats() []int {
	out := make([]int, len(w.hands))
	for i, h := range w.hands {
		out[i] = h.ToAct
	}
	return out
}

func (w *World) View(slot int) View { return w.hands[slot].View(slot) }

// Step validates the whole batch before touching any hand. Terminated hands
// are dealt again straight away.
func (w *World) Step(_ context.Context, slots []int, actions []int) (evaluator.Transition, error) {
	if len(slots) != len(actions) {
		return evaluator.Transition{}, fmt.Errorf("%d actions for %d slots", len(actions), len(slots))
	}
	for k, s := range slots {
		if s < 0 || s >= len(w.hands) {
			return evaluator.Transition{}, fmt.Errorf("slot %d out of range", s)
		}
		if a := Action(actions[k]); a != Stay && a != Fold {
			return evaluator.Transition{}, fmt.Errorf("slot %d: illegal action %d", s, actions[k])
		}
	}

	tr := evaluator.Transition{
		Terminal: make([]bool, len(slots)),
		Rewards:  make([][Seats]float64, len(slots)),
	}
	chunk := (len(slots) + w.workers - 1) / w.workers
	var g errgroup.Group
	g.SetLimit(w.workers)
	for lo := 0; lo < len(slots); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(slots))
		g.Go(func() error {
			for k := lo; k < hi; k++ {
				h := w.hands[slots[k]]
				done, rewards, err := h.Apply(Action(actions[k]))
				if err != nil {
					return fmt.Errorf("slot %d: %w", slots[k], err)
				}
				if done {
					tr.Terminal[k] = true
					tr.Rewards[k] = rewards
					h.Deal()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return evaluator.Transition{}, err
	}
	return tr, nil
}
