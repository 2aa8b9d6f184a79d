package evaluator

import (
	"context"
	"fmt"

	"matchup-arena/server/tracker"
)

// World is the batched simulation. Slots are indices into the tracker's pool;
// the world owns every slot's game state.
type World interface {
	// Seats reports the seat due to move in every slot of the pool.
	Seats() []int
	// Step applies one action per slot and reports what happened to each.
	Step(ctx context.Context, slots []int, actions []int) (Transition, error)
}

// WorldFunc builds a world with n slots once the pool size is known.
type WorldFunc func(n int) (World, error)

// Agent chooses one action for each slot it is handed.
type Agent interface {
	Act(ctx context.Context, slots []int) ([]int, error)
}

type AgentFunc func(ctx context.Context, slots []int) ([]int, error)

func (f AgentFunc) Act(ctx context.Context, slots []int) ([]int, error) { return f(ctx, slots) }

// Transition is aligned with the slots passed to World.Step.
type Transition struct {
	Terminal []bool
	Rewards  [][tracker.Seats]float64
}

func (t Transition) check(n int) error {
	if len(t.Terminal) != n || len(t.Rewards) != n {
		return fmt.Errorf("world returned %d terminal flags and %d rewards for %d slots", len(t.Terminal), len(t.Rewards), n)
	}
	return nil
}
