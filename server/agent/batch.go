package agent

import (
	"context"

	"matchup-arena/server/engine"
)

// Viewer exposes the state of the slot's seat due to move.
type Viewer interface {
	View(slot int) engine.View
}

// Seated binds a policy to a world so it can be used as an evaluator agent.
type Seated struct {
	World  Viewer
	Policy Policy
}

func (s Seated) Act(ctx context.Context, slots []int) ([]int, error) {
	views := make([]engine.View, len(slots))
	for i, slot := range slots {
		views[i] = s.World.View(slot)
	}
	acts, err := s.Policy.Decide(ctx, views)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(acts))
	for i, a := range acts {
		out[i] = int(a)
	}
	return out, nil
}

// ViewerFunc lets a world that is built later be bound now.
type ViewerFunc func(slot int) engine.View

func (f ViewerFunc) View(slot int) engine.View { return f(slot) }
