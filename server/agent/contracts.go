package agent

import (
	"fmt"

	"matchup-arena/server/engine"
)

// Observation is the JSON a remote policy sees for one slot.
type Observation struct {
	Slot       int      `json:"slot"`
	Seat       int      `json:"seat"`       // 0 acts first on every street
	Street     string   `json:"street"`     // preflop|flop|turn|river
	HoleCards  []string `json:"hole_cards"` // e.g. ["As","Kd"]
	Board      []string `json:"board"`      // 0, 3, 4 or 5 cards
	MadeHand   string   `json:"made_hand,omitempty"` // e.g. "two pair", on the flop and river
	Legal      []string `json:"legal_actions"`
	HistoryLen int      `json:"history_len"`
}

type ActionOut struct {
	Action  string `json:"action"`            // stay|fold
	Comment string `json:"comment,omitempty"` // <=120 chars
}

var legal = []string{engine.Stay.String(), engine.Fold.String()}

// BuildObservation converts a world view into the JSON we send the model.
func BuildObservation(v engine.View) Observation {
	o := Observation{
		Slot:       v.Slot,
		Seat:       v.Seat,
		Street:     v.Street.String(),
		HoleCards:  engine.CardStrings(v.Hole),
		Board:      engine.CardStrings(v.Board),
		Legal:      legal,
		HistoryLen: v.History,
	}
	// hand descriptions need five or seven cards
	if n := len(v.Hole) + len(v.Board); n == 5 || n == 7 {
		o.MadeHand = engine.Describe(append(append([]engine.Card{}, v.Hole...), v.Board...))
	}
	return o
}

// Validate maps the model's answer onto an engine action.
func Validate(o Observation, a ActionOut) (engine.Action, error) {
	act, ok := engine.ParseAction(a.Action)
	if !ok {
		return 0, fmt.Errorf("slot %d: illegal action %q (legals: %v)", o.Slot, a.Action, o.Legal)
	}
	return act, nil
}
