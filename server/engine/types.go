package engine

// Seat 0 posts first and is the row agent of a slot's matchup; seat 1 is the
// column agent.
const Seats = 2

// Action is the one decision a seat makes on each street.
type Action int

const (
	Stay Action = iota
	Fold
)

func (a Action) String() string {
	switch a {
	case Stay:
		return "stay"
	case Fold:
		return "fold"
	}
	return "unknown"
}

// ParseAction accepts the names used on the wire.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "stay", "check", "call":
		return Stay, true
	case "fold":
		return Fold, true
	}
	return 0, false
}

type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

var streetNames = [...]string{"preflop", "flop", "turn", "river"}

func (s Street) String() string {
	if s < Preflop || s > River {
		return "showdown"
	}
	return streetNames[s]
}

// boardSize is the number of community cards visible on a street.
func (s Street) boardSize() int {
	switch s {
	case Preflop:
		return 0
	case Flop:
		return 3
	case Turn:
		return 4
	}
	return 5
}

type Card struct {
	Rank int
	Suit byte
} // e.g. "As" => rank 14, suit 's'

// View is what the seat due to move is allowed to see.
type View struct {
	Slot    int
	Seat    int
	Street  Street
	Hole    []Card
	Board   []Card
	History int
}
