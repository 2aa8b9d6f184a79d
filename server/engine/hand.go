package engine

import (
	"fmt"
	"math/rand"
)

// Hand is one heads-up showdown game. On every street seat 0 then seat 1
// either stays or folds; a fold ends the hand and two stays on the river go to
// showdown.
type Hand struct {
	rng  *rand.Rand
	deck []Card

	Hole    [Seats][2]Card
	Board   [5]Card
	Street  Street
	ToAct   int
	History []Action
}

func NewHand(seed uint64) *Hand {
	h := &Hand{rng: rand.New(rand.NewSource(int64(seed))), deck: FullDeck()}
	h.Deal()
	return h
}

// Deal reshuffles and starts a new hand from preflop.
func (h *Hand) Deal() {
	Shuffle(h.deck, h.rng)
	h.Hole[0] = [2]Card{h.deck[0], h.deck[1]}
	h.Hole[1] = [2]Card{h.deck[2], h.deck[3]}
	copy(h.Board[:], h.deck[4:9])
	h.Street = Preflop
	h.ToAct = 0
	h.History = h.History[:0]
}

// Apply plays a for the seat to act. On a terminal move it returns the
// rewards per seat; the caller decides when to deal again.
func (h *Hand) Apply(a Action) (terminal bool, rewards [Seats]float64, err error) {
	if a != Stay && a != Fold {
		return false, rewards, fmt.Errorf("illegal action %d", a)
	}
	h.History = append(h.History, a)
	seat := h.ToAct
	if a == Fold {
		rewards[seat], rewards[1-seat] = -1, 1
		return true, rewards, nil
	}
	if seat == 0 {
		h.ToAct = 1
		return false, rewards, nil
	}
	h.ToAct = 0
	h.Street++
	if h.Street <= River {
		return false, rewards, nil
	}
	switch Compare(h.Hole[0], h.Hole[1], h.Board) {
	case 1:
		rewards[0], rewards[1] = 1, -1
	case -1:
		rewards[0], rewards[1] = -1, 1
	}
	return true, rewards, nil
}

func (h *Hand) View(slot int) View {
	hole := h.Hole[h.ToAct]
	return View{
		Slot:    slot,
		Seat:    h.ToAct,
		Street:  h.Street,
		Hole:    []Card{hole[0], hole[1]},
		Board:   append([]Card(nil), h.Board[:h.Street.boardSize()]...),
		History: len(h.History),
	}
}
