package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCards(t *testing.T, ss ...string) []Card {
	t.Helper()
	out := make([]Card, len(ss))
	for i, s := range ss {
		c, err := ParseCard(s)
		require.NoError(t, err)
		out[i] = c
	}
	return out
}

func TestParseCardRoundTrip(t *testing.T) {
	for _, c := range FullDeck() {
		got, err := ParseCard(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	for _, bad := range []string{"", "A", "1s", "Ax", "Ts9"} {
		_, err := ParseCard(bad)
		assert.Error(t, err, bad)
	}
}

func TestCompare(t *testing.T) {
	b := mustCards(t, "Qs", "Js", "Ts", "3h", "4d")
	board := [5]Card(b)
	royal := [2]Card(mustCards(t, "As", "Ks"))
	junk := [2]Card(mustCards(t, "2c", "7d"))
	assert.Equal(t, 1, Compare(royal, junk, board))
	assert.Equal(t, -1, Compare(junk, royal, board))

	// board plays for both
	board = [5]Card(mustCards(t, "As", "Ks", "Qs", "Js", "Ts"))
	assert.Equal(t, 0, Compare([2]Card(mustCards(t, "2c", "3d")), [2]Card(mustCards(t, "2d", "3c")), board))
}

func TestHandFoldEndsImmediately(t *testing.T) {
	h := NewHand(7)
	done, _, err := h.Apply(Stay)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, h.ToAct)

	done, rewards, err := h.Apply(Fold)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, [Seats]float64{1, -1}, rewards)
}

func TestHandGoesToShowdownAfterEightStays(t *testing.T) {
	h := NewHand(11)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i%2, h.ToAct)
		assert.Len(t, h.View(0).Board, Street(i/2).boardSize())
		done, _, err := h.Apply(Stay)
		require.NoError(t, err)
		require.False(t, done, "move %d", i)
	}
	done, rewards, err := h.Apply(Stay)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Zero(t, rewards[0]+rewards[1])
	assert.Equal(t, float64(Compare(h.Hole[0], h.Hole[1], h.Board)), rewards[0])
}

func TestHandRejectsUnknownAction(t *testing.T) {
	h := NewHand(3)
	_, _, err := h.Apply(Action(9))
	assert.Error(t, err)
}

func TestViewHidesOpponentAndFutureCards(t *testing.T) {
	h := NewHand(5)
	_, _, _ = h.Apply(Stay)
	v := h.View(4)
	assert.Equal(t, 4, v.Slot)
	assert.Equal(t, 1, v.Seat)
	assert.Equal(t, h.Hole[1][:], v.Hole)
	assert.Empty(t, v.Board)
	assert.Equal(t, 1, v.History)
}

func TestWorldStepRedealsTerminatedSlots(t *testing.T) {
	w := NewWorld(6, 42, 3)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, w.Seats())

	tr, err := w.Step(context.Background(), []int{1, 3, 4}, []int{int(Fold), int(Stay), int(Fold)})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, tr.Terminal)
	assert.Equal(t, [Seats]float64{-1, 1}, tr.Rewards[0])
	assert.Equal(t, [Seats]float64{}, tr.Rewards[1])
	assert.Equal(t, []int{0, 0, 0, 1, 0, 0}, w.Seats())
	assert.Zero(t, w.View(1).History)
}

func TestWorldStepValidatesBeforeMutating(t *testing.T) {
	w := NewWorld(4, 1, 2)
	ctx := context.Background()

	_, err := w.Step(ctx, []int{0, 1}, []int{int(Stay), 5})
	assert.Error(t, err)
	_, err = w.Step(ctx, []int{0, 9}, []int{int(Stay), int(Stay)})
	assert.Error(t, err)
	_, err = w.Step(ctx, []int{0}, []int{int(Stay), int(Stay)})
	assert.Error(t, err)
	assert.Equal(t, []int{0, 0, 0, 0}, w.Seats())
}

func TestWorldIsDeterministicPerSeed(t *testing.T) {
	play := func() [][Seats]float64 {
		w := NewWorld(64, 99, 4)
		slots := make([]int, w.Len())
		acts := make([]int, w.Len())
		for i := range slots {
			slots[i] = i
		}
		var out [][Seats]float64
		for move := 0; move < 8; move++ {
			tr, err := w.Step(context.Background(), slots, acts)
			require.NoError(t, err)
			if move < 7 {
				assert.NotContains(t, tr.Terminal, true)
				continue
			}
			assert.NotContains(t, tr.Terminal, false)
			out = tr.Rewards
		}
		return out
	}
	assert.Equal(t, play(), play())
}
