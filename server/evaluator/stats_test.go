package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchup-arena/server/results"
	"matchup-arena/server/tracker"
)

func TestClosedMatchupIgnoresLateUpdates(t *testing.T) {
	names := []string{"a", "b"}
	tr, err := tracker.New(1, tracker.ZeroProgress(names), names)
	require.NoError(t, err)
	s := newStats(tr)
	assert.Equal(t, 2, s.open())

	ab := []tracker.Pair{{A: 0, B: 1}}
	win := Transition{Terminal: []bool{true}, Rewards: [][tracker.Seats]float64{{1, -1}}}

	cells := s.record(ab, win, 0.5)
	assert.Equal(t, []int{1}, cells)
	out := s.finalize(cells, names)
	require.Equal(t, []results.Result{
		{AgentA: "a", AgentB: "b", SeatWins: [2]int{1, 0}, Moves: 1, Games: 1, Seconds: 0.5},
	}, out)
	assert.Equal(t, 1, s.open())

	cells = s.record(ab, win, 0.5)
	assert.Equal(t, []int{-1}, cells)
	assert.Equal(t, 1, s.ignored)
	assert.Equal(t, 1, s.games[1])
	assert.Equal(t, 1, s.wins[0][1])
	assert.Equal(t, 1, s.moves[1])
	assert.Equal(t, 0.5, s.seconds[1])
	assert.Nil(t, s.finalize(cells, names))
	assert.Equal(t, 1, s.open())
}

func TestZeroResidualStartsClosed(t *testing.T) {
	names := []string{"a", "b"}
	done := tracker.ZeroProgress(names)
	done.Games[0][1] = 2
	tr, err := tracker.New(2, done, names)
	require.NoError(t, err)
	s := newStats(tr)

	assert.Equal(t, 1, s.open())
	cells := s.record([]tracker.Pair{{A: 0, B: 1}}, Transition{Terminal: []bool{false}, Rewards: make([][tracker.Seats]float64, 1)}, 0)
	assert.Equal(t, []int{-1}, cells)
	assert.Equal(t, 1, s.ignored)
}
