package agent

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchup-arena/server/engine"
)

func cards(t *testing.T, ss ...string) []engine.Card {
	t.Helper()
	out := make([]engine.Card, len(ss))
	for i, s := range ss {
		c, err := engine.ParseCard(s)
		require.NoError(t, err)
		out[i] = c
	}
	return out
}

func TestEquityExactOnRiver(t *testing.T) {
	board := cards(t, "As", "Ks", "Qs", "Js", "Ts")
	// the board is a royal flush, every hand ties
	eq := Equity(cards(t, "2c", "3d"), board, 0, nil)
	assert.InDelta(t, 0.5, eq, 1e-9)

	eq = Equity(cards(t, "Ah", "Ad"), cards(t, "Ac", "Kd", "7h", "7s", "2c"), 0, nil)
	assert.Greater(t, eq, 0.99)
}

func TestEquityPreflopSamples(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	aces := Equity(cards(t, "Ah", "Ad"), nil, 2000, r)
	trash := Equity(cards(t, "7c", "2d"), nil, 2000, r)
	assert.InDelta(t, 0.85, aces, 0.05)
	assert.Less(t, trash, 0.45)
}

func TestParseSpecs(t *testing.T) {
	specs, err := ParseSpecs(" a=caller, b=random:0.25 ,c=remote:gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, []Spec{
		{Name: "a", Kind: "caller"},
		{Name: "b", Kind: "random", Arg: "0.25"},
		{Name: "c", Kind: "remote", Arg: "gpt-4o-mini"},
	}, specs)
	assert.Equal(t, "b=random:0.25", specs[1].String())

	for _, bad := range []string{"", "a", "=caller", "a=caller,a=random"} {
		_, err := ParseSpecs(bad)
		assert.Error(t, err, bad)
	}
}

func TestBuild(t *testing.T) {
	for _, s := range []Spec{{Name: "a", Kind: "caller"}, {Name: "b", Kind: "random"}, {Name: "c", Kind: "equity", Arg: "0.6"}} {
		p, err := Build(s, 1, nil)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
	for _, s := range []Spec{
		{Name: "a", Kind: "random", Arg: "2"},
		{Name: "b", Kind: "remote", Arg: "m"},
		{Name: "c", Kind: "bluffer"},
	} {
		_, err := Build(s, 1, nil)
		assert.Error(t, err, s.String())
	}
}

func TestRandomPolicyExtremes(t *testing.T) {
	views := make([]engine.View, 50)
	acts, err := Random(0, 3).Decide(context.Background(), views)
	require.NoError(t, err)
	assert.NotContains(t, acts, engine.Fold)

	acts, err = Random(1, 3).Decide(context.Background(), views)
	require.NoError(t, err)
	assert.NotContains(t, acts, engine.Stay)
}

type fakeRemote struct {
	got   []Observation
	reply []ActionOut
	err   error
}

func (f *fakeRemote) Act(_ context.Context, _, _ string, obs []Observation) ([]ActionOut, error) {
	f.got = obs
	return f.reply, f.err
}

func TestSeatedRemoteAgent(t *testing.T) {
	w := engine.NewWorld(3, 8, 1)
	remote := &fakeRemote{reply: []ActionOut{{Action: "fold"}, {Action: "call"}}}
	a := Seated{World: w, Policy: RemotePolicy(remote, "bot", "m")}

	acts, err := a.Act(context.Background(), []int{0, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{int(engine.Fold), int(engine.Stay)}, acts)
	require.Len(t, remote.got, 2)
	assert.Equal(t, 2, remote.got[1].Slot)
	assert.Equal(t, "preflop", remote.got[0].Street)
	assert.Len(t, remote.got[0].HoleCards, 2)
	assert.Empty(t, remote.got[0].Board)

	remote.reply = []ActionOut{{Action: "raise"}, {Action: "stay"}}
	_, err = a.Act(context.Background(), []int{0, 2})
	assert.ErrorContains(t, err, "illegal action")

	remote.reply = remote.reply[:1]
	_, err = a.Act(context.Background(), []int{0, 2})
	assert.Error(t, err)

	boom := errors.New("down")
	remote.err = boom
	_, err = a.Act(context.Background(), []int{0})
	assert.ErrorIs(t, err, boom)
}

func TestViewerFuncBindsLate(t *testing.T) {
	var w *engine.World
	a := Seated{World: ViewerFunc(func(s int) engine.View { return w.View(s) }), Policy: Caller()}
	w = engine.NewWorld(2, 1, 1)
	acts, err := a.Act(context.Background(), []int{1})
	require.NoError(t, err)
	assert.Equal(t, []int{int(engine.Stay)}, acts)
}

func TestBuildObservationDescribesMadeHand(t *testing.T) {
	v := engine.View{Slot: 3, Seat: 1, Street: engine.Flop, Hole: cards(t, "Ah", "Ad"), Board: cards(t, "Ac", "7d", "2s"), History: 3}
	o := BuildObservation(v)
	assert.Equal(t, "flop", o.Street)
	assert.Equal(t, []string{"Ah", "Ad"}, o.HoleCards)
	assert.Equal(t, []string{"stay", "fold"}, o.Legal)
	assert.NotEmpty(t, o.MadeHand)

	v.Street, v.Board = engine.Preflop, nil
	assert.Empty(t, BuildObservation(v).MadeHand)
}
