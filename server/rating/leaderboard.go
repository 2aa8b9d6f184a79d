package rating

import (
	"math/rand"
	"sort"

	"matchup-arena/server/results"
)

// Standing is one agent's line in the leaderboard.
type Standing struct {
	Name     string  `json:"name"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	Draws    int     `json:"draws"`
	Losses   int     `json:"losses"`
	Score    float64 `json:"score"`
	WilsonLo float64 `json:"wilson_lo"`
	WilsonHi float64 `json:"wilson_hi"`
	MatchLo  float64 `json:"matchup_score_lo"`
	MatchHi  float64 `json:"matchup_score_hi"`
	Glicko   Glicko2 `json:"glicko2"`
	Elo      float64 `json:"elo"`
	Matchups int     `json:"matchups"`

	// per matchup, from this agent's side
	scores   []float64
	outcomes []Outcome
}

const bootstrapResamples = 1000

// Leaderboard rates every named agent over rs as one Glicko-2 period plus a
// sequential Elo pass, sorted by Glicko-2 rating. Agents with no finalized
// matchups keep their starting ratings.
func Leaderboard(rs []results.Result, names []string) []Standing {
	merged := results.Merge(rs)

	by := make(map[string]*Standing, len(names))
	order := make([]*Standing, 0, len(names))
	get := func(n string) *Standing {
		if s, ok := by[n]; ok {
			return s
		}
		s := &Standing{Name: n, Glicko: NewGlicko2()}
		by[n] = s
		order = append(order, s)
		return s
	}
	for _, n := range names {
		get(n)
	}

	start := map[string]Glicko2{}
	for _, r := range merged {
		a, b := get(r.AgentA), get(r.AgentB)
		start[a.Name], start[b.Name] = a.Glicko, b.Glicko
	}

	elo := NewElo(1500, 16)
	for _, r := range merged {
		if r.Games == 0 {
			continue
		}
		a, b := by[r.AgentA], by[r.AgentB]
		sA := r.ScoreA()

		a.Games += r.Games
		a.Wins += r.SeatWins[0]
		a.Losses += r.SeatWins[1]
		a.Draws += r.Draws
		b.Games += r.Games
		b.Wins += r.SeatWins[1]
		b.Losses += r.SeatWins[0]
		b.Draws += r.Draws
		a.Matchups++
		b.Matchups++

		a.scores = append(a.scores, sA)
		b.scores = append(b.scores, 1-sA)
		a.outcomes = append(a.outcomes, Outcome{Opp: start[b.Name], S: sA, Weight: float64(r.Games)})
		b.outcomes = append(b.outcomes, Outcome{Opp: start[a.Name], S: 1 - sA, Weight: float64(r.Games)})
		elo.Update(a.Name, b.Name, sA, r.Games)
	}

	rng := rand.New(rand.NewSource(1))
	out := make([]Standing, 0, len(order))
	for _, s := range order {
		if s.Games > 0 {
			s.Score = (float64(s.Wins) + 0.5*float64(s.Draws)) / float64(s.Games)
			s.Glicko.Update(s.outcomes, Tau)
		}
		s.WilsonLo, s.WilsonHi = WilsonCI95(s.Wins, s.Draws, s.Games)
		s.MatchLo, s.MatchHi = BootstrapCI95(s.scores, bootstrapResamples, rng)
		s.Elo = elo.Rating(s.Name)
		s.scores, s.outcomes = nil, nil
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Glicko.Rating != out[j].Glicko.Rating {
			return out[i].Glicko.Rating > out[j].Glicko.Rating
		}
		return out[i].Name < out[j].Name
	})
	return out
}
