package rating

import "math"

// Elo keeps one rating per agent and applies matchups in order.
type Elo struct {
	Start   float64
	K       float64
	ratings map[string]float64
	updates map[string]int
}

func NewElo(start, k float64) *Elo {
	return &Elo{Start: start, K: k, ratings: map[string]float64{}, updates: map[string]int{}}
}

func (e *Elo) Rating(name string) float64 {
	if r, ok := e.ratings[name]; ok {
		return r
	}
	return e.Start
}

func expect(ra, rb float64) float64 { return 1.0 / (1.0 + math.Pow(10, (rb-ra)/400.0)) }

// Update applies a matchup where a scored sA over games. K grows with the
// square root of games and anneals slowly with each agent's update count.
func (e *Elo) Update(a, b string, sA float64, games int) (dA, dB float64) {
	if games <= 0 {
		return 0, 0
	}
	ra, rb := e.Rating(a), e.Rating(b)
	ea := expect(ra, rb)
	k := e.K * math.Sqrt(float64(games))
	dA = k * decay(e.updates[a]) * (sA - ea)
	dB = k * decay(e.updates[b]) * ((1 - sA) - (1 - ea))
	e.ratings[a] = ra + dA
	e.ratings[b] = rb + dB
	e.updates[a]++
	e.updates[b]++
	return dA, dB
}

func decay(n int) float64 {
	return 1.0 / (1.0 + 0.01*float64(n))
}
