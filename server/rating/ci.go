package rating

import (
	"math"
	"math/rand"
	"sort"
)

// WilsonCI95 for a win rate where ties count half.
func WilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// BootstrapCI95 for the mean of vals using B resamples drawn from r.
func BootstrapCI95(vals []float64, B int, r *rand.Rand) (low, hi float64) {
	n := len(vals)
	if n == 0 || B <= 1 {
		return 0, 0
	}
	res := make([]float64, B)
	for b := 0; b < B; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += vals[r.Intn(n)]
		}
		res[b] = sum / float64(n)
	}
	sort.Float64s(res)
	return res[int(0.025*float64(B-1))], res[int(0.975*float64(B-1))]
}
