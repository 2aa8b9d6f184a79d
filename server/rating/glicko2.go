package rating

import "math"

// --- Glicko-2 constants & helpers (paper values) ---
const (
	g2Scale = 173.7178          // rating scale between r<->mu
	q       = math.Ln10 / 400.0 // q = ln(10)/400
	pi2     = math.Pi * math.Pi

	// Tau constrains volatility change per period.
	Tau = 0.5
)

// Glicko2 holds the public 1500-scale values (not mu/phi).
type Glicko2 struct {
	Rating     float64 `json:"rating"`
	RD         float64 `json:"rd"`
	Volatility float64 `json:"volatility"`
}

func NewGlicko2() Glicko2 { return Glicko2{Rating: 1500, RD: 350, Volatility: 0.06} }

func toMuPhi(r, rd float64) (mu, phi float64)   { return (r - 1500.0) / g2Scale, rd / g2Scale }
func fromMuPhi(mu, phi float64) (r, rd float64) { return mu*g2Scale + 1500.0, phi * g2Scale }

func g(phi float64) float64 { return 1.0 / math.Sqrt(1.0+3.0*q*q*phi*phi/pi2) }
func gExp(mu, muj, phij float64) float64 {
	return 1.0 / (1.0 + math.Exp(-g(phij)*(mu-muj)))
}

// Outcome is one opponent's aggregate over a rating period. S is the mean
// score in [0,1] and Weight the number of games behind it.
type Outcome struct {
	Opp    Glicko2
	S      float64
	Weight float64
}

// Age applies the no-games step: RD grows with volatility.
func (a *Glicko2) Age() {
	mu, phi := toMuPhi(a.Rating, a.RD)
	a.Rating, a.RD = fromMuPhi(mu, math.Sqrt(phi*phi+a.Volatility*a.Volatility))
}

// Update is the Glicko-2 rating-period step. Opponents must carry their
// ratings as they were at the start of the period.
func (a *Glicko2) Update(outcomes []Outcome, tau float64) {
	if len(outcomes) == 0 {
		a.Age()
		return
	}
	muA, phiA := toMuPhi(a.Rating, a.RD)

	var sumG2E, sumGSE float64
	for _, o := range outcomes {
		w := o.Weight
		if w <= 0 {
			w = 1
		}
		muB, phiB := toMuPhi(o.Opp.Rating, o.Opp.RD)
		gB := g(phiB)
		e := gExp(muA, muB, phiB)
		sumG2E += w * gB * gB * e * (1.0 - e)
		sumGSE += w * gB * (o.S - e)
	}
	v := 1.0 / (q * q * sumG2E)
	delta := v * q * sumGSE

	newVol := a.Volatility
	if math.Abs(delta) >= 1e-12 {
		newVol = solveVolatility(a.Volatility, phiA, v, delta, tau)
	}
	phiStar := math.Sqrt(phiA*phiA + newVol*newVol)
	phiNew := 1.0 / math.Sqrt(1.0/(phiStar*phiStar)+1.0/v)
	muNew := muA + (phiNew*phiNew)*q*sumGSE

	a.Rating, a.RD = fromMuPhi(muNew, phiNew)
	a.Volatility = newVol
}

// solveVolatility finds sigma' with the Illinois iteration from the paper.
func solveVolatility(sigma, phi, v, delta, tau float64) float64 {
	a2 := math.Log(sigma * sigma)
	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (delta*delta - phi*phi - v - ex)
		den := 2.0 * (phi*phi + v + ex) * (phi*phi + v + ex)
		return num/den - (x-a2)/(tau*tau)
	}

	A := a2
	var B float64
	if delta*delta > phi*phi+v {
		B = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1.0
		for f(a2-k) < 0 && k < 1e6 {
			k *= 2.0
		}
		B = a2 - k
	}
	fA, fB := f(A), f(B)
	for it := 0; it < 60 && math.Abs(B-A) > 1e-6; it++ {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if math.IsNaN(fC) || math.IsInf(fC, 0) {
			break
		}
		if fC*fB < 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}
	return math.Exp(B / 2.0)
}
