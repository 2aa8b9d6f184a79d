package evaluator

import "time"

// Report is a throughput / ETA summary. It never feeds back into scheduling.
type Report struct {
	Steps     int           `json:"steps"`
	Done      int           `json:"done"`
	Remaining int           `json:"remaining"`
	Live      int           `json:"live_slots"`
	Open      int           `json:"open_matchups"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	ETA       time.Duration `json:"eta_ns"`
	Forecast  time.Time     `json:"forecast"`

	MoveRate    float64 `json:"moves_per_sec"`
	GameRate    float64 `json:"games_per_sec"`
	MatchupRate float64 `json:"matchups_per_min"`
	MeanBatch   float64 `json:"mean_batch"`
	LowUtilRate float64 `json:"low_util_rate"`
	Ignored     int     `json:"ignored_updates"`
}

// Fraction of this run's games that are done.
func (r Report) Fraction() float64 {
	if r.Done+r.Remaining == 0 {
		return 1
	}
	return float64(r.Done) / float64(r.Done+r.Remaining)
}

func (e *Evaluator) Report() Report {
	now := e.cfg.Now()
	done, remaining := e.tracker.Progress()
	r := Report{
		Steps:     e.steps,
		Done:      done,
		Remaining: remaining,
		Live:      e.tracker.Live(),
		Open:      e.stats.open(),
		Elapsed:   now.Sub(e.start),
		Ignored:   e.stats.ignored,
	}
	secs := r.Elapsed.Seconds()
	if secs > 0 {
		r.MoveRate = float64(e.moves) / secs
		r.GameRate = float64(done) / secs
		if e.cfg.Target > 0 {
			r.MatchupRate = 60 * r.GameRate / float64(e.cfg.Target)
		}
	}
	if done > 0 {
		r.ETA = time.Duration(float64(r.Elapsed) / float64(done) * float64(remaining))
		r.Forecast = now.Add(r.ETA)
	}
	if e.steps > 0 {
		r.MeanBatch = float64(e.moves) / float64(e.steps)
		r.LowUtilRate = float64(e.lowUtil) / float64(e.steps)
	}
	return r
}
