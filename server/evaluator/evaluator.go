package evaluator

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"matchup-arena/server/results"
	"matchup-arena/server/tracker"
)

// Config describes one evaluation. Names fixes agent ordinals; Progress is
// the games already played per ordered pair (nil for a fresh run).
type Config struct {
	Names       []string
	Target      int
	Progress    *tracker.Progress
	MaxDispatch int
	Ceiling     int
	// Batches smaller than MinBatch count as low-utilization ticks.
	MinBatch int
	Selector tracker.Selector

	ReportEvery time.Duration
	OnReport    func(Report)

	Now    func() time.Time
	Logger *logrus.Entry
}

func (c *Config) defaults() {
	if c.MaxDispatch <= 0 {
		c.MaxDispatch = tracker.DefaultMaxDispatch
	}
	if c.Ceiling <= 0 {
		c.Ceiling = tracker.DefaultCeiling
	}
	if c.MinBatch <= 0 {
		c.MinBatch = c.MaxDispatch / 4
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
}

// Evaluator plays every matchup out of a shared slot pool. It is driven by a
// single goroutine; only Snapshot may be called from elsewhere.
type Evaluator struct {
	cfg     Config
	names   []string
	tracker *tracker.Tracker
	world   World
	agents  map[string]Agent
	stats   *stats
	log     *logrus.Entry

	start   time.Time
	steps   int
	moves   int
	lowUtil int

	latest atomic.Pointer[Report]
}

// New builds the tracker, checks that every name has an agent and then asks
// newWorld for a world sized to the pool.
func New(cfg Config, agents map[string]Agent, newWorld WorldFunc) (*Evaluator, error) {
	cfg.defaults()

	if err := matchAgents(cfg.Names, agents); err != nil {
		return nil, err
	}
	progress := tracker.ZeroProgress(cfg.Names)
	if cfg.Progress != nil {
		progress = *cfg.Progress
	}
	t, err := tracker.New(cfg.Target, progress, cfg.Names,
		tracker.WithMaxDispatch(cfg.MaxDispatch),
		tracker.WithCeiling(cfg.Ceiling),
		tracker.WithSelector(cfg.Selector),
		tracker.WithLogger(cfg.Logger.WithField("component", "tracker")),
	)
	if err != nil {
		return nil, err
	}
	w, err := newWorld(t.Len())
	if err != nil {
		return nil, err
	}

	e := &Evaluator{
		cfg:     cfg,
		names:   t.Names(),
		tracker: t,
		world:   w,
		agents:  agents,
		stats:   newStats(t),
		log:     cfg.Logger,
		start:   cfg.Now(),
	}
	e.publish()
	e.log.WithFields(logrus.Fields{
		"agents": len(e.names),
		"slots":  t.Len(),
		"target": cfg.Target,
	}).Info("evaluator ready")
	return e, nil
}

func matchAgents(names []string, agents map[string]Agent) error {
	for _, n := range names {
		if agents[n] == nil {
			return &tracker.ConfigError{Kind: tracker.ErrIndexMismatch, Detail: fmt.Sprintf("no agent for %q", n)}
		}
	}
	if len(agents) != len(names) {
		known := make(map[string]bool, len(names))
		for _, n := range names {
			known[n] = true
		}
		var extra []string
		for n := range agents {
			if !known[n] {
				extra = append(extra, n)
			}
		}
		sort.Strings(extra)
		return &tracker.ConfigError{Kind: tracker.ErrIndexMismatch, Detail: fmt.Sprintf("agents %v are not in the name list", extra)}
	}
	return nil
}

func (e *Evaluator) Finished() bool { return e.tracker.Finished() }

func (e *Evaluator) Tracker() *tracker.Tracker { return e.tracker }

// Step runs one tick and returns the matchups it finalized. Errors from the
// agent or the world are returned as-is and leave the tracker untouched.
func (e *Evaluator) Step(ctx context.Context) ([]results.Result, error) {
	if e.tracker.Finished() {
		return nil, nil
	}
	d, err := e.tracker.Suggest(e.world.Seats())
	if err != nil {
		return nil, err
	}

	start := e.cfg.Now()
	actions, err := e.agents[d.Agent].Act(ctx, d.Slots)
	if err != nil {
		return nil, err
	}
	if len(actions) != d.Size() {
		return nil, fmt.Errorf("agent %s returned %d actions for %d slots", d.Agent, len(actions), d.Size())
	}
	tr, err := e.world.Step(ctx, d.Slots, actions)
	if err != nil {
		return nil, err
	}
	end := e.cfg.Now()
	if err := tr.check(d.Size()); err != nil {
		return nil, err
	}

	if _, err := e.tracker.MarkTerminated(d, tr.Terminal); err != nil {
		return nil, err
	}

	perSlot := end.Sub(start).Seconds() / float64(d.Size())
	cells := e.stats.record(d.Pairs, tr, perSlot)

	e.steps++
	e.moves += d.Size()
	if d.Size() < e.cfg.MinBatch {
		e.lowUtil++
	}

	out := e.stats.finalize(cells, e.names)
	for _, r := range out {
		e.log.WithFields(logrus.Fields{
			"pair":  r.AgentA + "/" + r.AgentB,
			"games": r.Games,
			"wins":  r.SeatWins,
		}).Info("matchup finalized")
	}
	e.publish()
	return out, nil
}

// Run steps until every slot is finished, handing each tick's results to
// sink. ctx is only checked between ticks.
func (e *Evaluator) Run(ctx context.Context, sink results.Sink) error {
	last := e.cfg.Now()
	for !e.Finished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rs, err := e.Step(ctx)
		if err != nil {
			return err
		}
		if len(rs) > 0 && sink != nil {
			if err := sink.Emit(ctx, rs); err != nil {
				return fmt.Errorf("emit results: %w", err)
			}
		}
		if e.cfg.OnReport != nil && e.cfg.ReportEvery > 0 {
			if now := e.cfg.Now(); now.Sub(last) >= e.cfg.ReportEvery {
				e.cfg.OnReport(e.Report())
				last = now
			}
		}
	}
	if e.cfg.OnReport != nil {
		e.cfg.OnReport(e.Report())
	}
	return nil
}

func (e *Evaluator) publish() {
	r := e.Report()
	e.latest.Store(&r)
}

// Snapshot is the report published after the last completed tick.
func (e *Evaluator) Snapshot() Report {
	if r := e.latest.Load(); r != nil {
		return *r
	}
	return Report{}
}
