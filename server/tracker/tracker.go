package tracker

import "github.com/sirupsen/logrus"

const (
	// Seats per game; seat 0 belongs to the pair's row agent, seat 1 to its column agent.
	Seats = 2

	DefaultMaxDispatch = 32 * 1024
	// More than ~100m slots runs the host out of memory.
	DefaultCeiling = 100 * 1024 * 1024
)

// Pair is an ordered matchup of agent ordinals. A plays seat 0, B plays seat 1.
type Pair struct{ A, B int32 }

// Owner returns the ordinal of the agent sitting in seat.
func (p Pair) Owner(seat int) (int, bool) {
	switch seat {
	case 0:
		return int(p.A), true
	case 1:
		return int(p.B), true
	}
	return 0, false
}

// Dispatch is one tick's batch: the live slots due for a single agent.
type Dispatch struct {
	Agent   string
	Ordinal int
	Mask    []bool // over every slot in the pool
	Slots   []int  // indices of set mask bits, ascending
	Pairs   []Pair // binding of each entry in Slots
}

func (d Dispatch) Size() int { return len(d.Slots) }

type Option func(*Tracker)

func WithMaxDispatch(n int) Option { return func(t *Tracker) { t.maxDispatch = n } }
func WithCeiling(n int) Option     { return func(t *Tracker) { t.ceiling = n } }

func WithSelector(s Selector) Option {
	return func(t *Tracker) {
		if s != nil {
			t.selector = s
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(t *Tracker) {
		if l != nil {
			t.log = l
		}
	}
}

// Tracker owns the fixed slot pool. Slot i is bound to slots[i] for life and
// is live until done[i] flips; terminated slots stay in place as tombstones.
type Tracker struct {
	names       []string
	target      int
	maxDispatch int
	ceiling     int
	selector    Selector
	log         *logrus.Entry

	games    []int // n*n; games in progress or completed
	gamesSum int
	initSum  int
	residual []int // n*n residual at construction
	slots    []Pair
	done     []bool
	live     int
}

// New builds the slot pool for names from the residual target - progress.
func New(target int, progress Progress, names []string, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		names:       append([]string(nil), names...),
		target:      target,
		maxDispatch: DefaultMaxDispatch,
		ceiling:     DefaultCeiling,
		selector:    FirstMax,
		log:         logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, o := range opts {
		o(t)
	}
	if target < 0 {
		return nil, configErr(ErrBadProgress, "target %d is negative", target)
	}
	if t.maxDispatch <= 0 {
		return nil, configErr(ErrBadProgress, "max dispatch %d must be positive", t.maxDispatch)
	}

	games, err := progress.reindex(t.names)
	if err != nil {
		return nil, err
	}
	n := len(t.names)
	for i := 0; i < n; i++ {
		games[i*n+i] = target
	}

	t.residual = make([]int, n*n)
	total := 0
	for k, g := range games {
		if g < 0 || g > target {
			return nil, configErr(ErrBadProgress, "games[%s][%s]=%d outside [0, %d]", t.names[k/n], t.names[k%n], g, target)
		}
		t.residual[k] = target - g
		total += t.residual[k]
	}
	if total > t.ceiling {
		return nil, configErr(ErrCapacityExceeded, "%d slots requested, ceiling is %d", total, t.ceiling)
	}

	t.games = games
	for _, g := range games {
		t.gamesSum += g
	}
	t.initSum = t.gamesSum
	t.slots = liveIndices(t.residual, n, total)
	t.done = make([]bool, total)
	t.live = total
	return t, nil
}

func (t *Tracker) debug() bool { return t.log.Logger.IsLevelEnabled(logrus.DebugLevel) }

// Suggest picks the agent with the most live slots due to move and returns
// up to maxDispatch of those slots, lowest index first. seats holds the
// seat due in every slot of the pool; entries of terminated slots are ignored.
// Suggest does not mutate the tracker.
func (t *Tracker) Suggest(seats []int) (Dispatch, error) {
	if t.live == 0 {
		return Dispatch{}, ErrFinished
	}
	if len(seats) != len(t.slots) {
		return Dispatch{}, consistencyErr(ErrBadSeats, -1, "got %d seats for %d slots", len(seats), len(t.slots))
	}

	counts := make([]int, len(t.names))
	for i, p := range t.slots {
		if t.done[i] {
			continue
		}
		owner, ok := p.Owner(seats[i])
		if !ok {
			return Dispatch{}, consistencyErr(ErrBadSeats, i, "seat %d out of range", seats[i])
		}
		counts[owner]++
	}

	pick := t.selector(counts)
	if pick < 0 || pick >= len(counts) || counts[pick] == 0 {
		pick = FirstMax(counts)
	}

	limit := min(counts[pick], t.maxDispatch)
	d := Dispatch{
		Agent:   t.names[pick],
		Ordinal: pick,
		Mask:    make([]bool, len(t.slots)),
		Slots:   make([]int, 0, limit),
		Pairs:   make([]Pair, 0, limit),
	}
	for i, p := range t.slots {
		if len(d.Slots) == limit {
			break
		}
		if t.done[i] {
			continue
		}
		if owner, _ := p.Owner(seats[i]); owner != pick {
			continue
		}
		d.Mask[i] = true
		d.Slots = append(d.Slots, i)
		d.Pairs = append(d.Pairs, p)
	}

	if t.debug() {
		t.log.WithFields(logrus.Fields{"agent": d.Agent, "due": counts[pick], "batch": len(d.Slots)}).
			Debugf("suggest slots=%v", d.Slots)
	}
	return d, nil
}

// MarkTerminated retires every dispatched slot whose terminal flag is set and
// returns their bindings. terminal is aligned with d.Slots. The dispatch is
// validated as a whole first: a stale or foreign dispatch is rejected with an
// InternalConsistencyError and nothing changes.
func (t *Tracker) MarkTerminated(d Dispatch, terminal []bool) ([]Pair, error) {
	if len(terminal) != len(d.Slots) {
		return nil, consistencyErr(ErrStaleDispatch, -1, "got %d terminal flags for %d dispatched slots", len(terminal), len(d.Slots))
	}
	if d.Mask != nil && len(d.Mask) != len(t.slots) {
		return nil, consistencyErr(ErrStaleDispatch, -1, "mask covers %d slots, pool has %d", len(d.Mask), len(t.slots))
	}
	prev := -1
	for _, s := range d.Slots {
		switch {
		case s < 0 || s >= len(t.slots):
			return nil, consistencyErr(ErrStaleDispatch, s, "out of range")
		case s <= prev:
			return nil, consistencyErr(ErrStaleDispatch, s, "slots not strictly ascending")
		case t.done[s]:
			return nil, consistencyErr(ErrStaleDispatch, s, "already terminated")
		case d.Mask != nil && !d.Mask[s]:
			return nil, consistencyErr(ErrStaleDispatch, s, "not set in mask")
		}
		prev = s
	}

	n := len(t.names)
	var out []Pair
	for k, s := range d.Slots {
		if !terminal[k] {
			continue
		}
		p := t.slots[s]
		t.done[s] = true
		t.live--
		t.games[int(p.A)*n+int(p.B)]++
		t.gamesSum++
		out = append(out, p)
	}

	if t.debug() && len(out) > 0 {
		t.log.WithField("terminated", len(out)).Debugf("marked terminated, %d live", t.live)
	}
	return out, nil
}

// Finished reports whether every slot has terminated.
func (t *Tracker) Finished() bool { return t.live == 0 }

// Progress returns games completed since construction and games still to play.
func (t *Tracker) Progress() (completed, remaining int) {
	n := len(t.names)
	return t.gamesSum - t.initSum, n*n*t.target - t.gamesSum
}

func (t *Tracker) Len() int         { return len(t.slots) }
func (t *Tracker) Live() int        { return t.live }
func (t *Tracker) Target() int      { return t.target }
func (t *Tracker) MaxDispatch() int { return t.maxDispatch }

func (t *Tracker) Binding(slot int) Pair { return t.slots[slot] }

func (t *Tracker) Terminated(slot int) bool { return t.done[slot] }

func (t *Tracker) Names() []string { return append([]string(nil), t.names...) }

// Residual is the number of slots bound to (a, b) at construction.
func (t *Tracker) Residual(a, b int) int { return t.residual[a*len(t.names)+b] }

// Snapshot returns the current progress matrix, suitable for rebuilding a
// tracker after a restart.
func (t *Tracker) Snapshot() Progress {
	n := len(t.names)
	p := ZeroProgress(t.names)
	for i := 0; i < n; i++ {
		copy(p.Games[i], t.games[i*n:(i+1)*n])
	}
	return p
}
