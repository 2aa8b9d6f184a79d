package agent

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"matchup-arena/server/engine"
)

// Policy decides a whole batch of views at once.
type Policy interface {
	Decide(ctx context.Context, views []engine.View) ([]engine.Action, error)
}

// PerView lifts a one-view rule into a Policy.
type PerView func(v engine.View) engine.Action

func (f PerView) Decide(_ context.Context, views []engine.View) ([]engine.Action, error) {
	out := make([]engine.Action, len(views))
	for i, v := range views {
		out[i] = f(v)
	}
	return out, nil
}

// Caller never folds.
func Caller() Policy {
	return PerView(func(engine.View) engine.Action { return engine.Stay })
}

// Random folds with probability p.
func Random(p float64, seed int64) Policy {
	r := rand.New(rand.NewSource(seed))
	return PerView(func(engine.View) engine.Action {
		if r.Float64() < p {
			return engine.Fold
		}
		return engine.Stay
	})
}

// EquitySamples is the Monte Carlo budget before the river.
const EquitySamples = 200

// EquityThreshold stays while estimated equity is at least threshold.
func EquityThreshold(threshold float64, seed int64) Policy {
	r := rand.New(rand.NewSource(seed))
	return PerView(func(v engine.View) engine.Action {
		if Equity(v.Hole, v.Board, EquitySamples, r) >= threshold {
			return engine.Stay
		}
		return engine.Fold
	})
}

// Remote is a batch inference backend.
type Remote interface {
	Act(ctx context.Context, agent, model string, obs []Observation) ([]ActionOut, error)
}

type remotePolicy struct {
	client Remote
	agent  string
	model  string
}

// RemotePolicy sends every view of a batch in one call.
func RemotePolicy(client Remote, agent, model string) Policy {
	return &remotePolicy{client: client, agent: agent, model: model}
}

func (p *remotePolicy) Decide(ctx context.Context, views []engine.View) ([]engine.Action, error) {
	obs := make([]Observation, len(views))
	for i, v := range views {
		obs[i] = BuildObservation(v)
	}
	outs, err := p.client.Act(ctx, p.agent, p.model, obs)
	if err != nil {
		return nil, err
	}
	if len(outs) != len(obs) {
		return nil, fmt.Errorf("%s: %d actions for %d observations", p.agent, len(outs), len(obs))
	}
	acts := make([]engine.Action, len(outs))
	for i, o := range outs {
		if acts[i], err = Validate(obs[i], o); err != nil {
			return nil, fmt.Errorf("%s: %w", p.agent, err)
		}
	}
	return acts, nil
}

// Spec is one entry of an agent list such as "tight=equity:0.55".
type Spec struct {
	Name string
	Kind string
	Arg  string
}

func (s Spec) String() string {
	if s.Arg == "" {
		return s.Name + "=" + s.Kind
	}
	return s.Name + "=" + s.Kind + ":" + s.Arg
}

// ParseSpecs reads a comma separated agent list.
func ParseSpecs(list string) ([]Spec, error) {
	var out []Spec
	seen := map[string]bool{}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, def, ok := strings.Cut(item, "=")
		if !ok || name == "" || def == "" {
			return nil, fmt.Errorf("agent %q: want name=kind[:arg]", item)
		}
		if seen[name] {
			return nil, fmt.Errorf("agent %q listed twice", name)
		}
		seen[name] = true
		kind, arg, _ := strings.Cut(def, ":")
		out = append(out, Spec{Name: name, Kind: kind, Arg: arg})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no agents configured")
	}
	return out, nil
}

// Build turns a spec into a policy. remote may be nil when no spec needs it.
func Build(s Spec, seed int64, remote Remote) (Policy, error) {
	prob := func(def float64) (float64, error) {
		if s.Arg == "" {
			return def, nil
		}
		p, err := strconv.ParseFloat(s.Arg, 64)
		if err != nil || p < 0 || p > 1 {
			return 0, fmt.Errorf("agent %s: %q is not a probability", s.Name, s.Arg)
		}
		return p, nil
	}
	switch s.Kind {
	case "caller":
		return Caller(), nil
	case "random":
		p, err := prob(0.5)
		if err != nil {
			return nil, err
		}
		return Random(p, seed), nil
	case "equity":
		p, err := prob(0.5)
		if err != nil {
			return nil, err
		}
		return EquityThreshold(p, seed), nil
	case "remote":
		if remote == nil {
			return nil, fmt.Errorf("agent %s: no inference backend configured", s.Name)
		}
		if s.Arg == "" {
			return nil, fmt.Errorf("agent %s: remote needs a model", s.Name)
		}
		return RemotePolicy(remote, s.Name, s.Arg), nil
	}
	return nil, fmt.Errorf("agent %s: unknown kind %q", s.Name, s.Kind)
}
