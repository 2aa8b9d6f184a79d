package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"matchup-arena/server/agent"
	"matchup-arena/server/engine"
	"matchup-arena/server/evaluator"
	"matchup-arena/server/rating"
	"matchup-arena/server/remote"
	"matchup-arena/server/results"
	"matchup-arena/server/store"
	"matchup-arena/server/tracker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.SetLevel(cfg.LogLevel)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: !cfg.UseColor})
	log := logrus.WithField("app", "arena")

	var migrate, serve, resume bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--serve":
			serve = true
		case "--resume":
			resume = true
		default:
			log.Fatalf("unknown flag %s (want --migrate, --serve or --resume)", a)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	var db *store.DB
	if cfg.DatabaseURL != "" {
		db, err = store.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close(context.Background())
		if migrate || cfg.AutoMigrate {
			if err := store.Migrate(ctx, db); err != nil {
				log.Fatalf("migrate: %v", err)
			}
			log.Info("migrated")
		}
	}
	if migrate {
		if db == nil {
			log.Fatal("--migrate needs DATABASE_URL")
		}
		return
	}

	if serve {
		if db == nil {
			log.Fatal("--serve needs DATABASE_URL")
		}
		if err := serveStored(ctx, cfg, db, log); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := run(ctx, cfg, db, resume, log); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("stopped before every matchup finished")
			return
		}
		log.Fatal(err)
	}
}

// serveStored exposes the latest stored run over HTTP until ctx is done.
func serveStored(ctx context.Context, cfg config, db *store.DB, log *logrus.Entry) error {
	a := &api{
		results: func(ctx context.Context) ([]results.Result, error) {
			id, err := db.LatestRun(ctx)
			if err != nil || id == uuid.Nil {
				return nil, err
			}
			return db.Results(ctx, id)
		},
	}
	return listen(ctx, cfg.Port, Router(a), log)
}

func listen(ctx context.Context, port string, h http.Handler, log *logrus.Entry) error {
	srv := &http.Server{Addr: ":" + port, Handler: h, ReadTimeout: 15 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	log.Infof("listening on http://localhost:%s (Ctrl+C to stop)", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// shard is one independent evaluator over a slice of the residual.
type shard struct {
	label string
	ev    *evaluator.Evaluator
}

func run(ctx context.Context, cfg config, db *store.DB, resume bool, log *logrus.Entry) error {
	specs, err := agent.ParseSpecs(cfg.Agents)
	if err != nil {
		return err
	}
	names := make([]string, len(specs))
	var backend agent.Remote
	for i, s := range specs {
		names[i] = s.Name
		if s.Kind == "remote" && backend == nil {
			rc, err := remote.ConfigFromEnv()
			if err != nil {
				return err
			}
			backend = remote.New(rc, log.WithField("component", "remote"))
		}
	}

	progress := tracker.ZeroProgress(names)
	if resume {
		if db == nil {
			return errors.New("--resume needs DATABASE_URL")
		}
		if progress, err = db.LoadProgress(ctx, names, cfg.Target); err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
	}

	runID := uuid.New()
	log = log.WithField("run", runID.String())
	con := newConsole(os.Stdout, cfg.UseColor)
	collector := &results.Collector{}
	stream := newHub(64, log.WithField("component", "stream"))
	sinks := results.Multi{collector, stream}

	if db != nil {
		if _, err := db.CreateRun(ctx, store.Run{ID: runID, Target: cfg.Target, MaxDispatch: cfg.MaxDispatch, Seed: int64(cfg.Seed), Agents: names}); err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		for _, s := range specs {
			if _, err := db.UpsertAgent(ctx, s.Name, s.Kind); err != nil {
				return fmt.Errorf("upsert agent %s: %w", s.Name, err)
			}
		}
	}
	if cfg.RedisURL != "" {
		rs, err := results.NewRedisSink(ctx, cfg.RedisURL, runID.String())
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rs.Close()
		sinks = append(sinks, rs)
	}

	parts, err := tracker.Split(cfg.Target, progress, cfg.Shards)
	if err != nil {
		return err
	}
	seeds := engine.NewSeedStream(cfg.Seed)
	shards := make([]shard, len(parts))
	shardSinks := make([]results.Sink, len(parts))
	for i := range parts {
		if db == nil {
			shardSinks[i] = sinks
			continue
		}
		// each shard finalizes its own record for every pair
		shardSinks[i] = append(results.Multi{db.Sink(runID, i)}, sinks...)
	}
	for i := range parts {
		label := fmt.Sprintf("shard %d/%d", i+1, len(parts))
		if shards[i].ev, err = newShard(cfg, specs, &parts[i], seeds.Next(), backend, con, label, log.WithField("shard", i)); err != nil {
			return err
		}
		shards[i].label = label
	}

	a := &api{
		names: names,
		progress: func() []evaluator.Report {
			out := make([]evaluator.Report, len(shards))
			for i, s := range shards {
				out[i] = s.ev.Snapshot()
			}
			return out
		},
		results: func(context.Context) ([]results.Result, error) { return collector.Results(), nil },
		stream:  stream,
	}
	hctx, stopHTTP := context.WithCancel(ctx)
	defer stopHTTP()
	go func() {
		if err := listen(hctx, cfg.Port, Router(a), log); err != nil {
			log.WithError(err).Warn("status server stopped")
		}
	}()

	con.section(fmt.Sprintf("%d agents, %d games per matchup, %d shard(s)", len(names), cfg.Target, len(shards)))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range shards {
		i, s := i, s
		g.Go(func() error { return s.ev.Run(gctx, shardSinks[i]) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	board := rating.Leaderboard(collector.Results(), names)
	con.leaderboard(board)
	if db != nil {
		if err := db.SaveRatings(ctx, runID, board); err != nil {
			return fmt.Errorf("save ratings: %w", err)
		}
		if err := db.CompleteRun(ctx, runID); err != nil {
			return fmt.Errorf("complete run: %w", err)
		}
	}
	log.WithField("matchups", collector.Len()).Info("run complete")
	return nil
}

// newShard builds fresh policies and a fresh world for one slice of the
// residual so shards share no mutable state.
func newShard(cfg config, specs []agent.Spec, progress *tracker.Progress, seed uint64, backend agent.Remote, con *console, label string, log *logrus.Entry) (*evaluator.Evaluator, error) {
	var world *engine.World
	view := agent.ViewerFunc(func(slot int) engine.View { return world.View(slot) })

	agents := make(map[string]evaluator.Agent, len(specs))
	policySeeds := engine.NewSeedStream(seed)
	for _, s := range specs {
		p, err := agent.Build(s, int64(policySeeds.Next()), backend)
		if err != nil {
			return nil, err
		}
		agents[s.Name] = agent.Seated{World: view, Policy: p}
	}
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}

	return evaluator.New(evaluator.Config{
		Names:       names,
		Target:      cfg.Target,
		Progress:    progress,
		MaxDispatch: cfg.MaxDispatch,
		Ceiling:     cfg.Ceiling,
		MinBatch:    cfg.MinBatch,
		ReportEvery: cfg.ReportEvery,
		OnReport:    func(r evaluator.Report) { con.report(label, r) },
		Logger:      log,
	}, agents, func(n int) (evaluator.World, error) {
		world = engine.NewWorld(n, seed, cfg.Workers)
		return world, nil
	})
}

func watchSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	logrus.Warn("interrupt received, stopping after the current tick")
	cancel()
}
