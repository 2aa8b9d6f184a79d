package store

import (
	"context"
	"embed"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matchup-arena/server/rating"
	"matchup-arena/server/results"
	"matchup-arena/server/tracker"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

// UpsertAgent records an agent and its policy kind and returns its id.
func (db *DB) UpsertAgent(ctx context.Context, name, kind string) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
        INSERT INTO agents(name, kind)
        VALUES ($1,$2)
        ON CONFLICT (name) DO UPDATE
          SET kind = EXCLUDED.kind
        RETURNING id
    `, name, strings.TrimSpace(kind)).Scan(&id)
	return id, err
}

// Run is one evaluation over a fixed agent list.
type Run struct {
	ID          uuid.UUID
	Target      int
	MaxDispatch int
	Seed        int64
	Agents      []string
}

// CreateRun inserts a run row, assigning an id when r.ID is zero.
func (db *DB) CreateRun(ctx context.Context, r Run) (uuid.UUID, error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := db.Exec(ctx, `
		INSERT INTO runs(id, target, max_dispatch, seed, agents)
		VALUES ($1,$2,$3,$4,$5)
	`, r.ID, r.Target, r.MaxDispatch, r.Seed, r.Agents)
	return r.ID, err
}

func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID) error {
	_, err := db.Exec(ctx, `UPDATE runs SET ended_at = now() WHERE id = $1`, runID)
	return err
}

// InsertResults writes one tick's finalized matchups for a shard atomically.
// A matchup already stored for the same run and shard is left as is.
func (db *DB) InsertResults(ctx context.Context, runID uuid.UUID, shard int, rs []results.Result) error {
	if len(rs) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // safe if already committed

	batch := &pgx.Batch{}
	for _, r := range rs {
		batch.Queue(`
            INSERT INTO matchup_results(
                run_id, shard, agent_a, agent_b,
                seat0_wins, seat1_wins, draws,
                moves, games, seconds
            ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
            ON CONFLICT (run_id, shard, agent_a, agent_b) DO NOTHING
        `, runID, shard, r.AgentA, r.AgentB,
			r.SeatWins[0], r.SeatWins[1], r.Draws,
			r.Moves, r.Games, r.Seconds)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Sink adapts the store to results.Sink for one shard of a run.
func (db *DB) Sink(runID uuid.UUID, shard int) results.Sink {
	return results.SinkFunc(func(ctx context.Context, rs []results.Result) error {
		return db.InsertResults(ctx, runID, shard, rs)
	})
}

// Results returns a run's finalized matchups ordered by pair, summed over
// shards.
func (db *DB) Results(ctx context.Context, runID uuid.UUID) ([]results.Result, error) {
	rows, err := db.Query(ctx, `
		SELECT agent_a, agent_b,
		       SUM(seat0_wins)::int, SUM(seat1_wins)::int, SUM(draws)::int,
		       SUM(moves)::int, SUM(games)::int, SUM(seconds)
		  FROM matchup_results
		 WHERE run_id = $1
		 GROUP BY agent_a, agent_b
		 ORDER BY agent_a, agent_b
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []results.Result
	for rows.Next() {
		var r results.Result
		if err := rows.Scan(&r.AgentA, &r.AgentB, &r.SeatWins[0], &r.SeatWins[1], &r.Draws, &r.Moves, &r.Games, &r.Seconds); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRun returns the most recently started run, or uuid.Nil when there
// is none.
func (db *DB) LatestRun(ctx context.Context) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.QueryRow(ctx, `SELECT id FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	return id, err
}

// LoadProgress sums the games stored for every ordered pair of names across
// all runs, capped at target, as a starting point for a resumed run. Pairs
// involving other agents are ignored.
func (db *DB) LoadProgress(ctx context.Context, names []string, target int) (tracker.Progress, error) {
	p := tracker.ZeroProgress(names)
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	rows, err := db.Query(ctx, `
		SELECT agent_a, agent_b, SUM(games)::int
		  FROM matchup_results
		 WHERE agent_a = ANY($1) AND agent_b = ANY($1)
		 GROUP BY agent_a, agent_b
	`, names)
	if err != nil {
		return tracker.Progress{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var a, b string
		var games int
		if err := rows.Scan(&a, &b, &games); err != nil {
			return tracker.Progress{}, err
		}
		i, okA := idx[a]
		j, okB := idx[b]
		if !okA || !okB || i == j {
			continue
		}
		p.Games[i][j] = min(games, target)
	}
	return p, rows.Err()
}

// SaveRatings stores a leaderboard snapshot for the run.
func (db *DB) SaveRatings(ctx context.Context, runID uuid.UUID, board []rating.Standing) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range board {
		if _, err := tx.Exec(ctx, `
			INSERT INTO agent_ratings(run_id, agent, elo, g_rating, g_rd, g_sigma, games, score)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (run_id, agent) DO UPDATE
			   SET elo = EXCLUDED.elo,
			       g_rating = EXCLUDED.g_rating,
			       g_rd = EXCLUDED.g_rd,
			       g_sigma = EXCLUDED.g_sigma,
			       games = EXCLUDED.games,
			       score = EXCLUDED.score,
			       updated_at = now()
		`, runID, s.Name, s.Elo, s.Glicko.Rating, s.Glicko.RD, s.Glicko.Volatility, s.Games, s.Score); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
