package results

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink appends each result as JSON to a list and publishes it on a
// channel so dashboards on other hosts can follow a run.
type RedisSink struct {
	Client  *redis.Client
	List    string
	Channel string
}

// NewRedisSink connects using a redis:// URL. Keys are namespaced by run.
func NewRedisSink(ctx context.Context, url, run string) (*RedisSink, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisSink{
		Client:  c,
		List:    "arena:" + run + ":results",
		Channel: "arena:results",
	}, nil
}

func (s *RedisSink) Emit(ctx context.Context, rs []Result) error {
	if len(rs) == 0 {
		return nil
	}
	pipe := s.Client.TxPipeline()
	for _, r := range rs {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		pipe.RPush(ctx, s.List, b)
		if s.Channel != "" {
			pipe.Publish(ctx, s.Channel, b)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis emit: %w", err)
	}
	return nil
}

// Load reads back everything emitted to the list.
func (s *RedisSink) Load(ctx context.Context) ([]Result, error) {
	raw, err := s.Client.LRange(ctx, s.List, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(raw))
	for _, v := range raw {
		var r Result
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *RedisSink) Close() error { return s.Client.Close() }
