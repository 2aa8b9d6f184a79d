package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"matchup-arena/server/agent"
)

// Client posts whole dispatches to {base}/act and reads one action per
// observation back.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logrus.Entry
}

func New(cfg Config, log *logrus.Entry) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, log: log}
}

type actRequest struct {
	Agent        string              `json:"agent"`
	Model        string              `json:"model"`
	Observations []agent.Observation `json:"observations"`
}

type actResponse struct {
	Actions []agent.ActionOut `json:"actions"`
}

// Act satisfies agent.Remote.
func (c *Client) Act(ctx context.Context, name, model string, obs []agent.Observation) ([]agent.ActionOut, error) {
	b, err := json.Marshal(actRequest{Agent: name, Model: model, Observations: obs})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/act", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		setHeaderPreserveCase(req.Header, c.cfg.HeaderName, c.cfg.HeaderPrefix+c.cfg.APIKey)
	}
	for k, v := range c.cfg.ExtraHeaders {
		setHeaderPreserveCase(req.Header, k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	body := buf.Bytes()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("inference http %d: %s", resp.StatusCode, truncate(string(body), 800))
	}

	var out actResponse
	if err := json.Unmarshal(body, &out); err != nil {
		cleaned := extractJSONObject(string(body))
		if cleaned == "" {
			return nil, err
		}
		if err2 := json.Unmarshal([]byte(cleaned), &out); err2 != nil {
			return nil, err
		}
	}
	if len(out.Actions) != len(obs) {
		return nil, fmt.Errorf("inference returned %d actions for %d observations", len(out.Actions), len(obs))
	}
	for i := range out.Actions {
		out.Actions[i].Action = strings.ToLower(strings.TrimSpace(out.Actions[i].Action))
		if len(out.Actions[i].Comment) > 120 {
			out.Actions[i].Comment = out.Actions[i].Comment[:120]
		}
	}
	c.log.WithFields(logrus.Fields{"agent": name, "model": model, "batch": len(obs)}).Debug("remote batch answered")
	return out.Actions, nil
}

// setHeaderPreserveCase keeps non-canonical names such as HTTP-Referer as given.
func setHeaderPreserveCase(h http.Header, key, value string) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	if canon := http.CanonicalHeaderKey(key); canon == key {
		h.Set(key, value)
		return
	}
	h[key] = []string{value}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}
