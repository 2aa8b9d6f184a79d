package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"matchup-arena/server/results"
)

// hub fans finalized results out to websocket subscribers. Slow subscribers
// drop messages rather than stall the evaluator.
type hub struct {
	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	buffer int
	log    *logrus.Entry
}

func newHub(buffer int, log *logrus.Entry) *hub {
	return &hub{subs: map[chan []byte]struct{}{}, buffer: buffer, log: log}
}

// Emit satisfies results.Sink.
func (h *hub) Emit(_ context.Context, rs []results.Result) error {
	b, err := json.Marshal(rs)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- b:
		default:
			h.log.WithField("results", len(rs)).Warn("stream subscriber lagging, dropped message")
		}
	}
	return nil
}

func (h *hub) subscribe() chan []byte {
	ch := make(chan []byte, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (h *hub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket accept failed")
		return
	}
	ch := h.subscribe()
	defer h.unsubscribe(ch)

	// we never read; CloseRead cancels ctx once the peer goes away
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg := <-ch:
			wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				h.log.WithError(err).Debug("stream write failed")
				return
			}
		}
	}
}
