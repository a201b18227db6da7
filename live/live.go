// Package live subscribes to the server's per-game websocket feed. A push
// only ever triggers a state refresh; turn orchestration never depends on
// this channel, so the client works identically with the feed disabled.
package live

import (
	"context"
	"fmt"
	"go-chess-desk/logging"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Subscriber maintains one websocket connection per game.
type Subscriber struct {
	url    string
	onPush func()

	mu     sync.Mutex
	cancel context.CancelFunc
	conn   *websocket.Conn
}

// New creates a subscriber for a game. onPush is called on every server
// push, from the read goroutine.
func New(baseURL, gameID string, onPush func()) (*Subscriber, error) {
	wsURL, err := feedURL(baseURL, gameID)
	if err != nil {
		return nil, err
	}
	return &Subscriber{url: wsURL, onPush: onPush}, nil
}

// feedURL converts the configured http(s) base URL into the ws(s) feed URL.
func feedURL(baseURL, gameID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server host %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q in server host", u.Scheme)
	}
	u.Path = "/ws/games/" + gameID
	return u.String(), nil
}

// Start launches the connect/read loop in the background.
func (s *Subscriber) Start() {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
}

// Stop tears down the connection and ends the loop.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// run keeps the feed alive with capped exponential backoff between attempts.
func (s *Subscriber) run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		err := s.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		logging.Debugf(logging.CatWS, "feed dropped (%v), reconnecting in %s", err, backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// listen dials once and reads until the connection fails.
func (s *Subscriber) listen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	logging.Debugf(logging.CatWS, "connected to %s", s.url)

	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
		if s.onPush != nil {
			s.onPush()
		}
	}
}
