// Package chessapi is a thin HTTP client for the external go-chess API.
// All rules and AI logic live server-side; this client only moves JSON.
package chessapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-chess-desk/logging"
	"go-chess-desk/types"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrGameNotFound is returned when the server reports 404 for a game id.
var ErrGameNotFound = errors.New("game not found")

// IllegalMoveError carries the server's rejection message for a move. It is
// never retried; the controller clears the selection and surfaces it.
type IllegalMoveError struct {
	Message string
}

func (e *IllegalMoveError) Error() string {
	if e.Message == "" {
		return "illegal move"
	}
	return e.Message
}

const (
	defaultTimeout = 10 * time.Second
	maxRetries     = 3
	backoffStep    = 500 * time.Millisecond
)

// Client handles communication with the go-chess API
type Client struct {
	BaseURL string
	Client  *http.Client

	// Retries is the total attempt count for a request whose failures are
	// retryable (network errors and 5xx). Backoff grows linearly by
	// backoffStep per attempt.
	Retries int
	Timeout time.Duration
}

// NewClient creates a new go-chess API client
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{},
		Retries: maxRetries,
		Timeout: defaultTimeout,
	}
}

// CreateGame starts a new game on the server. aiColor may be empty for a
// game without an engine opponent.
func (c *Client) CreateGame(ctx context.Context, aiColor string) (types.GameState, error) {
	body := map[string]string{}
	if aiColor != "" {
		body["ai_color"] = aiColor
	}
	var state types.GameState
	if err := c.doJSON(ctx, http.MethodPost, "/api/games", body, &state); err != nil {
		return types.GameState{}, fmt.Errorf("failed to create game: %w", err)
	}
	return state, nil
}

// GetGame fetches the current state of a game.
func (c *Client) GetGame(ctx context.Context, id string) (types.GameState, error) {
	var state types.GameState
	if err := c.doJSON(ctx, http.MethodGet, "/api/games/"+id, nil, &state); err != nil {
		return types.GameState{}, fmt.Errorf("failed to fetch game %s: %w", id, err)
	}
	return state, nil
}

// SubmitMove applies a move and returns the refreshed game state. A 4xx
// rejection surfaces as *IllegalMoveError and is never retried.
func (c *Client) SubmitMove(ctx context.Context, id string, move types.MoveRequest) (types.GameState, error) {
	var state types.GameState
	if err := c.doJSON(ctx, http.MethodPost, "/api/games/"+id+"/moves", move, &state); err != nil {
		var ill *IllegalMoveError
		if errors.As(err, &ill) {
			return types.GameState{}, err
		}
		return types.GameState{}, fmt.Errorf("failed to submit move: %w", err)
	}
	return state, nil
}

// LegalMoves fetches the legal-moves snapshot for the active position.
func (c *Client) LegalMoves(ctx context.Context, id string) ([]types.LegalMove, error) {
	var result struct {
		LegalMoves []types.LegalMove `json:"legal_moves"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/games/"+id+"/legal-moves", nil, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch legal moves: %w", err)
	}
	return result.LegalMoves, nil
}

// AIMove asks the engine for a move in the current position.
func (c *Client) AIMove(ctx context.Context, id string, level int, engine string) (types.Move, error) {
	body := map[string]interface{}{"level": level, "engine": engine}
	var result struct {
		Move types.Move `json:"move"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/games/"+id+"/ai-move", body, &result); err != nil {
		return types.Move{}, fmt.Errorf("failed to fetch AI move: %w", err)
	}
	return result.Move, nil
}

// AIHint asks the engine for a suggested move. The server answers in one of
// two shapes; both are normalized into types.Hint.
func (c *Client) AIHint(ctx context.Context, id string, level int, engine string) (types.Hint, error) {
	body := map[string]interface{}{"level": level, "engine": engine}
	var raw struct {
		From        string `json:"from"`
		To          string `json:"to"`
		Explanation string `json:"explanation"`
		Move        *struct {
			From     string `json:"from"`
			To       string `json:"to"`
			Notation string `json:"notation"`
		} `json:"move"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/games/"+id+"/ai-hint", body, &raw); err != nil {
		return types.Hint{}, fmt.Errorf("failed to fetch hint: %w", err)
	}

	hint := types.Hint{From: raw.From, To: raw.To, Explanation: raw.Explanation}
	if hint.From == "" && raw.Move != nil {
		hint.From = raw.Move.From
		hint.To = raw.Move.To
		if hint.Explanation == "" {
			hint.Explanation = raw.Move.Notation
		}
	}
	return hint, nil
}

// doJSON performs one logical request with retries. The request body is
// re-marshalled per attempt so retries are safe.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var lastErr error

	attempts := c.Retries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * backoffStep
			logging.Debugf(logging.CatAPI, "retrying %s %s in %s (attempt %d)", method, path, delay, attempt+1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retryable, err := c.attempt(ctx, method, path, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}

// attempt performs a single HTTP round trip. The boolean reports whether the
// failure is retryable (network errors and 5xx only).
func (c *Client) attempt(ctx context.Context, method, path string, body, out interface{}) (bool, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		// Caller-cancelled contexts are not retried.
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return false, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
		return false, nil

	case resp.StatusCode == http.StatusNotFound:
		return false, ErrGameNotFound

	case resp.StatusCode >= 500:
		data, _ := io.ReadAll(resp.Body)
		return true, fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))

	default:
		// 4xx: the server rejected the request, typically an illegal move.
		var rejection struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, &rejection); err == nil && rejection.Error != "" {
			return false, &IllegalMoveError{Message: rejection.Error}
		}
		return false, fmt.Errorf("request rejected with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
}
