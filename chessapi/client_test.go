package chessapi

import (
	"context"
	"encoding/json"
	"errors"
	"go-chess-desk/types"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateGame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/games" {
			t.Errorf("Expected path /api/games, got %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("Expected method POST, got %s", r.Method)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode body: %v", err)
		}
		if body["ai_color"] != "black" {
			t.Errorf("Expected ai_color black, got %s", body["ai_color"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.GameState{
			ID:          "g1",
			ActiveColor: types.ColorWhite,
			Status:      types.StatusInProgress,
			AIColor:     types.ColorBlack,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	state, err := client.CreateGame(context.Background(), "black")
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if state.ID != "g1" {
		t.Errorf("Expected game id g1, got %s", state.ID)
	}
	if state.ActiveColor != types.ColorWhite {
		t.Errorf("Expected white to move, got %s", state.ActiveColor)
	}
}

func TestGetGame_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetGame(context.Background(), "missing")
	if !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Expected ErrGameNotFound, got %v", err)
	}
}

func TestSubmitMove_Illegal(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "illegal move: e2e5"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.SubmitMove(context.Background(), "g1", types.MoveRequest{From: "e2", To: "e5"})

	var ill *IllegalMoveError
	if !errors.As(err, &ill) {
		t.Fatalf("Expected IllegalMoveError, got %v", err)
	}
	if ill.Message != "illegal move: e2e5" {
		t.Errorf("Unexpected rejection message: %s", ill.Message)
	}
	if calls != 1 {
		t.Errorf("Illegal moves must not be retried, server saw %d calls", calls)
	}
}

func TestSubmitMove_RetriesOn5xx(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.GameState{ID: "g1", ActiveColor: types.ColorBlack})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.Retries = 3

	state, err := client.SubmitMove(context.Background(), "g1", types.MoveRequest{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("SubmitMove failed after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, server saw %d", calls)
	}
	if state.ActiveColor != types.ColorBlack {
		t.Errorf("Expected black to move, got %s", state.ActiveColor)
	}
}

func TestSubmitMove_RetriesExhausted(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.Retries = 2

	_, err := client.SubmitMove(context.Background(), "g1", types.MoveRequest{From: "e2", To: "e4"})
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if calls != 2 {
		t.Errorf("Expected 2 attempts, server saw %d", calls)
	}
}

func TestLegalMoves(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/games/g1/legal-moves" {
			t.Errorf("Expected legal-moves path, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"legal_moves": [{"from": "e2", "to": "e4", "type": "normal"}, {"from": "e1", "to": "g1", "type": "castle"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	moves, err := client.LegalMoves(context.Background(), "g1")
	if err != nil {
		t.Fatalf("LegalMoves failed: %v", err)
	}
	if len(moves) != 2 {
		t.Fatalf("Expected 2 moves, got %d", len(moves))
	}
	if moves[1].Type != types.MoveTypeCastle {
		t.Errorf("Expected castle type, got %s", moves[1].Type)
	}
}

func TestAIMove(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/games/g1/ai-move" {
			t.Errorf("Expected ai-move path, got %s", r.URL.Path)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["engine"] != "minimax" {
			t.Errorf("Expected engine minimax, got %v", body["engine"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"move": {"from": "e7", "to": "e5", "notation": "e5"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	move, err := client.AIMove(context.Background(), "g1", 3, "minimax")
	if err != nil {
		t.Fatalf("AIMove failed: %v", err)
	}
	if move.From != "e7" || move.To != "e5" {
		t.Errorf("Unexpected move: %+v", move)
	}
}

func TestAIHint_BothShapes(t *testing.T) {
	t.Run("flat shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"from": "g1", "to": "f3", "explanation": "develop the knight"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		hint, err := client.AIHint(context.Background(), "g1", 3, "minimax")
		if err != nil {
			t.Fatalf("AIHint failed: %v", err)
		}
		if hint.From != "g1" || hint.To != "f3" {
			t.Errorf("Unexpected hint: %+v", hint)
		}
		if hint.Explanation != "develop the knight" {
			t.Errorf("Unexpected explanation: %s", hint.Explanation)
		}
	})

	t.Run("wrapped move shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"move": {"from": "g1", "to": "f3", "notation": "Nf3"}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		hint, err := client.AIHint(context.Background(), "g1", 3, "minimax")
		if err != nil {
			t.Fatalf("AIHint failed: %v", err)
		}
		if hint.From != "g1" || hint.To != "f3" {
			t.Errorf("Unexpected hint: %+v", hint)
		}
		if hint.Explanation != "Nf3" {
			t.Errorf("Expected notation fallback, got %s", hint.Explanation)
		}
	})
}

func TestContextCancelStopsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.Retries = 5

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.GetGame(ctx, "g1")
	if err == nil {
		t.Fatal("Expected error")
	}
	// Full linear backoff over 5 attempts would take several seconds.
	if time.Since(start) > 2*time.Second {
		t.Error("Cancellation did not short-circuit the retry loop")
	}
}
