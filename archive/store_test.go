package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "games.db"))
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	return NewStore(db)
}

func TestRecordAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec, err := s.RecordGame(ctx, GameRecord{
		ServerGameID: "g1",
		PlayerColor:  "white",
		AIColor:      "black",
		Status:       "checkmate",
		Result:       ResultWin,
		MoveCount:    34,
		PGN:          "1. e4 e5 2. Nf3 *",
	})
	if err != nil {
		t.Fatalf("RecordGame failed: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Error("Expected an id to be assigned")
	}
	if rec.FinishedAt.IsZero() {
		t.Error("Expected FinishedAt to be stamped")
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ServerGameID != "g1" || got.Result != ResultWin {
		t.Errorf("Unexpected record: %+v", got)
	}
}

func TestRecentOrdering(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"old", "mid", "new"} {
		if _, err := s.RecordGame(ctx, GameRecord{ServerGameID: id, Result: ResultDraw}); err != nil {
			t.Fatalf("RecordGame failed: %v", err)
		}
	}

	records, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
}

func TestFetchStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	results := []string{ResultWin, ResultWin, ResultLoss, ResultDraw}
	for _, r := range results {
		if _, err := s.RecordGame(ctx, GameRecord{Result: r}); err != nil {
			t.Fatalf("RecordGame failed: %v", err)
		}
	}

	stats, err := s.FetchStats(ctx)
	if err != nil {
		t.Fatalf("FetchStats failed: %v", err)
	}
	if stats.Played != 4 || stats.Won != 2 || stats.Lost != 1 || stats.Drawn != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var s *Store
	ctx := context.Background()

	if _, err := s.RecordGame(ctx, GameRecord{}); err != nil {
		t.Errorf("Nil store RecordGame should be a no-op: %v", err)
	}
	if _, err := s.Recent(ctx, 5); err != nil {
		t.Errorf("Nil store Recent should be a no-op: %v", err)
	}
	if _, err := s.Get(ctx, uuid.New()); err != ErrNotFound {
		t.Errorf("Nil store Get should return ErrNotFound, got %v", err)
	}
	if _, err := s.FetchStats(ctx); err != nil {
		t.Errorf("Nil store FetchStats should be a no-op: %v", err)
	}
}
