// Package archive keeps a local record of finished games. It is write-once
// history for the UI's stats and replay views; the server remains the only
// authority for live game state.
package archive

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// Store wraps a gorm DB instance and provides helper methods for persisting
// finished games. All methods are nil-receiver safe so the app can run with
// the archive disabled.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// RecordGame inserts one finished game. Missing ids and timestamps are
// filled in.
func (s *Store) RecordGame(ctx context.Context, rec GameRecord) (GameRecord, error) {
	if s == nil {
		return rec, nil
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return GameRecord{}, err
	}
	return rec, nil
}

// Recent returns up to limit finished games, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]GameRecord, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	var records []GameRecord
	err := s.db.WithContext(ctx).
		Order("finished_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// Get loads one archived game by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (GameRecord, error) {
	if s == nil {
		return GameRecord{}, ErrNotFound
	}
	var rec GameRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	return rec, err
}

// Stats represents aggregate counts for the history view.
type Stats struct {
	Played int64 `json:"played"`
	Won    int64 `json:"won"`
	Lost   int64 `json:"lost"`
	Drawn  int64 `json:"drawn"`
}

// FetchStats aggregates result counts.
func (s *Store) FetchStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&GameRecord{}).Count(&stats.Played).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&GameRecord{}).Where("result = ?", ResultWin).Count(&stats.Won).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&GameRecord{}).Where("result = ?", ResultLoss).Count(&stats.Lost).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&GameRecord{}).Where("result = ?", ResultDraw).Count(&stats.Drawn).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// Delete removes one archived game.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&GameRecord{}, "id = ?", id).Error
}
