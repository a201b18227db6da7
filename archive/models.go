package archive

import (
	"time"

	"github.com/google/uuid"
)

// GameRecord is one finished game kept in the local archive.
type GameRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	ServerGameID string    `gorm:"index"`
	PlayerColor  string
	AIColor      string
	Status       string // terminal server status
	Result       string // "win", "loss" or "draw" from the player's side
	MoveCount    int
	PGN          string
	StartedAt    time.Time // server-reported game creation time
	FinishedAt   time.Time
	CreatedAt    time.Time
}

// Results from the player's perspective.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"
)
