package types

// Game statuses as reported by the go-chess server.
const (
	StatusInProgress = "in_progress"
	StatusCheck      = "check"
	StatusWhiteWins  = "white_wins"
	StatusBlackWins  = "black_wins"
	StatusDraw       = "draw"
	StatusStalemate  = "stalemate"
	StatusCheckmate  = "checkmate"
)

// Player colors.
const (
	ColorWhite = "white"
	ColorBlack = "black"
)

// GameState is the server's view of a game. The client holds a read-only
// cached copy refreshed after every mutating call.
type GameState struct {
	ID          string `json:"id"`
	ActiveColor string `json:"active_color"`
	Status      string `json:"status"`
	Board       string `json:"board"` // rank-prefixed textual snapshot
	Moves       []Move `json:"moves"`
	MoveCount   int    `json:"move_count"`
	AIColor     string `json:"ai_color,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Terminal reports whether the game has ended.
func (g *GameState) Terminal() bool {
	switch g.Status {
	case StatusWhiteWins, StatusBlackWins, StatusDraw, StatusStalemate, StatusCheckmate:
		return true
	}
	return false
}

// Move is one applied half-move from the game history.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Notation  string `json:"notation,omitempty"`
	Promotion string `json:"promotion,omitempty"`
}

// MoveRequest is the body submitted to the moves endpoint. Either from/to
// (plus optional promotion) or a bare notation string is accepted.
type MoveRequest struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
	Notation  string `json:"notation,omitempty"`
}

// Legal-move types reported by the server.
const (
	MoveTypeNormal    = "normal"
	MoveTypeCastle    = "castle"
	MoveTypeEnPassant = "en_passant"
	MoveTypePromotion = "promotion"
)

// LegalMove is one entry of the server's legal-moves snapshot, used
// client-side only for validation and highlighting.
type LegalMove struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Type     string `json:"type,omitempty"`
	Notation string `json:"notation,omitempty"`
}

// Hint is a normalized AI hint. The server answers either with a flat
// {from,to,explanation} object or a wrapped {move:{...}}; the client folds
// both into this shape.
type Hint struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Explanation string `json:"explanation,omitempty"`
}
