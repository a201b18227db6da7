// Package pgnio converts between the client's move-list representation and
// PGN, and imports PGN collections from the compressed archive formats chess
// databases usually ship in. notnil/chess is used purely as the notation
// codec; move legality remains the server's job.
package pgnio

import (
	"fmt"
	"go-chess-desk/types"
	"strings"

	"github.com/notnil/chess"
)

// Result strings in PGN terms.
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
	ResultOngoing   = "*"
)

// ResultFromStatus maps a server status to the PGN result tag.
func ResultFromStatus(status, activeColor string) string {
	switch status {
	case types.StatusWhiteWins:
		return ResultWhiteWins
	case types.StatusBlackWins:
		return ResultBlackWins
	case types.StatusDraw, types.StatusStalemate:
		return ResultDraw
	case types.StatusCheckmate:
		// The side to move is the mated side.
		if activeColor == types.ColorWhite {
			return ResultBlackWins
		}
		return ResultWhiteWins
	}
	return ResultOngoing
}

// Export renders a game history as PGN with SAN move text. The moves must
// form a legal sequence from the initial position, which server-produced
// histories always do.
func Export(moves []types.Move, white, black, result string) (string, error) {
	// Feed UCI pairs into a default-notation game so String() emits SAN.
	game := chess.NewGame()

	for i, m := range moves {
		uci := m.From + m.To + promoLetter(m.Promotion)
		mv, err := chess.UCINotation{}.Decode(game.Position(), uci)
		if err != nil {
			return "", fmt.Errorf("move %d (%s) does not parse: %w", i+1, uci, err)
		}
		if err := game.Move(mv); err != nil {
			return "", fmt.Errorf("move %d (%s) does not replay: %w", i+1, uci, err)
		}
	}

	game.AddTagPair("Event", "go-chess-desk game")
	if white != "" {
		game.AddTagPair("White", white)
	}
	if black != "" {
		game.AddTagPair("Black", black)
	}
	if result != "" && result != ResultOngoing {
		game.AddTagPair("Result", result)
	}

	return game.String(), nil
}

// promoLetter normalizes a promotion piece name ("queen", "Q", "q") to the
// single lowercase UCI letter, empty when there is no promotion.
func promoLetter(promotion string) string {
	p := strings.ToLower(strings.TrimSpace(promotion))
	if p == "" {
		return ""
	}
	switch p[0] {
	case 'q', 'r', 'b', 'n':
		return string(p[0])
	case 'k':
		// "knight"
		return "n"
	}
	return ""
}
