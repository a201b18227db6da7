// Package board turns the server's textual board snapshot into render cells.
// It is a pure view-model: it never judges legality, it only places glyphs.
package board

import (
	"fmt"
	"strings"
)

// Orientations decide which color sits at the bottom of the rendered board.
const (
	OrientWhite = "white"
	OrientBlack = "black"
)

// glyphs maps piece letters to their Unicode chess symbols. Upper case is
// white, lower case is black.
var glyphs = map[byte]string{
	'K': "♔", 'Q': "♕", 'R': "♖", 'B': "♗", 'N': "♘", 'P': "♙",
	'k': "♚", 'q': "♛", 'r': "♜", 'b': "♝", 'n': "♞", 'p': "♟",
}

// Glyph returns the Unicode symbol for a piece letter, or "" for unknown.
func Glyph(letter byte) string {
	return glyphs[letter]
}

// Board holds the parsed square→piece placement.
type Board struct {
	pieces map[string]byte
}

// Parse reads a rank-prefixed textual board: eight rows beginning with the
// rank digit followed by eight piece letters or dots, with or without
// spacing, optionally followed by a file-letter footer row. Any row order is
// accepted since every row names its own rank.
func Parse(text string) (*Board, error) {
	b := &Board{pieces: make(map[string]byte)}
	seen := make(map[int]bool)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] < '1' || line[0] > '8' {
			// Footer rows like "a b c d e f g h" carry no placement.
			continue
		}
		rank := int(line[0] - '0')
		if seen[rank] {
			return nil, fmt.Errorf("duplicate rank %d in board text", rank)
		}

		row := strings.ReplaceAll(line[1:], " ", "")
		if len(row) != 8 {
			return nil, fmt.Errorf("rank %d has %d squares, want 8", rank, len(row))
		}
		for file := 0; file < 8; file++ {
			ch := row[file]
			if ch == '.' {
				continue
			}
			if _, ok := glyphs[ch]; !ok {
				return nil, fmt.Errorf("unknown piece %q at rank %d", ch, rank)
			}
			square := fmt.Sprintf("%c%d", 'a'+file, rank)
			b.pieces[square] = ch
		}
		seen[rank] = true
	}

	if len(seen) != 8 {
		return nil, fmt.Errorf("board text contains %d ranks, want 8", len(seen))
	}
	return b, nil
}

// PieceAt returns the piece letter on a square like "e4", if any.
func (b *Board) PieceAt(square string) (byte, bool) {
	p, ok := b.pieces[square]
	return p, ok
}

// White reports whether a piece letter belongs to white.
func White(letter byte) bool {
	return letter >= 'A' && letter <= 'Z'
}

// Cell is one renderable square in draw order.
type Cell struct {
	Square string `json:"square"`
	Piece  string `json:"piece,omitempty"`
	Glyph  string `json:"glyph,omitempty"`
	Light  bool   `json:"light"`
}

// Squares yields the 64 cells in draw order for the given orientation.
// Flipping the orientation reverses iteration order only; coordinates are
// untouched.
func (b *Board) Squares(orientation string) []Cell {
	cells := make([]Cell, 0, 64)

	emit := func(file, rank int) {
		square := fmt.Sprintf("%c%d", 'a'+file, rank)
		cell := Cell{
			Square: square,
			Light:  (file+rank)%2 == 0,
		}
		if p, ok := b.pieces[square]; ok {
			cell.Piece = string(p)
			cell.Glyph = glyphs[p]
		}
		cells = append(cells, cell)
	}

	if orientation == OrientBlack {
		for rank := 1; rank <= 8; rank++ {
			for file := 7; file >= 0; file-- {
				emit(file, rank)
			}
		}
	} else {
		for rank := 8; rank >= 1; rank-- {
			for file := 0; file < 8; file++ {
				emit(file, rank)
			}
		}
	}
	return cells
}
