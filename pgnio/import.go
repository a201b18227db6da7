package pgnio

import (
	"archive/zip"
	"fmt"
	"go-chess-desk/logging"
	"go-chess-desk/types"
	"go-chess-desk/utils/fileio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/notnil/chess"
	"github.com/nwaples/rardecode/v2"
)

// ImportedGame is one game parsed from a PGN source, reduced to the move
// list the controller can replay into a fresh server game.
type ImportedGame struct {
	Event  string       `json:"event,omitempty"`
	White  string       `json:"white,omitempty"`
	Black  string       `json:"black,omitempty"`
	Result string       `json:"result,omitempty"`
	Moves  []types.Move `json:"moves"`
}

// ImportFile reads games from a .pgn file or from a .zip/.7z/.rar archive
// containing .pgn entries.
func ImportFile(path string) ([]ImportedGame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pgn":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open PGN file: %w", err)
		}
		defer fileio.Close(f, nil, "closing pgn file")
		return Parse(f)
	case ".zip":
		return importZip(path)
	case ".7z":
		return import7z(path)
	case ".rar":
		return importRar(path)
	default:
		return nil, fmt.Errorf("unsupported import format %q", filepath.Ext(path))
	}
}

// Parse reads every game from a PGN stream.
func Parse(r io.Reader) ([]ImportedGame, error) {
	games, err := chess.GamesFromPGN(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PGN: %w", err)
	}

	imported := make([]ImportedGame, 0, len(games))
	for _, g := range games {
		ig := ImportedGame{
			Event:  tag(g, "Event"),
			White:  tag(g, "White"),
			Black:  tag(g, "Black"),
			Result: tag(g, "Result"),
		}
		for _, m := range g.Moves() {
			ig.Moves = append(ig.Moves, types.Move{
				From:      m.S1().String(),
				To:        m.S2().String(),
				Promotion: promoName(m.Promo()),
			})
		}
		imported = append(imported, ig)
	}
	return imported, nil
}

func tag(g *chess.Game, key string) string {
	if pair := g.GetTagPair(key); pair != nil {
		return pair.Value
	}
	return ""
}

func promoName(p chess.PieceType) string {
	switch p {
	case chess.Queen:
		return "queen"
	case chess.Rook:
		return "rook"
	case chess.Bishop:
		return "bishop"
	case chess.Knight:
		return "knight"
	}
	return ""
}

func isPGNEntry(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pgn")
}

func importZip(path string) ([]ImportedGame, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer fileio.Close(rc, nil, "closing zip archive")

	var all []ImportedGame
	for _, f := range rc.File {
		if f.FileInfo().IsDir() || !isPGNEntry(f.Name) {
			continue
		}
		entry, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open zip entry %s: %w", f.Name, err)
		}
		games, err := Parse(entry)
		fileio.Close(entry, nil, "closing zip entry")
		if err != nil {
			logging.Errorf(logging.CatArchive, "skipping unparseable entry %s: %v", f.Name, err)
			continue
		}
		all = append(all, games...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no games found in %s", filepath.Base(path))
	}
	return all, nil
}

func import7z(path string) ([]ImportedGame, error) {
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer fileio.Close(rc, nil, "closing 7z archive")

	var all []ImportedGame
	for _, f := range rc.File {
		if f.FileInfo().IsDir() || !isPGNEntry(f.Name) {
			continue
		}
		entry, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open 7z entry %s: %w", f.Name, err)
		}
		games, err := Parse(entry)
		fileio.Close(entry, nil, "closing 7z entry")
		if err != nil {
			logging.Errorf(logging.CatArchive, "skipping unparseable entry %s: %v", f.Name, err)
			continue
		}
		all = append(all, games...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no games found in %s", filepath.Base(path))
	}
	return all, nil
}

func importRar(path string) ([]ImportedGame, error) {
	rc, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rar archive: %w", err)
	}
	defer fileio.Close(rc, nil, "closing rar archive")

	var all []ImportedGame
	for {
		hdr, err := rc.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rar entry: %w", err)
		}
		if hdr.IsDir || !isPGNEntry(hdr.Name) {
			continue
		}
		games, err := Parse(rc)
		if err != nil {
			logging.Errorf(logging.CatArchive, "skipping unparseable entry %s: %v", hdr.Name, err)
			continue
		}
		all = append(all, games...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no games found in %s", filepath.Base(path))
	}
	return all, nil
}
