// Package pgn records played games and exports them in Portable Game
// Notation, with moves rendered in standard algebraic notation.
package pgn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/star-ga/NikolaChess/internal/board"
)

// Result values used in the Result tag and game terminator.
const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"
	ResultOngoing   = "*"
)

// Game accumulates the moves of one game together with its tag pairs.
type Game struct {
	ID     string // unique game identifier, also used for file names
	Event  string
	Site   string
	Date   time.Time
	Round  string
	White  string
	Black  string
	Result string

	startFEN string
	pos      board.Position
	moves    []string
}

// NewGame starts a game record from the given position.
func NewGame(pos board.Position) *Game {
	return &Game{
		ID:       uuid.NewString(),
		Event:    "NikolaChess Game",
		Site:     "Local",
		Date:     time.Now(),
		Round:    "1",
		White:    "NikolaChess",
		Black:    "NikolaChess",
		Result:   ResultOngoing,
		startFEN: pos.FEN(),
		pos:      pos,
	}
}

// AddMove appends a move to the record. The move must be legal in the
// game's current position so it can be rendered in algebraic notation.
func (g *Game) AddMove(m board.Move) error {
	legal := g.pos.GenerateMoves()
	found := board.FindMove(legal, m.From, m.To, m.Promotion)
	if found == board.NoMove {
		return fmt.Errorf("move %s is not legal in %s", m, g.pos.FEN())
	}
	g.moves = append(g.moves, g.pos.SAN(found))
	g.pos = g.pos.MakeMove(found)
	return nil
}

// Position returns the position after the recorded moves.
func (g *Game) Position() board.Position {
	return g.pos
}

// StartFEN returns the FEN of the position the record began from.
func (g *Game) StartFEN() string {
	return g.startFEN
}

// MoveCount returns the number of half-moves recorded.
func (g *Game) MoveCount() int {
	return len(g.moves)
}

// String renders the full PGN text: tag pairs, the move text wrapped at
// 80 columns, and the result terminator.
func (g *Game) String() string {
	var sb strings.Builder
	tag := func(name, value string) {
		fmt.Fprintf(&sb, "[%s %q]\n", name, value)
	}
	tag("Event", g.Event)
	tag("Site", g.Site)
	tag("Date", g.Date.Format("2006.01.02"))
	tag("Round", g.Round)
	tag("White", g.White)
	tag("Black", g.Black)
	tag("Result", g.Result)
	tag("GameId", g.ID)
	if g.startFEN != board.StartFEN {
		tag("SetUp", "1")
		tag("FEN", g.startFEN)
	}
	sb.WriteByte('\n')

	var line strings.Builder
	emit := func(token string) {
		if line.Len() > 0 && line.Len()+1+len(token) > 80 {
			sb.WriteString(line.String())
			sb.WriteByte('\n')
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(token)
	}
	for i, san := range g.moves {
		if i%2 == 0 {
			emit(fmt.Sprintf("%d. %s", i/2+1, san))
		} else {
			emit(san)
		}
	}
	emit(g.Result)
	if line.Len() > 0 {
		sb.WriteString(line.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Save writes the game to dir, named by its ID. An empty dir writes to
// the current directory.
func (g *Game) Save(dir string) (string, error) {
	path := filepath.Join(dir, g.ID+".pgn")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create games dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(g.String()), 0o644); err != nil {
		return "", fmt.Errorf("write game: %w", err)
	}
	return path, nil
}
