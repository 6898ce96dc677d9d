package tablebase

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/star-ga/NikolaChess/internal/board"
)

// DefaultEndpoint is the public Lichess tablebase service, which covers
// all positions with up to seven pieces.
const DefaultEndpoint = "https://tablebase.lichess.ovh/standard"

const lichessMaxPieces = 7

// LichessProber queries an online tablebase over HTTP. Lookups are
// rate-limited upstream, so production use should wrap it in a
// CachedProber.
type LichessProber struct {
	client   *http.Client
	endpoint string
}

// NewLichessProber creates a prober against the given endpoint, or the
// public Lichess service when endpoint is empty.
func NewLichessProber(endpoint string) *LichessProber {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &LichessProber{
		client:   &http.Client{Timeout: 5 * time.Second},
		endpoint: endpoint,
	}
}

type lichessResponse struct {
	Category string `json:"category"`
	DTZ      int    `json:"dtz"`
	Moves    []struct {
		UCI      string `json:"uci"`
		Category string `json:"category"`
		DTZ      int    `json:"dtz"`
	} `json:"moves"`
}

func (lp *LichessProber) fetch(pos *board.Position) (lichessResponse, error) {
	var parsed lichessResponse
	query := url.Values{"fen": {pos.FEN()}}
	resp, err := lp.client.Get(lp.endpoint + "?" + query.Encode())
	if err != nil {
		return parsed, fmt.Errorf("tablebase request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return parsed, fmt.Errorf("tablebase request: status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return parsed, fmt.Errorf("tablebase response: %w", err)
	}
	return parsed, nil
}

// Probe looks the position up online. Failures of any kind degrade to
// Unknown so the search can fall back to evaluation.
func (lp *LichessProber) Probe(pos *board.Position) ProbeResult {
	if pos.CountPieces() > lichessMaxPieces {
		return ProbeResult{}
	}
	parsed, err := lp.fetch(pos)
	if err != nil {
		log.Printf("tablebase: probe failed: %v", err)
		return ProbeResult{}
	}
	return ProbeResult{Outcome: categoryToOutcome(parsed.Category), DTZ: parsed.DTZ}
}

// ProbeRoot asks the tablebase for its preferred root move. The
// returned move is validated against the legal move list before use.
func (lp *LichessProber) ProbeRoot(pos *board.Position) RootResult {
	none := RootResult{Move: board.NoMove}
	if pos.CountPieces() > lichessMaxPieces {
		return none
	}
	parsed, err := lp.fetch(pos)
	if err != nil {
		log.Printf("tablebase: root probe failed: %v", err)
		return none
	}
	if len(parsed.Moves) == 0 {
		return none
	}
	best := parsed.Moves[0]
	move := moveFromUCI(pos, best.UCI)
	if move == board.NoMove {
		return none
	}
	// The per-move category is from the opponent's perspective.
	return RootResult{Move: move, Outcome: categoryToOutcome(parsed.Category), DTZ: best.DTZ}
}

func (lp *LichessProber) MaxPieces() int { return lichessMaxPieces }

// categoryToOutcome folds the service's cursed/blessed categories into
// draws: the fifty-move rule makes them practically drawn.
func categoryToOutcome(category string) Outcome {
	switch category {
	case "win":
		return Win
	case "loss":
		return Loss
	case "draw", "cursed-win", "blessed-loss", "maybe-win", "maybe-draw":
		return Draw
	default:
		return Unknown
	}
}

func moveFromUCI(pos *board.Position, uci string) board.Move {
	if len(uci) < 4 {
		return board.NoMove
	}
	from, err := board.ParseSquare(uci[:2])
	if err != nil {
		return board.NoMove
	}
	to, err := board.ParseSquare(uci[2:4])
	if err != nil {
		return board.NoMove
	}
	promo := board.NoPieceType
	if len(uci) == 5 {
		switch uci[4] {
		case 'q':
			promo = board.Queen
		case 'r':
			promo = board.Rook
		case 'b':
			promo = board.Bishop
		case 'n':
			promo = board.Knight
		}
	}
	return board.FindMove(pos.GenerateMoves(), from, to, promo)
}
