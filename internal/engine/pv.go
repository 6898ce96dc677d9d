package engine

import (
	"github.com/star-ga/NikolaChess/internal/board"
)

// PrincipalVariation reconstructs the expected line of play by chaining
// best moves out of the transposition table. Every stored move is
// validated against the legal moves of its position before being
// trusted; the walk stops on the first miss, invalid move, or cycle.
func (e *Engine) PrincipalVariation(pos *board.Position, maxLen int) []board.Move {
	if maxLen > MaxPly {
		maxLen = MaxPly
	}
	var pv []board.Move
	seen := make(map[uint64]bool, maxLen)
	cur := *pos

	for len(pv) < maxLen {
		if seen[cur.Hash] {
			break
		}
		seen[cur.Hash] = true

		entry, ok := e.tt.Probe(cur.Hash)
		if !ok || entry.BestMove == board.NoMove {
			break
		}
		m := board.FindMove(cur.GenerateMoves(), entry.BestMove.From, entry.BestMove.To, entry.BestMove.Promotion)
		if m == board.NoMove {
			break
		}
		pv = append(pv, m)
		cur = cur.MakeMove(m)
	}
	return pv
}
