package engine

import (
	"github.com/star-ga/NikolaChess/internal/board"
)

// seeEstimate is a cheap static-exchange approximation for a capture.
// If the destination square is undefended the full victim value is won.
// Otherwise we assume one recapture and score victim minus attacker.
// It never simulates the full exchange sequence; move ordering only
// needs a coarse winning/losing signal.
func seeEstimate(pos *board.Position, m board.Move) int {
	if !m.IsCapture() {
		return 0
	}
	victim := m.Captured.Value()
	if m.Kind == board.EnPassant {
		victim = board.PieceValue[board.Pawn]
	}
	attacker := pos.PieceAt(m.From).Value()
	if !pos.IsSquareAttacked(m.To, pos.SideToMove.Other()) {
		return victim
	}
	return victim - attacker
}
