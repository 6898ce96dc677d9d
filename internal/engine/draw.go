package engine

import (
	"github.com/star-ga/NikolaChess/internal/board"
)

// IsFiftyMoveDraw reports whether the half-move clock has reached the
// fifty-move-rule limit (100 half-moves without a capture or pawn move).
func IsFiftyMoveDraw(pos *board.Position) bool {
	return pos.HalfMoveClock >= 100
}

// IsInsufficientMaterial reports whether neither side can possibly
// deliver mate: bare kings, a lone minor piece, same-colored single
// bishops, knight against knight, or two knights against a bare king.
// Any pawn, rook or queen on the board rules the draw out.
func IsInsufficientMaterial(pos *board.Position) bool {
	var knights, bishops [2]int
	var bishopSquareColor [2]int
	for sq := board.Square(0); sq < 64; sq++ {
		piece := pos.Squares[sq]
		if piece == board.NoPiece {
			continue
		}
		switch piece.Type() {
		case board.Pawn, board.Rook, board.Queen:
			return false
		case board.Knight:
			knights[piece.Color()]++
		case board.Bishop:
			bishops[piece.Color()]++
			bishopSquareColor[piece.Color()] = (int(sq.File()) + int(sq.Rank())) & 1
		}
	}

	whiteMinors := knights[board.White] + bishops[board.White]
	blackMinors := knights[board.Black] + bishops[board.Black]

	switch {
	case whiteMinors == 0 && blackMinors == 0:
		return true
	case whiteMinors+blackMinors == 1:
		return true
	case bishops[board.White] == 1 && bishops[board.Black] == 1 &&
		knights[board.White] == 0 && knights[board.Black] == 0:
		return bishopSquareColor[board.White] == bishopSquareColor[board.Black]
	case knights[board.White] == 1 && knights[board.Black] == 1 &&
		bishops[board.White] == 0 && bishops[board.Black] == 0:
		return true
	case knights[board.White] == 2 && whiteMinors == 2 && blackMinors == 0:
		return true
	case knights[board.Black] == 2 && blackMinors == 2 && whiteMinors == 0:
		return true
	}
	return false
}

// Repetition state is split in two: a per-worker map counting positions
// already played in the game, and a path slice of the hashes between
// the root and the current node. The path travels by value through the
// recursion, so a branch can never leak its visits into a sibling.

// gameHistoryCounts builds occurrence counts for positions played
// before the search root, so repetitions that straddle the root are
// detected.
func gameHistoryCounts(keys []uint64) map[uint64]int {
	counts := make(map[uint64]int, len(keys))
	for _, k := range keys {
		counts[k]++
	}
	return counts
}

// pathCount returns how many times key occurs on the current search path.
func pathCount(path []uint64, key uint64) int {
	n := 0
	for _, k := range path {
		if k == key {
			n++
		}
	}
	return n
}

// isPathRepetition reports whether the position at key, about to be
// visited, would be its third occurrence counting the game history and
// the search path so far.
func isPathRepetition(history map[uint64]int, path []uint64, key uint64) bool {
	return history[key]+pathCount(path, key) >= 2
}
