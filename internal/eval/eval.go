// Package eval scores positions in centipawns. Scores are always from
// White's point of view: positive means White is better. The search
// layer flips the sign for the side to move.
package eval

import (
	"github.com/star-ga/NikolaChess/internal/board"
)

const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
)

var pieceValues = [6]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0}

// Bishop pair bonus (having two bishops)
const bishopPairBonus = 25

// Tempo bonus - small advantage for having the move
const tempoBonus = 10

// Piece-square tables from White's perspective, indexed by square with
// A1 = 0. Black squares are mirrored vertically (sq ^ 56).
var pawnTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	50, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightTable = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopTable = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookTable = [64]int{
	0, 0, 0, 5, 5, 0, 0, 0,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	5, 10, 10, 10, 10, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var queenTable = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-10, 5, 5, 5, 5, 5, 0, -10,
	0, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgameTable = [64]int{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

var kingEndgameTable = [64]int{
	-50, -30, -30, -30, -30, -30, -30, -50,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-50, -40, -30, -20, -10, -30, -40, -50,
}

var pieceTables = [6]*[64]int{
	&pawnTable, &knightTable, &bishopTable, &rookTable, &queenTable, &kingMidgameTable,
}

// Evaluate scores the position in centipawns from White's point of view.
func Evaluate(pos *board.Position) int {
	var score int
	var bishops [2]int
	endgame := isEndgame(pos)

	for sq := board.Square(0); sq < 64; sq++ {
		piece := pos.Squares[sq]
		if piece == board.NoPiece {
			continue
		}
		pt := piece.Type()
		color := piece.Color()

		value := pieceValues[pt]
		table := pieceTables[pt]
		if pt == board.King && endgame {
			table = &kingEndgameTable
		}

		if color == board.White {
			score += value + table[sq]
		} else {
			score -= value + table[sq^56]
		}
		if pt == board.Bishop {
			bishops[color]++
		}
	}

	if bishops[board.White] >= 2 {
		score += bishopPairBonus
	}
	if bishops[board.Black] >= 2 {
		score -= bishopPairBonus
	}

	if pos.SideToMove == board.White {
		score += tempoBonus
	} else {
		score -= tempoBonus
	}
	return score
}

// isEndgame switches the king table once queens are off or material is thin.
func isEndgame(pos *board.Position) bool {
	var queens, minorsAndRooks int
	for sq := board.Square(0); sq < 64; sq++ {
		piece := pos.Squares[sq]
		if piece == board.NoPiece {
			continue
		}
		switch piece.Type() {
		case board.Queen:
			queens++
		case board.Knight, board.Bishop, board.Rook:
			minorsAndRooks++
		}
	}
	return queens == 0 || minorsAndRooks <= 2
}
