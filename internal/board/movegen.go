package board

// Direction offsets expressed as (file, rank) deltas. The mailbox
// generator walks these with explicit bounds checks.
var (
	knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs      = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs    = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// IsSquareAttacked reports whether sq is attacked by any piece of color by.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	file, rank := sq.File(), sq.Rank()

	// Pawns attack diagonally forward, so look one rank back from
	// the attacker's point of view.
	pawnRank := rank - 1
	if by == Black {
		pawnRank = rank + 1
	}
	for _, df := range [2]int{-1, 1} {
		if onBoard(file+df, pawnRank) {
			if p.Squares[NewSquare(file+df, pawnRank)] == NewPiece(Pawn, by) {
				return true
			}
		}
	}

	for _, off := range knightOffsets {
		f, r := file+off[0], rank+off[1]
		if onBoard(f, r) && p.Squares[NewSquare(f, r)] == NewPiece(Knight, by) {
			return true
		}
	}

	for _, off := range kingOffsets {
		f, r := file+off[0], rank+off[1]
		if onBoard(f, r) && p.Squares[NewSquare(f, r)] == NewPiece(King, by) {
			return true
		}
	}

	rook := NewPiece(Rook, by)
	queen := NewPiece(Queen, by)
	for _, d := range rookDirs {
		f, r := file+d[0], rank+d[1]
		for onBoard(f, r) {
			piece := p.Squares[NewSquare(f, r)]
			if piece != NoPiece {
				if piece == rook || piece == queen {
					return true
				}
				break
			}
			f += d[0]
			r += d[1]
		}
	}

	bishop := NewPiece(Bishop, by)
	for _, d := range bishopDirs {
		f, r := file+d[0], rank+d[1]
		for onBoard(f, r) {
			piece := p.Squares[NewSquare(f, r)]
			if piece != NoPiece {
				if piece == bishop || piece == queen {
					return true
				}
				break
			}
			f += d[0]
			r += d[1]
		}
	}

	return false
}

// GenerateMoves returns every legal move for the side to move. The order
// is deterministic for a given position but carries no meaning; the
// search orders moves itself.
func (p *Position) GenerateMoves() []Move {
	return p.filterLegal(p.generatePseudoLegal(false))
}

// GenerateTacticalMoves returns the legal captures and promotions only,
// for quiescence search and ProbCut.
func (p *Position) GenerateTacticalMoves() []Move {
	return p.filterLegal(p.generatePseudoLegal(true))
}

// filterLegal removes pseudo-legal moves that leave the mover's king
// attacked.
func (p *Position) filterLegal(moves []Move) []Move {
	legal := moves[:0]
	us := p.SideToMove
	for _, m := range moves {
		child := p.MakeMove(m)
		if !child.InCheck(us) {
			legal = append(legal, m)
		}
	}
	return legal
}

func (p *Position) generatePseudoLegal(tacticalOnly bool) []Move {
	moves := make([]Move, 0, 48)
	us := p.SideToMove
	for sq := Square(0); sq < 64; sq++ {
		piece := p.Squares[sq]
		if piece == NoPiece || piece.Color() != us {
			continue
		}
		switch piece.Type() {
		case Pawn:
			moves = p.genPawnMoves(moves, sq, tacticalOnly)
		case Knight:
			moves = p.genStepMoves(moves, sq, knightOffsets[:], tacticalOnly)
		case Bishop:
			moves = p.genSlideMoves(moves, sq, bishopDirs[:], tacticalOnly)
		case Rook:
			moves = p.genSlideMoves(moves, sq, rookDirs[:], tacticalOnly)
		case Queen:
			moves = p.genSlideMoves(moves, sq, rookDirs[:], tacticalOnly)
			moves = p.genSlideMoves(moves, sq, bishopDirs[:], tacticalOnly)
		case King:
			moves = p.genStepMoves(moves, sq, kingOffsets[:], tacticalOnly)
			if !tacticalOnly {
				moves = p.genCastling(moves, sq)
			}
		}
	}
	return moves
}

// appendPawnMove expands a pawn move into the four promotions when it
// reaches the last rank.
func appendPawnMove(moves []Move, m Move) []Move {
	rank := m.To.Rank()
	if rank != 0 && rank != 7 {
		return append(moves, m)
	}
	for _, promo := range [4]PieceType{Queen, Rook, Bishop, Knight} {
		pm := m
		pm.Promotion = promo
		moves = append(moves, pm)
	}
	return moves
}

func (p *Position) genPawnMoves(moves []Move, sq Square, tacticalOnly bool) []Move {
	us := p.SideToMove
	file, rank := sq.File(), sq.Rank()
	dir, startRank := 1, 1
	if us == Black {
		dir, startRank = -1, 6
	}

	// Pushes. A push to the last rank is a promotion and counts as
	// tactical.
	if onBoard(file, rank+dir) {
		oneUp := NewSquare(file, rank+dir)
		if p.Squares[oneUp] == NoPiece {
			promoting := rank+dir == 0 || rank+dir == 7
			if !tacticalOnly || promoting {
				moves = appendPawnMove(moves, newQuiet(sq, oneUp))
			}
			if !tacticalOnly && rank == startRank {
				twoUp := NewSquare(file, rank+2*dir)
				if p.Squares[twoUp] == NoPiece {
					moves = append(moves, newQuiet(sq, twoUp))
				}
			}
		}
	}

	// Captures, including en passant.
	for _, df := range [2]int{-1, 1} {
		f, r := file+df, rank+dir
		if !onBoard(f, r) {
			continue
		}
		to := NewSquare(f, r)
		target := p.Squares[to]
		if target != NoPiece && target.Color() != us {
			moves = appendPawnMove(moves, newCapture(sq, to, target))
		} else if to == p.EnPassant && p.EnPassant != NoSquare {
			moves = append(moves, Move{
				From:      sq,
				To:        to,
				Promotion: NoPieceType,
				Captured:  NewPiece(Pawn, us.Other()),
				Kind:      EnPassant,
			})
		}
	}
	return moves
}

func (p *Position) genStepMoves(moves []Move, sq Square, offsets [][2]int, tacticalOnly bool) []Move {
	us := p.SideToMove
	file, rank := sq.File(), sq.Rank()
	for _, off := range offsets {
		f, r := file+off[0], rank+off[1]
		if !onBoard(f, r) {
			continue
		}
		to := NewSquare(f, r)
		target := p.Squares[to]
		if target == NoPiece {
			if !tacticalOnly {
				moves = append(moves, newQuiet(sq, to))
			}
		} else if target.Color() != us {
			moves = append(moves, newCapture(sq, to, target))
		}
	}
	return moves
}

func (p *Position) genSlideMoves(moves []Move, sq Square, dirs [][2]int, tacticalOnly bool) []Move {
	us := p.SideToMove
	file, rank := sq.File(), sq.Rank()
	for _, d := range dirs {
		f, r := file+d[0], rank+d[1]
		for onBoard(f, r) {
			to := NewSquare(f, r)
			target := p.Squares[to]
			if target == NoPiece {
				if !tacticalOnly {
					moves = append(moves, newQuiet(sq, to))
				}
			} else {
				if target.Color() != us {
					moves = append(moves, newCapture(sq, to, target))
				}
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return moves
}

// genCastling emits castling moves when the rights remain, the path is
// clear and the king does not castle out of, through, or into check.
func (p *Position) genCastling(moves []Move, sq Square) []Move {
	us := p.SideToMove
	them := us.Other()

	var kingSide, queenSide CastlingRights
	var home Square
	if us == White {
		kingSide, queenSide, home = WhiteKingSide, WhiteQueenSide, E1
	} else {
		kingSide, queenSide, home = BlackKingSide, BlackQueenSide, E8
	}
	if sq != home || p.IsSquareAttacked(home, them) {
		return moves
	}

	if p.CastlingRights&kingSide != 0 &&
		p.Squares[home+1] == NoPiece && p.Squares[home+2] == NoPiece &&
		p.Squares[home+3] == NewPiece(Rook, us) &&
		!p.IsSquareAttacked(home+1, them) && !p.IsSquareAttacked(home+2, them) {
		moves = append(moves, Move{From: home, To: home + 2, Promotion: NoPieceType, Captured: NoPiece, Kind: Castling})
	}
	if p.CastlingRights&queenSide != 0 &&
		p.Squares[home-1] == NoPiece && p.Squares[home-2] == NoPiece && p.Squares[home-3] == NoPiece &&
		p.Squares[home-4] == NewPiece(Rook, us) &&
		!p.IsSquareAttacked(home-1, them) && !p.IsSquareAttacked(home-2, them) {
		moves = append(moves, Move{From: home, To: home - 2, Promotion: NoPieceType, Captured: NoPiece, Kind: Castling})
	}
	return moves
}
