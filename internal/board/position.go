package board

import "fmt"

// CastlingRights is a bitmask of the available castling options.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide
	NoCastling  CastlingRights = 0
	AllCastling CastlingRights = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSide != 0 {
		s += "K"
	}
	if cr&WhiteQueenSide != 0 {
		s += "Q"
	}
	if cr&BlackKingSide != 0 {
		s += "k"
	}
	if cr&BlackQueenSide != 0 {
		s += "q"
	}
	return s
}

// castleClear maps a square to the castling rights lost when a piece
// moves from or is captured on that square.
var castleClear = func() [64]CastlingRights {
	var t [64]CastlingRights
	t[E1] = WhiteKingSide | WhiteQueenSide
	t[A1] = WhiteQueenSide
	t[H1] = WhiteKingSide
	t[E8] = BlackKingSide | BlackQueenSide
	t[A8] = BlackQueenSide
	t[H8] = BlackKingSide
	return t
}()

// Position is a complete chess position. It is a plain value: MakeMove
// and MakeNullMove return a derived copy and never mutate the receiver,
// so recursion can hand each child its own position.
type Position struct {
	Squares        [64]Piece
	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // en passant target square, NoSquare if none
	HalfMoveClock  int    // plies since last capture or pawn move
	FullMoveNumber int

	// Hash is the Zobrist key, maintained incrementally by MakeMove.
	Hash uint64

	// KingSquare caches the king locations for check detection.
	KingSquare [2]Square
}

// NewPosition returns the standard starting position.
func NewPosition() Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err) // the start FEN is a constant
	}
	return pos
}

// PieceAt returns the piece on the given square, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	return p.Squares[sq]
}

// IsEmpty reports whether the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.Squares[sq] == NoPiece
}

// CountPieces returns the total number of pieces on the board, kings
// included. Used to gate null-move pruning and tablebase probes.
func (p *Position) CountPieces() int {
	n := 0
	for sq := Square(0); sq < 64; sq++ {
		if p.Squares[sq] != NoPiece {
			n++
		}
	}
	return n
}

// HasNonPawnMaterial reports whether the given side owns anything
// beyond king and pawns. Null-move pruning is skipped without it to
// avoid zugzwang blind spots.
func (p *Position) HasNonPawnMaterial(c Color) bool {
	for sq := Square(0); sq < 64; sq++ {
		piece := p.Squares[sq]
		if piece == NoPiece || piece.Color() != c {
			continue
		}
		switch piece.Type() {
		case Knight, Bishop, Rook, Queen:
			return true
		}
	}
	return false
}

// InCheck reports whether the given side's king is attacked.
func (p *Position) InCheck(c Color) bool {
	ksq := p.KingSquare[c]
	if ksq == NoSquare {
		return false
	}
	return p.IsSquareAttacked(ksq, c.Other())
}

// MakeMove applies a move and returns the resulting position. The
// receiver is left untouched; the Zobrist key of the derived position
// is updated incrementally.
func (p *Position) MakeMove(m Move) Position {
	n := *p
	moving := n.Squares[m.From]
	us := moving.Color()

	if n.EnPassant != NoSquare {
		n.Hash ^= zobristEnPassant[n.EnPassant.File()]
		n.EnPassant = NoSquare
	}

	// Remove the captured piece.
	switch {
	case m.Kind == EnPassant:
		capSq := m.To - 8
		if us == Black {
			capSq = m.To + 8
		}
		n.Hash ^= zobristPiece[n.Squares[capSq]][capSq]
		n.Squares[capSq] = NoPiece
	case m.Captured != NoPiece:
		n.Hash ^= zobristPiece[n.Squares[m.To]][m.To]
		n.Squares[m.To] = NoPiece
	}

	// Move (and possibly promote) the piece.
	n.Hash ^= zobristPiece[moving][m.From]
	n.Squares[m.From] = NoPiece
	placed := moving
	if m.IsPromotion() {
		placed = NewPiece(m.Promotion, us)
	}
	n.Squares[m.To] = placed
	n.Hash ^= zobristPiece[placed][m.To]

	if moving.Type() == King {
		n.KingSquare[us] = m.To
	}

	// Castling moves the rook as well.
	if m.Kind == Castling {
		var rookFrom, rookTo Square
		if m.To.File() == 6 { // king side
			rookFrom, rookTo = m.To+1, m.To-1
		} else { // queen side
			rookFrom, rookTo = m.To-2, m.To+1
		}
		rook := n.Squares[rookFrom]
		n.Hash ^= zobristPiece[rook][rookFrom] ^ zobristPiece[rook][rookTo]
		n.Squares[rookFrom] = NoPiece
		n.Squares[rookTo] = rook
	}

	// Castling rights lost by moving from or capturing on a corner/king square.
	if lost := castleClear[m.From] | castleClear[m.To]; n.CastlingRights&lost != 0 {
		n.Hash ^= zobristCastling[n.CastlingRights]
		n.CastlingRights &^= lost
		n.Hash ^= zobristCastling[n.CastlingRights]
	}

	// A double pawn push exposes an en passant target.
	if moving.Type() == Pawn {
		if diff := int(m.To) - int(m.From); diff == 16 {
			n.EnPassant = m.From + 8
			n.Hash ^= zobristEnPassant[n.EnPassant.File()]
		} else if diff == -16 {
			n.EnPassant = m.From - 8
			n.Hash ^= zobristEnPassant[n.EnPassant.File()]
		}
	}

	if moving.Type() == Pawn || m.IsCapture() {
		n.HalfMoveClock = 0
	} else {
		n.HalfMoveClock++
	}
	if us == Black {
		n.FullMoveNumber++
	}

	n.SideToMove = us.Other()
	n.Hash ^= zobristSideToMove
	return n
}

// MakeNullMove passes the turn without moving, for null-move pruning.
// Like MakeMove it returns a derived position.
func (p *Position) MakeNullMove() Position {
	n := *p
	if n.EnPassant != NoSquare {
		n.Hash ^= zobristEnPassant[n.EnPassant.File()]
		n.EnPassant = NoSquare
	}
	n.SideToMove = n.SideToMove.Other()
	n.Hash ^= zobristSideToMove
	n.HalfMoveClock++
	return n
}

// String returns a board diagram with the game-state fields.
func (p *Position) String() string {
	s := "\n"
	for rank := 7; rank >= 0; rank-- {
		s += fmt.Sprintf("%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.Squares[NewSquare(file, rank)]
			if piece == NoPiece {
				s += ". "
			} else {
				s += piece.String() + " "
			}
		}
		s += "\n"
	}
	s += "\n   a b c d e f g h\n\n"
	s += fmt.Sprintf("Side to move: %s\n", p.SideToMove)
	s += fmt.Sprintf("Castling: %s\n", p.CastlingRights)
	s += fmt.Sprintf("En passant: %s\n", p.EnPassant)
	s += fmt.Sprintf("Half-move clock: %d\n", p.HalfMoveClock)
	s += fmt.Sprintf("Hash: %016x\n", p.Hash)
	return s
}
