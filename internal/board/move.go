package board

// MoveKind distinguishes moves whose effect on the board is not implied
// by the from/to squares alone.
type MoveKind uint8

const (
	Normal MoveKind = iota
	Castling
	EnPassant
)

// Move is a candidate move: a from/to square pair plus the promotion
// piece (if any) and the piece captured (if any). Moves are immutable
// once generated and comparable with ==.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType // NoPieceType when not a promotion
	Captured  Piece     // NoPiece when quiet; the enemy pawn for en passant
	Kind      MoveKind
}

// NoMove is the sentinel returned when no move exists (stalemate or
// checkmate at the root) or a table entry carries no move.
var NoMove = Move{Promotion: NoPieceType, Captured: NoPiece}

// newQuiet builds a non-capturing normal move.
func newQuiet(from, to Square) Move {
	return Move{From: from, To: to, Promotion: NoPieceType, Captured: NoPiece}
}

// newCapture builds a capturing normal move.
func newCapture(from, to Square, captured Piece) Move {
	return Move{From: from, To: to, Promotion: NoPieceType, Captured: captured}
}

// IsValid reports whether the move is a real move rather than the sentinel.
func (m Move) IsValid() bool {
	return m.From != m.To
}

// IsCapture reports whether the move captures a piece (including en passant).
func (m Move) IsCapture() bool {
	return m.Captured != NoPiece
}

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Promotion != NoPieceType
}

// IsQuiet reports whether the move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// String returns the UCI coordinate form of the move (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if !m.IsValid() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string("nbrq"[m.Promotion-Knight])
	}
	return s
}

// FindMove locates the legal move matching a from/to pair (and promotion
// piece, when given) in the supplied move list. Book and table moves are
// passed through this before being trusted. Returns NoMove when the
// list has no match.
func FindMove(moves []Move, from, to Square, promo PieceType) Move {
	for _, m := range moves {
		if m.From != from || m.To != to {
			continue
		}
		if m.Promotion != promo {
			continue
		}
		return m
	}
	return NoMove
}
