package board

// Polyglot-style hashing for opening-book lookups. The key differs from
// the search Zobrist key: the en passant file only counts when a capture
// is actually possible, and castling rights hash bit-by-bit. The table
// is generated once from a fixed seed so books built against this engine
// probe consistently across runs.
var (
	polyglotPieces     [12][64]uint64
	polyglotCastling   [4]uint64
	polyglotEnPassant  [8]uint64
	polyglotSideToMove uint64
)

func init() {
	rng := prng{state: 0x37B4A4B3F0D1C0D0}
	for piece := 0; piece < 12; piece++ {
		for sq := 0; sq < 64; sq++ {
			polyglotPieces[piece][sq] = rng.next()
		}
	}
	for i := 0; i < 4; i++ {
		polyglotCastling[i] = rng.next()
	}
	for i := 0; i < 8; i++ {
		polyglotEnPassant[i] = rng.next()
	}
	polyglotSideToMove = rng.next()
}

// PolyglotHash computes the opening-book key for the position.
func (p *Position) PolyglotHash() uint64 {
	var hash uint64

	// Polyglot piece ordering: black pieces 0-5, white pieces 6-11.
	for sq := Square(0); sq < 64; sq++ {
		piece := p.Squares[sq]
		if piece == NoPiece {
			continue
		}
		kind := int(piece.Type())
		if piece.Color() == White {
			kind += 6
		}
		hash ^= polyglotPieces[kind][sq]
	}

	if p.CastlingRights&WhiteKingSide != 0 {
		hash ^= polyglotCastling[0]
	}
	if p.CastlingRights&WhiteQueenSide != 0 {
		hash ^= polyglotCastling[1]
	}
	if p.CastlingRights&BlackKingSide != 0 {
		hash ^= polyglotCastling[2]
	}
	if p.CastlingRights&BlackQueenSide != 0 {
		hash ^= polyglotCastling[3]
	}

	if p.EnPassant != NoSquare && p.epCapturable() {
		hash ^= polyglotEnPassant[p.EnPassant.File()]
	}

	if p.SideToMove == White {
		hash ^= polyglotSideToMove
	}
	return hash
}

// epCapturable reports whether a pawn of the side to move could actually
// capture on the en passant square.
func (p *Position) epCapturable() bool {
	file := p.EnPassant.File()
	rank := 4 // white pawn would sit on the 5th rank
	if p.SideToMove == Black {
		rank = 3
	}
	pawn := NewPiece(Pawn, p.SideToMove)
	if file > 0 && p.Squares[NewSquare(file-1, rank)] == pawn {
		return true
	}
	if file < 7 && p.Squares[NewSquare(file+1, rank)] == pawn {
		return true
	}
	return false
}
