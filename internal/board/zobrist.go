package board

// Zobrist hash keys for position fingerprinting. The tables are generated
// from a fixed seed so that keys are identical across runs and processes;
// equal positions always hash to equal keys.
var (
	zobristPiece      [12][64]uint64
	zobristEnPassant  [8]uint64 // one per file
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

func init() {
	initZobrist()
}

// prng is a xorshift64* generator used only for table initialization.
type prng struct {
	state uint64
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := prng{state: 0x9E3779B97F4A7C15}

	for p := WhitePawn; p <= BlackKing; p++ {
		for sq := 0; sq < 64; sq++ {
			zobristPiece[p][sq] = rng.next()
		}
	}
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}
	for cr := 0; cr < 16; cr++ {
		zobristCastling[cr] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// ComputeHash recomputes the Zobrist key of a position from scratch.
// MakeMove maintains the key incrementally; this exists for FEN setup
// and for verifying the incremental updates in tests.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for sq := Square(0); sq < 64; sq++ {
		if piece := p.Squares[sq]; piece != NoPiece {
			h ^= zobristPiece[piece][sq]
		}
	}
	h ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}
	if p.SideToMove == Black {
		h ^= zobristSideToMove
	}
	return h
}
