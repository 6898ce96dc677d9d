package book

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/star-ga/NikolaChess/internal/board"
)

// encodeRecord builds one raw Polyglot record for tests.
func encodeRecord(key uint64, from, to board.Square, promo board.PieceType, weight uint16) []byte {
	var moveData uint16
	moveData |= uint16(to.File()) | uint16(to.Rank())<<3
	moveData |= uint16(from.File())<<6 | uint16(from.Rank())<<9
	switch promo {
	case board.Knight:
		moveData |= 1 << 12
	case board.Bishop:
		moveData |= 2 << 12
	case board.Rook:
		moveData |= 3 << 12
	case board.Queen:
		moveData |= 4 << 12
	}

	record := make([]byte, 16)
	binary.BigEndian.PutUint64(record[0:8], key)
	binary.BigEndian.PutUint16(record[8:10], moveData)
	binary.BigEndian.PutUint16(record[10:12], weight)
	return record
}

func TestLoadPolyglotReader(t *testing.T) {
	pos := board.NewPosition()
	key := pos.PolyglotHash()

	var buf bytes.Buffer
	buf.Write(encodeRecord(key, board.E2, board.E4, board.NoPieceType, 100))
	buf.Write(encodeRecord(key, board.D2, board.D4, board.NoPieceType, 80))

	b, err := LoadPolyglotReader(&buf)
	if err != nil {
		t.Fatalf("LoadPolyglotReader: %v", err)
	}
	if b.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", b.Size())
	}

	entries := b.ProbeAll(&pos)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Move.String() != "e2e4" || entries[0].Weight != 100 {
		t.Errorf("heaviest entry = %s/%d, want e2e4/100", entries[0].Move, entries[0].Weight)
	}
}

func TestLoadPolyglotReaderRejectsTruncated(t *testing.T) {
	buf := bytes.NewBuffer([]byte{1, 2, 3})
	if _, err := LoadPolyglotReader(buf); err == nil {
		t.Error("truncated book accepted")
	}
}

func TestProbeReturnsLegalMove(t *testing.T) {
	pos := board.NewPosition()
	key := pos.PolyglotHash()

	b := New()
	b.Add(key, board.Move{From: board.E2, To: board.E4, Promotion: board.NoPieceType, Captured: board.NoPiece}, 10)

	move, ok := b.Probe(&pos)
	if !ok {
		t.Fatal("book position not found")
	}
	if move.String() != "e2e4" {
		t.Errorf("probe = %s, want e2e4", move)
	}
	// The returned move must carry the full legal-move flags, not the
	// bare from/to pair stored in the book.
	legal := pos.GenerateMoves()
	if board.FindMove(legal, move.From, move.To, move.Promotion) != move {
		t.Error("probe result does not match the generated legal move")
	}
}

func TestProbeSkipsIllegalEntries(t *testing.T) {
	pos := board.NewPosition()
	key := pos.PolyglotHash()

	b := New()
	// A corrupt entry pointing at an impossible move, plus a real one
	// with zero weight.
	b.Add(key, board.Move{From: board.A1, To: board.H8, Promotion: board.NoPieceType, Captured: board.NoPiece}, 100)
	b.Add(key, board.Move{From: board.G1, To: board.F3, Promotion: board.NoPieceType, Captured: board.NoPiece}, 0)

	move, ok := b.Probe(&pos)
	if !ok || move.String() != "g1f3" {
		t.Errorf("probe = %s ok=%v, want g1f3", move, ok)
	}
}

func TestProbeOutOfBook(t *testing.T) {
	pos := board.NewPosition()
	b := New()
	if move, ok := b.Probe(&pos); ok || move != board.NoMove {
		t.Errorf("empty book returned %s ok=%v", move, ok)
	}
}

func TestCastlingDecoding(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	key := pos.PolyglotHash()

	var buf bytes.Buffer
	// Polyglot stores white kingside castling as e1 takes h1.
	buf.Write(encodeRecord(key, board.E1, board.H1, board.NoPieceType, 1))

	b, err := LoadPolyglotReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	move, ok := b.Probe(&pos)
	if !ok {
		t.Fatal("castling entry not found")
	}
	if move.String() != "e1g1" || move.Kind != board.Castling {
		t.Errorf("castling decoded as %s kind %v", move, move.Kind)
	}
}
