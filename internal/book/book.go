// Package book reads Polyglot-format opening books and picks weighted
// book moves for positions still in theory.
package book

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/star-ga/NikolaChess/internal/board"
)

// Entry is a single book move with its popularity weight.
type Entry struct {
	Move   board.Move
	Weight uint16
}

// Book is an opening book keyed by Polyglot position hash.
type Book struct {
	entries map[uint64][]Entry
}

// New creates an empty book.
func New() *Book {
	return &Book{entries: make(map[uint64][]Entry)}
}

// LoadPolyglot loads a Polyglot book file.
func LoadPolyglot(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}
	defer file.Close()
	return LoadPolyglotReader(file)
}

// LoadPolyglotReader loads a Polyglot book from a reader. Each record
// is 16 bytes: key, move, weight, learn data, all big-endian; learn
// data is ignored.
func LoadPolyglotReader(r io.Reader) (*Book, error) {
	b := New()
	var record [16]byte
	for {
		if _, err := io.ReadFull(r, record[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read book record: %w", err)
		}
		key := binary.BigEndian.Uint64(record[0:8])
		moveData := binary.BigEndian.Uint16(record[8:10])
		weight := binary.BigEndian.Uint16(record[10:12])

		from, to, promo := decodePolyglotMove(moveData)
		b.entries[key] = append(b.entries[key], Entry{
			Move:   board.Move{From: from, To: to, Promotion: promo, Captured: board.NoPiece},
			Weight: weight,
		})
	}
	return b, nil
}

// decodePolyglotMove unpacks the 16-bit Polyglot move encoding:
// bits 0-5 destination, 6-11 origin, 12-14 promotion piece.
func decodePolyglotMove(data uint16) (board.Square, board.Square, board.PieceType) {
	to := board.NewSquare(int(data&7), int((data>>3)&7))
	from := board.NewSquare(int((data>>6)&7), int((data>>9)&7))

	// Polyglot encodes castling as king-takes-rook.
	switch {
	case from == board.E1 && to == board.H1:
		to = board.G1
	case from == board.E1 && to == board.A1:
		to = board.C1
	case from == board.E8 && to == board.H8:
		to = board.G8
	case from == board.E8 && to == board.A8:
		to = board.C8
	}

	promo := board.NoPieceType
	switch (data >> 12) & 7 {
	case 1:
		promo = board.Knight
	case 2:
		promo = board.Bishop
	case 3:
		promo = board.Rook
	case 4:
		promo = board.Queen
	}
	return from, to, promo
}

// Probe returns a book move for the position via weighted random
// selection, or ok=false when the position is out of book. The move is
// validated against the legal move list; entries that do not match any
// legal move are skipped.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	entries := b.ProbeAll(pos)
	if len(entries) == 0 {
		return board.NoMove, false
	}

	legal := pos.GenerateMoves()

	var totalWeight uint32
	for _, e := range entries {
		totalWeight += uint32(e.Weight)
	}
	if totalWeight > 0 {
		r := rand.Uint32() % totalWeight
		var cumulative uint32
		for _, e := range entries {
			cumulative += uint32(e.Weight)
			if r < cumulative {
				if m := board.FindMove(legal, e.Move.From, e.Move.To, e.Move.Promotion); m != board.NoMove {
					return m, true
				}
				break // drawn entry is corrupt, fall through to best legal
			}
		}
	}
	for _, e := range entries {
		if m := board.FindMove(legal, e.Move.From, e.Move.To, e.Move.Promotion); m != board.NoMove {
			return m, true
		}
	}
	return board.NoMove, false
}

// ProbeAll returns every book entry for the position, heaviest first.
func (b *Book) ProbeAll(pos *board.Position) []Entry {
	if b == nil {
		return nil
	}
	entries := b.entries[pos.PolyglotHash()]
	if len(entries) == 0 {
		return nil
	}
	result := make([]Entry, len(entries))
	copy(result, entries)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Weight > result[j].Weight
	})
	return result
}

// Add inserts a book entry, mainly for tests and book building.
func (b *Book) Add(key uint64, move board.Move, weight uint16) {
	b.entries[key] = append(b.entries[key], Entry{Move: move, Weight: weight})
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
