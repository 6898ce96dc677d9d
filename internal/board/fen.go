package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard chess starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string into a Position.
func ParseFEN(fen string) (Position, error) {
	var pos Position
	pos.EnPassant = NoSquare
	pos.KingSquare[White] = NoSquare
	pos.KingSquare[Black] = NoSquare
	for sq := range pos.Squares {
		pos.Squares[sq] = NoPiece
	}

	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) < 4 {
		return pos, fmt.Errorf("fen: expected at least 4 fields, got %d", len(fields))
	}

	// Piece placement, rank 8 down to rank 1.
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return pos, fmt.Errorf("fen: expected 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := PieceFromChar(c)
			if piece == NoPiece {
				return pos, fmt.Errorf("fen: invalid piece %q", c)
			}
			if file > 7 {
				return pos, fmt.Errorf("fen: rank %d overflows", rank+1)
			}
			sq := NewSquare(file, rank)
			pos.Squares[sq] = piece
			if piece.Type() == King {
				pos.KingSquare[piece.Color()] = sq
			}
			file++
		}
		if file != 8 {
			return pos, fmt.Errorf("fen: rank %d has %d files", rank+1, file)
		}
	}

	switch fields[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return pos, fmt.Errorf("fen: invalid side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for j := 0; j < len(fields[2]); j++ {
			switch fields[2][j] {
			case 'K':
				pos.CastlingRights |= WhiteKingSide
			case 'Q':
				pos.CastlingRights |= WhiteQueenSide
			case 'k':
				pos.CastlingRights |= BlackKingSide
			case 'q':
				pos.CastlingRights |= BlackQueenSide
			default:
				return pos, fmt.Errorf("fen: invalid castling rights %q", fields[2])
			}
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return pos, fmt.Errorf("fen: %w", err)
		}
		pos.EnPassant = sq
	}

	pos.HalfMoveClock = 0
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil {
			return pos, fmt.Errorf("fen: invalid half-move clock %q", fields[4])
		}
		pos.HalfMoveClock = n
	}
	pos.FullMoveNumber = 1
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil {
			return pos, fmt.Errorf("fen: invalid move number %q", fields[5])
		}
		pos.FullMoveNumber = n
	}

	if pos.KingSquare[White] == NoSquare || pos.KingSquare[Black] == NoSquare {
		return pos, fmt.Errorf("fen: both kings must be on the board")
	}

	pos.Hash = pos.ComputeHash()
	return pos, nil
}

// FEN serializes the position back to a FEN string.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.Squares[NewSquare(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))
	return sb.String()
}
