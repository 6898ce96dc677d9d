package board

import "strings"

// SAN renders a move in Standard Algebraic Notation for the given
// position (the position the move is played from). Check and mate
// suffixes are derived from the resulting position.
func (p *Position) SAN(m Move) string {
	if !m.IsValid() {
		return "--"
	}
	if m.Kind == Castling {
		san := "O-O"
		if m.To.File() == 2 {
			san = "O-O-O"
		}
		return san + p.sanSuffix(m)
	}

	moving := p.Squares[m.From]
	var sb strings.Builder

	switch moving.Type() {
	case Pawn:
		if m.IsCapture() {
			sb.WriteByte(byte('a' + m.From.File()))
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("NBRQ"[m.Promotion-Knight])
		}
	default:
		sb.WriteByte("NBRQK"[moving.Type()-Knight])
		sb.WriteString(p.sanDisambiguation(m, moving))
		if m.IsCapture() {
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
	}

	return sb.String() + p.sanSuffix(m)
}

// sanDisambiguation returns the file/rank qualifiers needed when another
// piece of the same type could also reach the destination.
func (p *Position) sanDisambiguation(m Move, moving Piece) string {
	sameFile, sameRank, ambiguous := false, false, false
	for _, other := range p.GenerateMoves() {
		if other.To != m.To || other.From == m.From {
			continue
		}
		if p.Squares[other.From] != moving {
			continue
		}
		ambiguous = true
		if other.From.File() == m.From.File() {
			sameFile = true
		}
		if other.From.Rank() == m.From.Rank() {
			sameRank = true
		}
	}
	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(byte('a' + m.From.File()))
	case !sameRank:
		return string(byte('1' + m.From.Rank()))
	default:
		return m.From.String()
	}
}

// sanSuffix returns "+", "#" or "" depending on the state after the move.
func (p *Position) sanSuffix(m Move) string {
	child := p.MakeMove(m)
	if !child.InCheck(child.SideToMove) {
		return ""
	}
	if len(child.GenerateMoves()) == 0 {
		return "#"
	}
	return "+"
}
