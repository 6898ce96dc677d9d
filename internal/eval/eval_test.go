package eval

import (
	"testing"

	"github.com/star-ga/NikolaChess/internal/board"
)

func mustParse(t *testing.T, fen string) board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestStartPositionNearBalanced(t *testing.T) {
	pos := board.NewPosition()
	score := Evaluate(&pos)
	// Symmetric material, only the tempo bonus remains.
	if score != tempoBonus {
		t.Errorf("Evaluate(start) = %d, want %d", score, tempoBonus)
	}
}

func TestMaterialAdvantageIsWhitePositive(t *testing.T) {
	up := mustParse(t, "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	if score := Evaluate(&up); score < QueenValue/2 {
		t.Errorf("white up a queen scored %d", score)
	}

	down := mustParse(t, "q3k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if score := Evaluate(&down); score > -QueenValue/2 {
		t.Errorf("black up a queen scored %d", score)
	}
}

func TestSignConventionDoesNotFollowSideToMove(t *testing.T) {
	white := mustParse(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	black := mustParse(t, "4k3/8/8/8/8/8/8/R3K3 b - - 0 1")
	// White is up a rook either way; only the tempo term may differ.
	sw, sb := Evaluate(&white), Evaluate(&black)
	if sw <= 0 || sb <= 0 {
		t.Errorf("rook advantage should be positive for both side-to-move values, got %d and %d", sw, sb)
	}
	if diff := sw - sb; diff != 2*tempoBonus {
		t.Errorf("side to move changed the score by %d, want %d", diff, 2*tempoBonus)
	}
}

func TestCentralKnightBeatsRimKnight(t *testing.T) {
	central := mustParse(t, "4k3/8/8/8/4N3/8/8/4K3 w - - 0 1")
	rim := mustParse(t, "4k3/8/8/8/N7/8/8/4K3 w - - 0 1")
	if Evaluate(&central) <= Evaluate(&rim) {
		t.Error("knight on e4 should outscore knight on a4")
	}
}

func TestBishopPairBonus(t *testing.T) {
	pair := mustParse(t, "4k3/8/8/8/8/8/8/2B1KB2 w - - 0 1")
	single := mustParse(t, "4k3/8/8/8/8/8/8/2B1K3 w - - 0 1")
	gap := Evaluate(&pair) - Evaluate(&single)
	if gap <= BishopValue {
		t.Errorf("second bishop added only %d, want more than its raw value", gap)
	}
}
