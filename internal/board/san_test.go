package board

import "testing"

func TestSAN(t *testing.T) {
	cases := []struct {
		fen  string
		uci  string
		want string
	}{
		{StartFEN, "e2e4", "e4"},
		{StartFEN, "g1f3", "Nf3"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1", "O-O"},
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1", "O-O-O"},
		{"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2", "e4d5", "exd5"},
		// Two knights can reach d2, the file disambiguates.
		{"4k3/8/8/8/8/5N2/8/1N2K3 w - - 0 1", "f3d2", "Nfd2"},
		{"7k/4P3/8/8/8/8/8/4K3 w - - 0 1", "e7e8q", "e8=Q+"},
		{"6k1/5ppp/8/8/8/8/8/R3K3 w Q - 0 1", "a1a8", "Ra8#"},
	}
	for _, tc := range cases {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
		}
		m := mustMove(t, &pos, tc.uci)
		if got := pos.SAN(m); got != tc.want {
			t.Errorf("SAN(%s) in %q = %q, want %q", tc.uci, tc.fen, got, tc.want)
		}
	}
}

func TestMoveString(t *testing.T) {
	m := Move{From: E2, To: E4, Promotion: NoPieceType, Captured: NoPiece}
	if got := m.String(); got != "e2e4" {
		t.Errorf("Move.String() = %q, want %q", got, "e2e4")
	}
	promo := Move{From: NewSquare(4, 6), To: NewSquare(4, 7), Promotion: Queen, Captured: NoPiece}
	if got := promo.String(); got != "e7e8q" {
		t.Errorf("promotion Move.String() = %q, want %q", got, "e7e8q")
	}
}
