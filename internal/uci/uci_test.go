package uci

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/star-ga/NikolaChess/internal/board"
	"github.com/star-ga/NikolaChess/internal/engine"
	"github.com/star-ga/NikolaChess/internal/pgn"
	"github.com/star-ga/NikolaChess/internal/storage"
	"github.com/star-ga/NikolaChess/internal/tablebase"
)

// runSession feeds a scripted command sequence through the handler and
// returns the full output.
func runSession(t *testing.T, commands ...string) string {
	t.Helper()
	var out strings.Builder
	u := New(strings.NewReader(strings.Join(commands, "\n")), &out)
	u.Run()
	return out.String()
}

func TestUCIHandshake(t *testing.T) {
	out := runSession(t, "uci", "isready", "quit")

	for _, want := range []string{
		"id name NikolaChess",
		"option name Threads",
		"option name MultiPV",
		"option name HashShards",
		"uciok",
		"readyok",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("handshake output missing %q:\n%s", want, out)
		}
	}
}

func TestGoReturnsBestMove(t *testing.T) {
	out := runSession(t, "position startpos", "go depth 1", "quit")

	var bestmove string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "bestmove ") {
			bestmove = strings.TrimPrefix(line, "bestmove ")
		}
	}
	if bestmove == "" {
		t.Fatalf("no bestmove in output:\n%s", out)
	}

	pos := board.NewPosition()
	from, err := board.ParseSquare(bestmove[:2])
	if err != nil {
		t.Fatal(err)
	}
	to, err := board.ParseSquare(bestmove[2:4])
	if err != nil {
		t.Fatal(err)
	}
	if board.FindMove(pos.GenerateMoves(), from, to, board.NoPieceType) == board.NoMove {
		t.Errorf("bestmove %s is not legal from the start position", bestmove)
	}
}

func TestGoEmitsInfoLines(t *testing.T) {
	out := runSession(t, "position startpos", "go depth 2", "quit")
	if !strings.Contains(out, "info depth 1") || !strings.Contains(out, "info depth 2") {
		t.Errorf("missing info lines:\n%s", out)
	}
	if !strings.Contains(out, "score cp") {
		t.Errorf("info lines missing centipawn score:\n%s", out)
	}
	if !strings.Contains(out, " pv ") {
		t.Errorf("info lines missing pv:\n%s", out)
	}
}

func TestPositionWithMoves(t *testing.T) {
	out := runSession(t, "position startpos moves e2e4 e7e5", "d", "quit")
	// After 1.e4 e5 both central pawns show up in the board dump.
	if !strings.Contains(out, "P") || !strings.Contains(out, "p") {
		t.Errorf("board dump missing pieces:\n%s", out)
	}
}

func TestPositionFEN(t *testing.T) {
	out := runSession(t,
		"position fen 6k1/5ppp/8/8/8/8/8/R3K3 w Q - 0 1",
		"go depth 3",
		"quit",
	)
	if !strings.Contains(out, "bestmove a1a8") {
		t.Errorf("mate in one not found:\n%s", out)
	}
	if !strings.Contains(out, "score mate 1") {
		t.Errorf("mate score not reported:\n%s", out)
	}
}

func TestMateInOneReportedFromMovesList(t *testing.T) {
	// Scholar's mate setup: after the listed moves White mates with Qxf7.
	out := runSession(t,
		"position startpos moves e2e4 e7e5 f1c4 b8c6 d1h5 g8f6",
		"go depth 3",
		"quit",
	)
	if !strings.Contains(out, "bestmove h5f7") {
		t.Errorf("expected Qxf7 mate:\n%s", out)
	}
}

func TestSetOptionMultiPV(t *testing.T) {
	out := runSession(t,
		"setoption name MultiPV value 3",
		"position startpos",
		"go depth 2",
		"quit",
	)
	for _, want := range []string{"multipv 1", "multipv 2", "multipv 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("multi-PV output missing %q:\n%s", want, out)
		}
	}
}

func TestStalemateReportsNullMove(t *testing.T) {
	out := runSession(t,
		"position fen 7k/5K2/6Q1/8/8/8/8/8 b - - 0 1",
		"go depth 2",
		"quit",
	)
	if !strings.Contains(out, "bestmove 0000") {
		t.Errorf("stalemate should answer with the null move:\n%s", out)
	}
}

func TestPerftCommand(t *testing.T) {
	out := runSession(t, "position startpos", "perft 2", "quit")
	if !strings.Contains(out, "perft(2) = 400") {
		t.Errorf("perft output wrong:\n%s", out)
	}
}

func TestGameRecordSavedOnQuit(t *testing.T) {
	dir := t.TempDir()
	var out strings.Builder
	u := New(strings.NewReader(strings.Join([]string{
		"position startpos moves e2e4 e7e5",
		"position startpos moves e2e4 e7e5 g1f3",
		"quit",
	}, "\n")), &out)
	u.SetGamesDir(dir)
	u.Run()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	// Successive position commands extend one game, not start new ones.
	if len(entries) != 1 {
		t.Fatalf("games dir holds %d files, want 1", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"1. e4 e5", "2. Nf3", "[GameId "} {
		if !strings.Contains(text, want) {
			t.Errorf("game record missing %q:\n%s", want, text)
		}
	}
}

func TestNewGameCommandClosesRecord(t *testing.T) {
	dir := t.TempDir()
	var out strings.Builder
	u := New(strings.NewReader(strings.Join([]string{
		"position startpos moves e2e4",
		"ucinewgame",
		"quit",
	}, "\n")), &out)
	u.SetGamesDir(dir)
	u.Run()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	// The played game is saved at ucinewgame; the fresh empty game is
	// dropped at quit.
	if len(entries) != 1 {
		t.Fatalf("games dir holds %d files, want 1", len(entries))
	}
}

func TestGameResultClassification(t *testing.T) {
	cases := []struct {
		fen  string
		want string
	}{
		// Fool's mate: white is checkmated.
		{"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", pgn.ResultBlackWins},
		{"7k/5K2/6Q1/8/8/8/8/8 b - - 0 1", pgn.ResultDraw},
		{board.StartFEN, pgn.ResultOngoing},
	}
	for _, c := range cases {
		pos, err := board.ParseFEN(c.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", c.fen, err)
		}
		if got := gameResult(pos); got != c.want {
			t.Errorf("gameResult(%q) = %s, want %s", c.fen, got, c.want)
		}
	}
}

func TestConfigureBacksProbeCacheWithStore(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	var out strings.Builder
	u := New(strings.NewReader(""), &out)
	u.Configure(store, engine.DefaultOptions(), "", true, tablebase.DefaultEndpoint)

	cp, ok := u.prober.(*tablebase.CachedProber)
	if !ok {
		t.Fatalf("prober is %T, want *tablebase.CachedProber", u.prober)
	}
	if !cp.PersistentCacheEnabled() {
		t.Error("probe cache is not backed by the open store")
	}
}

func TestSearchStatsAccumulateAcrossSearches(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	var out strings.Builder
	u := New(strings.NewReader(strings.Join([]string{
		"position startpos",
		"go depth 1",
		"go depth 1",
		"quit",
	}, "\n")), &out)
	u.Configure(store, engine.DefaultOptions(), "", false, "")
	u.Run()

	stats, err := store.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Searches != 2 {
		t.Errorf("searches = %d, want 2", stats.Searches)
	}
	if stats.Nodes == 0 {
		t.Error("node count was never recorded")
	}
	if stats.SearchTime <= 0 {
		t.Error("search time was never recorded")
	}
}
