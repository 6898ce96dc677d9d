// Package uci speaks the Universal Chess Interface protocol, driving
// the search engine from a controlling GUI or match runner.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/star-ga/NikolaChess/internal/board"
	"github.com/star-ga/NikolaChess/internal/book"
	"github.com/star-ga/NikolaChess/internal/engine"
	"github.com/star-ga/NikolaChess/internal/pgn"
	"github.com/star-ga/NikolaChess/internal/storage"
	"github.com/star-ga/NikolaChess/internal/tablebase"
)

const (
	engineName   = "NikolaChess"
	engineAuthor = "The NikolaChess developers"
)

// UCI is the protocol handler. It owns the engine, the current game
// position, and the optional opening book and tablebase collaborators.
type UCI struct {
	in  io.Reader
	out io.Writer

	opts     engine.Options
	eng      *engine.Engine
	position board.Position

	// Hashes of all positions reached in the game, for repetition
	// detection across the search root.
	positionHashes []uint64

	openingBook *book.Book
	bookFile    string

	useTablebase bool
	tbEndpoint   string
	prober       tablebase.Prober

	// Persistence collaborators. A nil store disables the probe cache
	// and statistics; an empty gamesDir disables game records.
	store      *storage.Storage
	stats      *storage.SearchStats
	tbHitsSeen uint64

	game      *pgn.Game
	gameMoves []board.Move
	gamesDir  string

	searchDone chan struct{}
}

// New creates a protocol handler reading commands from in and writing
// responses to out.
func New(in io.Reader, out io.Writer) *UCI {
	opts := engine.DefaultOptions()
	return &UCI{
		in:       in,
		out:      out,
		opts:     opts,
		eng:      engine.New(opts),
		position: board.NewPosition(),
	}
}

// Configure applies previously saved engine settings before Run. The
// store, when non-nil, backs the tablebase probe cache and accumulates
// lifetime search statistics.
func (u *UCI) Configure(store *storage.Storage, opts engine.Options, bookFile string, useTablebase bool, tbEndpoint string) {
	u.store = store
	u.stats = &storage.SearchStats{}
	if store != nil {
		if stats, err := store.LoadStats(); err == nil {
			u.stats = stats
		} else {
			log.Printf("uci: load stats: %v", err)
		}
	}
	u.opts = opts
	u.bookFile = bookFile
	u.useTablebase = useTablebase
	u.tbEndpoint = tbEndpoint
	u.eng = engine.New(u.opts)
	u.loadBook()
	u.configureProber()
}

// SetGamesDir enables PGN game recording into dir.
func (u *UCI) SetGamesDir(dir string) { u.gamesDir = dir }

// Options returns the effective engine options, including any changes
// made through setoption commands.
func (u *UCI) Options() engine.Options { return u.opts }

// BookFile returns the configured opening book path, empty if none.
func (u *UCI) BookFile() string { return u.bookFile }

// UseTablebase reports whether online tablebase probing is enabled.
func (u *UCI) UseTablebase() bool { return u.useTablebase }

func (u *UCI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Run processes commands until quit or end of input.
func (u *UCI) Run() {
	scanner := bufio.NewScanner(u.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.printf("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			u.saveGame()
			return
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			fmt.Fprintln(u.out, u.position.String())
		case "perft":
			u.handlePerft(args)
		}
	}
	// Input closed without a quit command.
	u.waitForSearch()
	u.saveGame()
}

func (u *UCI) handleUCI() {
	u.printf("id name %s", engineName)
	u.printf("id author %s", engineAuthor)
	u.printf("")
	u.printf("option name Threads type spin default 1 min 1 max 64")
	u.printf("option name HashShards type spin default %d min 1 max 1024", engine.DefaultTTShards)
	u.printf("option name MultiPV type spin default 1 min 1 max 8")
	u.printf("option name MoveOverhead type spin default 30 min 0 max 5000")
	u.printf("option name LimitStrength type check default false")
	u.printf("option name Strength type spin default 20 min 0 max 20")
	u.printf("option name BookFile type string default <empty>")
	u.printf("option name UseTablebase type check default false")
	u.printf("option name TablebaseEndpoint type string default %s", tablebase.DefaultEndpoint)
	u.printf("uciok")
}

func (u *UCI) handleNewGame() {
	u.waitForSearch()
	u.saveGame()
	u.eng = engine.New(u.opts)
	u.configureProber()
	u.position = board.NewPosition()
	u.positionHashes = []uint64{u.position.Hash}
}

// handlePosition parses "position [startpos | fen <fen>] [moves ...]".
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	u.waitForSearch()

	var moveStart int
	switch args[0] {
	case "startpos":
		u.position = board.NewPosition()
		moveStart = 1
	case "fen":
		fenParts := args[1:]
		for i, part := range fenParts {
			if part == "moves" {
				fenParts = fenParts[:i]
				break
			}
		}
		pos, err := board.ParseFEN(strings.Join(fenParts, " "))
		if err != nil {
			log.Printf("uci: bad fen %q: %v", strings.Join(fenParts, " "), err)
			return
		}
		u.position = pos
		moveStart = 1 + len(fenParts)
	default:
		return
	}

	u.positionHashes = []uint64{u.position.Hash}

	start := u.position
	var played []board.Move
	if moveStart < len(args) && args[moveStart] == "moves" {
		for _, uciMove := range args[moveStart+1:] {
			m := u.parseMove(uciMove)
			if m == board.NoMove {
				log.Printf("uci: illegal move %q in position command", uciMove)
				return
			}
			u.position = u.position.MakeMove(m)
			u.positionHashes = append(u.positionHashes, u.position.Hash)
			played = append(played, m)
		}
	}
	u.recordGame(start, played)
}

func (u *UCI) parseMove(s string) board.Move {
	if len(s) < 4 {
		return board.NoMove
	}
	from, err := board.ParseSquare(s[:2])
	if err != nil {
		return board.NoMove
	}
	to, err := board.ParseSquare(s[2:4])
	if err != nil {
		return board.NoMove
	}
	promo := board.NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			promo = board.Queen
		case 'r':
			promo = board.Rook
		case 'b':
			promo = board.Bishop
		case 'n':
			promo = board.Knight
		}
	}
	return board.FindMove(u.position.GenerateMoves(), from, to, promo)
}

// goParams carries the parsed arguments of a "go" command.
type goParams struct {
	depth     int
	moveTime  int
	infinite  bool
	wtime     int
	btime     int
	winc      int
	binc      int
	movesToGo int
}

func parseGoParams(args []string) goParams {
	p := goParams{depth: engine.MaxPly}
	intArg := func(i int) int {
		if i >= len(args) {
			return 0
		}
		n, _ := strconv.Atoi(args[i])
		return n
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			p.depth = intArg(i + 1)
		case "movetime":
			p.moveTime = intArg(i + 1)
		case "infinite":
			p.infinite = true
		case "wtime":
			p.wtime = intArg(i + 1)
		case "btime":
			p.btime = intArg(i + 1)
		case "winc":
			p.winc = intArg(i + 1)
		case "binc":
			p.binc = intArg(i + 1)
		case "movestogo":
			p.movesToGo = intArg(i + 1)
		}
	}
	return p
}

func (u *UCI) handleGo(args []string) {
	u.waitForSearch()

	// Book moves answer instantly while the game is still in theory.
	if u.openingBook != nil {
		if m, ok := u.openingBook.Probe(&u.position); ok {
			u.printf("bestmove %s", m)
			u.recordBookHit()
			return
		}
	}

	p := parseGoParams(args)
	if p.depth <= 0 || p.depth > engine.MaxPly {
		p.depth = engine.MaxPly
	}

	timeLimit := p.moveTime
	if p.infinite {
		timeLimit = int((24 * time.Hour).Milliseconds())
	} else if timeLimit <= 0 {
		remaining, inc := p.wtime, p.winc
		if u.position.SideToMove == board.Black {
			remaining, inc = p.btime, p.binc
		}
		u.eng.SetClock(engine.Clock{
			Remaining: time.Duration(remaining) * time.Millisecond,
			Increment: time.Duration(inc) * time.Millisecond,
			MovesToGo: p.movesToGo,
		})
	}

	// The current position is pushed by the search itself; only the
	// earlier game positions go into the history.
	if n := len(u.positionHashes); n > 0 {
		u.eng.SetPositionHistory(u.positionHashes[:n-1])
	} else {
		u.eng.SetPositionHistory(nil)
	}
	u.eng.OnInfo = u.sendInfo

	pos := u.position
	u.searchDone = make(chan struct{})
	go func() {
		defer close(u.searchDone)
		started := time.Now()
		var move board.Move
		if u.opts.MultiPV > 1 {
			move = u.searchMultiPV(&pos, p.depth, timeLimit)
		} else {
			move = u.eng.FindBestMove(&pos, p.depth, timeLimit)
		}
		if move == board.NoMove {
			u.printf("bestmove 0000")
		} else {
			u.printf("bestmove %s", move)
		}
		u.recordSearchStats(time.Since(started))
	}()
}

// searchMultiPV reports the ranked lines and returns the top move.
func (u *UCI) searchMultiPV(pos *board.Position, depth, timeLimit int) board.Move {
	lines := u.eng.SearchMultiPV(pos, depth, timeLimit)
	if len(lines) == 0 {
		return board.NoMove
	}
	for i, line := range lines {
		u.sendInfo(engine.SearchInfo{
			Depth:   depth,
			MultiPV: i + 1,
			Score:   line.Score,
			Nodes:   u.eng.Nodes(),
			PV:      line.PV,
		})
	}
	return lines[0].Move
}

func (u *UCI) sendInfo(info engine.SearchInfo) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d multipv %d", info.Depth, info.MultiPV)
	if info.Score > engine.MateScore-engine.MaxPly {
		fmt.Fprintf(&sb, " score mate %d", (engine.MateScore-info.Score+1)/2)
	} else if info.Score < -engine.MateScore+engine.MaxPly {
		fmt.Fprintf(&sb, " score mate %d", -(engine.MateScore+info.Score+1)/2)
	} else {
		fmt.Fprintf(&sb, " score cp %d", info.Score)
	}
	fmt.Fprintf(&sb, " nodes %d time %d", info.Nodes, info.Elapsed.Milliseconds())
	if len(info.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range info.PV {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	u.printf("%s", sb.String())
}

func (u *UCI) handleStop() {
	u.eng.Stop()
	u.waitForSearch()
}

func (u *UCI) waitForSearch() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
}

func (u *UCI) handleSetOption(args []string) {
	var name, value string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "name":
			j := i + 1
			for ; j < len(args) && args[j] != "value"; j++ {
			}
			name = strings.Join(args[i+1:j], " ")
			i = j - 1
		case "value":
			value = strings.Join(args[i+1:], " ")
			i = len(args)
		}
	}

	switch strings.ToLower(name) {
	case "threads":
		if n, err := strconv.Atoi(value); err == nil {
			u.opts.Threads = n
		}
	case "hashshards":
		if n, err := strconv.Atoi(value); err == nil {
			u.opts.TTShards = n
		}
	case "multipv":
		if n, err := strconv.Atoi(value); err == nil {
			u.opts.MultiPV = n
		}
	case "moveoverhead":
		if n, err := strconv.Atoi(value); err == nil {
			u.opts.MoveOverhead = time.Duration(n) * time.Millisecond
		}
	case "limitstrength":
		u.opts.LimitStrength = strings.EqualFold(value, "true")
	case "strength":
		if n, err := strconv.Atoi(value); err == nil {
			u.opts.Strength = n
		}
	case "bookfile":
		u.bookFile = value
		u.loadBook()
	case "usetablebase":
		u.useTablebase = strings.EqualFold(value, "true")
	case "tablebaseendpoint":
		u.tbEndpoint = value
	default:
		log.Printf("uci: unknown option %q", name)
		return
	}

	u.eng = engine.New(u.opts)
	u.configureProber()
}

func (u *UCI) loadBook() {
	if u.bookFile == "" || u.bookFile == "<empty>" {
		u.openingBook = nil
		return
	}
	b, err := book.LoadPolyglot(u.bookFile)
	if err != nil {
		log.Printf("uci: book %q not loaded: %v", u.bookFile, err)
		u.openingBook = nil
		return
	}
	u.openingBook = b
	log.Printf("uci: loaded book %q with %d positions", u.bookFile, b.Size())
}

func (u *UCI) configureProber() {
	u.tbHitsSeen = 0
	if !u.useTablebase {
		u.prober = nil
		u.eng.SetProber(nil)
		return
	}
	prober := tablebase.NewLichessProber(u.tbEndpoint)
	u.prober = tablebase.NewCachedProber(prober, u.store, 0)
	u.eng.SetProber(u.prober)
}

// recordGame extends the running game record with the moves of the
// latest position command, starting a fresh record when the command
// does not continue the previous one.
func (u *UCI) recordGame(start board.Position, moves []board.Move) {
	continues := u.game != nil && u.game.StartFEN() == start.FEN() &&
		len(moves) >= len(u.gameMoves)
	if continues {
		for i, m := range u.gameMoves {
			if moves[i] != m {
				continues = false
				break
			}
		}
	}
	if !continues {
		u.saveGame()
		u.game = pgn.NewGame(start)
	}
	for _, m := range moves[len(u.gameMoves):] {
		if err := u.game.AddMove(m); err != nil {
			log.Printf("uci: game record: %v", err)
			return
		}
		u.gameMoves = append(u.gameMoves, m)
	}
}

// saveGame writes the finished record to the games directory and drops
// it. Records with no moves, and handlers with no games directory, are
// discarded silently.
func (u *UCI) saveGame() {
	game := u.game
	u.game = nil
	u.gameMoves = u.gameMoves[:0]
	if game == nil || game.MoveCount() == 0 || u.gamesDir == "" {
		return
	}
	game.Result = gameResult(game.Position())
	if _, err := game.Save(u.gamesDir); err != nil {
		log.Printf("uci: save game: %v", err)
	}
}

// gameResult classifies the final position for the PGN Result tag.
func gameResult(pos board.Position) string {
	if len(pos.GenerateMoves()) > 0 {
		return pgn.ResultOngoing
	}
	if !pos.InCheck(pos.SideToMove) {
		return pgn.ResultDraw
	}
	if pos.SideToMove == board.White {
		return pgn.ResultBlackWins
	}
	return pgn.ResultWhiteWins
}

func (u *UCI) recordBookHit() {
	if u.store == nil {
		return
	}
	u.stats.BookHits++
	u.saveStats()
}

// recordSearchStats folds one completed search into the lifetime
// statistics and persists them.
func (u *UCI) recordSearchStats(elapsed time.Duration) {
	if u.store == nil {
		return
	}
	u.stats.Searches++
	u.stats.Nodes += u.eng.Nodes()
	u.stats.SearchTime += elapsed
	if cp, ok := u.prober.(*tablebase.CachedProber); ok {
		hits := cp.Hits()
		u.stats.TBHits += hits - u.tbHitsSeen
		u.tbHitsSeen = hits
	}
	u.saveStats()
}

func (u *UCI) saveStats() {
	if err := u.store.SaveStats(u.stats); err != nil {
		log.Printf("uci: save stats: %v", err)
	}
}

func (u *UCI) handlePerft(args []string) {
	depth := 1
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			depth = n
		}
	}
	start := time.Now()
	nodes := perft(&u.position, depth)
	elapsed := time.Since(start)
	u.printf("perft(%d) = %d in %v", depth, nodes, elapsed)
}

func perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		child := pos.MakeMove(m)
		nodes += perft(&child, depth-1)
	}
	return nodes
}
