package room

import (
	"sync"
	"testing"
	"time"

	"arcade-arena/game"
	"arcade-arena/protocol"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	code   int
}

func (f *fakeConn) Send(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(b))
	copy(cp, b)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) CloseWithStatus(code int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.code = code
	return nil
}

// lastOfType scans received frames for the most recent envelope of type t.
func (f *fakeConn) lastOfType(t *testing.T, typ string) (protocol.Envelope, bool) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.frames) - 1; i >= 0; i-- {
		env, err := protocol.DecodeEnvelope(f.frames[i])
		if err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if env.T == typ {
			return env, true
		}
	}
	return protocol.Envelope{}, false
}

func (f *fakeConn) countOfType(t *testing.T, typ string) int {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.frames {
		env, err := protocol.DecodeEnvelope(b)
		if err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if env.T == typ {
			n++
		}
	}
	return n
}

type fakeReporter struct {
	mu      sync.Mutex
	results []Result
}

func (f *fakeReporter) ReportResult(res Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
}

func (f *fakeReporter) wait(t *testing.T, want int) []Result {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		n := len(f.results)
		out := append([]Result(nil), f.results...)
		f.mu.Unlock()
		if n >= want {
			return out
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d result(s)", want)
	return nil
}

func testInit(tournamentID, matchID string) protocol.Init {
	return protocol.Init{
		Config:       game.DefaultConfig(),
		TournamentID: tournamentID,
		MatchID:      matchID,
		LeftPlayer:   protocol.PlayerRef{UserID: "u1", Alias: "alpha"},
		RightPlayer:  protocol.PlayerRef{UserID: "u2", Alias: "beta"},
	}
}

// join drives commands directly through handleCommand, which is the same
// serialization the Run loop provides.
func join(t *testing.T, r *Room, c Conn) int {
	t.Helper()
	reply := make(chan JoinResult, 1)
	r.handleCommand(Join{Conn: c, Reply: reply})
	return (<-reply).Side
}

func TestJoinAssignsSidesInArrivalOrder(t *testing.T) {
	r := New("k")
	left, right, third := &fakeConn{}, &fakeConn{}, &fakeConn{}

	if got := join(t, r, left); got != game.SideLeft {
		t.Fatalf("first join side = %d, want left", got)
	}
	if got := join(t, r, right); got != game.SideRight {
		t.Fatalf("second join side = %d, want right", got)
	}
	if got := join(t, r, third); got != game.SideNone {
		t.Fatalf("third join side = %d, want rejected", got)
	}
	if left.closed || right.closed {
		t.Fatalf("bound connections disturbed by rejected third join")
	}
}

func TestInitNotifiesLeftThenRight(t *testing.T) {
	r := New("k")
	left, right := &fakeConn{}, &fakeConn{}
	join(t, r, left)
	join(t, r, right)

	r.handleCommand(InitMsg{Side: game.SideLeft, Init: testInit("", "")})
	if _, ok := left.lastOfType(t, protocol.MsgConnection); !ok {
		t.Fatalf("left got no connection notice after first init")
	}
	if _, ok := right.lastOfType(t, protocol.MsgConnection); ok {
		t.Fatalf("right notified before its init")
	}

	r.handleCommand(InitMsg{Side: game.SideRight, Init: testInit("", "")})
	env, ok := right.lastOfType(t, protocol.MsgConnection)
	if !ok {
		t.Fatalf("right got no connection notice after second init")
	}
	p, err := protocol.DecodePayload[protocol.Connection](env)
	if err != nil {
		t.Fatalf("decode connection: %v", err)
	}
	if p.Side != "right" {
		t.Fatalf("notice side = %q, want right", p.Side)
	}
}

func TestInvalidInitSeversConnection(t *testing.T) {
	r := New("k")
	left := &fakeConn{}
	join(t, r, left)

	bad := testInit("", "")
	bad.Config.Width = 0
	r.handleCommand(InitMsg{Side: game.SideLeft, Init: bad})

	if !left.closed || left.code != 1008 {
		t.Fatalf("invalid init not closed with policy violation: closed=%v code=%d", left.closed, left.code)
	}
	if r.inited {
		t.Fatalf("room config mutated by invalid init")
	}
}

func TestReadyHandshakeAndCountdownServe(t *testing.T) {
	rep := &fakeReporter{}
	r := New("k")
	r.Reporter = rep
	r.Countdown = 20 * time.Millisecond
	left, right := &fakeConn{}, &fakeConn{}
	join(t, r, left)
	join(t, r, right)
	go r.Run()
	defer r.Stop()

	r.Inbox <- InitMsg{Side: game.SideLeft, Init: testInit("", "")}
	r.Inbox <- InitMsg{Side: game.SideRight, Init: testInit("", "")}
	r.Inbox <- Ready{Side: game.SideLeft}
	r.Inbox <- Ready{Side: game.SideRight}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if env, ok := left.lastOfType(t, protocol.MsgSnapshot); ok {
			snap, err := protocol.DecodePayload[protocol.Snapshot](env)
			if err != nil {
				t.Fatalf("decode snapshot: %v", err)
			}
			if snap.Running {
				if snap.BallVX == 0 {
					t.Fatalf("running snapshot with dead ball")
				}
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("serve never happened after both sides readied")
}

func TestPauseRevokesCountdown(t *testing.T) {
	r := New("k")
	left, right := &fakeConn{}, &fakeConn{}
	join(t, r, left)
	join(t, r, right)

	r.handleCommand(InitMsg{Side: game.SideLeft, Init: testInit("", "")})
	r.handleCommand(Ready{Side: game.SideLeft})
	r.handleCommand(Ready{Side: game.SideRight})
	gen := r.serveGen
	r.handleCommand(Pause{Side: game.SideLeft})

	// The deferred serve must notice the stale generation and do nothing.
	r.handleCommand(serveCmd{gen: gen})
	if r.state.Running {
		t.Fatalf("stale countdown served into a paused room")
	}
	if r.ready[game.SideLeft] || r.ready[game.SideRight] {
		t.Fatalf("pause did not reset readiness")
	}
}

func TestDuplicateReadyKeepsCountdownArmed(t *testing.T) {
	r := New("k")
	left, right := &fakeConn{}, &fakeConn{}
	join(t, r, left)
	join(t, r, right)
	r.handleCommand(InitMsg{Side: game.SideLeft, Init: testInit("", "")})

	r.handleCommand(Ready{Side: game.SideLeft})
	r.handleCommand(Ready{Side: game.SideRight})
	gen := r.serveGen

	// A repeated start from an already-ready side must not postpone the
	// serve that both sides already agreed to.
	r.handleCommand(Ready{Side: game.SideLeft})
	if r.serveGen != gen {
		t.Fatalf("duplicate ready re-armed the countdown: gen %d -> %d", gen, r.serveGen)
	}
	r.handleCommand(serveCmd{gen: gen})
	if !r.state.Running {
		t.Fatalf("original countdown no longer serves after a duplicate ready")
	}
}

func TestDisconnectForfeitsToSurvivor(t *testing.T) {
	rep := &fakeReporter{}
	r := New("k")
	r.Reporter = rep
	left, right := &fakeConn{}, &fakeConn{}
	join(t, r, left)
	join(t, r, right)

	r.handleCommand(InitMsg{Side: game.SideLeft, Init: testInit("t1", "m1")})
	r.handleCommand(Leave{Side: game.SideLeft})

	results := rep.wait(t, 1)
	res := results[0]
	if !res.Forfeit {
		t.Fatalf("result not marked forfeit")
	}
	if res.WinnerSide != game.SideRight || res.WinnerID != "u2" {
		t.Fatalf("winner = side %d id %q, want right/u2", res.WinnerSide, res.WinnerID)
	}
	if res.TournamentID != "t1" || res.MatchID != "m1" {
		t.Fatalf("result lost bracket linkage: %q %q", res.TournamentID, res.MatchID)
	}
	if n := right.countOfType(t, protocol.MsgResult); n != 1 {
		t.Fatalf("survivor received %d result frames, want 1", n)
	}
	if !right.closed {
		t.Fatalf("survivor connection left open after terminal result")
	}
}

func TestNaturalWinReportsOnceAndIgnoresLateDisconnect(t *testing.T) {
	rep := &fakeReporter{}
	r := New("k")
	r.Reporter = rep
	left, right := &fakeConn{}, &fakeConn{}
	join(t, r, left)
	join(t, r, right)

	init := testInit("t1", "m1")
	init.Config.WinningScore = 1
	r.handleCommand(InitMsg{Side: game.SideLeft, Init: init})

	// Drive the ball over the right goal line by hand, then tick.
	r.state.Running = true
	r.state.BallX = r.cfg.Width + r.cfg.BallRadius + 1
	r.state.BallVX = 1
	r.handleTick()

	results := rep.wait(t, 1)
	if results[0].Forfeit {
		t.Fatalf("natural win reported as forfeit")
	}
	if results[0].WinnerID != "u1" {
		t.Fatalf("winner = %q, want u1", results[0].WinnerID)
	}
	if results[0].LeftScore != 1 || results[0].RightScore != 0 {
		t.Fatalf("score = %d-%d, want 1-0", results[0].LeftScore, results[0].RightScore)
	}
	if len(results[0].ScoreLogs) != 1 || results[0].ScoreLogs[0].ScorerSide != "left" {
		t.Fatalf("score log = %+v, want single left entry", results[0].ScoreLogs)
	}

	// A disconnect after the terminal state must not double-report.
	r.handleCommand(Leave{Side: game.SideRight})
	time.Sleep(50 * time.Millisecond)
	rep.mu.Lock()
	n := len(rep.results)
	rep.mu.Unlock()
	if n != 1 {
		t.Fatalf("reported %d results, want exactly 1", n)
	}
	if got := left.countOfType(t, protocol.MsgResult); got != 1 {
		t.Fatalf("left received %d result frames, want 1", got)
	}
}

func TestScorePausesAndResetsReadiness(t *testing.T) {
	r := New("k")
	left, right := &fakeConn{}, &fakeConn{}
	join(t, r, left)
	join(t, r, right)
	r.handleCommand(InitMsg{Side: game.SideLeft, Init: testInit("", "")})

	r.ready[game.SideLeft] = true
	r.ready[game.SideRight] = true
	r.state.Running = true
	r.state.BallX = -r.cfg.BallRadius - 1
	r.state.BallVX = -1
	r.handleTick()

	if r.state.Running {
		t.Fatalf("room still running after a point")
	}
	if r.state.Score[game.SideRight] != 1 {
		t.Fatalf("right score = %d, want 1", r.state.Score[game.SideRight])
	}
	if r.ready[game.SideLeft] || r.ready[game.SideRight] {
		t.Fatalf("readiness survived the point pause")
	}
	if r.state.BallX != r.cfg.Width/2 || r.state.BallVX != 0 {
		t.Fatalf("ball not recentered dead: x=%v vx=%v", r.state.BallX, r.state.BallVX)
	}
	env, ok := left.lastOfType(t, protocol.MsgReady)
	if !ok {
		t.Fatalf("no pause/ready broadcast after the point")
	}
	rs, err := protocol.DecodePayload[protocol.ReadyState](env)
	if err != nil {
		t.Fatalf("decode ready: %v", err)
	}
	if rs.Left || rs.Right {
		t.Fatalf("ready broadcast = %+v, want both false", rs)
	}
}

func TestManagerCreatesAndEvictsRooms(t *testing.T) {
	m := NewManager(nil)
	r := m.GetOrCreateRoom("t1:m1")
	if r == nil {
		t.Fatalf("no room created")
	}
	if again := m.GetOrCreateRoom("t1:m1"); again != r {
		t.Fatalf("same key produced a different room")
	}
	if m.NumRooms() != 1 {
		t.Fatalf("rooms = %d, want 1", m.NumRooms())
	}

	c := &fakeConn{}
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: c, Reply: reply}
	side := (<-reply).Side
	r.Inbox <- Leave{Side: side}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if m.NumRooms() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("empty room never evicted")
}
