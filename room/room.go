package room

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"arcade-arena/game"
	"arcade-arena/protocol"

	"github.com/fasthttp/websocket"
)

// Room owns one match's authoritative state. A single Run goroutine is the
// only writer: the tick timer, the broadcast cadence, inbound messages and
// disconnect callbacks all go through Inbox.
type Room struct {
	Inbox chan any
	Key   string

	// Set before Run; Countdown is shortened in tests.
	Countdown time.Duration
	Reporter  ResultReporter
	OnEmpty   func(key string)

	tickHz         int
	broadcastEvery int

	cfg          game.Config
	inited       bool
	initCount    int
	tournamentID string
	matchID      string
	players      [2]protocol.PlayerRef

	state    game.State
	conns    [2]Conn
	ready    [2]bool
	finished bool

	startedAt time.Time
	logs      []ScoreEvent
	serveGen  int
	tick      int

	quit     chan struct{}
	stopOnce sync.Once
}

func New(key string) *Room {
	broadcastEvery := protocol.SimTickHz / protocol.BroadcastHz
	if broadcastEvery <= 0 {
		broadcastEvery = 1
	}
	return &Room{
		Inbox:          make(chan any, 256),
		Key:            key,
		Countdown:      protocol.ServeCountdownSec * time.Second,
		tickHz:         protocol.SimTickHz,
		broadcastEvery: broadcastEvery,
		cfg:            game.DefaultConfig(),
		state:          game.NewState(game.DefaultConfig()),
		quit:           make(chan struct{}),
	}
}

// Stop cancels the room's timers. Idempotent.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

func (r *Room) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			r.handleTick()
		}
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		c.Reply <- JoinResult{Side: r.bind(c.Conn)}
	case InitMsg:
		r.handleInit(c.Side, c.Init)
	case Ready:
		r.handleReady(c.Side)
	case SetInput:
		if !r.finished && c.Side >= 0 {
			r.state.Inputs[c.Side] = game.Input{Up: c.Input.Up, Down: c.Input.Down}
		}
	case Pause:
		r.handlePause()
	case CloseReq:
		if conn := r.conn(c.Side); conn != nil {
			_ = conn.Close()
		}
		r.handleLeave(c.Side)
	case Leave:
		r.handleLeave(c.Side)
	case serveCmd:
		r.handleServe(c.gen)
	}
}

func (r *Room) handleTick() {
	if r.finished {
		return
	}
	scored := game.Step(&r.state, r.cfg, 1/float64(r.tickHz))
	r.tick++
	if scored != game.SideNone {
		r.handleScore(scored)
		return
	}
	if r.tick%r.broadcastEvery == 0 {
		r.broadcastSnapshot()
	}
}

// bind assigns the first free side in arrival order. A full room returns
// SideNone and is otherwise untouched.
func (r *Room) bind(c Conn) int {
	for side := game.SideLeft; side <= game.SideRight; side++ {
		if r.conns[side] == nil {
			r.conns[side] = c
			return side
		}
	}
	return game.SideNone
}

func (r *Room) conn(side int) Conn {
	if side < game.SideLeft || side > game.SideRight {
		return nil
	}
	return r.conns[side]
}

func (r *Room) handleInit(side int, init protocol.Init) {
	if r.finished {
		return
	}
	if !init.Config.Valid() {
		// Hard failure: sever the sender rather than run with partial
		// parameters. The config already applied (if any) stays intact.
		log.Printf("[Room %s] invalid init from side %d, closing", r.Key, side)
		if conn := r.conn(side); conn != nil {
			_ = conn.CloseWithStatus(websocket.ClosePolicyViolation, "invalid init")
		}
		r.handleLeave(side)
		return
	}

	if !r.inited {
		r.cfg = init.Config
		r.state = game.NewState(r.cfg)
		r.tournamentID = init.TournamentID
		r.matchID = init.MatchID
		r.players[game.SideLeft] = init.LeftPlayer
		r.players[game.SideRight] = init.RightPlayer
		r.inited = true
	}

	// First init greets the left side, second the right.
	r.initCount++
	notify := game.SideNone
	switch r.initCount {
	case 1:
		notify = game.SideLeft
	case 2:
		notify = game.SideRight
	}
	if conn := r.conn(notify); conn != nil {
		r.send(conn, protocol.MsgConnection, protocol.Connection{Side: game.SideName(notify)})
	}
}

func (r *Room) handleReady(side int) {
	if r.finished || r.state.Running || !r.inited || side == game.SideNone {
		return
	}
	if r.ready[side] {
		return // a repeated start must not re-arm the countdown
	}
	r.ready[side] = true
	r.broadcastReady()

	if r.ready[game.SideLeft] && r.ready[game.SideRight] {
		r.serveGen++
		gen := r.serveGen
		time.AfterFunc(r.Countdown, func() {
			select {
			case r.Inbox <- serveCmd{gen: gen}:
			case <-r.quit:
			}
		})
	}
}

// handleServe fires when the countdown elapses. Anything that changed the
// room since the countdown was armed invalidates it.
func (r *Room) handleServe(gen int) {
	if r.finished || r.state.Running || gen != r.serveGen {
		return
	}
	if !r.ready[game.SideLeft] || !r.ready[game.SideRight] {
		return
	}
	if r.startedAt.IsZero() {
		r.startedAt = time.Now()
	}

	// Serve away from whoever scored last; first serve is a coin flip.
	dir := 1.0
	switch r.state.LastScored {
	case game.SideRight:
		dir = -1
	case game.SideLeft:
		dir = 1
	default:
		if rand.Intn(2) == 0 {
			dir = -1
		}
	}
	angle := rand.Float64()*0.8 - 0.4
	r.state.BallVX = dir * r.cfg.BallSpeed * math.Cos(angle)
	r.state.BallVY = r.cfg.BallSpeed * math.Sin(angle)
	r.state.Running = true
	r.broadcastSnapshot()
}

func (r *Room) handleScore(scored int) {
	r.logs = append(r.logs, ScoreEvent{
		Sequence:   len(r.logs) + 1,
		ScorerSide: game.SideName(scored),
		LeftScore:  r.state.Score[game.SideLeft],
		RightScore: r.state.Score[game.SideRight],
		ElapsedSec: r.elapsed(),
	})

	if r.state.Score[scored] >= r.cfg.WinningScore {
		r.finish(scored, false)
		return
	}

	// Point pause: recenter dead ball, fresh ready handshake.
	r.state.ResetBall(r.cfg)
	r.state.Running = false
	r.ready[game.SideLeft] = false
	r.ready[game.SideRight] = false
	r.serveGen++
	r.broadcastReady()
	r.broadcastSnapshot()
}

func (r *Room) handlePause() {
	if r.finished {
		return
	}
	r.state.Running = false
	r.ready[game.SideLeft] = false
	r.ready[game.SideRight] = false
	r.serveGen++
	r.broadcastReady()
	r.broadcastSnapshot()
}

func (r *Room) handleLeave(side int) {
	if side == game.SideNone || r.conns[side] == nil {
		r.checkEmpty()
		return
	}
	r.conns[side] = nil

	if !r.finished && r.inited {
		// A dropped side forfeits; the survivor wins immediately.
		other := game.SideLeft
		if side == game.SideLeft {
			other = game.SideRight
		}
		r.finish(other, true)
		return
	}
	r.checkEmpty()
}

// finish is the single terminal transition. Guarded so a race between a
// natural win and a disconnect cannot double-report.
func (r *Room) finish(winner int, forfeit bool) {
	if r.finished {
		return
	}
	r.finished = true
	r.state.Running = false
	r.serveGen++

	res := Result{
		RoomKey:      r.Key,
		TournamentID: r.tournamentID,
		MatchID:      r.matchID,
		WinnerSide:   winner,
		WinnerID:     r.players[winner].UserID,
		LeftPlayer:   r.players[game.SideLeft],
		RightPlayer:  r.players[game.SideRight],
		LeftScore:    r.state.Score[game.SideLeft],
		RightScore:   r.state.Score[game.SideRight],
		Forfeit:      forfeit,
		Config:       r.cfg,
		ScoreLogs:    append([]ScoreEvent(nil), r.logs...),
	}

	r.broadcast(protocol.MsgResult, protocol.Result{
		WinnerSide: game.SideName(winner),
		WinnerID:   res.WinnerID,
		Score:      protocol.Score{Left: res.LeftScore, Right: res.RightScore},
		Forfeit:    forfeit,
	})

	if r.Reporter != nil {
		// Fire and forget: persistence must never block teardown.
		go r.Reporter.ReportResult(res)
	}

	for side := game.SideLeft; side <= game.SideRight; side++ {
		if conn := r.conns[side]; conn != nil {
			_ = conn.CloseWithStatus(websocket.CloseNormalClosure, "match finished")
			r.conns[side] = nil
		}
	}
	r.checkEmpty()
}

func (r *Room) checkEmpty() {
	if r.conns[game.SideLeft] == nil && r.conns[game.SideRight] == nil && r.OnEmpty != nil {
		r.OnEmpty(r.Key)
	}
}

func (r *Room) elapsed() float64 {
	if r.startedAt.IsZero() {
		return 0
	}
	return time.Since(r.startedAt).Seconds()
}

func (r *Room) broadcastReady() {
	r.broadcast(protocol.MsgReady, protocol.ReadyState{
		Left:  r.ready[game.SideLeft],
		Right: r.ready[game.SideRight],
	})
}

func (r *Room) broadcastSnapshot() {
	r.broadcast(protocol.MsgSnapshot, protocol.Snapshot{
		BallX:        r.state.BallX,
		BallY:        r.state.BallY,
		BallVX:       r.state.BallVX,
		BallVY:       r.state.BallVY,
		LeftPaddleY:  r.state.PaddleY[game.SideLeft],
		RightPaddleY: r.state.PaddleY[game.SideRight],
		LeftScore:    r.state.Score[game.SideLeft],
		RightScore:   r.state.Score[game.SideRight],
		Running:      r.state.Running,
		Finished:     r.finished,
	})
}

func (r *Room) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		return
	}
	var failed []int
	for side := game.SideLeft; side <= game.SideRight; side++ {
		if conn := r.conns[side]; conn != nil {
			if err := conn.Send(b); err != nil {
				failed = append(failed, side)
			}
		}
	}
	for _, side := range failed {
		r.handleLeave(side)
	}
}

func (r *Room) send(conn Conn, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		return
	}
	_ = conn.Send(b)
}
