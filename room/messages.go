package room

import (
	"arcade-arena/game"
	"arcade-arena/protocol"
)

// Conn is the transport seen by a room. The websocket handler owns the
// real connection; rooms only push frames and ask for closure. Closure is
// ordered after frames already accepted by Send, so a terminal result
// queued before CloseWithStatus reaches the peer first.
type Conn interface {
	Send([]byte) error
	Close() error
	CloseWithStatus(code int, reason string) error
}

// Join binds a connection to the first free side, left then right.
// Side in the reply is game.SideNone when the room is already full.
type Join struct {
	Conn  Conn
	Reply chan<- JoinResult
}

type JoinResult struct {
	Side int
}

// InitMsg carries a decoded init envelope from the given side.
type InitMsg struct {
	Side int
	Init protocol.Init
}

// Ready is a side's readiness declaration (the wire `start` message).
type Ready struct {
	Side int
}

// SetInput replaces a side's paddle flags, last write wins.
type SetInput struct {
	Side  int
	Input protocol.Input
}

// Pause is a client-initiated halt; readiness resets, same as after a point.
type Pause struct {
	Side int
}

// CloseReq is a client-initiated teardown, handled like a disconnect.
type CloseReq struct {
	Side int
}

// Leave is issued by the transport when a bound connection drops.
type Leave struct {
	Side int
}

// serveCmd is the deferred countdown firing. gen guards against serving
// into a room that paused, re-readied or finished in the meantime.
type serveCmd struct {
	gen int
}

// ScoreEvent is one append-only score-log entry.
type ScoreEvent struct {
	Sequence   int     `json:"sequence"`
	ScorerSide string  `json:"scorer_side"`
	LeftScore  int     `json:"left_score"`
	RightScore int     `json:"right_score"`
	ElapsedSec float64 `json:"elapsed_sec"`
}

// Result is the terminal outcome a room hands to its reporter, exactly once.
type Result struct {
	RoomKey      string
	TournamentID string // empty for casual rooms
	MatchID      string
	WinnerSide   int
	WinnerID     string
	LeftPlayer   protocol.PlayerRef
	RightPlayer  protocol.PlayerRef
	LeftScore    int
	RightScore   int
	Forfeit      bool
	Config       game.Config
	ScoreLogs    []ScoreEvent
}

// ResultReporter receives terminal results. Implementations must not block:
// rooms call it from a detached goroutine and never wait on the outcome.
type ResultReporter interface {
	ReportResult(res Result)
}
