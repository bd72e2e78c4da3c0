package protocol

// Messages the server pushes to clients.

// Connection is the one-shot "side established" notice.
type Connection struct {
	Side string `json:"side"`
}

// ReadyState is broadcast on every readiness change (and after each point,
// when both flags reset).
type ReadyState struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Snapshot is the room's full simulation state as of the last finished tick.
type Snapshot struct {
	BallX  float64 `json:"ball_x"`
	BallY  float64 `json:"ball_y"`
	BallVX float64 `json:"ball_vx"`
	BallVY float64 `json:"ball_vy"`

	LeftPaddleY  float64 `json:"left_paddle_y"`
	RightPaddleY float64 `json:"right_paddle_y"`

	LeftScore  int  `json:"left_score"`
	RightScore int  `json:"right_score"`
	Running    bool `json:"running"`
	Finished   bool `json:"finished"`
}

// Score is a left/right pair used in results and persisted records.
type Score struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Result is the terminal broadcast, sent exactly once per room.
type Result struct {
	WinnerSide string `json:"winner_side"`
	WinnerID   string `json:"winner_id"`
	Score      Score  `json:"score"`
	Forfeit    bool   `json:"forfeit"`
}
