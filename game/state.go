package game

// Side indexes the two participants of a match.
const (
	SideLeft  = 0
	SideRight = 1
	SideNone  = -1
)

func SideName(side int) string {
	switch side {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return ""
}

// Input is the latest paddle intent for one side. Absolute flags,
// last write wins.
type Input struct {
	Up   bool `json:"up"`
	Down bool `json:"down"`
}

// State is one match's mutable simulation state. It is owned by a single
// room goroutine and never shared.
type State struct {
	BallX, BallY   float64
	BallVX, BallVY float64

	PaddleY [2]float64
	Inputs  [2]Input
	Score   [2]int

	Running    bool
	LastScored int // SideNone until the first point
}

// NewState centers paddles and ball for the given config.
func NewState(cfg Config) State {
	s := State{LastScored: SideNone}
	s.PaddleY[SideLeft] = (cfg.Height - cfg.PaddleHeight) / 2
	s.PaddleY[SideRight] = (cfg.Height - cfg.PaddleHeight) / 2
	s.BallX = cfg.Width / 2
	s.BallY = cfg.Height / 2
	return s
}

// ResetBall recenters the ball with zero velocity (post-point pause).
func (s *State) ResetBall(cfg Config) {
	s.BallX = cfg.Width / 2
	s.BallY = cfg.Height / 2
	s.BallVX = 0
	s.BallVY = 0
}
