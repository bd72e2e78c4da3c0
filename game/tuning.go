package game

// Defaults for a standard field. A client init may override any of these,
// subject to validation; once a room applies a config it never changes.
const (
	DefaultWidth        = 800.0
	DefaultHeight       = 600.0
	DefaultPaddleWidth  = 12.0
	DefaultPaddleHeight = 90.0
	DefaultPaddleMargin = 20.0
	DefaultPaddleSpeed  = 420.0 // px/s
	DefaultBallRadius   = 8.0
	DefaultBallSpeed    = 360.0 // px/s at serve
	DefaultBallAccel    = 1.05  // speed multiplier per paddle hit
	DefaultMaxBallSpeed = 850.0
	DefaultWinningScore = 5
)

// SimTickHz is the fixed simulation rate. Validation depends on it: the
// ball may never travel further in one tick than the paddle detection band
// is wide, or it could cross a covering paddle between samples.
const SimTickHz = 60

// Config is the immutable per-match simulation setup.
type Config struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	PaddleWidth  float64 `json:"paddle_width"`
	PaddleHeight float64 `json:"paddle_height"`
	PaddleMargin float64 `json:"paddle_margin"`
	PaddleSpeed  float64 `json:"paddle_speed"`
	BallRadius   float64 `json:"ball_radius"`
	BallSpeed    float64 `json:"ball_speed"`
	BallAccel    float64 `json:"ball_accel"`
	MaxBallSpeed float64 `json:"max_ball_speed"`
	WinningScore int     `json:"winning_score"`
}

func DefaultConfig() Config {
	return Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		PaddleWidth:  DefaultPaddleWidth,
		PaddleHeight: DefaultPaddleHeight,
		PaddleMargin: DefaultPaddleMargin,
		PaddleSpeed:  DefaultPaddleSpeed,
		BallRadius:   DefaultBallRadius,
		BallSpeed:    DefaultBallSpeed,
		BallAccel:    DefaultBallAccel,
		MaxBallSpeed: DefaultMaxBallSpeed,
		WinningScore: DefaultWinningScore,
	}
}

// Valid reports whether every required numeric field is positive and the
// geometry can actually fit the field.
func (c Config) Valid() bool {
	if c.Width <= 0 || c.Height <= 0 {
		return false
	}
	if c.PaddleWidth <= 0 || c.PaddleHeight <= 0 || c.PaddleHeight >= c.Height {
		return false
	}
	if c.PaddleMargin < 0 || c.PaddleSpeed <= 0 {
		return false
	}
	if c.BallRadius <= 0 || c.BallSpeed <= 0 || c.MaxBallSpeed < c.BallSpeed {
		return false
	}
	if c.MaxBallSpeed/SimTickHz > c.PaddleWidth+2*c.BallRadius {
		return false
	}
	if c.BallAccel < 1 {
		return false
	}
	return c.WinningScore > 0
}
