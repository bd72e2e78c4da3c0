package game

import "math"

// Pure geometry helpers. No state here; the room owns state, Step mutates it.

// ClampPaddle keeps a proposed paddle y inside [0, height-paddleHeight].
func ClampPaddle(y, height, paddleHeight float64) float64 {
	if y < 0 {
		return 0
	}
	if max := height - paddleHeight; y > max {
		return max
	}
	return y
}

// ReflectWalls inverts vy when the ball's leading edge crosses the top or
// bottom boundary. Horizontal motion is untouched.
func ReflectWalls(s *State, cfg Config) {
	if s.BallY-cfg.BallRadius < 0 {
		s.BallY = cfg.BallRadius
		s.BallVY = -s.BallVY
	}
	if s.BallY+cfg.BallRadius > cfg.Height {
		s.BallY = cfg.Height - cfg.BallRadius
		s.BallVY = -s.BallVY
	}
}

// ReflectPaddles checks the left then the right paddle. A hit repositions
// the ball exactly onto the paddle's facing edge (no sinking) and flips vx
// away from the paddle, boosted by the acceleration factor.
func ReflectPaddles(s *State, cfg Config) {
	leftEdge := cfg.PaddleMargin + cfg.PaddleWidth
	rightEdge := cfg.Width - cfg.PaddleMargin - cfg.PaddleWidth

	// A ball already past the paddle's back face is through — it belongs to
	// the goal check, not the paddle.
	if s.BallVX < 0 && s.BallX-cfg.BallRadius <= leftEdge && s.BallX+cfg.BallRadius >= cfg.PaddleMargin {
		py := s.PaddleY[SideLeft]
		if s.BallY >= py && s.BallY <= py+cfg.PaddleHeight {
			s.BallX = leftEdge + cfg.BallRadius
			bounce(s, cfg)
		}
	}
	if s.BallVX > 0 && s.BallX+cfg.BallRadius >= rightEdge && s.BallX-cfg.BallRadius <= cfg.Width-cfg.PaddleMargin {
		py := s.PaddleY[SideRight]
		if s.BallY >= py && s.BallY <= py+cfg.PaddleHeight {
			s.BallX = rightEdge - cfg.BallRadius
			bounce(s, cfg)
		}
	}
}

// bounce flips vx and scales the ball speed by the acceleration factor,
// capped at MaxBallSpeed, preserving direction.
func bounce(s *State, cfg Config) {
	s.BallVX = -s.BallVX

	speed := math.Hypot(s.BallVX, s.BallVY)
	if speed == 0 {
		return
	}
	boosted := speed * cfg.BallAccel
	if boosted > cfg.MaxBallSpeed {
		boosted = cfg.MaxBallSpeed
	}
	scale := boosted / speed
	s.BallVX *= scale
	s.BallVY *= scale
}

// BallSpeed returns the ball's current vector magnitude.
func BallSpeed(s *State) float64 {
	return math.Hypot(s.BallVX, s.BallVY)
}
