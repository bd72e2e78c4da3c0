package game

// Step advances the simulation by dt seconds and returns the side that
// scored this tick, or SideNone. Wall and paddle reflection are independent
// checks, both applied every tick, so a corner hit resolves additively.
func Step(s *State, cfg Config, dt float64) int {
	// Paddles move even during a pause so players can reposition.
	for side := SideLeft; side <= SideRight; side++ {
		dir := 0.0
		if s.Inputs[side].Up {
			dir -= 1
		}
		if s.Inputs[side].Down {
			dir += 1
		}
		s.PaddleY[side] = ClampPaddle(s.PaddleY[side]+dir*cfg.PaddleSpeed*dt, cfg.Height, cfg.PaddleHeight)
	}

	if !s.Running {
		return SideNone
	}

	s.BallX += s.BallVX * dt
	s.BallY += s.BallVY * dt

	ReflectWalls(s, cfg)
	ReflectPaddles(s, cfg)

	// A point is scored only when the ball has fully left the field.
	if s.BallX+cfg.BallRadius < 0 {
		s.Score[SideRight]++
		s.LastScored = SideRight
		return SideRight
	}
	if s.BallX-cfg.BallRadius > cfg.Width {
		s.Score[SideLeft]++
		s.LastScored = SideLeft
		return SideLeft
	}
	return SideNone
}
