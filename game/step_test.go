package game

import (
	"math"
	"testing"
)

func runningState(cfg Config) State {
	s := NewState(cfg)
	s.Running = true
	return s
}

func TestStepMovesAndClampsPaddles(t *testing.T) {
	cfg := DefaultConfig()
	s := runningState(cfg)
	s.Inputs[SideLeft] = Input{Up: true}
	s.Inputs[SideRight] = Input{Down: true}

	dt := 1.0 / 60.0
	for i := 0; i < 60*30; i++ { // 30 simulated seconds, way past the edges
		Step(&s, cfg, dt)
		for side := SideLeft; side <= SideRight; side++ {
			if s.PaddleY[side] < 0 || s.PaddleY[side] > cfg.Height-cfg.PaddleHeight {
				t.Fatalf("tick %d: paddle %d at %v outside bounds", i, side, s.PaddleY[side])
			}
		}
	}
	if s.PaddleY[SideLeft] != 0 {
		t.Fatalf("left paddle = %v, want pinned at 0", s.PaddleY[SideLeft])
	}
	if s.PaddleY[SideRight] != cfg.Height-cfg.PaddleHeight {
		t.Fatalf("right paddle = %v, want pinned at bottom", s.PaddleY[SideRight])
	}
}

func TestStepPausedBallDoesNotMove(t *testing.T) {
	cfg := DefaultConfig()
	s := NewState(cfg)
	s.BallVX = 500
	s.BallVY = 500
	x, y := s.BallX, s.BallY

	if got := Step(&s, cfg, 1.0/60.0); got != SideNone {
		t.Fatalf("paused step reported score for side %d", got)
	}
	if s.BallX != x || s.BallY != y {
		t.Fatalf("ball moved while paused: (%v,%v)", s.BallX, s.BallY)
	}
}

func TestStepScoresOnFullExit(t *testing.T) {
	cfg := DefaultConfig()
	s := runningState(cfg)
	// Park both paddles out of the way so the ball sails through.
	s.PaddleY[SideLeft] = 0
	s.PaddleY[SideRight] = 0
	s.BallY = cfg.Height - cfg.BallRadius*2
	s.BallX = cfg.BallRadius * 3
	s.BallVX = -cfg.MaxBallSpeed
	s.BallVY = 0

	scored := SideNone
	for i := 0; i < 120 && scored == SideNone; i++ {
		scored = Step(&s, cfg, 1.0/60.0)
	}
	if scored != SideRight {
		t.Fatalf("scored = %d, want right (%d)", scored, SideRight)
	}
	if s.Score[SideRight] != 1 || s.Score[SideLeft] != 0 {
		t.Fatalf("score = %v, want right only", s.Score)
	}
	if s.LastScored != SideRight {
		t.Fatalf("lastScored = %d, want %d", s.LastScored, SideRight)
	}
}

// High-speed tunnelling check: at max speed with the paddle covering the
// ball's path, every approach must end in a reflection, never a pass-through
// to the goal line.
func TestStepNoTunnellingAtMaxSpeed(t *testing.T) {
	cfg := DefaultConfig()
	for trial := 0; trial < 20; trial++ {
		s := runningState(cfg)
		s.PaddleY[SideLeft] = (cfg.Height - cfg.PaddleHeight) / 2
		s.BallY = cfg.Height / 2
		s.BallX = cfg.Width/2 + float64(trial)*3 // vary phase against the tick grid
		s.BallVX = -cfg.MaxBallSpeed
		s.BallVY = 0

		for i := 0; i < 240; i++ {
			if got := Step(&s, cfg, 1.0/60.0); got != SideNone {
				t.Fatalf("trial %d: ball tunnelled through covering paddle (scored side %d)", trial, got)
			}
			if s.BallVX > 0 {
				break // reflected, done
			}
		}
		if s.BallVX <= 0 {
			t.Fatalf("trial %d: ball never reflected", trial)
		}
	}
}

func TestStepCornerHitResolvesBothReflections(t *testing.T) {
	cfg := DefaultConfig()
	s := runningState(cfg)
	s.PaddleY[SideLeft] = 0
	leftEdge := cfg.PaddleMargin + cfg.PaddleWidth
	s.BallX = leftEdge + cfg.BallRadius + 2
	s.BallY = cfg.BallRadius + 2
	s.BallVX = -200
	s.BallVY = -200

	Step(&s, cfg, 1.0/60.0)

	if s.BallVX <= 0 {
		t.Fatalf("vx = %v, want flipped by paddle", s.BallVX)
	}
	if s.BallVY <= 0 {
		t.Fatalf("vy = %v, want flipped by wall", s.BallVY)
	}
	if math.IsNaN(s.BallVX) || math.IsNaN(s.BallVY) {
		t.Fatalf("velocity went NaN: (%v, %v)", s.BallVX, s.BallVY)
	}
}
