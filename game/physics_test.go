package game

import (
	"math"
	"testing"
)

func TestClampPaddle(t *testing.T) {
	cases := []struct {
		name   string
		y      float64
		want   float64
		height float64
		paddle float64
	}{
		{"inside", 100, 100, 600, 90},
		{"negative", -25, 0, 600, 90},
		{"zero", 0, 0, 600, 90},
		{"at limit", 510, 510, 600, 90},
		{"past limit", 700, 510, 600, 90},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClampPaddle(tc.y, tc.height, tc.paddle)
			if got != tc.want {
				t.Fatalf("ClampPaddle(%v) = %v, want %v", tc.y, got, tc.want)
			}
			if got < 0 || got > tc.height-tc.paddle {
				t.Fatalf("clamped value %v outside [0, %v]", got, tc.height-tc.paddle)
			}
		})
	}
}

func TestWallReflectionFlipsOnlyVertical(t *testing.T) {
	cfg := DefaultConfig()
	s := NewState(cfg)
	s.BallY = cfg.BallRadius - 2
	s.BallVX = 120
	s.BallVY = -80

	ReflectWalls(&s, cfg)

	if s.BallVY != 80 {
		t.Fatalf("vy = %v, want 80", s.BallVY)
	}
	if s.BallVX != 120 {
		t.Fatalf("vx changed to %v on wall bounce", s.BallVX)
	}
	if s.BallY != cfg.BallRadius {
		t.Fatalf("ball left overlapping top wall: y = %v", s.BallY)
	}
}

func TestPaddleReflectionFlipsAndBoosts(t *testing.T) {
	cfg := DefaultConfig()
	s := NewState(cfg)
	leftEdge := cfg.PaddleMargin + cfg.PaddleWidth
	s.BallX = leftEdge + cfg.BallRadius - 1
	s.BallY = s.PaddleY[SideLeft] + cfg.PaddleHeight/2
	s.BallVX = -300
	s.BallVY = 40
	before := BallSpeed(&s)

	ReflectPaddles(&s, cfg)

	if s.BallVX <= 0 {
		t.Fatalf("vx = %v, want positive after left paddle hit", s.BallVX)
	}
	if s.BallX != leftEdge+cfg.BallRadius {
		t.Fatalf("ball not repositioned onto paddle edge: x = %v", s.BallX)
	}
	want := before * cfg.BallAccel
	if got := BallSpeed(&s); math.Abs(got-want) > 1e-9 {
		t.Fatalf("speed = %v, want %v", got, want)
	}
}

func TestPaddleReflectionCapsAtMaxSpeed(t *testing.T) {
	cfg := DefaultConfig()
	s := NewState(cfg)
	rightEdge := cfg.Width - cfg.PaddleMargin - cfg.PaddleWidth
	s.BallX = rightEdge - cfg.BallRadius + 1
	s.BallY = s.PaddleY[SideRight] + 10
	s.BallVX = cfg.MaxBallSpeed
	s.BallVY = 0

	ReflectPaddles(&s, cfg)

	if got := BallSpeed(&s); got > cfg.MaxBallSpeed+1e-9 {
		t.Fatalf("speed %v exceeds cap %v", got, cfg.MaxBallSpeed)
	}
	if s.BallVX >= 0 {
		t.Fatalf("vx = %v, want negative after right paddle hit", s.BallVX)
	}
}

func TestPaddleMissLeavesVelocityAlone(t *testing.T) {
	cfg := DefaultConfig()
	s := NewState(cfg)
	s.BallX = cfg.PaddleMargin + cfg.PaddleWidth + cfg.BallRadius - 1
	s.BallY = s.PaddleY[SideLeft] + cfg.PaddleHeight + 50 // below the paddle
	s.BallVX = -300
	s.BallVY = 0

	ReflectPaddles(&s, cfg)

	if s.BallVX != -300 {
		t.Fatalf("vx = %v, want -300 on a miss", s.BallVX)
	}
}
