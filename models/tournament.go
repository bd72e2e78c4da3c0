package models

import (
	"time"
)

// Tournament status values. waiting → ready when the roster fills,
// ready → in_progress only by the host, in_progress → completed once both
// the finals and third-place matches are done.
const (
	TournamentWaiting    = "waiting"
	TournamentReady      = "ready"
	TournamentInProgress = "in_progress"
	TournamentCompleted  = "completed"
)

// Match status values for bracket entries.
const (
	MatchPending    = "pending"
	MatchInProgress = "in_progress"
	MatchCompleted  = "completed"
)

// Bracket rounds for a 4-player tournament.
const (
	RoundSemifinal  = "semifinals"
	RoundFinal      = "finals"
	RoundThirdPlace = "third_place"
)

// DefaultMaxPlayers is fixed at 4 — the bracket math (two semifinals →
// finals + third place) depends on it.
const DefaultMaxPlayers = 4

// Player is a roster entry, unique by user id within a tournament.
type Player struct {
	UserID string `json:"user_id"`
	Alias  string `json:"alias"`
}

// GameOptions is the per-tournament simulation tuning applied to every
// match the bracket generates.
type GameOptions struct {
	BallSpeed  float64 `json:"ball_speed"`
	BallRadius float64 `json:"ball_radius"`
}

// MatchScore is a completed match's final left/right score.
type MatchScore struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Match is a bracket entry — distinct from the live room that plays it.
type Match struct {
	ID       string      `json:"id"`
	Round    string      `json:"round"`
	Player1  Player      `json:"player1"`
	Player2  Player      `json:"player2"`
	Status   string      `json:"status"`
	Score    *MatchScore `json:"score,omitempty"`
	WinnerID string      `json:"winner_id,omitempty"`
	Options  GameOptions `json:"options"`
}

// Tournament is the in-memory bracket entity. It lives in the registry for
// the whole run and is only persisted (as records) once completed.
type Tournament struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	HostID      string      `json:"host_id"`
	MaxPlayers  int         `json:"max_players"`
	Players     []Player    `json:"players"`
	Status      string      `json:"status"`
	Options     GameOptions `json:"options"`
	Matches     []*Match    `json:"matches"`
	ChampionID  string      `json:"champion_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// HasPlayer reports whether the user already joined.
func (t *Tournament) HasPlayer(userID string) bool {
	for _, p := range t.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// FindMatch returns the bracket match with the given id, or nil.
func (t *Tournament) FindMatch(matchID string) *Match {
	for _, m := range t.Matches {
		if m.ID == matchID {
			return m
		}
	}
	return nil
}

// MatchByRound returns the first match of the given round, or nil.
func (t *Tournament) MatchByRound(round string) *Match {
	for _, m := range t.Matches {
		if m.Round == round {
			return m
		}
	}
	return nil
}

// MiniTournament is the trimmed listing projection.
type MiniTournament struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	HostID     string    `json:"host_id"`
	Status     string    `json:"status"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"max_players"`
	CreatedAt  time.Time `json:"created_at"`
}
