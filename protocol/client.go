package protocol

import "arcade-arena/game"

// Messages coming in from the client.

// PlayerRef identifies one participant as declared at init.
type PlayerRef struct {
	UserID string `json:"user_id"`
	Alias  string `json:"alias"`
}

// Init carries the client-declared simulation parameters. The first valid
// init a room receives fixes the config for the whole match; later inits
// only trigger the per-side connection notice.
type Init struct {
	game.Config

	TournamentID string    `json:"tournament_id,omitempty"`
	MatchID      string    `json:"match_id,omitempty"`
	LeftPlayer   PlayerRef `json:"left_player"`
	RightPlayer  PlayerRef `json:"right_player"`
}

// Start is a readiness declaration. The declaring side is taken from the
// connection binding, not trusted from the payload.
type Start struct {
	Side string `json:"side,omitempty"`
}

// Input carries absolute paddle flags, last write wins.
type Input struct {
	Up   bool `json:"up"`
	Down bool `json:"down"`
}
