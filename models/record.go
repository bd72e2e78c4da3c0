package models

import (
	"time"

	"gorm.io/gorm"
)

// MatchRecord is the durable row for one played match (tournament or
// casual). The live room's id doubles as the primary key so repeated sink
// submissions upsert instead of duplicating.
type MatchRecord struct {
	ID           string  `json:"id" gorm:"primaryKey"`
	TournamentID *string `json:"tournament_id,omitempty" gorm:"index"` // nil = casual match

	Round       string `json:"round,omitempty"`
	LeftUserID  string `json:"left_user_id" gorm:"index"`
	LeftAlias   string `json:"left_alias"`
	RightUserID string `json:"right_user_id" gorm:"index"`
	RightAlias  string `json:"right_alias"`

	LeftScore  int    `json:"left_score"`
	RightScore int    `json:"right_score"`
	WinnerID   string `json:"winner_id"`
	Forfeit    bool   `json:"forfeit" gorm:"default:false"`

	BallSpeed  float64 `json:"ball_speed,omitempty"`
	BallRadius float64 `json:"ball_radius,omitempty"`

	ScoreLogs []ScoreLog `json:"score_logs,omitempty" gorm:"foreignKey:MatchRecordID"`

	Timestamps
}

// ScoreLog is one point in a match, in order, with elapsed seconds since
// the first serve. Post-hoc reporting only — never replayed.
type ScoreLog struct {
	ID            string  `json:"id" gorm:"primaryKey"`
	MatchRecordID string  `json:"match_record_id" gorm:"not null;index"`
	Sequence      int     `json:"sequence"`
	ScorerSide    string  `json:"scorer_side"`
	LeftScore     int     `json:"left_score"`
	RightScore    int     `json:"right_score"`
	ElapsedSec    float64 `json:"elapsed_sec"`
}

// TournamentRecord is the durable header written once a tournament
// completes. Matches reference it through MatchRecord.TournamentID.
type TournamentRecord struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	HostID     string    `json:"host_id"`
	ChampionID string    `json:"champion_id"`
	BallSpeed  float64   `json:"ball_speed"`
	BallRadius float64   `json:"ball_radius"`
	StartedAt  time.Time `json:"started_at"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
