package models

import "time"

// RankHistory is an append-only audit entry. ChallengeID is nil for manual changes.
type RankHistory struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	PreviousRank int       `json:"previous_rank" db:"previous_rank"`
	NewRank      int       `json:"new_rank" db:"new_rank"`
	ChallengeID  *int      `json:"challenge_id,omitempty" db:"challenge_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
