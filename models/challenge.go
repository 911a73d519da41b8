package models

import (
	"encoding/json"
	"time"
)

type ChallengeStatus string

const (
	ChallengeStatusPending   ChallengeStatus = "pending"
	ChallengeStatusAccepted  ChallengeStatus = "accepted"
	ChallengeStatusDeclined  ChallengeStatus = "declined"
	ChallengeStatusCompleted ChallengeStatus = "completed"
)

var challengeTransitions = map[ChallengeStatus][]ChallengeStatus{
	ChallengeStatusPending:   {ChallengeStatusAccepted, ChallengeStatusDeclined},
	ChallengeStatusAccepted:  {ChallengeStatusCompleted},
	ChallengeStatusDeclined:  {},
	ChallengeStatusCompleted: {},
}

// CanTransition reports whether the challenge state machine allows from -> to.
func (s ChallengeStatus) CanTransition(to ChallengeStatus) bool {
	for _, next := range challengeTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s ChallengeStatus) IsTerminal() bool {
	next, ok := challengeTransitions[s]
	return ok && len(next) == 0
}

func (s ChallengeStatus) Valid() bool {
	_, ok := challengeTransitions[s]
	return ok
}

type Challenge struct {
	ID           int             `json:"id" db:"id"`
	ChallengerID int             `json:"challenger_id" db:"challenger_id"`
	OpponentID   int             `json:"opponent_id" db:"opponent_id"`
	WitnessID    int             `json:"witness_id" db:"witness_id"`
	TeamID       *int            `json:"team_id,omitempty" db:"team_id"`
	Status       ChallengeStatus `json:"status" db:"status"`
	BannedAgent  json.RawMessage `json:"banned_agent,omitempty" db:"banned_agent"`
	WinnerID     *int            `json:"winner_id,omitempty" db:"winner_id"`
	LoserID      *int            `json:"loser_id,omitempty" db:"loser_id"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// IsParticipant reports whether userID is the challenger or the opponent.
func (c *Challenge) IsParticipant(userID int) bool {
	return c.ChallengerID == userID || c.OpponentID == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Challenge) OtherParticipant(userID int) int {
	if c.ChallengerID == userID {
		return c.OpponentID
	}
	return c.ChallengerID
}
