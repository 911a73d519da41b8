package notify

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/rank-ladder/models"
)

type EventType string

const (
	EventChallengeCreated   EventType = "challenge.created"
	EventChallengeAccepted  EventType = "challenge.accepted"
	EventChallengeDeclined  EventType = "challenge.declined"
	EventChallengeCompleted EventType = "challenge.completed"
	EventRankingsUpdated    EventType = "rankings.updated"
)

// Event is the envelope every sink receives. ID is unique per event and lets
// receivers drop duplicates.
type Event struct {
	ID         string    `json:"event_id"`
	Type       EventType `json:"type"`
	TeamID     int       `json:"team_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type ChallengePayload struct {
	Challenge *models.Challenge `json:"challenge"`
}

type OutcomePayload struct {
	Challenge *models.Challenge       `json:"challenge"`
	Winner    *models.User            `json:"winner"`
	Loser     *models.User            `json:"loser"`
	Outcome   models.ChallengeOutcome `json:"outcome"`
}

type RankingsPayload struct {
	TeamID int `json:"team_id"`
}

func newEvent(eventType EventType, teamID int, payload any, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TeamID:     teamID,
		OccurredAt: now.UTC(),
		Payload:    payload,
	}
}

// TeamRoom names the websocket room that receives a team's events.
func TeamRoom(teamID int) string {
	return "team_" + strconv.Itoa(teamID)
}

func challengeTeam(c *models.Challenge) int {
	if c == nil || c.TeamID == nil {
		return 0
	}
	return *c.TeamID
}
