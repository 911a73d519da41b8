package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/Dosada05/rank-ladder/services"
)

var _ services.Notifier = (*Fanout)(nil)

type recordingSink struct {
	name   string
	err    error
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func TestFanout_DeliversToEverySink(t *testing.T) {
	first := &recordingSink{name: "first"}
	second := &recordingSink{name: "second"}
	fanout := NewFanout(nil, first, nil, second)

	teamID := 7
	challenge := &models.Challenge{ID: 3, ChallengerID: 1, OpponentID: 2, TeamID: &teamID}
	require.NoError(t, fanout.NotifyChallengeCreated(context.Background(), challenge))

	for _, sink := range []*recordingSink{first, second} {
		require.Len(t, sink.events, 1, sink.name)
		event := sink.events[0]
		assert.Equal(t, EventChallengeCreated, event.Type)
		assert.Equal(t, teamID, event.TeamID)
		assert.NotEmpty(t, event.ID)
		assert.Equal(t, ChallengePayload{Challenge: challenge}, event.Payload)
	}
	assert.Equal(t, first.events[0].ID, second.events[0].ID)
}

func TestFanout_OneFailingSinkDoesNotStopOthers(t *testing.T) {
	broken := &recordingSink{name: "broken", err: errors.New("503")}
	healthy := &recordingSink{name: "healthy"}
	fanout := NewFanout(nil, broken, healthy)

	err := fanout.NotifyRankingsUpdated(context.Background(), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	require.Len(t, healthy.events, 1)
	assert.Equal(t, EventRankingsUpdated, healthy.events[0].Type)
	assert.Equal(t, RankingsPayload{TeamID: 4}, healthy.events[0].Payload)
}

func TestFanout_EventTypes(t *testing.T) {
	sink := &recordingSink{name: "sink"}
	fanout := NewFanout(nil, sink)
	ctx := context.Background()
	challenge := &models.Challenge{ID: 1}
	outcome := models.ChallengeOutcome{ChallengeID: 1, TeamID: 9, WinnerID: 1, LoserID: 2}

	require.NoError(t, fanout.NotifyChallengeAccepted(ctx, challenge))
	require.NoError(t, fanout.NotifyChallengeDeclined(ctx, challenge))
	require.NoError(t, fanout.NotifyChallengeCompleted(ctx, challenge, &models.User{ID: 1}, &models.User{ID: 2}, outcome))

	require.Len(t, sink.events, 3)
	assert.Equal(t, EventChallengeAccepted, sink.events[0].Type)
	assert.Zero(t, sink.events[0].TeamID)
	assert.Equal(t, EventChallengeDeclined, sink.events[1].Type)
	assert.Equal(t, EventChallengeCompleted, sink.events[2].Type)
	assert.Equal(t, 9, sink.events[2].TeamID)
}

func TestTeamRoom(t *testing.T) {
	assert.Equal(t, "team_12", TeamRoom(12))
}
