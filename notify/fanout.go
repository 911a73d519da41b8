package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/rank-ladder/models"
)

// Sink receives every published event. Sinks ignore event types they do not
// care about.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event Event) error
}

// Fanout delivers each event to all sinks concurrently. One failing sink does
// not stop the others; their errors are joined.
type Fanout struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

func NewFanout(logger *slog.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	active := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &Fanout{sinks: active, logger: logger, now: time.Now}
}

func (f *Fanout) Publish(ctx context.Context, event Event) error {
	errs := make([]error, len(f.sinks))

	var g errgroup.Group
	for i, sink := range f.sinks {
		i, sink := i, sink
		g.Go(func() error {
			if err := sink.Deliver(ctx, event); err != nil {
				errs[i] = fmt.Errorf("%s: %w", sink.Name(), err)
				f.logger.WarnContext(ctx, "event delivery failed",
					slog.String("sink", sink.Name()),
					slog.String("event_id", event.ID),
					slog.String("type", string(event.Type)),
					slog.Any("error", err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (f *Fanout) NotifyChallengeCreated(ctx context.Context, challenge *models.Challenge) error {
	return f.Publish(ctx, newEvent(EventChallengeCreated, challengeTeam(challenge), ChallengePayload{Challenge: challenge}, f.now()))
}

func (f *Fanout) NotifyChallengeAccepted(ctx context.Context, challenge *models.Challenge) error {
	return f.Publish(ctx, newEvent(EventChallengeAccepted, challengeTeam(challenge), ChallengePayload{Challenge: challenge}, f.now()))
}

func (f *Fanout) NotifyChallengeDeclined(ctx context.Context, challenge *models.Challenge) error {
	return f.Publish(ctx, newEvent(EventChallengeDeclined, challengeTeam(challenge), ChallengePayload{Challenge: challenge}, f.now()))
}

func (f *Fanout) NotifyChallengeCompleted(ctx context.Context, challenge *models.Challenge, winner, loser *models.User, outcome models.ChallengeOutcome) error {
	payload := OutcomePayload{Challenge: challenge, Winner: winner, Loser: loser, Outcome: outcome}
	return f.Publish(ctx, newEvent(EventChallengeCompleted, outcome.TeamID, payload, f.now()))
}

func (f *Fanout) NotifyRankingsUpdated(ctx context.Context, teamID int) error {
	return f.Publish(ctx, newEvent(EventRankingsUpdated, teamID, RankingsPayload{TeamID: teamID}, f.now()))
}
