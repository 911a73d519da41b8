package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/rank-ladder/models"
)

// Notifier delivers challenge and ladder events to players and channels.
type Notifier interface {
	NotifyChallengeCreated(ctx context.Context, challenge *models.Challenge) error
	NotifyChallengeAccepted(ctx context.Context, challenge *models.Challenge) error
	NotifyChallengeDeclined(ctx context.Context, challenge *models.Challenge) error
	NotifyChallengeCompleted(ctx context.Context, challenge *models.Challenge, winner, loser *models.User, outcome models.ChallengeOutcome) error
	NotifyRankingsUpdated(ctx context.Context, teamID int) error
}

const defaultNotifyTimeout = 10 * time.Second

// BackgroundNotifier runs notifications after the triggering write has
// committed. Failures are logged and never reach the caller.
type BackgroundNotifier struct {
	notifier Notifier
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func NewBackgroundNotifier(notifier Notifier, timeout time.Duration, logger *slog.Logger) *BackgroundNotifier {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BackgroundNotifier{notifier: notifier, timeout: timeout, logger: logger}
}

// Go runs fn in its own goroutine with a context detached from ctx's
// cancellation, so a finished HTTP request does not abort delivery.
func (b *BackgroundNotifier) Go(ctx context.Context, event string, fn func(ctx context.Context, n Notifier) error) {
	if b == nil || b.notifier == nil {
		return
	}
	detached := context.WithoutCancel(ctx)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				b.logger.Error("notification panicked", slog.String("event", event), slog.Any("panic", fmt.Sprint(p)))
			}
		}()

		notifyCtx, cancel := context.WithTimeout(detached, b.timeout)
		defer cancel()

		if err := fn(notifyCtx, b.notifier); err != nil {
			b.logger.Warn("notification failed", slog.String("event", event), slog.Any("error", err))
		}
	}()
}

// Wait blocks until all in-flight notifications have finished.
func (b *BackgroundNotifier) Wait() {
	if b == nil {
		return
	}
	b.wg.Wait()
}
