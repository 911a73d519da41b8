package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/Dosada05/rank-ladder/repositories"
)

type OutcomeService interface {
	// RecordOutcome applies the witness's verdict: it swaps ranks when the
	// winner stood below the loser, appends one history row per player and
	// completes the challenge, all in one transaction.
	RecordOutcome(ctx context.Context, challengeID, winnerID, callerID int) (*models.ChallengeOutcome, error)
}

type outcomeService struct {
	tx             repositories.Transactor
	challengeRepo  repositories.ChallengeRepository
	membershipRepo repositories.MembershipRepository
	historyRepo    repositories.RankHistoryRepository
	userRepo       repositories.UserRepository
	resolver       *TeamResolver
	notifier       *BackgroundNotifier
	logger         *slog.Logger
	now            func() time.Time
}

func NewOutcomeService(
	tx repositories.Transactor,
	challengeRepo repositories.ChallengeRepository,
	membershipRepo repositories.MembershipRepository,
	historyRepo repositories.RankHistoryRepository,
	userRepo repositories.UserRepository,
	notifier *BackgroundNotifier,
	logger *slog.Logger,
) OutcomeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &outcomeService{
		tx:             tx,
		challengeRepo:  challengeRepo,
		membershipRepo: membershipRepo,
		historyRepo:    historyRepo,
		userRepo:       userRepo,
		resolver:       NewTeamResolver(membershipRepo),
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *outcomeService) RecordOutcome(ctx context.Context, challengeID, winnerID, callerID int) (*models.ChallengeOutcome, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, nil, challengeID)
	if err != nil {
		return nil, translateChallengeLookupError(challengeID, err)
	}
	if _, err := validateOutcomeRequest(challenge, winnerID, callerID); err != nil {
		return nil, err
	}

	var (
		outcome   models.ChallengeOutcome
		completed *models.Challenge
	)
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// The challenge row lock serializes verdicts for the same challenge;
		// the status is checked again under it.
		locked, err := s.challengeRepo.GetByIDForUpdate(ctx, exec, challengeID)
		if err != nil {
			return translateChallengeLookupError(challengeID, err)
		}
		loserID, err := validateOutcomeRequest(locked, winnerID, callerID)
		if err != nil {
			return err
		}

		teamID, err := s.resolver.ResolveComparisonTeam(ctx, exec, winnerID, loserID, locked.TeamID)
		if err != nil {
			return err
		}

		winner, loser, err := s.lockParticipants(ctx, exec, teamID, winnerID, loserID)
		if err != nil {
			return err
		}

		outcome = decideOutcome(locked.ID, teamID, winner, loser)
		if outcome.RanksSwapped {
			if err := s.membershipRepo.UpdateRank(ctx, exec, teamID, winnerID, outcome.WinnerNewRank); err != nil {
				return fmt.Errorf("failed to update rank of winner %d: %w", winnerID, err)
			}
			if err := s.membershipRepo.UpdateRank(ctx, exec, teamID, loserID, outcome.LoserNewRank); err != nil {
				return fmt.Errorf("failed to update rank of loser %d: %w", loserID, err)
			}
		}

		if err := s.appendHistory(ctx, exec, outcome); err != nil {
			return err
		}

		completedAt := s.now().UTC()
		if err := s.challengeRepo.Complete(ctx, exec, locked.ID, teamID, winnerID, loserID, completedAt); err != nil {
			if errors.Is(err, repositories.ErrChallengeStatusConflict) {
				return fmt.Errorf("%w: challenge %d", ErrChallengeNotInAcceptableState, locked.ID)
			}
			return fmt.Errorf("failed to complete challenge %d: %w", locked.ID, err)
		}

		locked.Status = models.ChallengeStatusCompleted
		if locked.TeamID == nil {
			locked.TeamID = &teamID
		}
		locked.WinnerID = &winnerID
		locked.LoserID = &loserID
		locked.CompletedAt = &completedAt
		completed = locked
		return nil
	})
	if err != nil {
		err = translateStorageError(err)
		s.logger.WarnContext(ctx, "challenge outcome rejected",
			slog.Int("challenge_id", challengeID),
			slog.Int("winner_id", winnerID),
			slog.Int("caller_id", callerID),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "challenge outcome recorded",
		slog.Int("challenge_id", outcome.ChallengeID),
		slog.Int("team_id", outcome.TeamID),
		slog.Int("winner_id", outcome.WinnerID),
		slog.Int("loser_id", outcome.LoserID),
		slog.Bool("ranks_swapped", outcome.RanksSwapped),
	)

	s.notifyCompleted(ctx, completed, outcome)
	return &outcome, nil
}

// lockParticipants locks both memberships in the team and requires each to be active.
func (s *outcomeService) lockParticipants(ctx context.Context, exec repositories.SQLExecutor, teamID, winnerID, loserID int) (winner, loser *models.Membership, err error) {
	memberships, err := s.membershipRepo.LockByTeamAndUsers(ctx, exec, teamID, winnerID, loserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock memberships in team %d: %w", teamID, err)
	}
	for _, m := range memberships {
		switch m.UserID {
		case winnerID:
			winner = m
		case loserID:
			loser = m
		}
	}
	if !winner.IsActive() {
		return nil, nil, fmt.Errorf("%w: user %d in team %d", ErrMembershipNotFound, winnerID, teamID)
	}
	if !loser.IsActive() {
		return nil, nil, fmt.Errorf("%w: user %d in team %d", ErrMembershipNotFound, loserID, teamID)
	}
	return winner, loser, nil
}

func (s *outcomeService) appendHistory(ctx context.Context, exec repositories.SQLExecutor, outcome models.ChallengeOutcome) error {
	challengeID := outcome.ChallengeID
	entries := []*models.RankHistory{
		{UserID: outcome.WinnerID, TeamID: outcome.TeamID, PreviousRank: outcome.WinnerOldRank, NewRank: outcome.WinnerNewRank, ChallengeID: &challengeID},
		{UserID: outcome.LoserID, TeamID: outcome.TeamID, PreviousRank: outcome.LoserOldRank, NewRank: outcome.LoserNewRank, ChallengeID: &challengeID},
	}
	for _, entry := range entries {
		if err := s.historyRepo.Create(ctx, exec, entry); err != nil {
			return fmt.Errorf("failed to append rank history for user %d: %w", entry.UserID, err)
		}
	}
	return nil
}

func (s *outcomeService) notifyCompleted(ctx context.Context, challenge *models.Challenge, outcome models.ChallengeOutcome) {
	s.notifier.Go(ctx, "challenge.completed", func(ctx context.Context, n Notifier) error {
		winner := s.lookupUser(ctx, outcome.WinnerID)
		loser := s.lookupUser(ctx, outcome.LoserID)
		return n.NotifyChallengeCompleted(ctx, challenge, winner, loser, outcome)
	})
	if outcome.RanksSwapped {
		teamID := outcome.TeamID
		s.notifier.Go(ctx, "rankings.updated", func(ctx context.Context, n Notifier) error {
			return n.NotifyRankingsUpdated(ctx, teamID)
		})
	}
}

// lookupUser never fails: notifications fall back to a bare id.
func (s *outcomeService) lookupUser(ctx context.Context, userID int) *models.User {
	if s.userRepo != nil {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err == nil {
			user.PasswordHash = ""
			return user
		}
		s.logger.WarnContext(ctx, "failed to load user for notification", slog.Int("user_id", userID), slog.Any("error", err))
	}
	return &models.User{ID: userID}
}

// validateOutcomeRequest checks the preconditions of a verdict and returns
// the loser's id.
func validateOutcomeRequest(challenge *models.Challenge, winnerID, callerID int) (int, error) {
	if challenge.WitnessID != callerID {
		return 0, fmt.Errorf("%w: user %d is not the witness of challenge %d", ErrNotAuthorizedOrWrongState, callerID, challenge.ID)
	}
	switch challenge.Status {
	case models.ChallengeStatusAccepted:
	case models.ChallengeStatusCompleted:
		return 0, fmt.Errorf("%w: challenge %d", ErrChallengeNotInAcceptableState, challenge.ID)
	default:
		return 0, fmt.Errorf("%w: challenge %d is %s", ErrNotAuthorizedOrWrongState, challenge.ID, challenge.Status)
	}
	if !challenge.IsParticipant(winnerID) {
		return 0, fmt.Errorf("%w: user %d did not play challenge %d", ErrInvalidWinnerSelection, winnerID, challenge.ID)
	}
	return challenge.OtherParticipant(winnerID), nil
}

// decideOutcome swaps only when the winner's rank number is strictly larger
// (worse) than the loser's. Equal ranks are left alone.
func decideOutcome(challengeID, teamID int, winner, loser *models.Membership) models.ChallengeOutcome {
	outcome := models.ChallengeOutcome{
		ChallengeID:   challengeID,
		TeamID:        teamID,
		WinnerID:      winner.UserID,
		LoserID:       loser.UserID,
		WinnerOldRank: winner.Rank,
		WinnerNewRank: winner.Rank,
		LoserOldRank:  loser.Rank,
		LoserNewRank:  loser.Rank,
	}
	if winner.Rank > loser.Rank {
		outcome.WinnerNewRank = loser.Rank
		outcome.LoserNewRank = winner.Rank
		outcome.RanksSwapped = true
	}
	return outcome
}

func translateChallengeLookupError(challengeID int, err error) error {
	if errors.Is(err, repositories.ErrChallengeNotFound) {
		return fmt.Errorf("%w: challenge %d does not exist", ErrNotAuthorizedOrWrongState, challengeID)
	}
	return translateStorageError(fmt.Errorf("failed to load challenge %d: %w", challengeID, err))
}

func translateStorageError(err error) error {
	if err == nil || errors.Is(err, ErrTransientStorageFailure) {
		return err
	}
	if repositories.IsTransient(err) {
		return fmt.Errorf("%w: %w", ErrTransientStorageFailure, err)
	}
	return err
}
