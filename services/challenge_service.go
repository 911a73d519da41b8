package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/Dosada05/rank-ladder/repositories"
)

type CreateChallengeInput struct {
	ChallengerID int             `json:"-"`
	OpponentID   int             `json:"opponent_id"`
	WitnessID    int             `json:"witness_id"`
	TeamID       *int            `json:"team_id,omitempty"`
	BannedAgent  json.RawMessage `json:"banned_agent,omitempty"`
}

type ChallengeService interface {
	CreateChallenge(ctx context.Context, input CreateChallengeInput) (*models.Challenge, error)
	AcceptChallenge(ctx context.Context, challengeID, callerID int) (*models.Challenge, error)
	DeclineChallenge(ctx context.Context, challengeID, callerID int) (*models.Challenge, error)
	GetChallenge(ctx context.Context, challengeID int) (*models.Challenge, error)
	ListChallengesForUser(ctx context.Context, userID int, status *models.ChallengeStatus) ([]*models.Challenge, error)
}

type challengeService struct {
	challengeRepo  repositories.ChallengeRepository
	membershipRepo repositories.MembershipRepository
	resolver       *TeamResolver
	notifier       *BackgroundNotifier
	logger         *slog.Logger
}

func NewChallengeService(
	challengeRepo repositories.ChallengeRepository,
	membershipRepo repositories.MembershipRepository,
	notifier *BackgroundNotifier,
	logger *slog.Logger,
) ChallengeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &challengeService{
		challengeRepo:  challengeRepo,
		membershipRepo: membershipRepo,
		resolver:       NewTeamResolver(membershipRepo),
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *challengeService) CreateChallenge(ctx context.Context, input CreateChallengeInput) (*models.Challenge, error) {
	if err := validateCreateChallengeInput(input); err != nil {
		return nil, err
	}

	teamID, err := s.resolver.ResolveComparisonTeam(ctx, nil, input.ChallengerID, input.OpponentID, input.TeamID)
	if err != nil {
		return nil, translateStorageError(err)
	}
	for _, userID := range []int{input.ChallengerID, input.OpponentID} {
		m, err := s.membershipRepo.GetByTeamAndUser(ctx, nil, teamID, userID)
		if err != nil && !errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, translateStorageError(fmt.Errorf("failed to load membership of user %d: %w", userID, err))
		}
		if !m.IsActive() {
			return nil, fmt.Errorf("%w: user %d in team %d", ErrMembershipNotFound, userID, teamID)
		}
	}

	challenge := &models.Challenge{
		ChallengerID: input.ChallengerID,
		OpponentID:   input.OpponentID,
		WitnessID:    input.WitnessID,
		TeamID:       &teamID,
		Status:       models.ChallengeStatusPending,
		BannedAgent:  input.BannedAgent,
	}
	if err := s.challengeRepo.Create(ctx, nil, challenge); err != nil {
		if errors.Is(err, repositories.ErrChallengeUserInvalid) {
			return nil, fmt.Errorf("%w: %w", ErrUserNotFound, err)
		}
		return nil, translateStorageError(fmt.Errorf("failed to create challenge: %w", err))
	}

	s.logger.InfoContext(ctx, "challenge created",
		slog.Int("challenge_id", challenge.ID),
		slog.Int("challenger_id", challenge.ChallengerID),
		slog.Int("opponent_id", challenge.OpponentID),
		slog.Int("team_id", teamID),
	)
	created := *challenge
	s.notifier.Go(ctx, "challenge.created", func(ctx context.Context, n Notifier) error {
		return n.NotifyChallengeCreated(ctx, &created)
	})
	return challenge, nil
}

func (s *challengeService) AcceptChallenge(ctx context.Context, challengeID, callerID int) (*models.Challenge, error) {
	challenge, err := s.respond(ctx, challengeID, callerID, models.ChallengeStatusAccepted)
	if err != nil {
		return nil, err
	}
	accepted := *challenge
	s.notifier.Go(ctx, "challenge.accepted", func(ctx context.Context, n Notifier) error {
		return n.NotifyChallengeAccepted(ctx, &accepted)
	})
	return challenge, nil
}

func (s *challengeService) DeclineChallenge(ctx context.Context, challengeID, callerID int) (*models.Challenge, error) {
	challenge, err := s.respond(ctx, challengeID, callerID, models.ChallengeStatusDeclined)
	if err != nil {
		return nil, err
	}
	declined := *challenge
	s.notifier.Go(ctx, "challenge.declined", func(ctx context.Context, n Notifier) error {
		return n.NotifyChallengeDeclined(ctx, &declined)
	})
	return challenge, nil
}

// respond moves a pending challenge to next on behalf of its opponent.
func (s *challengeService) respond(ctx context.Context, challengeID, callerID int, next models.ChallengeStatus) (*models.Challenge, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, nil, challengeID)
	if err != nil {
		return nil, translateChallengeLookupError(challengeID, err)
	}
	if challenge.OpponentID != callerID {
		return nil, fmt.Errorf("%w: only the opponent can respond to challenge %d", ErrNotAuthorizedOrWrongState, challengeID)
	}
	if !challenge.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: challenge %d is %s", ErrNotAuthorizedOrWrongState, challengeID, challenge.Status)
	}

	err = s.challengeRepo.UpdateStatus(ctx, nil, challengeID, challenge.Status, next)
	if err != nil {
		if errors.Is(err, repositories.ErrChallengeStatusConflict) {
			return nil, fmt.Errorf("%w: challenge %d was answered concurrently", ErrNotAuthorizedOrWrongState, challengeID)
		}
		return nil, translateStorageError(fmt.Errorf("failed to update challenge %d: %w", challengeID, err))
	}
	challenge.Status = next

	s.logger.InfoContext(ctx, "challenge answered",
		slog.Int("challenge_id", challengeID),
		slog.String("status", string(next)),
	)
	return challenge, nil
}

func (s *challengeService) GetChallenge(ctx context.Context, challengeID int) (*models.Challenge, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, nil, challengeID)
	if err != nil {
		if errors.Is(err, repositories.ErrChallengeNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, translateStorageError(err)
	}
	return challenge, nil
}

func (s *challengeService) ListChallengesForUser(ctx context.Context, userID int, status *models.ChallengeStatus) ([]*models.Challenge, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown challenge status %q", ErrValidationFailed, *status)
	}
	challenges, err := s.challengeRepo.ListByUser(ctx, nil, userID, status)
	if err != nil {
		return nil, translateStorageError(fmt.Errorf("failed to list challenges of user %d: %w", userID, err))
	}
	if challenges == nil {
		return []*models.Challenge{}, nil
	}
	return challenges, nil
}

func validateCreateChallengeInput(input CreateChallengeInput) error {
	if input.ChallengerID <= 0 || input.OpponentID <= 0 || input.WitnessID <= 0 {
		return fmt.Errorf("%w: challenger, opponent and witness are required", ErrValidationFailed)
	}
	if input.ChallengerID == input.OpponentID {
		return fmt.Errorf("%w: cannot challenge yourself", ErrValidationFailed)
	}
	if input.WitnessID == input.ChallengerID || input.WitnessID == input.OpponentID {
		return fmt.Errorf("%w: the witness must not be a player", ErrValidationFailed)
	}
	if len(input.BannedAgent) > 0 && !json.Valid(input.BannedAgent) {
		return fmt.Errorf("%w: banned_agent must be valid JSON", ErrValidationFailed)
	}
	return nil
}
