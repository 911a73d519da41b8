package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/Dosada05/rank-ladder/repositories"
)

type LadderService interface {
	// GetTeamLadder returns the team with its active members ordered by rank.
	// Equal ranks, which the schema forbids, are ordered by user id.
	GetTeamLadder(ctx context.Context, teamID int) (*models.Team, error)
	ListRankHistory(ctx context.Context, teamID int, userID *int) ([]*models.RankHistory, error)
}

type ladderService struct {
	teamRepo       repositories.TeamRepository
	membershipRepo repositories.MembershipRepository
	historyRepo    repositories.RankHistoryRepository
}

func NewLadderService(
	teamRepo repositories.TeamRepository,
	membershipRepo repositories.MembershipRepository,
	historyRepo repositories.RankHistoryRepository,
) LadderService {
	return &ladderService{
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		historyRepo:    historyRepo,
	}
}

func (s *ladderService) GetTeamLadder(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	entries, err := s.membershipRepo.ListLadder(ctx, nil, teamID)
	if err != nil {
		return nil, translateStorageError(fmt.Errorf("failed to load ladder of team %d: %w", teamID, err))
	}
	if entries == nil {
		entries = []*models.LadderEntry{}
	}
	team.Members = entries
	return team, nil
}

func (s *ladderService) ListRankHistory(ctx context.Context, teamID int, userID *int) ([]*models.RankHistory, error) {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	history, err := s.historyRepo.ListByTeam(ctx, nil, teamID, userID)
	if err != nil {
		return nil, translateStorageError(fmt.Errorf("failed to load rank history of team %d: %w", teamID, err))
	}
	if history == nil {
		return []*models.RankHistory{}, nil
	}
	return history, nil
}

func (s *ladderService) getTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, translateStorageError(err)
	}
	return team, nil
}
