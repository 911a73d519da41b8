package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/rank-ladder/models"
	"github.com/Dosada05/rank-ladder/repositories"
)

// TeamResolver finds the team in which two players can be compared.
// It only reads.
type TeamResolver struct {
	membershipRepo repositories.MembershipRepository
}

func NewTeamResolver(membershipRepo repositories.MembershipRepository) *TeamResolver {
	return &TeamResolver{membershipRepo: membershipRepo}
}

// ResolveComparisonTeam returns hintedTeamID when both users are active
// members of it. Otherwise it returns the single team both users belong to,
// or ErrAmbiguousOrMissingTeamContext when there is none or more than one.
func (r *TeamResolver) ResolveComparisonTeam(ctx context.Context, exec repositories.SQLExecutor, winnerID, loserID int, hintedTeamID *int) (int, error) {
	winnerMemberships, err := r.membershipRepo.ListByUser(ctx, exec, winnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to list memberships of user %d: %w", winnerID, err)
	}
	loserMemberships, err := r.membershipRepo.ListByUser(ctx, exec, loserID)
	if err != nil {
		return 0, fmt.Errorf("failed to list memberships of user %d: %w", loserID, err)
	}

	winnerTeams := indexByTeam(winnerMemberships)
	loserTeams := indexByTeam(loserMemberships)

	if hintedTeamID != nil {
		if winnerTeams[*hintedTeamID].IsActive() && loserTeams[*hintedTeamID].IsActive() {
			return *hintedTeamID, nil
		}
	}

	common := make([]int, 0, 1)
	for teamID := range winnerTeams {
		if _, ok := loserTeams[teamID]; ok {
			common = append(common, teamID)
		}
	}

	switch len(common) {
	case 1:
		return common[0], nil
	case 0:
		return 0, fmt.Errorf("%w: users %d and %d share no team", ErrAmbiguousOrMissingTeamContext, winnerID, loserID)
	default:
		sort.Ints(common)
		return 0, fmt.Errorf("%w: users %d and %d share teams %v", ErrAmbiguousOrMissingTeamContext, winnerID, loserID, common)
	}
}

func indexByTeam(memberships []*models.Membership) map[int]*models.Membership {
	out := make(map[int]*models.Membership, len(memberships))
	for _, m := range memberships {
		if m != nil {
			out[m.TeamID] = m
		}
	}
	return out
}
