package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/rank-ladder/models"
)

func TestResolveComparisonTeam(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *memStore)
		hint    *int
		want    int
		wantErr error
	}{
		{
			name: "single shared team",
			setup: func(s *memStore) {
				s.addMember(teamT, playerA, 1, models.MembershipStatusActive)
				s.addMember(teamT, playerB, 2, models.MembershipStatusActive)
				s.addMember(teamU, playerA, 1, models.MembershipStatusActive)
			},
			want: teamT,
		},
		{
			name: "no shared team",
			setup: func(s *memStore) {
				s.addMember(teamT, playerA, 1, models.MembershipStatusActive)
				s.addMember(teamU, playerB, 1, models.MembershipStatusActive)
			},
			wantErr: ErrAmbiguousOrMissingTeamContext,
		},
		{
			name:    "neither player has a team",
			setup:   func(s *memStore) {},
			wantErr: ErrAmbiguousOrMissingTeamContext,
		},
		{
			name: "two shared teams without hint",
			setup: func(s *memStore) {
				s.addMember(teamT, playerA, 1, models.MembershipStatusActive)
				s.addMember(teamT, playerB, 2, models.MembershipStatusActive)
				s.addMember(teamU, playerA, 2, models.MembershipStatusActive)
				s.addMember(teamU, playerB, 1, models.MembershipStatusActive)
			},
			wantErr: ErrAmbiguousOrMissingTeamContext,
		},
		{
			name: "hint picks one of two shared teams",
			setup: func(s *memStore) {
				s.addMember(teamT, playerA, 1, models.MembershipStatusActive)
				s.addMember(teamT, playerB, 2, models.MembershipStatusActive)
				s.addMember(teamU, playerA, 2, models.MembershipStatusActive)
				s.addMember(teamU, playerB, 1, models.MembershipStatusApproved)
			},
			hint: intPtr(teamU),
			want: teamU,
		},
		{
			name: "hint without active memberships falls back to intersection",
			setup: func(s *memStore) {
				s.addMember(teamT, playerA, 1, models.MembershipStatusActive)
				s.addMember(teamT, playerB, 2, models.MembershipStatusActive)
				s.addMember(teamU, playerA, 2, models.MembershipStatusActive)
			},
			hint: intPtr(teamU),
			want: teamT,
		},
		{
			name: "pending membership still counts towards the intersection",
			setup: func(s *memStore) {
				s.addMember(teamT, playerA, 1, models.MembershipStatusActive)
				s.addMember(teamT, playerB, 2, models.MembershipStatusPending)
			},
			want: teamT,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			tt.setup(store)
			resolver := NewTeamResolver(memMembershipRepo{store})

			got, err := resolver.ResolveComparisonTeam(context.Background(), nil, playerA, playerB, tt.hint)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveComparisonTeam_StorageFailure(t *testing.T) {
	store := newMemStore()
	boom := errors.New("connection reset")
	store.failOn("membership.list_by_user", boom)

	_, err := NewTeamResolver(memMembershipRepo{store}).ResolveComparisonTeam(context.Background(), nil, playerA, playerB, nil)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrAmbiguousOrMissingTeamContext)
}
