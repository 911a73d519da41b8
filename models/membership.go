package models

import "time"

type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "pending"
	MembershipStatusApproved MembershipStatus = "approved"
	MembershipStatusActive   MembershipStatus = "active"
)

type MembershipRole string

const (
	MembershipRoleMember MembershipRole = "member"
	MembershipRoleAdmin  MembershipRole = "admin"
)

// Membership is a user's participation record in a team. Rank is a positive
// integer, lower is better, unique among the team's active members.
type Membership struct {
	ID        int              `json:"id" db:"id"`
	TeamID    int              `json:"team_id" db:"team_id"`
	UserID    int              `json:"user_id" db:"user_id"`
	Rank      int              `json:"rank" db:"rank"`
	Status    MembershipStatus `json:"status" db:"status"`
	Role      MembershipRole   `json:"role" db:"role"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the membership takes part in the team's ladder.
// "approved" and "active" are synonyms kept for legacy rows.
func (m *Membership) IsActive() bool {
	if m == nil {
		return false
	}
	return m.Status == MembershipStatusApproved || m.Status == MembershipStatusActive
}
