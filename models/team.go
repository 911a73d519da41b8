package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   int       `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Owner   *User          `json:"owner,omitempty" db:"-"`
	Members []*LadderEntry `json:"members,omitempty" db:"-"`
}

// LadderEntry is one row of a team's standings: an active membership joined with its user.
type LadderEntry struct {
	TeamID        int            `json:"team_id"`
	UserID        int            `json:"user_id"`
	Nickname      string         `json:"nickname"`
	DiscordHandle *string        `json:"discord_handle,omitempty"`
	Rank          int            `json:"rank"`
	Role          MembershipRole `json:"role"`
}
