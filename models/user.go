package models

import (
	"strconv"
	"time"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RolePlayer UserRole = "player"
)

type User struct {
	ID            int       `json:"id" db:"id"`
	Nickname      string    `json:"nickname" db:"nickname"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	Role          UserRole  `json:"role" db:"role"`
	DiscordHandle *string   `json:"discord_handle,omitempty" db:"discord_handle"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// DisplayName falls back to a synthetic name for users without a nickname.
func (u *User) DisplayName() string {
	if u == nil {
		return "unknown player"
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	return "player #" + strconv.Itoa(u.ID)
}
