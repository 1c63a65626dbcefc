package models

import (
	"time"

	"github.com/google/uuid"
)

// Role defines what a user is allowed to do in the admin API.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

// User is an account that can author content. Authentication itself lives
// at the HTTP boundary; the lifecycle core only records author ids.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is a server-side login session. Only the SHA-256 hash of the
// session token is stored, so a database leak does not expose usable
// credentials. Expired rows are pruned by the scheduler.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
