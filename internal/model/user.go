package model

import "time"

// Role values stored in users.role and embedded in access tokens.
// Authorization is coarse: admins manage concerts and view booking
// statistics, everyone else is a regular user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application account as stored in the `users`
// table.  Username and email are both unique.  Only the bcrypt hash of
// the password is ever stored; handlers expose a password-free
// projection instead of this struct.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models a row in the `refresh_tokens` table.  The plain
// token value is returned to the client once; only its SHA-256 hash is
// persisted.  RevokedAt is nil while the token is still active.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
