package model

import "time"

// User represents an application user record as stored in the
// `users` table.  The password hash is never serialized; handlers
// expose only the public identity through PublicUser.
//
// Fields:
//  ID           – UUIDv4 primary key.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update (password change).
type User struct {
    ID           string    // users.id
    Username     string    // users.username
    PasswordHash string    // users.password_hash
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// PublicUser is the identity returned to clients.
type PublicUser struct {
    ID       string `json:"id"`
    Username string `json:"username"`
}

// Public strips the password hash and timestamps.
func (u User) Public() PublicUser {
    return PublicUser{ID: u.ID, Username: u.Username}
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and is valid until ExpiresAt.  The
// plain token is not stored; only its SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token (UTC).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64    // refresh_tokens.id
    UserID    string    // refresh_tokens.user_id
    TokenHash string    // refresh_tokens.token_hash
    ExpiresAt time.Time // refresh_tokens.expires_at
    CreatedAt time.Time // refresh_tokens.created_at
}
