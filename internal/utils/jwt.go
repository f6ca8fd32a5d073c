package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/sha256" // SHA‑256 hashing for refresh tokens
    "encoding/hex"  // hex encoding of digests
    "errors"        // sentinel errors for verification failures
    "fmt"           // wrapping of jwt library errors
    "time"          // expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
    "github.com/google/uuid"       // unique token identifiers (jti)
)

// TokenKind selects which secret signs and verifies a token.
type TokenKind string

const (
    AccessKind  TokenKind = "access"
    RefreshKind TokenKind = "refresh"
)

var (
    // ErrInvalidSignature covers every verification failure other than
    // expiry: bad signature, wrong secret, tampered payload, unexpected
    // algorithm, wrong kind or missing identity claims.
    ErrInvalidSignature = errors.New("invalid token signature")
    // ErrTokenExpired is returned when the signature is valid but exp has passed.
    ErrTokenExpired = errors.New("token expired")
)

// Identity is the minimal payload embedded in every token.
type Identity struct {
    UserID   string
    Username string
}

// Claims is the fixed claims structure for both token kinds.  Subject holds
// the user id.  Kind is checked on decode so an access token can never be
// replayed as a refresh token or the other way round.
type Claims struct {
    Username string    `json:"username"`
    Kind     TokenKind `json:"kind"`
    jwt.RegisteredClaims
}

// Identity returns the user identity carried by the claims.
func (c *Claims) Identity() Identity {
    return Identity{UserID: c.Subject, Username: c.Username}
}

// IssuedToken is a signed JWT together with its expiry.
type IssuedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time, truncated to seconds like the exp claim
}

// TokenCodec signs and verifies HS256 tokens with one secret per kind.
type TokenCodec struct {
    keys map[TokenKind][]byte
    now  func() time.Time
}

// NewTokenCodec builds a codec from the access and refresh secrets.  Both are
// required and must differ so one kind can never verify as the other.
func NewTokenCodec(accessSecret, refreshSecret string) (*TokenCodec, error) {
    if accessSecret == "" || refreshSecret == "" {
        return nil, errors.New("token codec: both secrets are required")
    }
    if accessSecret == refreshSecret {
        return nil, errors.New("token codec: access and refresh secrets must differ")
    }
    return &TokenCodec{
        keys: map[TokenKind][]byte{
            AccessKind:  []byte(accessSecret),
            RefreshKind: []byte(refreshSecret),
        },
        now: func() time.Time { return time.Now().UTC() },
    }, nil
}

// WithClock returns a copy of the codec that reads time from now.  Used by
// tests to move time forward without sleeping.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
    return &TokenCodec{keys: c.keys, now: now}
}

// Issue signs a token of the given kind for id that expires ttl from now.
func (c *TokenCodec) Issue(kind TokenKind, id Identity, ttl time.Duration) (IssuedToken, error) {
    key, ok := c.keys[kind]
    if !ok {
        return IssuedToken{}, fmt.Errorf("token codec: unknown kind %q", kind)
    }
    now := c.now()
    claims := Claims{
        Username: id.Username,
        Kind:     kind,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   id.UserID,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
            ID:        uuid.NewString(),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
    if err != nil {
        return IssuedToken{}, fmt.Errorf("token codec: sign %s token: %w", kind, err)
    }
    return IssuedToken{Token: signed, Exp: claims.ExpiresAt.Time.UTC()}, nil
}

// Verify checks the token's signature against the secret for kind, then its
// expiry, then the shape of the claims.
func (c *TokenCodec) Verify(kind TokenKind, raw string) (*Claims, error) {
    key, ok := c.keys[kind]
    if !ok {
        return nil, fmt.Errorf("token codec: unknown kind %q", kind)
    }
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(raw, claims,
        func(*jwt.Token) (interface{}, error) { return key, nil },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(c.now),
    )
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
        }
        return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
    }
    if !tok.Valid {
        return nil, ErrInvalidSignature
    }
    if claims.Kind != kind {
        return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidSignature, kind, claims.Kind)
    }
    if claims.Subject == "" || claims.Username == "" {
        return nil, fmt.Errorf("%w: missing identity claims", ErrInvalidSignature)
    }
    return claims, nil
}

// HashRefreshRaw returns the SHA‑256 hash of a refresh token as a hex
// string.  The ledger stores only this digest so a leaked table cannot be
// replayed against the refresh endpoint.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
