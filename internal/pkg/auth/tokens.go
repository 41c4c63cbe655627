package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

// Claims are extracted from the access token
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ErrTokenExpired is returned for a valid but expired token
var ErrTokenExpired = errors.New("token expired")

// Tokens issues and validates HS256 access tokens
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates token issuer
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("jwt secret too short")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("wrong token ttl %v", ttl)
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns access token validity duration
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue creates access token for the user
func (t *Tokens) Issue(u *persistence.User) (string, error) {
	now := t.now()
	claims := &Claims{UserID: u.ID, Email: u.Email, Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		}}
	res, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("can't sign token: %w", err)
	}
	return res, nil
}

// Parse validates the token and returns claims
func (t *Tokens) Parse(token string) (*Claims, error) {
	res := &Claims{}
	_, err := jwt.ParseWithClaims(token, res, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if res.UserID == "" {
		return nil, fmt.Errorf("invalid token: no user")
	}
	return res, nil
}

// NewToken returns random hex token for refresh and e-mail links
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("can't generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
