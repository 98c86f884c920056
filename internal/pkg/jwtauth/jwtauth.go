package jwtauth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

const refreshType = "refresh"

// Claims carries the identity both token kinds are issued with.
// Type is set only on refresh tokens, ID (jti) identifies the
// refresh session stored server-side.
type Claims struct {
	Email string `json:"email"`
	Type  string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

type Pair struct {
	Access     string
	Refresh    string
	RefreshJTI string
	AccessExp  time.Time
	RefreshExp time.Time
}

// NewPair issues a signed access/refresh token pair for the user.
func NewPair(secret string, userID int64, email string, accessTTL, refreshTTL time.Duration) (Pair, error) {
	now := time.Now().UTC()

	access, accessExp, err := sign(secret, userID, email, "", "", now, accessTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign access token error: %w", err)
	}

	jti, err := randomHex(16)
	if err != nil {
		return Pair{}, fmt.Errorf("generate jti error: %w", err)
	}

	refresh, refreshExp, err := sign(secret, userID, email, refreshType, jti, now, refreshTTL)
	if err != nil {
		return Pair{}, fmt.Errorf("sign refresh token error: %w", err)
	}

	return Pair{
		Access:     access,
		Refresh:    refresh,
		RefreshJTI: jti,
		AccessExp:  accessExp,
		RefreshExp: refreshExp,
	}, nil
}

// VerifyAccess parses and validates an access token.
// Expired tokens are reported as ErrTokenExpired, every other failure
// (bad signature, malformed, refresh token passed as access) as ErrTokenInvalid.
func VerifyAccess(secret, raw string) (Claims, error) {
	claims, err := verify(secret, raw)
	if err != nil {
		return Claims{}, err
	}

	if claims.Type == refreshType {
		return Claims{}, ErrTokenInvalid
	}

	return claims, nil
}

// VerifyRefresh parses and validates a refresh token, requiring the type marker.
func VerifyRefresh(secret, raw string) (Claims, error) {
	claims, err := verify(secret, raw)
	if err != nil {
		return Claims{}, err
	}

	if claims.Type != refreshType || claims.ID == "" {
		return Claims{}, ErrTokenInvalid
	}

	return claims, nil
}

func sign(secret string, userID int64, email, typ, jti string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)

	claims := Claims{
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signed string error: %w", err)
	}

	return signed, exp, nil
}

func verify(secret, raw string) (Claims, error) {
	var claims Claims

	t, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}

		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}

		return Claims{}, ErrTokenInvalid
	}

	if !t.Valid {
		return Claims{}, ErrTokenInvalid
	}

	return claims, nil
}

// UserID returns the user id the token was issued for.
func (c Claims) UserID() (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(c.Subject, "%d", &id); err != nil {
		return 0, fmt.Errorf("parse subject error: %w", err)
	}

	return id, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand read error: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
