package identity

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errNoToken      = errors.New("no bearer token")
	errInvalidToken = errors.New("invalid token")
)

// Tokens issues and verifies HS256 access tokens whose subject is the user id.
type Tokens struct {
	signKey []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewTokens constructs a token issuer/verifier.
func NewTokens(signKey []byte, ttl time.Duration) *Tokens {
	return &Tokens{signKey: signKey, ttl: ttl, now: time.Now}
}

// Issue creates a signed token for userID and returns it with its expiry.
func (t *Tokens) Issue(userID int64) (string, time.Time, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", time.Time{}, err
	}
	now := t.now()
	exp := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		ID:        jti.String(),
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signKey)
	return signed, exp, err
}

// Verify checks signature, algorithm and validity window and returns the subject user id.
func (t *Tokens) Verify(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tk *jwt.Token) (any, error) {
		if tk.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.signKey, nil
	}, jwt.WithLeeway(30*time.Second), jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return Anonymous, errInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Anonymous, errors.New("bad subject")
	}
	return id, nil
}

// BearerToken extracts the credential from an Authorization header value.
// Both "Bearer <t>" and the "Token <t>" form used by the web client are accepted.
func BearerToken(header string) (string, error) {
	v := strings.TrimSpace(header)
	for _, scheme := range []string{"bearer ", "token "} {
		if len(v) >= len(scheme) && strings.EqualFold(v[:len(scheme)], scheme) {
			if tok := strings.TrimSpace(v[len(scheme):]); tok != "" {
				return tok, nil
			}
		}
	}
	return "", errNoToken
}
