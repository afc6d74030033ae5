// Package service contains application services: accounts, recipes, relations,
// shopping lists and reference data.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/foodgram/internal/crypto"
	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/limiter"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
)

// reservedUsername collides with the /users/me route.
const reservedUsername = "me"

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
}

// AuthService defines account and authentication operations.
type AuthService interface {
	// Register creates a new user with a hashed password.
	Register(ctx context.Context, in model.Registration) (*model.User, error)
	// Login applies rate-limiting by (email, client) and issues an access token.
	Login(ctx context.Context, email, password, remoteAddr string) (model.Tokens, error)
	// SetPassword replaces the password after verifying the current one.
	SetPassword(ctx context.Context, userID int64, current, next string) error
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens TokenIssuer
	lim    limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, lim: lim}
}

// Register validates the username and stores a new account.
func (s *AuthServiceImpl) Register(ctx context.Context, in model.Registration) (*model.User, error) {
	if !usernameRe.MatchString(in.Username) {
		return nil, errs.Field("username", fmt.Errorf("letters, digits and @/./+/-/_ only: %w", errs.ErrInvalidInput))
	}
	if strings.EqualFold(in.Username, reservedUsername) {
		return nil, errs.Field("username", fmt.Errorf("%q is reserved: %w", in.Username, errs.ErrInvalidInput))
	}
	if in.Password == "" {
		return nil, errs.Field("password", fmt.Errorf("required: %w", errs.ErrInvalidInput))
	}
	hash, err := pkgcrypto.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:     strings.TrimSpace(in.Email),
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		PwdHash:   hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login authenticates with rate limiting by (email, client address).
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, remoteAddr string) (model.Tokens, error) {
	email = limiter.NormalizeEmail(email)
	ipHash := limiter.HashIP(remoteAddr)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, err
	}
	if !allowed {
		return model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Tokens{}, err
	}
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, errs.ErrRateLimited
		}
		// unknown email and wrong password look the same
		return model.Tokens{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, email, ipHash)

	access, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, nil
}

// SetPassword verifies current and stores a hash of next.
func (s *AuthServiceImpl) SetPassword(ctx context.Context, userID int64, current, next string) error {
	if next == "" {
		return errs.Field("new_password", fmt.Errorf("required: %w", errs.ErrInvalidInput))
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !pkgcrypto.VerifyPassword(current, u.PwdHash) {
		return errs.Field("current_password", fmt.Errorf("does not match: %w", errs.ErrInvalidInput))
	}
	hash, err := pkgcrypto.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, userID, hash)
}
