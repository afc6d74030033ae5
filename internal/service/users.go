package service

import (
	"context"

	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
)

// UserService exposes accounts as seen by a caller.
type UserService interface {
	// Get loads user id with viewer's subscription flag.
	Get(ctx context.Context, viewerID, id int64) (*model.UserView, error)
	// List returns a page of users and the total count.
	List(ctx context.Context, viewerID int64, limit, offset int) ([]model.UserView, int, error)
}

type UserServiceImpl struct {
	users repository.UserRepository
}

// NewUserService constructs UserService.
func NewUserService(users repository.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{users: users}
}

// Get loads a single user.
func (s *UserServiceImpl) Get(ctx context.Context, viewerID, id int64) (*model.UserView, error) {
	return s.users.View(ctx, viewerID, id)
}

// List returns users ordered by id.
func (s *UserServiceImpl) List(ctx context.Context, viewerID int64, limit, offset int) ([]model.UserView, int, error) {
	return s.users.List(ctx, viewerID, limit, offset)
}
