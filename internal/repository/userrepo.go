// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/foodgram/internal/model"
)

// UserRepository provides access to accounts.
type UserRepository interface {
	// Create inserts a new user and sets its ID.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByEmail loads a user by login email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// View loads a user as seen by viewerID (0 for anonymous).
	View(ctx context.Context, viewerID, id int64) (*model.UserView, error)
	// List returns a page of users as seen by viewerID and the total count.
	List(ctx context.Context, viewerID int64, limit, offset int) ([]model.UserView, int, error)
	// SetPassword replaces the stored password hash.
	SetPassword(ctx context.Context, id int64, pwdHash string) error
}
