package repository

import (
	"context"

	"github.com/and161185/foodgram/internal/model"
)

// RelationRepository stores the stateless user→recipe and user→author links.
type RelationRepository interface {
	// Add links user and recipe in collection c; an existing pair is errs.ErrConflict.
	Add(ctx context.Context, c model.Collection, userID, recipeID int64) error
	// Remove unlinks user and recipe; a missing pair is errs.ErrConflict.
	Remove(ctx context.Context, c model.Collection, userID, recipeID int64) error
	// Subscribe links subscriber to author.
	Subscribe(ctx context.Context, userID, authorID int64) error
	// Unsubscribe removes the link; a missing pair is errs.ErrConflict.
	Unsubscribe(ctx context.Context, userID, authorID int64) error
	// Subscriptions returns a page of authors userID follows and the total count.
	Subscriptions(ctx context.Context, userID int64, limit, offset int) ([]model.Author, int, error)
}
