package service

import (
	"context"

	"github.com/and161185/foodgram/internal/repository"
	"github.com/and161185/foodgram/internal/shoplist"
)

// ShoppingService builds the consolidated shopping list of a user's cart.
type ShoppingService interface {
	// Aggregate returns the merged quantities by ingredient name.
	Aggregate(ctx context.Context, userID int64) (map[string]shoplist.Entry, error)
	// Render returns the merged list as text; an empty cart renders as "".
	Render(ctx context.Context, userID int64) (string, error)
}

type ShoppingServiceImpl struct {
	recipes repository.RecipeRepository
}

// NewShoppingService constructs ShoppingService.
func NewShoppingService(recipes repository.RecipeRepository) *ShoppingServiceImpl {
	return &ShoppingServiceImpl{recipes: recipes}
}

// Aggregate reads every cart line in one query and merges them.
func (s *ShoppingServiceImpl) Aggregate(ctx context.Context, userID int64) (map[string]shoplist.Entry, error) {
	lines, err := s.recipes.CartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return shoplist.Aggregate(lines), nil
}

// Render formats the aggregate.
func (s *ShoppingServiceImpl) Render(ctx context.Context, userID int64) (string, error) {
	m, err := s.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}
	return shoplist.Render(m), nil
}
