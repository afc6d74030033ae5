package service

import (
	"context"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
)

// RelationService toggles favorites, cart entries and subscriptions.
type RelationService interface {
	// Add puts a recipe into collection c and returns its short form.
	Add(ctx context.Context, c model.Collection, userID, recipeID int64) (*model.RecipeShort, error)
	// Remove takes a recipe out of collection c.
	Remove(ctx context.Context, c model.Collection, userID, recipeID int64) error
	// Subscribe follows authorID and returns the author with up to recipesLimit recipes (0: all).
	Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*model.Author, error)
	// Unsubscribe stops following authorID.
	Unsubscribe(ctx context.Context, userID, authorID int64) error
	// Subscriptions returns a page of followed authors with recipe previews.
	Subscriptions(ctx context.Context, userID int64, limit, offset, recipesLimit int) ([]model.Author, int, error)
}

type RelationServiceImpl struct {
	users     repository.UserRepository
	recipes   repository.RecipeRepository
	relations repository.RelationRepository
}

// NewRelationService constructs RelationService.
func NewRelationService(
	users repository.UserRepository, recipes repository.RecipeRepository, relations repository.RelationRepository,
) *RelationServiceImpl {
	return &RelationServiceImpl{users: users, recipes: recipes, relations: relations}
}

// Add links the recipe; the recipe must exist and the pair must be new.
func (s *RelationServiceImpl) Add(ctx context.Context, c model.Collection, userID, recipeID int64) (*model.RecipeShort, error) {
	short, err := s.recipes.Short(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.relations.Add(ctx, c, userID, recipeID); err != nil {
		return nil, err
	}
	return short, nil
}

// Remove unlinks the recipe; the recipe must exist and the pair must be present.
func (s *RelationServiceImpl) Remove(ctx context.Context, c model.Collection, userID, recipeID int64) error {
	if _, err := s.recipes.Short(ctx, recipeID); err != nil {
		return err
	}
	return s.relations.Remove(ctx, c, userID, recipeID)
}

// Subscribe rejects self-subscription before touching storage.
func (s *RelationServiceImpl) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*model.Author, error) {
	if userID == authorID {
		return nil, errs.ErrSelfReference
	}
	view, err := s.users.View(ctx, userID, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.relations.Subscribe(ctx, userID, authorID); err != nil {
		return nil, err
	}
	view.IsSubscribed = true

	all, err := s.recipes.ShortByAuthor(ctx, authorID, 0)
	if err != nil {
		return nil, err
	}
	a := &model.Author{UserView: *view, RecipesCount: len(all), Recipes: all}
	if recipesLimit > 0 && len(all) > recipesLimit {
		a.Recipes = all[:recipesLimit]
	}
	return a, nil
}

// Unsubscribe removes the subscription; the author must exist.
func (s *RelationServiceImpl) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return err
	}
	return s.relations.Unsubscribe(ctx, userID, authorID)
}

// Subscriptions lists followed authors in subscription order.
func (s *RelationServiceImpl) Subscriptions(
	ctx context.Context, userID int64, limit, offset, recipesLimit int,
) ([]model.Author, int, error) {
	authors, total, err := s.relations.Subscriptions(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range authors {
		prev, err := s.recipes.ShortByAuthor(ctx, authors[i].ID, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		authors[i].Recipes = prev
	}
	return authors, total, nil
}
