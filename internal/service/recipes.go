package service

import (
	"context"

	"github.com/and161185/foodgram/internal/composition"
	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/repository"
)

// RecipeService defines recipe operations. Writes are author-only.
type RecipeService interface {
	// Create validates the composition and stores a recipe owned by authorID.
	Create(ctx context.Context, authorID int64, attrs model.RecipeAttrs, ings []model.IngredientAmount, tags []int64) (*model.Recipe, error)
	// Update applies a partial update; nil lists leave that part of the composition unchanged.
	Update(ctx context.Context, userID, id int64, patch model.RecipePatch, ings []model.IngredientAmount, tags []int64) (*model.Recipe, error)
	// Delete removes a recipe.
	Delete(ctx context.Context, userID, id int64) error
	// Get loads a recipe as seen by viewerID.
	Get(ctx context.Context, viewerID, id int64) (*model.Recipe, error)
	// List returns a filtered page of recipes and the total count.
	List(ctx context.Context, f model.RecipeFilter) ([]model.Recipe, int, error)
}

type RecipeServiceImpl struct {
	recipes repository.RecipeRepository
	builder *composition.Builder
}

// NewRecipeService constructs RecipeService.
func NewRecipeService(recipes repository.RecipeRepository, builder *composition.Builder) *RecipeServiceImpl {
	return &RecipeServiceImpl{recipes: recipes, builder: builder}
}

// Create delegates to the composition builder.
func (s *RecipeServiceImpl) Create(
	ctx context.Context, authorID int64, attrs model.RecipeAttrs, ings []model.IngredientAmount, tags []int64,
) (*model.Recipe, error) {
	return s.builder.Build(ctx, authorID, attrs, ings, tags)
}

// Update checks ownership, then replaces the recipe through the builder.
func (s *RecipeServiceImpl) Update(
	ctx context.Context, userID, id int64, patch model.RecipePatch, ings []model.IngredientAmount, tags []int64,
) (*model.Recipe, error) {
	if err := s.mustOwn(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.builder.Replace(ctx, id, patch, ings, tags); err != nil {
		return nil, err
	}
	return s.recipes.Get(ctx, userID, id)
}

// Delete checks ownership and removes the recipe.
func (s *RecipeServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	if err := s.mustOwn(ctx, userID, id); err != nil {
		return err
	}
	return s.recipes.Delete(ctx, id)
}

func (s *RecipeServiceImpl) mustOwn(ctx context.Context, userID, id int64) error {
	author, err := s.recipes.AuthorOf(ctx, id)
	if err != nil {
		return err
	}
	if author != userID {
		return errs.ErrForbidden
	}
	return nil
}

// Get loads a hydrated recipe.
func (s *RecipeServiceImpl) Get(ctx context.Context, viewerID, id int64) (*model.Recipe, error) {
	return s.recipes.Get(ctx, viewerID, id)
}

// List returns recipes newest first.
func (s *RecipeServiceImpl) List(ctx context.Context, f model.RecipeFilter) ([]model.Recipe, int, error) {
	return s.recipes.List(ctx, f)
}
