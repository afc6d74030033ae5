package composition

import (
	"context"

	"github.com/and161185/foodgram/internal/model"
)

// Store is the transactional part of the recipe repository the builder writes through.
type Store interface {
	Create(ctx context.Context, authorID int64, attrs model.RecipeAttrs, tagIDs []int64, ings []model.IngredientAmount) (int64, error)
	Replace(ctx context.Context, id int64, patch model.RecipePatch, tagIDs []int64, ings []model.IngredientAmount) error
	Get(ctx context.Context, viewerID, id int64) (*model.Recipe, error)
}

// Builder persists recipes after validating their attributes and composition.
// Authorization is the caller's concern.
type Builder struct {
	v     *Validator
	store Store
}

// NewBuilder creates a Builder.
func NewBuilder(v *Validator, store Store) *Builder {
	return &Builder{v: v, store: store}
}

// Build validates and creates a recipe owned by owner and returns it as the owner sees it.
func (b *Builder) Build(
	ctx context.Context, owner int64, attrs model.RecipeAttrs, ings []model.IngredientAmount, tags []int64,
) (*model.Recipe, error) {
	if err := b.v.Attrs(attrs); err != nil {
		return nil, err
	}
	ings, err := b.v.Ingredients(ctx, ings)
	if err != nil {
		return nil, err
	}
	tags, err = b.v.Tags(ctx, tags)
	if err != nil {
		return nil, err
	}

	id, err := b.store.Create(ctx, owner, attrs, tags, ings)
	if err != nil {
		return nil, err
	}
	return b.store.Get(ctx, owner, id)
}

// Replace applies patch to recipe id. A nil list leaves that part of the composition
// as is; a non-nil one is validated and overwrites it entirely.
func (b *Builder) Replace(
	ctx context.Context, id int64, patch model.RecipePatch, ings []model.IngredientAmount, tags []int64,
) error {
	if err := b.v.Patch(patch); err != nil {
		return err
	}
	if ings != nil {
		if _, err := b.v.Ingredients(ctx, ings); err != nil {
			return err
		}
	}
	if tags != nil {
		if _, err := b.v.Tags(ctx, tags); err != nil {
			return err
		}
	}
	return b.store.Replace(ctx, id, patch, tags, ings)
}
