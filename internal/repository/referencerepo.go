package repository

import (
	"context"

	"github.com/and161185/foodgram/internal/model"
)

// ReferenceRepository serves the append-only tag and ingredient tables.
type ReferenceRepository interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTag(ctx context.Context, id int64) (*model.Tag, error)
	// ListIngredients returns ingredients whose name starts with prefix (case-insensitive).
	ListIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error)
	// ExistingIngredientIDs returns the subset of ids present in storage.
	ExistingIngredientIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	// ExistingTagIDs returns the subset of ids present in storage.
	ExistingTagIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	// InsertIngredients adds rows whose (name, unit) pair is new and reports how many were added.
	InsertIngredients(ctx context.Context, items []model.Ingredient) (int, error)
	// InsertTags adds tags whose name, color and slug are all unused and reports how many were added.
	InsertTags(ctx context.Context, tags []model.Tag) (int, error)
}
