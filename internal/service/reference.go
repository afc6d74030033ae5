package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/refdata"
	"github.com/and161185/foodgram/internal/repository"
)

// ReferenceService serves and imports tags and ingredients.
type ReferenceService interface {
	Tags(ctx context.Context) ([]model.Tag, error)
	Tag(ctx context.Context, id int64) (*model.Tag, error)
	// Ingredients returns ingredients whose name starts with prefix.
	Ingredients(ctx context.Context, prefix string) ([]model.Ingredient, error)
	Ingredient(ctx context.Context, id int64) (*model.Ingredient, error)
	// ImportIngredients loads a (name, measurement_unit) CSV; existing pairs are skipped.
	ImportIngredients(ctx context.Context, r io.Reader) (added, read int, err error)
	// ImportTags loads a (name, color, slug) CSV; existing tags are skipped.
	ImportTags(ctx context.Context, r io.Reader) (added, read int, err error)
}

type ReferenceServiceImpl struct {
	refs repository.ReferenceRepository
	log  *zap.Logger
}

// NewReferenceService constructs ReferenceService.
func NewReferenceService(refs repository.ReferenceRepository, log *zap.Logger) *ReferenceServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReferenceServiceImpl{refs: refs, log: log}
}

func (s *ReferenceServiceImpl) Tags(ctx context.Context) ([]model.Tag, error) {
	return s.refs.ListTags(ctx)
}

func (s *ReferenceServiceImpl) Tag(ctx context.Context, id int64) (*model.Tag, error) {
	return s.refs.GetTag(ctx, id)
}

func (s *ReferenceServiceImpl) Ingredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	return s.refs.ListIngredients(ctx, prefix)
}

func (s *ReferenceServiceImpl) Ingredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	return s.refs.GetIngredient(ctx, id)
}

// ImportIngredients decodes the whole file before writing anything.
func (s *ReferenceServiceImpl) ImportIngredients(ctx context.Context, r io.Reader) (int, int, error) {
	items, err := refdata.ReadIngredients(r)
	if err != nil {
		return 0, 0, fmt.Errorf("decode ingredients: %w", err)
	}
	added, err := s.refs.InsertIngredients(ctx, items)
	if err != nil {
		return 0, len(items), fmt.Errorf("insert ingredients: %w", err)
	}
	s.log.Info("ingredients imported", zap.Int("read", len(items)), zap.Int("added", added))
	return added, len(items), nil
}

// ImportTags decodes the whole file before writing anything.
func (s *ReferenceServiceImpl) ImportTags(ctx context.Context, r io.Reader) (int, int, error) {
	tags, err := refdata.ReadTags(r)
	if err != nil {
		return 0, 0, fmt.Errorf("decode tags: %w", err)
	}
	added, err := s.refs.InsertTags(ctx, tags)
	if err != nil {
		return 0, len(tags), fmt.Errorf("insert tags: %w", err)
	}
	s.log.Info("tags imported", zap.Int("read", len(tags)), zap.Int("added", added))
	return added, len(tags), nil
}
