package composition

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

// Lookup resolves reference ids against stored reference data.
type Lookup interface {
	ExistingIngredientIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
	ExistingTagIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
}

// Validator checks recipe attributes and composition lists. It has no side effects.
type Validator struct {
	lookup Lookup
	lim    Limits
}

// NewValidator creates a Validator.
func NewValidator(lookup Lookup, lim Limits) *Validator {
	return &Validator{lookup: lookup, lim: lim}
}

// Ingredients validates an ingredient list and returns it unchanged.
//
// Checks run in order: emptiness, amount bounds, existence, duplicates.
// Existence is resolved with a single lookup on every call.
func (v *Validator) Ingredients(ctx context.Context, list []model.IngredientAmount) ([]model.IngredientAmount, error) {
	if len(list) == 0 {
		return nil, errs.Field("ingredients", errs.ErrEmptyCollection)
	}
	for i, in := range list {
		if in.Amount < v.lim.AmountMin || in.Amount > v.lim.AmountMax {
			return nil, errs.Field("ingredients", fmt.Errorf(
				"item %d: amount %d not in [%d, %d]: %w", i, in.Amount, v.lim.AmountMin, v.lim.AmountMax, errs.ErrOutOfRange))
		}
	}

	ids := make([]int64, len(list))
	for i, in := range list {
		ids[i] = in.IngredientID
	}
	found, err := v.lookup.ExistingIngredientIDs(ctx, uniq(ids))
	if err != nil {
		return nil, fmt.Errorf("lookup ingredients: %w", err)
	}
	if err := checkRefs(ids, found); err != nil {
		return nil, errs.Field("ingredients", fmt.Errorf("ingredient %w", err))
	}
	return list, nil
}

// Tags validates a tag id list and returns it unchanged.
func (v *Validator) Tags(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, errs.Field("tags", errs.ErrEmptyCollection)
	}
	found, err := v.lookup.ExistingTagIDs(ctx, uniq(ids))
	if err != nil {
		return nil, fmt.Errorf("lookup tags: %w", err)
	}
	if err := checkRefs(ids, found); err != nil {
		return nil, errs.Field("tags", fmt.Errorf("tag %w", err))
	}
	return ids, nil
}

// checkRefs reports the first unknown id, then the first repeated one.
func checkRefs(ids []int64, found map[int64]bool) error {
	for _, id := range ids {
		if !found[id] {
			return fmt.Errorf("%d: %w", id, errs.ErrUnknownReference)
		}
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%d: %w", id, errs.ErrDuplicateReference)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func uniq(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Attrs validates the scalar attributes of a new recipe.
func (v *Validator) Attrs(a model.RecipeAttrs) error {
	if err := v.name(a.Name); err != nil {
		return err
	}
	if err := required("text", a.Text); err != nil {
		return err
	}
	if err := required("image", a.Image); err != nil {
		return err
	}
	return v.cookingTime(a.CookingTime)
}

// Patch validates the attributes present in p.
func (v *Validator) Patch(p model.RecipePatch) error {
	if p.Name != nil {
		if err := v.name(*p.Name); err != nil {
			return err
		}
	}
	if p.Text != nil {
		if err := required("text", *p.Text); err != nil {
			return err
		}
	}
	if p.Image != nil {
		if err := required("image", *p.Image); err != nil {
			return err
		}
	}
	if p.CookingTime != nil {
		return v.cookingTime(*p.CookingTime)
	}
	return nil
}

func (v *Validator) name(s string) error {
	if err := required("name", s); err != nil {
		return err
	}
	if n := utf8.RuneCountInString(s); n > v.lim.NameMaxLen {
		return errs.Field("name", fmt.Errorf("length %d exceeds %d: %w", n, v.lim.NameMaxLen, errs.ErrOutOfRange))
	}
	return nil
}

func (v *Validator) cookingTime(t int) error {
	if t < v.lim.CookingTimeMin || t > v.lim.CookingTimeMax {
		return errs.Field("cooking_time", fmt.Errorf(
			"%d not in [%d, %d]: %w", t, v.lim.CookingTimeMin, v.lim.CookingTimeMax, errs.ErrOutOfRange))
	}
	return nil
}

func required(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return errs.Field(field, fmt.Errorf("required: %w", errs.ErrInvalidInput))
	}
	return nil
}
