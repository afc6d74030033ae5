// Package composition validates and persists the ingredient and tag sets of a recipe.
package composition

import "github.com/and161185/foodgram/internal/config"

// Limits bounds recipe attributes and ingredient amounts. All bounds are inclusive.
type Limits struct {
	NameMaxLen     int // in code points
	CookingTimeMin int
	CookingTimeMax int
	AmountMin      int
	AmountMax      int
}

// LimitsFrom extracts composition bounds from the recipes config section.
func LimitsFrom(c config.RecipesConfig) Limits {
	return Limits{
		NameMaxLen:     c.NameMaxLen,
		CookingTimeMin: c.CookingTimeMin,
		CookingTimeMax: c.CookingTimeMax,
		AmountMin:      c.AmountMin,
		AmountMax:      c.AmountMax,
	}
}

// DefaultLimits mirrors config.Default.
func DefaultLimits() Limits { return LimitsFrom(config.Default().Recipes) }
