// Package model defines domain entities used by services and repositories.
package model

import (
	"time"
)

// Tokens collects an issued access token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents an account. Lifecycle is owned by the auth flow.
type User struct {
	ID        int64
	Email     string // unique, used as login
	Username  string // unique
	FirstName string
	LastName  string
	PwdHash   string // encoded argon2id hash, never exposed
	CreatedAt time.Time
}

// Registration is the input of a sign-up.
type Registration struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// UserView is a user as seen by a (possibly anonymous) caller.
type UserView struct {
	User
	IsSubscribed bool
}

// Author is a subscription target together with a preview of their recipes.
type Author struct {
	UserView
	Recipes      []RecipeShort
	RecipesCount int
}

// Tag is immutable reference data.
type Tag struct {
	ID    int64
	Name  string
	Color string // #RRGGBB
	Slug  string // [-a-zA-Z0-9_]+
}

// Ingredient is immutable reference data; (Name, MeasurementUnit) is unique.
type Ingredient struct {
	ID              int64
	Name            string
	MeasurementUnit string
}

// IngredientAmount is one submitted (ingredient, amount) pair of a recipe composition.
type IngredientAmount struct {
	IngredientID int64
	Amount       int
}

// RecipeIngredient is a persisted composition row joined with its ingredient.
type RecipeIngredient struct {
	Ingredient
	Amount int
}

// Recipe is a fully hydrated recipe.
type Recipe struct {
	ID          int64
	Author      UserView
	Name        string
	Image       string
	Text        string
	CookingTime int
	Tags        []Tag
	Ingredients []RecipeIngredient
	CreatedAt   time.Time

	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeShort is the compact representation returned by favorite/cart toggles.
type RecipeShort struct {
	ID          int64
	Name        string
	Image       string
	CookingTime int
}

// RecipeAttrs holds the scalar attributes of a recipe.
type RecipeAttrs struct {
	Name        string
	Image       string
	Text        string
	CookingTime int
}

// RecipePatch is a partial update; nil fields are left unchanged.
type RecipePatch struct {
	Name        *string
	Image       *string
	Text        *string
	CookingTime *int
}

// Empty reports whether the patch carries no scalar changes.
func (p RecipePatch) Empty() bool {
	return p.Name == nil && p.Image == nil && p.Text == nil && p.CookingTime == nil
}

// RecipeFilter narrows a recipe listing. Zero values disable a filter.
type RecipeFilter struct {
	ViewerID         int64 // 0 for anonymous
	AuthorID         int64
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	Limit            int
	Offset           int
}

// Collection names a user→recipe join entity. Favorites and the shopping cart
// share one shape and one set of rules.
type Collection string

const (
	Favorites    Collection = "favorites"
	ShoppingCart Collection = "shopping_cart"
)

// CartLine is one ingredient row of one recipe in a user's cart.
type CartLine struct {
	RecipeID int64
	Name     string
	Unit     string
	Amount   int
}
