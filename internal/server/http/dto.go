package httpserver

import "github.com/and161185/foodgram/internal/model"

// --- requests ---

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=150"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,max=150"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type ingredientAmountIn struct {
	ID     int64 `json:"id" validate:"gt=0"`
	Amount int   `json:"amount"`
}

type recipeCreateRequest struct {
	Ingredients []ingredientAmountIn `json:"ingredients" validate:"dive"`
	Tags        []int64              `json:"tags"`
	Image       string               `json:"image" validate:"required"`
	Name        string               `json:"name" validate:"required"`
	Text        string               `json:"text" validate:"required"`
	CookingTime int                  `json:"cooking_time"`
}

// recipePatchRequest distinguishes an omitted list (nil) from an empty one.
type recipePatchRequest struct {
	Ingredients []ingredientAmountIn `json:"ingredients" validate:"omitempty,dive"`
	Tags        []int64              `json:"tags"`
	Image       *string              `json:"image"`
	Name        *string              `json:"name"`
	Text        *string              `json:"text"`
	CookingTime *int                 `json:"cooking_time"`
}

func toAmounts(in []ingredientAmountIn) []model.IngredientAmount {
	if in == nil {
		return nil
	}
	out := make([]model.IngredientAmount, len(in))
	for i, a := range in {
		out[i] = model.IngredientAmount{IngredientID: a.ID, Amount: a.Amount}
	}
	return out
}

// --- responses ---

type tokenResponse struct {
	AuthToken string `json:"auth_token"`
}

type userCreatedResponse struct {
	Email     string `json:"email"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type userResponse struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type tagResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type ingredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type recipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type recipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []tagResponse              `json:"tags"`
	Author           userResponse               `json:"author"`
	Ingredients      []recipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

type recipeShortResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type authorResponse struct {
	userResponse
	Recipes      []recipeShortResponse `json:"recipes"`
	RecipesCount int                   `json:"recipes_count"`
}

// page is the paginated list envelope.
type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func fromUser(v model.UserView) userResponse {
	return userResponse{
		Email:        v.Email,
		ID:           v.ID,
		Username:     v.Username,
		FirstName:    v.FirstName,
		LastName:     v.LastName,
		IsSubscribed: v.IsSubscribed,
	}
}

func fromTag(t model.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func fromIngredient(in model.Ingredient) ingredientResponse {
	return ingredientResponse{ID: in.ID, Name: in.Name, MeasurementUnit: in.MeasurementUnit}
}

func fromShort(s model.RecipeShort) recipeShortResponse {
	return recipeShortResponse{ID: s.ID, Name: s.Name, Image: s.Image, CookingTime: s.CookingTime}
}

func fromRecipe(rc *model.Recipe) recipeResponse {
	out := recipeResponse{
		ID:               rc.ID,
		Tags:             mapSlice(rc.Tags, fromTag),
		Author:           fromUser(rc.Author),
		Ingredients:      make([]recipeIngredientResponse, len(rc.Ingredients)),
		IsFavorited:      rc.IsFavorited,
		IsInShoppingCart: rc.IsInShoppingCart,
		Name:             rc.Name,
		Image:            rc.Image,
		Text:             rc.Text,
		CookingTime:      rc.CookingTime,
	}
	for i, in := range rc.Ingredients {
		out.Ingredients[i] = recipeIngredientResponse{
			ID:              in.ID,
			Name:            in.Name,
			MeasurementUnit: in.MeasurementUnit,
			Amount:          in.Amount,
		}
	}
	return out
}

func fromAuthor(a model.Author) authorResponse {
	return authorResponse{
		userResponse: fromUser(a.UserView),
		Recipes:      mapSlice(a.Recipes, fromShort),
		RecipesCount: a.RecipesCount,
	}
}

// mapSlice converts every element; the result is never nil so it encodes as [].
func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
