package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/and161185/foodgram/internal/config"
	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/shoplist"
)

const (
	goodToken = "good"
	callerID  = int64(7)
)

type stubVerifier struct{}

func (stubVerifier) Verify(tok string) (int64, error) {
	if tok == goodToken {
		return callerID, nil
	}
	return 0, errs.ErrUnauthorized
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubAuth struct {
	register func(model.Registration) (*model.User, error)
	login    func(email, password string) (model.Tokens, error)
	setPwd   func(userID int64, current, next string) error
}

func (s stubAuth) Register(_ context.Context, in model.Registration) (*model.User, error) {
	return s.register(in)
}

func (s stubAuth) Login(_ context.Context, email, password, _ string) (model.Tokens, error) {
	return s.login(email, password)
}

func (s stubAuth) SetPassword(_ context.Context, userID int64, current, next string) error {
	return s.setPwd(userID, current, next)
}

type stubUsers struct {
	get  func(viewer, id int64) (*model.UserView, error)
	list func(viewer int64, limit, offset int) ([]model.UserView, int, error)
}

func (s stubUsers) Get(_ context.Context, viewer, id int64) (*model.UserView, error) {
	return s.get(viewer, id)
}

func (s stubUsers) List(_ context.Context, viewer int64, limit, offset int) ([]model.UserView, int, error) {
	return s.list(viewer, limit, offset)
}

type stubRecipes struct {
	create func(author int64, attrs model.RecipeAttrs, ings []model.IngredientAmount, tags []int64) (*model.Recipe, error)
	update func(user, id int64, p model.RecipePatch, ings []model.IngredientAmount, tags []int64) (*model.Recipe, error)
	del    func(user, id int64) error
	get    func(viewer, id int64) (*model.Recipe, error)
	list   func(f model.RecipeFilter) ([]model.Recipe, int, error)
}

func (s stubRecipes) Create(_ context.Context, author int64, attrs model.RecipeAttrs, ings []model.IngredientAmount, tags []int64) (*model.Recipe, error) {
	return s.create(author, attrs, ings, tags)
}

func (s stubRecipes) Update(_ context.Context, user, id int64, p model.RecipePatch, ings []model.IngredientAmount, tags []int64) (*model.Recipe, error) {
	return s.update(user, id, p, ings, tags)
}

func (s stubRecipes) Delete(_ context.Context, user, id int64) error { return s.del(user, id) }

func (s stubRecipes) Get(_ context.Context, viewer, id int64) (*model.Recipe, error) {
	return s.get(viewer, id)
}

func (s stubRecipes) List(_ context.Context, f model.RecipeFilter) ([]model.Recipe, int, error) {
	return s.list(f)
}

type stubRelations struct {
	add    func(c model.Collection, user, recipe int64) (*model.RecipeShort, error)
	remove func(c model.Collection, user, recipe int64) error
	sub    func(user, author int64, limit int) (*model.Author, error)
	unsub  func(user, author int64) error
	subs   func(user int64, limit, offset, recipesLimit int) ([]model.Author, int, error)
}

func (s stubRelations) Add(_ context.Context, c model.Collection, user, recipe int64) (*model.RecipeShort, error) {
	return s.add(c, user, recipe)
}

func (s stubRelations) Remove(_ context.Context, c model.Collection, user, recipe int64) error {
	return s.remove(c, user, recipe)
}

func (s stubRelations) Subscribe(_ context.Context, user, author int64, limit int) (*model.Author, error) {
	return s.sub(user, author, limit)
}

func (s stubRelations) Unsubscribe(_ context.Context, user, author int64) error {
	return s.unsub(user, author)
}

func (s stubRelations) Subscriptions(_ context.Context, user int64, limit, offset, recipesLimit int) ([]model.Author, int, error) {
	return s.subs(user, limit, offset, recipesLimit)
}

type stubShopping struct {
	lines []model.CartLine
	err   error
}

func (s stubShopping) Aggregate(context.Context, int64) (map[string]shoplist.Entry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return shoplist.Aggregate(s.lines), nil
}

func (s stubShopping) Render(ctx context.Context, userID int64) (string, error) {
	m, err := s.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}
	return shoplist.Render(m), nil
}

type stubRefs struct {
	tags []model.Tag
	ings []model.Ingredient
}

func (s stubRefs) Tags(context.Context) ([]model.Tag, error) { return s.tags, nil }

func (s stubRefs) Tag(_ context.Context, id int64) (*model.Tag, error) {
	for _, t := range s.tags {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (s stubRefs) Ingredients(_ context.Context, prefix string) ([]model.Ingredient, error) {
	var out []model.Ingredient
	for _, in := range s.ings {
		if strings.HasPrefix(strings.ToLower(in.Name), strings.ToLower(prefix)) {
			out = append(out, in)
		}
	}
	return out, nil
}

func (s stubRefs) Ingredient(_ context.Context, id int64) (*model.Ingredient, error) {
	for _, in := range s.ings {
		if in.ID == id {
			return &in, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (stubRefs) ImportIngredients(context.Context, io.Reader) (int, int, error) {
	return 0, 0, errors.New("not used")
}

func (stubRefs) ImportTags(context.Context, io.Reader) (int, int, error) {
	return 0, 0, errors.New("not used")
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	cfg := config.Default()
	cfg.Auth.JWTKey = "k"
	cfg.Auth.LoginRatePerMin = 0
	return Deps{
		Auth:      stubAuth{},
		Users:     stubUsers{},
		Recipes:   stubRecipes{},
		Relations: stubRelations{},
		Shopping:  stubShopping{},
		Refs:      stubRefs{},
		Tokens:    stubVerifier{},
		DB:        stubPinger{},
		Log:       zaptest.NewLogger(t),
		Config:    cfg,
	}
}

// do sends one request through the full router.
func do(t *testing.T, d Deps, method, target, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Token "+goodToken)
	}
	rec := httptest.NewRecorder()
	New(d).Routes().ServeHTTP(rec, req)
	return rec
}

func sampleRecipe(id int64) *model.Recipe {
	return &model.Recipe{
		ID:          id,
		Author:      model.UserView{User: model.User{ID: callerID, Username: "cook"}},
		Name:        "Pie",
		Image:       "data:image/png;base64,AA==",
		Text:        "bake",
		CookingTime: 40,
		Tags:        []model.Tag{{ID: 1, Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}},
		Ingredients: []model.RecipeIngredient{{
			Ingredient: model.Ingredient{ID: 3, Name: "Flour", MeasurementUnit: "g"},
			Amount:     200,
		}},
	}
}
