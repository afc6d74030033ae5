package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestHealth(t *testing.T) {
	d := testDeps(t)
	rec := do(t, d, http.MethodGet, "/health", "", false)
	require.Equal(t, http.StatusOK, rec.Code)

	d.DB = stubPinger{err: errors.New("down")}
	rec = do(t, d, http.MethodGet, "/health", "", false)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRegister(t *testing.T) {
	d := testDeps(t)
	var got model.Registration
	d.Auth = stubAuth{register: func(in model.Registration) (*model.User, error) {
		got = in
		return &model.User{ID: 1, Email: in.Email, Username: in.Username, FirstName: in.FirstName, LastName: in.LastName}, nil
	}}

	body := `{"email":"a@b.io","username":"cook","first_name":"A","last_name":"B","password":"pw"}`
	rec := do(t, d, http.MethodPost, "/api/users/", body, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "cook", got.Username)

	out := decode[map[string]any](t, rec.Body.Bytes())
	require.Equal(t, "a@b.io", out["email"])
	require.NotContains(t, out, "password")
	require.NotContains(t, out, "is_subscribed")
}

func TestRegister_ValidationAndDuplicate(t *testing.T) {
	d := testDeps(t)
	d.Auth = stubAuth{register: func(model.Registration) (*model.User, error) {
		return nil, errs.Field("email", errs.ErrAlreadyExists)
	}}

	rec := do(t, d, http.MethodPost, "/api/users", `{"username":"cook"}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	out := decode[errorsBody](t, rec.Body.Bytes())
	require.Equal(t, "this field is required", out.Errors["email"])
	require.Contains(t, out.Errors, "password")

	rec = do(t, d, http.MethodPost, "/api/users", `{"email":"a@b.io","username":"cook","first_name":"A","last_name":"B","password":"pw","extra":1}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"email":"a@b.io","username":"cook","first_name":"A","last_name":"B","password":"pw"}`
	rec = do(t, d, http.MethodPost, "/api/users", body, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	out = decode[errorsBody](t, rec.Body.Bytes())
	require.Equal(t, errs.ErrAlreadyExists.Error(), out.Errors["email"])
}

func TestLogin(t *testing.T) {
	d := testDeps(t)
	d.Auth = stubAuth{login: func(email, password string) (model.Tokens, error) {
		if password != "pw" {
			return model.Tokens{}, errs.ErrUnauthorized
		}
		return model.Tokens{AccessToken: "tok"}, nil
	}}

	rec := do(t, d, http.MethodPost, "/api/auth/token/login/", `{"email":"a@b.io","password":"pw"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "tok", decode[tokenResponse](t, rec.Body.Bytes()).AuthToken)

	rec = do(t, d, http.MethodPost, "/api/auth/token/login", `{"email":"a@b.io","password":"nope"}`, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[errorsBody](t, rec.Body.Bytes()).Errors, "non_field_errors")

	rec = do(t, d, http.MethodPost, "/api/auth/token/logout", "", true)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthentication(t *testing.T) {
	d := testDeps(t)
	d.Users = stubUsers{get: func(viewer, id int64) (*model.UserView, error) {
		return &model.UserView{User: model.User{ID: id}}, nil
	}}

	rec := do(t, d, http.MethodGet, "/api/users/me/", "", false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, d, http.MethodGet, "/api/users/me/", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, callerID, decode[userResponse](t, rec.Body.Bytes()).ID)

	// a bad credential is not downgraded to anonymous
	req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	req.Header.Set("Authorization", "Token bad")
	rec = httptest.NewRecorder()
	New(d).Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsers_ListPaged(t *testing.T) {
	d := testDeps(t)
	var gotLimit, gotOffset int
	d.Users = stubUsers{list: func(_ int64, limit, offset int) ([]model.UserView, int, error) {
		gotLimit, gotOffset = limit, offset
		return []model.UserView{{User: model.User{ID: 3}}}, 5, nil
	}}

	rec := do(t, d, http.MethodGet, "/api/users?page=2&limit=2", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, gotLimit)
	require.Equal(t, 2, gotOffset)

	out := decode[page[userResponse]](t, rec.Body.Bytes())
	require.Equal(t, 5, out.Count)
	require.NotNil(t, out.Next)
	require.Contains(t, *out.Next, "page=3")
	require.NotNil(t, out.Previous)
	require.NotContains(t, *out.Previous, "page=")

	rec = do(t, d, http.MethodGet, "/api/users?page=0", "", false)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetPassword(t *testing.T) {
	d := testDeps(t)
	d.Auth = stubAuth{setPwd: func(userID int64, current, next string) error {
		if current != "old" {
			return errs.Field("current_password", errs.ErrInvalidInput)
		}
		return nil
	}}

	rec := do(t, d, http.MethodPost, "/api/users/set_password", `{"current_password":"old","new_password":"new"}`, true)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, d, http.MethodPost, "/api/users/set_password", `{"current_password":"x","new_password":"new"}`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[errorsBody](t, rec.Body.Bytes()).Errors, "current_password")
}

func TestSubscribe(t *testing.T) {
	d := testDeps(t)
	var gotLimit int
	d.Relations = stubRelations{
		sub: func(user, author int64, limit int) (*model.Author, error) {
			if user == author {
				return nil, errs.ErrSelfReference
			}
			gotLimit = limit
			return &model.Author{
				UserView:     model.UserView{User: model.User{ID: author}, IsSubscribed: true},
				Recipes:      []model.RecipeShort{{ID: 1, Name: "Pie"}},
				RecipesCount: 4,
			}, nil
		},
		unsub: func(_, _ int64) error { return errs.ErrConflict },
	}

	rec := do(t, d, http.MethodPost, "/api/users/9/subscribe?recipes_limit=1", "", true)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, gotLimit)
	out := decode[map[string]any](t, rec.Body.Bytes())
	require.Equal(t, true, out["is_subscribed"])
	require.EqualValues(t, 4, out["recipes_count"])

	rec = do(t, d, http.MethodPost, "/api/users/9/subscribe", "", true)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, d.Config.Recipes.PreviewLimit, gotLimit)

	rec = do(t, d, http.MethodPost, "/api/users/7/subscribe", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, d, http.MethodDelete, "/api/users/9/subscribe", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, d, http.MethodPost, "/api/users/9/subscribe?recipes_limit=x", "", true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReference(t *testing.T) {
	d := testDeps(t)
	d.Refs = stubRefs{
		tags: []model.Tag{{ID: 1, Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}},
		ings: []model.Ingredient{{ID: 1, Name: "Flour", MeasurementUnit: "g"}, {ID: 2, Name: "Sugar", MeasurementUnit: "g"}},
	}

	rec := do(t, d, http.MethodGet, "/api/tags/", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]tagResponse](t, rec.Body.Bytes()), 1)

	rec = do(t, d, http.MethodGet, "/api/tags/2", "", false)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, d, http.MethodGet, "/api/ingredients?name=fl", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	ings := decode[[]ingredientResponse](t, rec.Body.Bytes())
	require.Len(t, ings, 1)
	require.Equal(t, "g", ings[0].MeasurementUnit)

	// no match still encodes as a list
	rec = do(t, d, http.MethodGet, "/api/ingredients?name=zz", "", false)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, d, http.MethodGet, "/api/ingredients/abc", "", false)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
