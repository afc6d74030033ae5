package httpserver

import (
	"net/http"
	"strconv"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/shoplist"
)

// recipeFilter reads ?author=, repeated ?tags= slugs and the two collection flags.
func recipeFilter(r *http.Request) (model.RecipeFilter, error) {
	q := r.URL.Query()
	f := model.RecipeFilter{
		ViewerID:         caller(r),
		TagSlugs:         q["tags"],
		IsFavorited:      flag(q.Get("is_favorited")),
		IsInShoppingCart: flag(q.Get("is_in_shopping_cart")),
	}
	if v := q.Get("author"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, errs.Field("author", errs.ErrInvalidInput)
		}
		f.AuthorID = id
	}
	return f, nil
}

func flag(v string) bool { return v == "1" || v == "true" }

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	p, err := s.parsePager(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := recipeFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f.Limit, f.Offset = p.limit, p.offset()

	list, total, err := s.recipes.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]recipeResponse, len(list))
	for i := range list {
		out[i] = fromRecipe(&list[i])
	}
	writeJSON(w, http.StatusOK, newPage(r, p, total, out))
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rc, err := s.recipes.Get(r.Context(), caller(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromRecipe(rc))
}

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeCreateRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	attrs := model.RecipeAttrs{
		Name:        req.Name,
		Image:       req.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	rc, err := s.recipes.Create(r.Context(), caller(r), attrs, toAmounts(req.Ingredients), req.Tags)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromRecipe(rc))
}

func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req recipePatchRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	patch := model.RecipePatch{
		Name:        req.Name,
		Image:       req.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	rc, err := s.recipes.Update(r.Context(), caller(r), id, patch, toAmounts(req.Ingredients), req.Tags)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromRecipe(rc))
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.recipes.Delete(r.Context(), caller(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addTo puts the recipe into the caller's collection c and answers with its short form.
func (s *Server) addTo(c model.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		short, err := s.relations.Add(r.Context(), c, caller(r), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, fromShort(*short))
	}
}

func (s *Server) removeFrom(c model.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.relations.Remove(r.Context(), c, caller(r), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) downloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	agg, err := s.shopping.Aggregate(r.Context(), caller(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	shoppingListLines.Observe(float64(len(agg)))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(shoplist.Render(agg)))
}
