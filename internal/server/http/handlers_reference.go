package httpserver

import "net/http"

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.refs.Tags(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(tags, fromTag))
}

func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.refs.Tag(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromTag(*t))
}

// listIngredients filters by ?name= prefix, case-insensitively.
func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request) {
	list, err := s.refs.Ingredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, fromIngredient))
}

func (s *Server) getIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := s.refs.Ingredient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromIngredient(*in))
}
