package httpserver

import (
	"net/http"
	"strconv"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	u, err := s.auth.Register(r.Context(), model.Registration{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userCreatedResponse{
		Email:     u.Email,
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	tok, err := s.auth.Login(r.Context(), req.Email, req.Password, r.RemoteAddr)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized {
			// login failures are reported as a form error
			writeJSON(w, http.StatusBadRequest, errorsBody{Errors: map[string]string{
				"non_field_errors": "unable to log in with provided credentials",
			}})
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AuthToken: tok.AccessToken})
}

// logout is a no-op: tokens are stateless and expire on their own.
func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	v, err := s.users.Get(r.Context(), id, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromUser(*v))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.users.Get(r.Context(), caller(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromUser(*v))
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	p, err := s.parsePager(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, total, err := s.users.List(r.Context(), caller(r), p.limit, p.offset())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(r, p, total, mapSlice(list, fromUser)))
}

func (s *Server) setPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	if err := s.auth.SetPassword(r.Context(), caller(r), req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recipesLimit reads ?recipes_limit=, falling back to the configured preview size.
func (s *Server) recipesLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("recipes_limit")
	if v == "" {
		return s.cfg.Recipes.PreviewLimit, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errs.Field("recipes_limit", errs.ErrInvalidInput)
	}
	return n, nil
}

func (s *Server) subscriptions(w http.ResponseWriter, r *http.Request) {
	p, err := s.parsePager(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := s.recipesLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, total, err := s.relations.Subscriptions(r.Context(), caller(r), p.limit, p.offset(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(r, p, total, mapSlice(list, fromAuthor)))
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := s.recipesLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.relations.Subscribe(r.Context(), caller(r), id, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromAuthor(*a))
}

func (s *Server) unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.relations.Unsubscribe(r.Context(), caller(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
