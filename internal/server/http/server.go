// Package httpserver exposes the REST API over chi.
package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/and161185/foodgram/internal/config"
	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
	"github.com/and161185/foodgram/internal/service"
)

// Verifier resolves an access token to a user id.
type Verifier interface {
	Verify(token string) (int64, error)
}

// Pinger reports storage reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Auth      service.AuthService
	Users     service.UserService
	Recipes   service.RecipeService
	Relations service.RelationService
	Shopping  service.ShoppingService
	Refs      service.ReferenceService
	Tokens    Verifier
	DB        Pinger
	Log       *zap.Logger
	Config    config.Config
}

// Server wires services into HTTP handlers.
type Server struct {
	auth      service.AuthService
	users     service.UserService
	recipes   service.RecipeService
	relations service.RelationService
	shopping  service.ShoppingService
	refs      service.ReferenceService
	tokens    Verifier
	db        Pinger
	log       *zap.Logger
	cfg       config.Config
	validator *requestValidator
}

// New constructs a Server.
func New(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		auth:      d.Auth,
		users:     d.Users,
		recipes:   d.Recipes,
		relations: d.Relations,
		shopping:  d.Shopping,
		refs:      d.Refs,
		tokens:    d.Tokens,
		db:        d.DB,
		log:       log,
		cfg:       d.Config,
		validator: newRequestValidator(),
	}
}

// Routes builds the router. Paths are served with or without a trailing slash.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(prometheusMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.HTTP.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/auth/token", func(r chi.Router) {
			r.With(s.loginRateLimit()).Post("/login", s.login)
			r.With(requireAuth).Post("/logout", s.logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.listUsers)
			r.Post("/", s.register)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", s.me)
				r.Post("/set_password", s.setPassword)
				r.Get("/subscriptions", s.subscriptions)
				r.Post("/{id}/subscribe", s.subscribe)
				r.Delete("/{id}/subscribe", s.unsubscribe)
			})
			r.Get("/{id}", s.getUser)
		})

		r.Get("/tags", s.listTags)
		r.Get("/tags/{id}", s.getTag)
		r.Get("/ingredients", s.listIngredients)
		r.Get("/ingredients/{id}", s.getIngredient)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", s.listRecipes)
			r.Get("/{id}", s.getRecipe)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", s.createRecipe)
				r.Patch("/{id}", s.updateRecipe)
				r.Delete("/{id}", s.deleteRecipe)
				r.Get("/download_shopping_cart", s.downloadShoppingCart)
				r.Post("/{id}/favorite", s.addTo(model.Favorites))
				r.Delete("/{id}/favorite", s.removeFrom(model.Favorites))
				r.Post("/{id}/shopping_cart", s.addTo(model.ShoppingCart))
				r.Delete("/{id}/shopping_cart", s.removeFrom(model.ShoppingCart))
			})
		})
	})
	return r
}

// loginRateLimit throttles login attempts per client IP ahead of the per-account lockout.
func (s *Server) loginRateLimit() func(http.Handler) http.Handler {
	n := s.cfg.Auth.LoginRatePerMin
	if n <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(n, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, detailBody{Detail: errs.ErrRateLimited.Error()})
		}),
	)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn("health: database unreachable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.ErrNotFound
	}
	return id, nil
}
