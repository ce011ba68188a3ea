package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/NicoGleichmann/shopWebsite/internal/config"
	"github.com/NicoGleichmann/shopWebsite/internal/http/handler"
	"github.com/NicoGleichmann/shopWebsite/internal/http/middleware"
	"github.com/NicoGleichmann/shopWebsite/internal/http/response"
	"github.com/NicoGleichmann/shopWebsite/internal/security"
	"github.com/NicoGleichmann/shopWebsite/internal/service"
)

type routerDeps struct {
	cfg        *config.Config
	logger     *slog.Logger
	jwt        *security.JWTManager
	limiter    middleware.Limiter
	auth       *service.AuthService
	newsletter *service.NewsletterService
	catalog    *service.CatalogService
	contact    *service.ContactService
	db         *mongo.Client
}

func newRouter(d routerDeps) chi.Router {
	authH := handler.NewAuthHandler(d.auth)
	newsH := handler.NewNewsletterHandler(d.newsletter, d.auth)
	catalogH := handler.NewCatalogHandler(d.catalog)
	contactH := handler.NewContactHandler(d.contact)
	healthH := handler.NewHealthHandler(d.db)

	rateLimit := middleware.NewRateLimiter(d.limiter, d.cfg.AuthRateLimitPerMin, d.logger)
	requireAuth := middleware.RequireAuth(d.jwt)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health/live", healthH.Live)
	r.Get("/health/ready", healthH.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(rateLimit.Middleware)
				r.Post("/register", authH.Register)
				r.Post("/verify-email", authH.VerifyEmail)
				r.Post("/login", authH.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", authH.Profile)
				r.Put("/cart", authH.ReplaceCart)
			})
		})

		r.Route("/newsletter", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(rateLimit.Middleware)
				r.Post("/subscribe", newsH.Subscribe)
				r.Post("/verify", newsH.Verify)
				r.Post("/unsubscribe", newsH.Unsubscribe)
			})
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/send", newsH.Send)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogH.List)
			r.Get("/{id}", catalogH.Get)
		})

		r.With(rateLimit.Middleware).Post("/contact", contactH.Submit)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}
