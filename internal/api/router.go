package api

import (
	"net/http"
	"strings"
	"time"

	"dsa_arena/internal/api/handler"
	"dsa_arena/internal/api/middleware"
	"dsa_arena/internal/app/service"
	"dsa_arena/internal/common/security"
	"dsa_arena/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth        *service.AuthService
	Profile     *service.ProfileService
	Sheet       *service.SheetService
	Status      *service.StatusService
	Note        *service.NoteService
	Explain     *service.ExplainService
	Leaderboard *service.LeaderboardService
}

type Options struct {
	CORSOrigins    []string
	MediaRoot      string
	MediaURL       string
	MaxUploadMB    int
	RequestTimeout time.Duration
}

func NewRouter(svc Services, opts Options, log *logger.Logger) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.StripSlashes) // routes are declared without the trailing slash clients send
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Verifies token, puts claims in context. Authenticator/OptionalUser decide what a missing token means.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if opts.MediaRoot != "" {
		prefix := "/" + strings.Trim(opts.MediaURL, "/")
		if prefix == "/" {
			prefix = "/media"
		}
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(opts.MediaRoot))))
	}

	// Streaming responses run for as long as generation takes.
	handler.NewExplainHandler(svc.Explain, svc.Profile, log).RegisterRoutes(r)

	r.Group(func(api chi.Router) {
		api.Use(chiMiddleware.Timeout(opts.RequestTimeout))

		handler.NewUserHandler(svc.Auth, svc.Profile).RegisterRoutes(api)
		handler.NewProfileHandler(svc.Profile, svc.Sheet, opts.MaxUploadMB).RegisterRoutes(api)
		handler.NewAdminHandler(svc.Auth).RegisterRoutes(api)
		handler.NewSheetHandler(svc.Sheet, svc.Profile).RegisterRoutes(api)
		handler.NewStatusHandler(svc.Status, svc.Profile).RegisterRoutes(api)
		handler.NewNoteHandler(svc.Note, svc.Profile).RegisterRoutes(api)
		handler.NewLeaderboardHandler(svc.Leaderboard).RegisterRoutes(api)
	})

	return r
}
