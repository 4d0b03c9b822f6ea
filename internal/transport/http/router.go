package http

import (
	"net/http"
	"time"

	"nursing-quiz-service/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	CORSOrigins      []string
	EnableLocalLogin bool
	RequestTimeout   time.Duration
}

// NewRouter assembles the REST API, the websocket endpoint and health checks.
func NewRouter(service *app.QuizService, auth *AuthService, opts RouterOptions) http.Handler {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", GuestHeader},
		ExposedHeaders:   []string{GuestHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Websocket sessions outlive the request timeout.
	ws := NewWSHandler(service)
	r.With(auth.Identify).Get("/ws/quiz", ws.ServeWS)

	handler := NewHandler(service)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))
		r.Use(auth.Identify)
		handler.Mount(r)
	})

	if opts.EnableLocalLogin {
		r.Post("/auth/token", auth.TokenHandler)
	}
	return r
}
