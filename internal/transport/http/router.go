package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// RouterConfig holds the HTTP-facing settings.
type RouterConfig struct {
	// AllowedOrigins is the CORS allow-list for browser clients.
	AllowedOrigins []string
}

// NewRouter mounts the quiz API.
func NewRouter(service QuizService, cfg RouterConfig, log zerolog.Logger) http.Handler {
	quiz := NewQuizHandler(service, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(requestLogger(log.With().Str("component", "http").Logger()))
	r.Use(recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", quiz.Root)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(api chi.Router) {
		api.Get("/quiz", quiz.GetQuiz)
		api.Post("/grade", quiz.PostGrade)
	})
	return r
}
