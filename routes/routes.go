package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/rank-ladder/docs"
	"github.com/Dosada05/rank-ladder/handlers"
	"github.com/Dosada05/rank-ladder/middleware"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Challenge *handlers.ChallengeHandler
	Ladder    *handlers.LadderHandler
	WebSocket *handlers.WebSocketHandler
	Health    *handlers.HealthHandler
}

func SetupRoutes(h Handlers, auth *middleware.Authenticator, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health.Healthz)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Post("/auth/login", h.Auth.Login)

	r.Get("/teams/{teamID}/ladder", h.Ladder.GetTeamLadder)
	r.Get("/teams/{teamID}/history", h.Ladder.ListRankHistory)
	r.Get("/ws/teams/{teamID}", h.WebSocket.ServeWs)

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Get("/me/challenges", h.Challenge.ListMyChallenges)

		r.Route("/challenges", func(r chi.Router) {
			r.Post("/", h.Challenge.CreateChallenge)
			r.Route("/{challengeID}", func(r chi.Router) {
				r.Get("/", h.Challenge.GetChallenge)
				r.Post("/accept", h.Challenge.AcceptChallenge)
				r.Post("/decline", h.Challenge.DeclineChallenge)
				r.Post("/outcome", h.Challenge.SubmitOutcome)
			})
		})
	})

	return r
}
