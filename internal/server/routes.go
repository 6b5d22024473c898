package server

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"
)

// AddRoutes wires the full HTTP surface onto r.
func AddRoutes(r chi.Router, logger *slog.Logger, svc *Service, broker *Broker, admins AdminSet, db *sql.DB, rdb *redis.Client, hintPenalty float64) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("RaceQuest API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db, rdb))
	r.Get("/ws/scoreboard", handleWSScoreboard(logger, svc, broker))

	// Player routes. The owner is resolved from the Bearer identifier.
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", handleRegister(svc))
		r.Get("/scoreboard", handleScoreboard(svc))

		r.Route("/game", func(r chi.Router) {
			r.Get("/status", handleStatus(svc))
			r.Post("/answer", handleAnswer(svc))
			r.Post("/hint", handleHint(svc, hintPenalty))
			r.Post("/location", handleLocation(svc))
			r.Get("/events", handleEvents(svc, broker))
		})

		// Admin routes, gated on the static owner-ID allowlist.
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly(admins))
			r.Post("/force", handleAdminForce(svc))
			r.Get("/teams/{name}", handleAdminTeam(svc))
			r.Post("/broadcast", handleAdminBroadcast(svc))
		})
	})
}
