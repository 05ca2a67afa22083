package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/eventmap/internal/progress"
	"github.com/playperu/eventmap/internal/quiz"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options) {
	st := opts.Store
	broker := NewBroker()
	svc := progress.NewService(st, logger)
	engine := quiz.NewEngine(st)
	quizLimit := opts.QuizLimit
	if quizLimit <= 0 {
		quizLimit = quiz.DefaultLimit
	}

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Event Map API", "/openapi.json", "/docs"))
	r.Handle("/metrics", promhttp.Handler())

	// Visitor routes. Identity travels in the query string or body.
	r.Group(func(r chi.Router) {
		r.Get("/api/maps", handleMapRegistry(logger, st))
		r.Get("/api/catalog", handleCatalog(logger, st))
		r.Get("/api/progress", handleProgress(logger, st, svc))
		r.Get("/api/progress/events", handleProgressEvents(logger, st, svc, broker))
		r.Get("/api/visitor", handleVisitor(logger, st, svc))
		r.Get("/api/celebration", handleCelebrationSeen(logger, st, svc))
		r.Get("/api/sessions/{sessionID}", handleGetSession(logger, st))
		r.Get("/api/quiz/questions", handleQuizQuestions(logger, engine, quizLimit))
	})

	// Analytics writes, rate limited per client.
	r.Group(func(r chi.Router) {
		r.Use(writeLimit(opts.RateLimit))
		r.Post("/api/interactions", handleRecordInteraction(logger, svc, broker))
		r.Post("/api/celebration", handleMarkCelebration(logger, svc, broker))
		r.Put("/api/sessions/{sessionID}", handleSessionHeartbeat(logger, st))
		r.Post("/api/sessions/{sessionID}", handleSessionHeartbeat(logger, st))
		r.Post("/api/quiz/submissions", handleQuizSubmit(logger, engine))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", handleAdminLogin(logger, st, opts.AdminSecretHash))
		r.Post("/logout", handleAdminLogout(logger, st))
		r.Get("/me", handleAdminMe(st))

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(st))

			r.Get("/maps", handleAdminListMaps(logger, st))
			r.Post("/maps", handleAdminCreateMap(logger, st))
			r.Get("/maps/{id}", handleAdminGetMap(logger, st))
			r.Put("/maps/{id}", handleAdminUpdateMap(logger, st))
			r.Delete("/maps/{id}", handleAdminDeleteMap(logger, st))
			r.Post("/maps/{id}/activate", handleAdminActivateMap(logger, st))
			r.Put("/maps/{id}/events", handleAdminReplaceEvents(logger, st))
			r.Put("/maps/{id}/routes", handleAdminReplaceRoutes(logger, st))
			r.Patch("/maps/{id}/events/{eventID}/position", handleAdminMoveEvent(logger, st))

			r.Get("/quiz/questions", handleAdminListQuestions(logger, st))
			r.Post("/quiz/questions", handleAdminCreateQuestion(logger, st))
			r.Patch("/quiz/questions/{id}", handleAdminSetQuestionStatus(logger, st))
			r.Delete("/quiz/questions/{id}", handleAdminDeleteQuestion(logger, st))
		})
	})

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
