package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/contest-system/docs" // регистрирует swagger-спецификацию
	"github.com/Dosada05/contest-system/handlers"
	"github.com/Dosada05/contest-system/middleware"
	"github.com/Dosada05/contest-system/models"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Contest   *handlers.ContestHandler
	Group     *handlers.GroupHandler
	Process   *handlers.ProcessHandler
	WebSocket *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(opts.JWTSecret, logger)
	teacherOnly := middleware.Authorize(models.RoleTeacher, models.RoleAdmin)

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", h.Health.Check)
		r.Get("/ws/contests/{contestID}", h.WebSocket.ServeWs)

		r.Route("/contests", func(r chi.Router) {
			r.With(authenticate, teacherOnly).Post("/", h.Contest.Create)

			r.Route("/{contestID}", func(r chi.Router) {
				r.Get("/", h.Contest.GetByID)
				r.With(authenticate, teacherOnly).Patch("/status", h.Contest.UpdateStatus)
				r.With(authenticate, teacherOnly).Delete("/", h.Contest.Delete)

				r.Get("/groups", h.Group.ListByContest)
				r.With(authenticate).Post("/groups", h.Group.Create)

				r.Route("/processes", func(r chi.Router) {
					r.Get("/", h.Process.ListByContest)

					r.Group(func(r chi.Router) {
						r.Use(authenticate, teacherOnly)
						r.Post("/", h.Process.Create)
						r.Put("/{processID}", h.Process.Update)
						r.Delete("/{processID}", h.Process.Delete)
						r.Post("/{processID}/attachment", h.Process.UploadAttachment)
					})
				})
			})
		})

		r.Route("/processes/{processID}", func(r chi.Router) {
			r.Get("/", h.Process.GetByID)
			r.Get("/groups", h.Process.ListMembers)
			r.With(authenticate).Get("/promotable-groups", h.Process.ListPromotable)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, teacherOnly)
				r.Post("/groups/promote", h.Process.Promote)
				r.Post("/groups/demote", h.Process.Demote)
			})
		})
	})
}
