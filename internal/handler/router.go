package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"dochub/internal/auth"
	"dochub/internal/preview"
	"dochub/internal/service"
)

// Services - зависимости HTTP слоя
type Services struct {
	Auth      *service.AuthService
	Documents *service.DocumentService
	Quota     *service.StorageQuotaService
	Preview   *preview.Service
	Tokens    *auth.TokenManager
}

// NewRouter собирает маршруты REST API под префиксом /api
func NewRouter(svc Services, metrics *Metrics, timeout time.Duration) http.Handler {
	authHandler := NewAuthHandler(svc.Auth, svc.Tokens)
	documentHandler := NewDocumentHandler(svc.Documents, svc.Preview, svc.Tokens)
	commentHandler := NewCommentHandler(svc.Documents, svc.Tokens)
	shareHandler := NewShareHandler(svc.Documents, svc.Tokens)
	quotaHandler := NewStorageQuotaHandler(svc.Quota, svc.Tokens)

	r := chi.NewRouter()

	// Маршруты принимают адреса как со слешем на конце, так и без
	r.Use(middleware.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if metrics != nil {
		r.Use(metrics.Middleware)
		r.Handle("/metrics", metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth/token", func(r chi.Router) {
			r.Post("/", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/verify", authHandler.Verify)
			r.Post("/blacklist", authHandler.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", authHandler.Register)
			r.Get("/me", authHandler.Me)
			r.Put("/update_profile", authHandler.UpdateProfile)
			r.Patch("/update_profile", authHandler.UpdateProfile)
			r.Put("/change_password", authHandler.ChangePassword)
			r.Post("/reset_password", authHandler.ResetPassword)
			r.Post("/reset_password/confirm", authHandler.ConfirmResetPassword)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", documentHandler.List)
			r.Post("/", documentHandler.Create)
			r.Get("/my_documents", documentHandler.MyDocuments)
			r.Get("/shared_with_me", documentHandler.SharedWithMe)
			r.Get("/starred", documentHandler.Starred)
			r.Get("/get_by_id", documentHandler.GetByID)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", documentHandler.Get)
				r.Put("/", documentHandler.Update)
				r.Patch("/", documentHandler.Update)
				r.Delete("/", documentHandler.Delete)
				r.Get("/comments", documentHandler.Comments)
				r.Get("/versions", documentHandler.Versions)
				r.Get("/shares", documentHandler.Shares)
				r.Get("/download", documentHandler.Download)
				r.Get("/preview", documentHandler.Preview)
				r.Post("/add_version", documentHandler.AddVersion)
				r.Post("/share", documentHandler.Share)
				r.Post("/star", documentHandler.ToggleStar)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Post("/", commentHandler.Create)
			r.Put("/{id}", commentHandler.Update)
			r.Patch("/{id}", commentHandler.Update)
			r.Delete("/{id}", commentHandler.Delete)
		})

		r.Route("/shares", func(r chi.Router) {
			r.Get("/{id}", shareHandler.GetShare)
			r.Put("/{id}", shareHandler.UpdateShare)
			r.Patch("/{id}", shareHandler.UpdateShare)
			r.Delete("/{id}", shareHandler.RemoveShare)
		})

		r.Get("/quota", quotaHandler.GetQuotaInfo)
	})

	return r
}
