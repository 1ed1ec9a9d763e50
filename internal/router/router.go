package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/thenextevent/eventdesk/internal/auth"
	"github.com/thenextevent/eventdesk/internal/handler"
	mw "github.com/thenextevent/eventdesk/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Forms   *handler.FormHandler
	Admin   *handler.AdminHandler
	Content *handler.ContentHandler
	Media   *handler.MediaHandler
	SEO     *handler.SEOHandler
	Email   *handler.EmailHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	// UploadsDir is served at /uploads when media is stored locally.
	UploadsDir string
}

func New(opts Options, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if opts.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir))))
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/forms/submit", h.Forms.Submit)
		r.Get("/content/by-key/{key}", h.Content.ByKey)
		r.Get("/content/by-language/{lang}", h.Content.ByLanguage)
		r.Get("/content/section/{section}", h.Content.BySection)
		r.Get("/media/public", h.Media.Public)
		r.Get("/seo/public", h.SEO.Public)
		r.Get("/seo/public/page/{page}", h.SEO.ByPage)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(opts.JWTSecret))

			// Auth
			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/logout", h.Auth.Logout)
			r.Post("/auth/change-password", h.Auth.ChangePassword)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Post("/auth/register", h.Auth.Register)
				r.Get("/auth/users", h.Auth.Users)
				r.Put("/auth/users/{id}", h.Auth.UpdateUser)
				r.Delete("/auth/users/{id}", h.Auth.DeleteUser)
			})

			// Forms
			r.Route("/forms", func(r chi.Router) {
				r.Get("/", h.Forms.List)
				r.Get("/statistics", h.Forms.Statistics)
				r.Get("/daily-counts", h.Forms.DailyCounts)
				r.Get("/export/csv", h.Forms.ExportCSV)
				r.Patch("/bulk-update", h.Forms.BulkUpdate)
				r.Post("/bulk-delete", h.Forms.BulkDelete)
				r.Get("/{id}", h.Forms.Get)
				r.Delete("/{id}", h.Forms.Delete)
				r.Patch("/{id}/status", h.Forms.UpdateStatus)
				r.Patch("/{id}/read-status", h.Forms.UpdateReadStatus)
			})

			// Dashboard
			r.Route("/admin", func(r chi.Router) {
				r.Get("/dashboard/stats", h.Admin.Stats)
				r.Get("/users", h.Admin.Users)
				r.Get("/analytics", h.Admin.Analytics)
				r.Get("/submissions", h.Admin.Submissions)
				r.Get("/submissions/export", h.Admin.Export)
				r.Get("/submissions/{id}", h.Admin.Submission)
				r.Delete("/submissions/{id}", h.Admin.Delete)
				r.Put("/submissions/{id}/status", h.Admin.UpdateStatus)
				r.Put("/submissions/{id}/read", h.Admin.MarkRead)
				r.Put("/submissions/{id}/assign", h.Admin.Assign)
				r.Post("/submissions/{id}/notes", h.Admin.AddNote)
				r.Post("/submissions/{id}/reply", h.Admin.Reply)
			})

			// Content
			r.Route("/content", func(r chi.Router) {
				r.Get("/", h.Content.List)
				r.Post("/", h.Content.Create)
				r.Put("/bulk-update", h.Content.BulkUpdate)
				r.Get("/{id}", h.Content.Get)
				r.Put("/{id}", h.Content.Update)
				r.Delete("/{id}", h.Content.Delete)
				r.Put("/{id}/sort-order", h.Content.SortOrder)
				r.Put("/{id}/toggle-active", h.Content.ToggleActive)
			})

			// Media
			r.Route("/media", func(r chi.Router) {
				r.Get("/", h.Media.List)
				r.Get("/statistics", h.Media.Statistics)
				r.Post("/upload", h.Media.Upload)
				r.Post("/upload-multiple", h.Media.UploadMultiple)
				r.Post("/bulk-delete", h.Media.BulkDelete)
				r.Get("/{id}", h.Media.Get)
				r.Put("/{id}", h.Media.Update)
				r.Delete("/{id}", h.Media.Delete)
				r.Patch("/{id}/public-status", h.Media.SetPublic)
			})

			// SEO
			r.Route("/seo", func(r chi.Router) {
				r.Get("/", h.SEO.List)
				r.Post("/", h.SEO.Create)
				r.Get("/{id}", h.SEO.Get)
				r.Put("/{id}", h.SEO.Update)
				r.Delete("/{id}", h.SEO.Delete)
				r.Patch("/{id}/status", h.SEO.SetActive)
			})

			// Email
			r.Route("/email", func(r chi.Router) {
				r.Post("/send", h.Email.Send)
				r.Post("/send-template", h.Email.SendTemplate)
				r.Post("/send-bulk", h.Email.SendBulk)
				r.Get("/templates", h.Email.Templates)
				r.Post("/templates", h.Email.CreateTemplate)
				r.Get("/templates/{id}", h.Email.Template)
				r.Put("/templates/{id}", h.Email.UpdateTemplate)
				r.Delete("/templates/{id}", h.Email.DeleteTemplate)
				r.Get("/logs", h.Email.Logs)
				r.Get("/logs/{id}", h.Email.Log)
				r.Post("/logs/{id}/resend", h.Email.Resend)
				r.Get("/statistics", h.Email.Statistics)
				r.Post("/webhooks/status", h.Email.StatusWebhook)
				r.Post("/webhooks/bounce", h.Email.BounceWebhook)
				r.Post("/webhooks/complaint", h.Email.ComplaintWebhook)
			})
		})
	})

	return r
}
