// Package app assembles the reference API from its configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/thenextevent/eventdesk/internal/backend"
	"github.com/thenextevent/eventdesk/internal/blob"
	"github.com/thenextevent/eventdesk/internal/config"
	"github.com/thenextevent/eventdesk/internal/db"
	"github.com/thenextevent/eventdesk/internal/handler"
	"github.com/thenextevent/eventdesk/internal/mailer"
	"github.com/thenextevent/eventdesk/internal/ratelimit"
	"github.com/thenextevent/eventdesk/internal/repository"
	"github.com/thenextevent/eventdesk/internal/router"
)

type App struct {
	Handler http.Handler
	DB      *sql.DB
	closers []func() error
}

// Build opens storage, seeds the admin account and wires every handler.
// Close releases what Build opened.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	conn, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a := &App{DB: conn, closers: []func() error{conn.Close}}
	if err := a.build(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, cfg *config.Config) error {
	if err := db.Migrate(ctx, a.DB, cfg.Database.Driver); err != nil {
		return err
	}

	users := repository.NewUserRepo(a.DB)
	subs := repository.NewSubmissionRepo(a.DB)

	authSvc := backend.NewAuthService(users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if cfg.Auth.AdminEmail != "" {
		if err := authSvc.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	limiter, err := a.limiter(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := newStore(ctx, cfg.Media)
	if err != nil {
		return err
	}
	sender, err := newSender(ctx, cfg.Email)
	if err != nil {
		return err
	}

	maxUpload := int64(cfg.Media.MaxUploadMB) << 20
	formSvc := backend.NewSubmissionService(subs)
	emailSvc := backend.NewEmailService(repository.NewEmailRepo(a.DB), sender)

	opts := router.Options{JWTSecret: cfg.Auth.JWTSecret, AllowedOrigins: cfg.Server.AllowedOrigins}
	if cfg.Media.Backend == "local" {
		opts.UploadsDir = cfg.Media.Dir
	}
	a.Handler = router.New(opts, router.Handlers{
		Auth:    handler.NewAuthHandler(authSvc, cfg.Server.SecureCookies),
		Forms:   handler.NewFormHandler(formSvc, limiter),
		Admin:   handler.NewAdminHandler(backend.NewDashboardService(subs, users, formSvc), formSvc, emailSvc),
		Content: handler.NewContentHandler(backend.NewContentService(repository.NewContentRepo(a.DB))),
		Media:   handler.NewMediaHandler(backend.NewMediaService(repository.NewMediaRepo(a.DB), store, maxUpload), maxUpload),
		SEO:     handler.NewSEOHandler(backend.NewSEOService(repository.NewSEORepo(a.DB))),
		Email:   handler.NewEmailHandler(emailSvc),
	})
	return nil
}

func (a *App) limiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, error) {
	if cfg.Redis.URL == "" {
		return ratelimit.NewMemoryLimiter(cfg.RateLimit.SubmitLimit, cfg.RateLimit.Window()), nil
	}
	l, err := ratelimit.NewRedisLimiterFromURL(ctx, cfg.Redis.URL, "eventdesk:ratelimit:",
		cfg.RateLimit.SubmitLimit, cfg.RateLimit.Window())
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, l.Close)
	slog.InfoContext(ctx, "rate limiter using redis")
	return l, nil
}

func newStore(ctx context.Context, cfg config.MediaConfig) (blob.Store, error) {
	if cfg.Backend == "s3" {
		s3, err := blob.NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.PublicURL)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	local, err := blob.NewLocal(cfg.Dir, cfg.PublicURL)
	if err != nil {
		return nil, err
	}
	return local, nil
}

func newSender(ctx context.Context, cfg config.EmailConfig) (mailer.Sender, error) {
	if cfg.Backend == "ses" {
		ses, err := mailer.NewSESSender(ctx, cfg.SESRegion, cfg.From)
		if err != nil {
			return nil, err
		}
		return ses, nil
	}
	return mailer.LogSender{Logger: slog.Default()}, nil
}

// Close runs the release functions in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
