// Package service maps site and dashboard intents onto the REST API.
// Services keep no state of their own apart from the auth user snapshot,
// which lives in the injected session.
package service

import (
	"context"

	"github.com/thenextevent/eventdesk/internal/apiclient"
	"github.com/thenextevent/eventdesk/internal/models"
)

// API is the subset of *apiclient.Client the services use.
type API interface {
	Get(ctx context.Context, path string, query any, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	Upload(ctx context.Context, path string, form *apiclient.Multipart, out any) error
	Download(ctx context.Context, path string, query any) (*models.Blob, error)
}

var _ API = (*apiclient.Client)(nil)

// Result carries either a value or the error that prevented it. Read paths
// that may degrade return a Result so the caller picks the fallback and can
// see that it was used.
type Result[T any] struct {
	Value T
	Err   error
}

func ok[T any](v T) Result[T] { return Result[T]{Value: v} }

func failed[T any](err error) Result[T] { return Result[T]{Err: err} }

// Or returns the value, or fallback(err) with degraded set when the call failed.
func (r Result[T]) Or(fallback func(error) T) (value T, degraded bool) {
	if r.Err == nil {
		return r.Value, false
	}
	return fallback(r.Err), true
}

// Unwrap returns the value and error as a plain pair.
func (r Result[T]) Unwrap() (T, error) { return r.Value, r.Err }

// Fallback returns a strategy that ignores the error and yields v.
func Fallback[T any](v T) func(error) T {
	return func(error) T { return v }
}

// Services bundles every domain service over one client.
type Services struct {
	Forms     *Forms
	Dashboard *Dashboard
	Auth      *Auth
	Content   *Content
	Media     *Media
	SEO       *SEO
	Email     *Email
}

func New(c *apiclient.Client, opts DashboardOptions) *Services {
	return &Services{
		Forms:     NewForms(c),
		Dashboard: NewDashboard(c, opts),
		Auth:      NewAuth(c, c.Session(), opts.Logger),
		Content:   NewContent(c),
		Media:     NewMedia(c),
		SEO:       NewSEO(c),
		Email:     NewEmail(c),
	}
}
