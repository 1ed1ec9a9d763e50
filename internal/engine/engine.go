package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/thenextevent/eventdesk/internal/export"
	"github.com/thenextevent/eventdesk/internal/models"
)

// Source is where the engine reads submissions and sends mutations. The
// remote dashboard service and the demo fixtures both satisfy it.
type Source interface {
	Submissions(ctx context.Context, filters models.DashboardFilters) (models.Page[models.Submission], error)
	MarkAsRead(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status models.Status, notes string) error
	Assign(ctx context.Context, id int64, assignee string) error
	AddNote(ctx context.Context, id int64, note string) error
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, filters models.DashboardFilters, format models.ExportFormat) (*models.Blob, error)
}

type Phase int

const (
	NotLoaded Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case NotLoaded:
		return "not-loaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is a snapshot of what the engine has loaded.
type State struct {
	Phase   Phase
	Filters models.DashboardFilters
	Page    models.Page[models.Submission]
	Err     error
}

// Empty reports a completed load that matched nothing. It is false while
// nothing has been loaded yet.
func (s State) Empty() bool {
	return s.Phase == Ready && s.Page.Total == 0
}

// TransitionPolicy decides whether a submission may move between statuses.
type TransitionPolicy interface {
	Allow(from, to models.Status) error
}

// UnconstrainedTransitions lets any status follow any other, including
// completed back to new. Staff rely on it for manual overrides.
type UnconstrainedTransitions struct{}

func (UnconstrainedTransitions) Allow(_, to models.Status) error {
	if !to.Valid() {
		return fmt.Errorf("unknown status %q", to)
	}
	return nil
}

type Option func(*Engine)

func WithPolicy(p TransitionPolicy) Option { return func(e *Engine) { e.policy = p } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// Engine holds one dashboard view. Mutations go to the source one at a time
// and, on success, are applied to the loaded page. There is no per-id
// ordering: callers serialize dependent edits themselves.
type Engine struct {
	src    Source
	policy TransitionPolicy
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	state State
}

func New(src Source, opts ...Option) *Engine {
	e := &Engine{
		src:    src,
		policy: UnconstrainedTransitions{},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Load fetches the page described by filters and replaces the view.
func (e *Engine) Load(ctx context.Context, filters models.DashboardFilters) error {
	e.mu.Lock()
	e.state = State{Phase: Loading, Filters: filters}
	e.mu.Unlock()

	page, err := e.src.Submissions(ctx, filters)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = State{Phase: Failed, Filters: filters, Err: err}
		return fmt.Errorf("load submissions: %w", err)
	}
	e.state = State{Phase: Ready, Filters: filters, Page: page}
	return nil
}

// Reload repeats the last load with the same filters.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	f := e.state.Filters
	e.mu.Unlock()
	return e.Load(ctx, f)
}

// View returns a copy of the current state.
func (e *Engine) View() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	s.Page.Data = slices.Clone(s.Page.Data)
	return s
}

func (e *Engine) patch(id int64, fn func(*models.Submission)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.state.Page.Data {
		if e.state.Page.Data[i].ID == id {
			fn(&e.state.Page.Data[i])
			return
		}
	}
}

func (e *Engine) lookup(id int64) (models.Submission, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.state.Page.Data {
		if s.ID == id {
			return s, true
		}
	}
	return models.Submission{}, false
}

// MarkAsRead always reaches the source, even when the item is already read.
func (e *Engine) MarkAsRead(ctx context.Context, id int64) error {
	if err := e.src.MarkAsRead(ctx, id); err != nil {
		return err
	}
	e.patch(id, func(s *models.Submission) { s.IsRead = true })
	return nil
}

var ErrTransitionDenied = errors.New("status transition not allowed")

func (e *Engine) UpdateStatus(ctx context.Context, id int64, status models.Status, notes string) error {
	var from models.Status
	if cur, ok := e.lookup(id); ok {
		from = cur.Status
	}
	if err := e.policy.Allow(from, status); err != nil {
		return fmt.Errorf("%w: %s -> %s: %w", ErrTransitionDenied, from, status, err)
	}
	if err := e.src.UpdateStatus(ctx, id, status, notes); err != nil {
		return err
	}
	now := e.now().UTC()
	e.patch(id, func(s *models.Submission) {
		s.Status = status
		if notes != "" {
			s.AdminNotes = notes
		}
		s.UpdatedAt = &now
		s.LastUpdated = now
	})
	e.logger.InfoContext(ctx, "submission status changed", "id", id, "from", from, "to", status)
	return nil
}

// BulkUpdateStatus issues one status change per id, in order. It keeps going
// after a failure and returns every error joined.
func (e *Engine) BulkUpdateStatus(ctx context.Context, ids []int64, status models.Status, notes string) error {
	var errs []error
	for _, id := range ids {
		if err := e.UpdateStatus(ctx, id, status, notes); err != nil {
			errs = append(errs, fmt.Errorf("submission %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) Assign(ctx context.Context, id int64, assignee string) error {
	if err := e.src.Assign(ctx, id, assignee); err != nil {
		return err
	}
	now := e.now().UTC()
	e.patch(id, func(s *models.Submission) {
		s.AssignedTo = assignee
		s.LastUpdated = now
	})
	return nil
}

func (e *Engine) AddNote(ctx context.Context, id int64, note string) error {
	if err := e.src.AddNote(ctx, id, note); err != nil {
		return err
	}
	now := e.now().UTC()
	e.patch(id, func(s *models.Submission) { s.LastUpdated = now })
	return nil
}

// Delete removes the submission at the source and drops it from the view.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	if err := e.src.Delete(ctx, id); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	before := len(e.state.Page.Data)
	e.state.Page.Data = slices.DeleteFunc(e.state.Page.Data, func(s models.Submission) bool { return s.ID == id })
	if len(e.state.Page.Data) < before {
		e.state.Page.Total--
		e.state.Page.TotalPages = 0
		if p := e.state.Page; p.Total > 0 && p.Limit > 0 {
			e.state.Page.TotalPages = (p.Total-1)/p.Limit + 1
		}
	}
	return nil
}

// Export asks the source to render every submission matching the current
// filters, across all pages. The blob is passed through untouched.
func (e *Engine) Export(ctx context.Context, format models.ExportFormat) (*models.Blob, error) {
	e.mu.Lock()
	f := e.state.Filters
	e.mu.Unlock()
	f.Page, f.Limit = 0, 0
	return e.src.Export(ctx, f, format)
}

// ExportCSV renders subs locally, for views that already hold the filtered
// list.
func ExportCSV(subs []models.Submission, now time.Time) (*models.Blob, error) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, subs); err != nil {
		return nil, err
	}
	return &models.Blob{
		Data:        buf.Bytes(),
		ContentType: export.ContentTypeCSV,
		FileName:    export.FileName(export.ClientPrefix, models.ExportCSV, now),
	}, nil
}
