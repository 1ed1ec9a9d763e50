package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/retry"
)

type DashboardOptions struct {
	// Retry applies to read calls only.
	Retry  retry.Policy
	Logger *slog.Logger
}

// Dashboard is the admin view over submissions. It satisfies engine.Source.
type Dashboard struct {
	api    API
	retry  retry.Policy
	logger *slog.Logger
	now    func() time.Time
}

func NewDashboard(api API, opts DashboardOptions) *Dashboard {
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.None
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Dashboard{api: api, retry: opts.Retry, logger: opts.Logger, now: time.Now}
}

// DefaultStats is the canned summary shown when live statistics are
// unavailable.
func DefaultStats(error) models.DashboardStats {
	return models.DashboardStats{
		TotalSubmissions: 127,
		PendingReviews:   23,
		ActiveUsers:      45,
		CompletedForms:   89,
		TotalRevenue:     125000,
		SystemStatus:     models.SystemOnline,
		MonthlyGrowth:    12.5,
	}
}

func (s *Dashboard) Stats(ctx context.Context) Result[models.DashboardStats] {
	stats, err := retry.Value(ctx, s.retry, func(ctx context.Context) (models.DashboardStats, error) {
		var out models.DashboardStats
		err := s.api.Get(ctx, "/admin/dashboard/stats", nil, &out)
		return out, err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "dashboard stats unavailable", "error", err)
		return failed[models.DashboardStats](err)
	}
	return ok(stats)
}

func (s *Dashboard) Submissions(ctx context.Context, filters models.DashboardFilters) (models.Page[models.Submission], error) {
	return retry.Value(ctx, s.retry, func(ctx context.Context) (models.Page[models.Submission], error) {
		var out models.Page[models.Submission]
		err := s.api.Get(ctx, "/admin/submissions", filters, &out)
		return out, err
	})
}

func (s *Dashboard) Submission(ctx context.Context, id int64) (*models.Submission, error) {
	return retry.Value(ctx, s.retry, func(ctx context.Context) (*models.Submission, error) {
		var out models.Submission
		if err := s.api.Get(ctx, fmt.Sprintf("/admin/submissions/%d", id), nil, &out); err != nil {
			return nil, fmt.Errorf("fetch submission %d: %w", id, err)
		}
		return &out, nil
	})
}

type statusChange struct {
	Status    models.Status `json:"status"`
	Notes     string        `json:"notes,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (s *Dashboard) UpdateStatus(ctx context.Context, id int64, status models.Status, notes string) error {
	body := statusChange{Status: status, Notes: notes, UpdatedAt: s.now().UTC()}
	if err := s.api.Put(ctx, fmt.Sprintf("/admin/submissions/%d/status", id), body, nil); err != nil {
		return fmt.Errorf("update status of submission %d: %w", id, err)
	}
	return nil
}

// MarkAsRead always calls the API, even for submissions already read.
func (s *Dashboard) MarkAsRead(ctx context.Context, id int64) error {
	if err := s.api.Put(ctx, fmt.Sprintf("/admin/submissions/%d/read", id), nil, nil); err != nil {
		return fmt.Errorf("mark submission %d read: %w", id, err)
	}
	return nil
}

type assignment struct {
	AssignedTo string    `json:"assignedTo"`
	AssignedAt time.Time `json:"assignedAt"`
}

func (s *Dashboard) Assign(ctx context.Context, id int64, assignee string) error {
	body := assignment{AssignedTo: assignee, AssignedAt: s.now().UTC()}
	if err := s.api.Put(ctx, fmt.Sprintf("/admin/submissions/%d/assign", id), body, nil); err != nil {
		return fmt.Errorf("assign submission %d: %w", id, err)
	}
	return nil
}

type note struct {
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Dashboard) AddNote(ctx context.Context, id int64, text string) error {
	if err := s.api.Post(ctx, fmt.Sprintf("/admin/submissions/%d/notes", id), note{Note: text, CreatedAt: s.now().UTC()}, nil); err != nil {
		return fmt.Errorf("add note to submission %d: %w", id, err)
	}
	return nil
}

func (s *Dashboard) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/admin/submissions/%d", id), nil); err != nil {
		return fmt.Errorf("delete submission %d: %w", id, err)
	}
	return nil
}

type exportQuery struct {
	models.DashboardFilters
	Format models.ExportFormat `url:"format"`
}

// Export asks the API to render the filtered set. The blob is returned as is.
func (s *Dashboard) Export(ctx context.Context, filters models.DashboardFilters, format models.ExportFormat) (*models.Blob, error) {
	if format == "" {
		format = models.ExportExcel
	}
	filters.Page, filters.Limit = 0, 0
	blob, err := s.api.Download(ctx, "/admin/submissions/export", exportQuery{DashboardFilters: filters, Format: format})
	if err != nil {
		return nil, fmt.Errorf("export submissions: %w", err)
	}
	return blob, nil
}

// Users lists staff accounts that submissions can be assigned to. Callers
// usually fall back to an empty list.
func (s *Dashboard) Users(ctx context.Context) Result[[]models.User] {
	users, err := retry.Value(ctx, s.retry, func(ctx context.Context) ([]models.User, error) {
		var out []models.User
		err := s.api.Get(ctx, "/admin/users", nil, &out)
		return out, err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "staff list unavailable", "error", err)
		return failed[[]models.User](err)
	}
	return ok(users)
}

// Analytics fetches period aggregates (week, month, quarter or year).
func (s *Dashboard) Analytics(ctx context.Context, period string) Result[map[string]any] {
	if period == "" {
		period = "month"
	}
	var out map[string]any
	if err := s.api.Get(ctx, "/admin/analytics", map[string]string{"period": period}, &out); err != nil {
		s.logger.WarnContext(ctx, "analytics unavailable", "period", period, "error", err)
		return failed[map[string]any](err)
	}
	return ok(out)
}

func (s *Dashboard) Reply(ctx context.Context, id int64, reply models.Reply) error {
	if err := s.api.Post(ctx, fmt.Sprintf("/admin/submissions/%d/reply", id), reply, nil); err != nil {
		return fmt.Errorf("reply to submission %d: %w", id, err)
	}
	return nil
}
