package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/templates"
	"github.com/thenextevent/eventdesk/internal/validation"
)

type Email struct {
	api API
}

func NewEmail(api API) *Email { return &Email{api: api} }

func (s *Email) Send(ctx context.Context, msg models.EmailMessage) (*models.SendResult, error) {
	var out models.SendResult
	if err := s.api.Post(ctx, "/email/send", msg, &out); err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	return &out, nil
}

func (s *Email) SendTemplate(ctx context.Context, req models.TemplateEmail) (*models.SendResult, error) {
	var out models.SendResult
	if err := s.api.Post(ctx, "/email/send-template", req, &out); err != nil {
		return nil, fmt.Errorf("send template %d: %w", req.TemplateID, err)
	}
	return &out, nil
}

func (s *Email) SendBulk(ctx context.Context, req models.BulkEmail) (*models.BulkResult, error) {
	var out models.BulkResult
	if err := s.api.Post(ctx, "/email/send-bulk", req, &out); err != nil {
		return nil, fmt.Errorf("send bulk email: %w", err)
	}
	return &out, nil
}

func (s *Email) Templates(ctx context.Context, params models.TemplateListParams) (models.PagedItems[models.EmailTemplate], error) {
	var out models.PagedItems[models.EmailTemplate]
	err := s.api.Get(ctx, "/email/templates", params, &out)
	return out, err
}

func (s *Email) Template(ctx context.Context, id int64) (*models.EmailTemplate, error) {
	var out models.EmailTemplate
	if err := s.api.Get(ctx, fmt.Sprintf("/email/templates/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Email) CreateTemplate(ctx context.Context, tpl models.EmailTemplate) (*models.EmailTemplate, error) {
	var out models.EmailTemplate
	if err := s.api.Post(ctx, "/email/templates", tpl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Email) UpdateTemplate(ctx context.Context, id int64, tpl models.EmailTemplate) (*models.EmailTemplate, error) {
	var out models.EmailTemplate
	if err := s.api.Put(ctx, fmt.Sprintf("/email/templates/%d", id), tpl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Email) DeleteTemplate(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/email/templates/%d", id), nil)
}

func (s *Email) Logs(ctx context.Context, params models.EmailLogParams) (models.PagedItems[models.EmailLog], error) {
	var out models.PagedItems[models.EmailLog]
	err := s.api.Get(ctx, "/email/logs", params, &out)
	return out, err
}

func (s *Email) Log(ctx context.Context, id int64) (*models.EmailLog, error) {
	var out models.EmailLog
	if err := s.api.Get(ctx, fmt.Sprintf("/email/logs/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resend retries a logged message that failed.
func (s *Email) Resend(ctx context.Context, logID int64) (*models.SendResult, error) {
	var out models.SendResult
	if err := s.api.Post(ctx, fmt.Sprintf("/email/logs/%d/resend", logID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Statistics reports sends over a day, week or month; week by default.
func (s *Email) Statistics(ctx context.Context, period string) (*models.EmailStatistics, error) {
	if period == "" {
		period = "week"
	}
	var out models.EmailStatistics
	if err := s.api.Get(ctx, "/email/statistics", map[string]string{"period": period}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Email) UpdateStatus(ctx context.Context, ev models.StatusEvent) error {
	return s.api.Post(ctx, "/email/webhooks/status", ev, nil)
}

func (s *Email) HandleBounce(ctx context.Context, ev models.BounceEvent) error {
	return s.api.Post(ctx, "/email/webhooks/bounce", ev, nil)
}

func (s *Email) HandleComplaint(ctx context.Context, ev models.ComplaintEvent) error {
	return s.api.Post(ctx, "/email/webhooks/complaint", ev, nil)
}

// DefaultTemplate builds an unsaved template of one of the built-in kinds.
func DefaultTemplate(name string, kind templates.Kind, lang string) (models.EmailTemplate, error) {
	return templates.Default(name, kind, lang)
}

// RenderTemplate fills a template body with string variables. Unknown
// variables render empty.
func RenderTemplate(body string, vars map[string]string) (string, error) {
	return templates.Render(body, templates.Strings(vars))
}

func ValidEmail(addr string) bool { return validation.ValidEmail(addr) }

// CleanEmailList trims, lowercases and validates addresses, dropping
// duplicates while keeping first-seen order.
func CleanEmailList(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		a = strings.ToLower(strings.TrimSpace(a))
		if !validation.ValidEmail(a) || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

var statusColors = map[models.EmailStatus]string{
	models.EmailSent:       "blue",
	models.EmailDelivered:  "green",
	models.EmailFailed:     "red",
	models.EmailBounced:    "orange",
	models.EmailComplained: "purple",
}

type EmailDisplay struct {
	Recipient     string
	Subject       string
	Status        models.EmailStatus
	StatusColor   string
	SentDate      string
	DeliveredDate string
}

const displayTime = "2006-01-02 15:04"

// FormatEmailForDisplay prepares a log row for listing. Times are shown in loc.
func FormatEmailForDisplay(l models.EmailLog, loc *time.Location) EmailDisplay {
	if loc == nil {
		loc = time.UTC
	}
	color, found := statusColors[l.Status]
	if !found {
		color = "gray"
	}
	d := EmailDisplay{
		Recipient:   l.Recipient,
		Subject:     l.Subject,
		Status:      l.Status,
		StatusColor: color,
		SentDate:    l.SentAt.In(loc).Format(displayTime),
	}
	if l.DeliveredAt != nil {
		d.DeliveredDate = l.DeliveredAt.In(loc).Format(displayTime)
	}
	return d
}
