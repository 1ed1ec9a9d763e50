package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/validation"
)

type Forms struct {
	api API
}

func NewForms(api API) *Forms {
	return &Forms{api: api}
}

// Submit validates p and posts it to the public submission endpoint. An
// invalid payload returns *validation.Error and never reaches the network.
func (s *Forms) Submit(ctx context.Context, p models.FormPayload) (*models.Submission, error) {
	if res := validation.Validate(p); !res.Valid {
		return nil, &validation.Error{FormType: p.FormType(), Result: res}
	}
	body, err := models.MarshalPayload(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.FormType(), err)
	}
	var out models.Submission
	if err := s.api.Post(ctx, "/forms/submit", json.RawMessage(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Forms) SubmitContact(ctx context.Context, p *models.ContactPayload) (*models.Submission, error) {
	return s.Submit(ctx, p)
}

func (s *Forms) SubmitEventPlanning(ctx context.Context, p *models.EventPlanningPayload) (*models.Submission, error) {
	return s.Submit(ctx, p)
}

func (s *Forms) SubmitServiceProvider(ctx context.Context, p *models.ServiceProviderPayload) (*models.Submission, error) {
	return s.Submit(ctx, p)
}

func (s *Forms) SubmitPartnership(ctx context.Context, p *models.PartnershipPayload) (*models.Submission, error) {
	return s.Submit(ctx, p)
}

func (s *Forms) SubmitFeedback(ctx context.Context, p *models.FeedbackPayload) (*models.Submission, error) {
	return s.Submit(ctx, p)
}

func (s *Forms) List(ctx context.Context, params models.FormListParams) (models.PagedItems[models.Submission], error) {
	var out models.PagedItems[models.Submission]
	err := s.api.Get(ctx, "/forms", params, &out)
	return out, err
}

func (s *Forms) ListByType(ctx context.Context, formType models.FormType, params models.FormListParams) (models.PagedItems[models.Submission], error) {
	params.FormType = string(formType)
	return s.List(ctx, params)
}

func (s *Forms) Get(ctx context.Context, id int64) (*models.Submission, error) {
	var out models.Submission
	if err := s.api.Get(ctx, fmt.Sprintf("/forms/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Forms) UpdateStatus(ctx context.Context, id int64, status models.Status, notes string) error {
	return s.api.Patch(ctx, fmt.Sprintf("/forms/%d/status", id), models.StatusUpdate{Status: status, AdminNotes: notes}, nil)
}

// MarkRead sends the read flag as a bare JSON boolean.
func (s *Forms) MarkRead(ctx context.Context, id int64, isRead bool) error {
	return s.api.Patch(ctx, fmt.Sprintf("/forms/%d/read-status", id), isRead, nil)
}

func (s *Forms) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/forms/%d", id), nil)
}

// ExportCSV downloads the server-rendered CSV for the filtered set.
func (s *Forms) ExportCSV(ctx context.Context, params models.FormListParams) (*models.Blob, error) {
	return s.api.Download(ctx, "/forms/export/csv", params)
}

func (s *Forms) Statistics(ctx context.Context, formType models.FormType) (*models.FormStatistics, error) {
	var q map[string]string
	if formType != "" {
		q = map[string]string{"formType": string(formType)}
	}
	var out models.FormStatistics
	if err := s.api.Get(ctx, "/forms/statistics", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Forms) DailyCounts(ctx context.Context, days int) ([]models.DailyCount, error) {
	if days <= 0 {
		days = 30
	}
	var out []models.DailyCount
	err := s.api.Get(ctx, "/forms/daily-counts", map[string]string{"days": fmt.Sprint(days)}, &out)
	return out, err
}

func (s *Forms) BulkUpdateStatus(ctx context.Context, ids []int64, status models.Status, notes string) error {
	return s.api.Patch(ctx, "/forms/bulk-update", models.BulkStatusUpdate{FormIDs: ids, Status: status, AdminNotes: notes}, nil)
}

func (s *Forms) BulkDelete(ctx context.Context, ids []int64) error {
	return s.api.Post(ctx, "/forms/bulk-delete", models.BulkDelete{FormIDs: ids}, nil)
}

// ContactInput is the flat shape collected by the public contact form.
type ContactInput struct {
	Name         string
	Email        string
	Phone        string
	Organization string
	Message      string
	EventType    string
	EventDate    string
	GuestCount   string
	Budget       string
	Services     []string
}

// NewContactPayload moves the optional contact fields into additionalData.
func NewContactPayload(in ContactInput) *models.ContactPayload {
	extra := map[string]any{}
	for k, v := range map[string]string{
		"organization": in.Organization,
		"eventType":    in.EventType,
		"eventDate":    in.EventDate,
		"guestCount":   in.GuestCount,
		"budget":       in.Budget,
	} {
		if v != "" {
			extra[k] = v
		}
	}
	if len(in.Services) > 0 {
		extra["services"] = in.Services
	}
	p := &models.ContactPayload{
		Submitter: models.Submitter{Name: in.Name, Email: in.Email, Phone: in.Phone},
		Message:   in.Message,
	}
	if len(extra) > 0 {
		p.AdditionalData = extra
	}
	return p
}

var formTypeLabels = map[string]map[models.FormType]string{
	"ar": {
		models.FormContact:         "نموذج الاتصال",
		models.FormEventPlanning:   "نموذج تخطيط الفعاليات",
		models.FormServiceProvider: "نموذج مقدم الخدمة",
		models.FormPartnership:     "نموذج الشراكة",
		models.FormFeedback:        "نموذج الملاحظات والتقييم",
	},
	"en": {
		models.FormContact:         "Contact form",
		models.FormEventPlanning:   "Event planning form",
		models.FormServiceProvider: "Service provider form",
		models.FormPartnership:     "Partnership form",
		models.FormFeedback:        "Feedback form",
	},
}

// FormTypeLabels returns display names for the form types; unknown
// languages fall back to Arabic.
func FormTypeLabels(lang string) map[models.FormType]string {
	if l, ok := formTypeLabels[lang]; ok {
		return l
	}
	return formTypeLabels["ar"]
}

var displayKeys = map[string]map[string]string{
	"ar": {
		"name": "الاسم", "email": "البريد الإلكتروني", "phone": "رقم الهاتف", "message": "الرسالة",
		"organization": "المؤسسة", "eventType": "نوع الفعالية", "eventDate": "تاريخ الفعالية",
		"guestCount": "عدد الضيوف", "budget": "الميزانية", "services": "الخدمات المطلوبة",
	},
	"en": {
		"name": "Name", "email": "Email", "phone": "Phone", "message": "Message",
		"organization": "Organization", "eventType": "Event type", "eventDate": "Event date",
		"guestCount": "Guest count", "budget": "Budget", "services": "Requested services",
	},
}

type DisplayField struct {
	Label string
	Value string
}

type Display struct {
	Basic      []DisplayField
	Additional []DisplayField
}

// FormatForDisplay labels a submission's fields for a detail view. Empty
// additional values are skipped and lists are joined with commas.
func FormatForDisplay(sub models.Submission, lang string) Display {
	keys, ok := displayKeys[lang]
	if !ok {
		keys = displayKeys["ar"]
	}
	d := Display{Basic: []DisplayField{
		{keys["name"], sub.SubmitterName},
		{keys["email"], sub.SubmitterEmail},
		{keys["phone"], sub.SubmitterPhone},
		{keys["message"], sub.Message},
	}}
	names := make([]string, 0, len(sub.AdditionalData))
	for k := range sub.AdditionalData {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := displayValue(sub.AdditionalData[k])
		if v == "" {
			continue
		}
		label := k
		if l, ok := keys[k]; ok {
			label = l
		}
		d.Additional = append(d.Additional, DisplayField{label, v})
	}
	return d
}

func displayValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
