package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thenextevent/eventdesk/internal/engine"
	"github.com/thenextevent/eventdesk/internal/export"
	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/repository"
	"github.com/thenextevent/eventdesk/internal/validation"
)

type SubmissionService struct {
	subs   *repository.SubmissionRepo
	policy engine.TransitionPolicy
	now    func() time.Time
}

func NewSubmissionService(subs *repository.SubmissionRepo) *SubmissionService {
	return &SubmissionService{subs: subs, policy: engine.UnconstrainedTransitions{}, now: time.Now}
}

// Submit validates p with the same rules the client applies and stores it
// as a new, unread submission.
func (s *SubmissionService) Submit(ctx context.Context, p models.FormPayload) (*models.Submission, error) {
	if res := validation.Validate(p); !res.Valid {
		return nil, FieldErrors(res.Fields())
	}
	sub, err := fromPayload(p)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sub.Status = models.StatusNew
	sub.Priority = models.PriorityMedium
	sub.SubmittedAt = now
	sub.LastUpdated = now

	id, err := s.subs.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	return s.subs.FindByID(ctx, id)
}

// List filters by category in SQL, then applies the date range, search and
// paging exactly as the dashboard engine does.
func (s *SubmissionService) List(ctx context.Context, f models.DashboardFilters) (models.Page[models.Submission], error) {
	subs, err := s.subs.List(ctx, f)
	if err != nil {
		return models.Page[models.Submission]{}, err
	}
	return engine.Query(subs, f), nil
}

func (s *SubmissionService) Get(ctx context.Context, id int64) (*models.Submission, error) {
	return s.subs.FindByID(ctx, id)
}

func (s *SubmissionService) UpdateStatus(ctx context.Context, id int64, status models.Status, notes string) (*models.Submission, error) {
	current, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Allow(current.Status, status); err != nil {
		return nil, FieldErrors{"status": {err.Error()}}
	}
	if err := s.subs.UpdateStatus(ctx, id, status, notes, s.now()); err != nil {
		return nil, err
	}
	return s.subs.FindByID(ctx, id)
}

func (s *SubmissionService) UpdateStatusMany(ctx context.Context, ids []int64, status models.Status, notes string) error {
	if len(ids) == 0 {
		return FieldErrors{"formIds": {"at least one id is required"}}
	}
	if err := s.policy.Allow("", status); err != nil {
		return FieldErrors{"status": {err.Error()}}
	}
	return s.subs.UpdateStatusMany(ctx, ids, status, notes, s.now())
}

func (s *SubmissionService) SetRead(ctx context.Context, id int64, isRead bool) error {
	return s.subs.SetRead(ctx, id, isRead, s.now())
}

func (s *SubmissionService) Assign(ctx context.Context, id int64, assignee string) error {
	return s.subs.Assign(ctx, id, assignee, s.now())
}

func (s *SubmissionService) AddNote(ctx context.Context, id int64, note string) error {
	if note == "" {
		return FieldErrors{"note": {"note is required"}}
	}
	return s.subs.AppendNote(ctx, id, note, s.now())
}

func (s *SubmissionService) Delete(ctx context.Context, id int64) error {
	return s.subs.Delete(ctx, id)
}

func (s *SubmissionService) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return FieldErrors{"formIds": {"at least one id is required"}}
	}
	return s.subs.DeleteMany(ctx, ids)
}

// Export renders every submission matching f, ignoring paging.
func (s *SubmissionService) Export(ctx context.Context, f models.DashboardFilters, format models.ExportFormat) (*models.Blob, error) {
	if format == "" {
		format = models.ExportCSV
	}
	if !format.Valid() {
		return nil, FieldErrors{"format": {"format must be csv or excel"}}
	}
	subs, err := s.subs.List(ctx, f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, engine.Filter(subs, f)); err != nil {
		return nil, fmt.Errorf("render export: %w", err)
	}
	return &models.Blob{
		Data:        buf.Bytes(),
		ContentType: export.ContentType(format),
		FileName:    export.FileName(export.ServerPrefix, format, s.now()),
	}, nil
}

// Statistics counts submissions by status and by recency. An empty
// formType covers every type.
func (s *SubmissionService) Statistics(ctx context.Context, formType models.FormType) (*models.FormStatistics, error) {
	byStatus, err := s.subs.CountBy(ctx, "status", formType)
	if err != nil {
		return nil, err
	}
	byType, err := s.subs.CountBy(ctx, "form_type", formType)
	if err != nil {
		return nil, err
	}
	stats := &models.FormStatistics{
		NewSubmissions:        byStatus[string(models.StatusNew)],
		InProgressSubmissions: byStatus[string(models.StatusInProgress)],
		CompletedSubmissions:  byStatus[string(models.StatusCompleted)],
		ByType:                make(map[models.FormType]int64, len(byType)),
	}
	for _, n := range byStatus {
		stats.TotalSubmissions += n
	}
	for t, n := range byType {
		stats.ByType[models.FormType(t)] = n
	}

	today := startOfDay(s.now())
	for _, w := range []struct {
		from time.Time
		into *int64
	}{
		{today, &stats.TodaySubmissions},
		{today.AddDate(0, 0, -6), &stats.WeekSubmissions},
		{today.AddDate(0, 0, -29), &stats.MonthSubmissions},
	} {
		n, err := s.subs.CountBetween(ctx, formType, w.from, time.Time{})
		if err != nil {
			return nil, err
		}
		*w.into = n
	}
	return stats, nil
}

// DailyCounts returns one entry per UTC day for the last days days, oldest
// first, including days without submissions.
func (s *SubmissionService) DailyCounts(ctx context.Context, days int) ([]models.DailyCount, error) {
	if days <= 0 {
		days = 30
	}
	from := startOfDay(s.now()).AddDate(0, 0, -(days - 1))
	times, err := s.subs.SubmittedSince(ctx, from)
	if err != nil {
		return nil, err
	}
	out := make([]models.DailyCount, days)
	index := make(map[string]int, days)
	for i := range out {
		d := from.AddDate(0, 0, i).Format(time.DateOnly)
		out[i].Date = d
		index[d] = i
	}
	for _, t := range times {
		if i, ok := index[t.UTC().Format(time.DateOnly)]; ok {
			out[i].Count++
		}
	}
	return out, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// fromPayload maps a payload onto the stored submission shape: the
// submitter block and a message go to columns, every other field to
// additionalData.
func fromPayload(p models.FormPayload) (*models.Submission, error) {
	who := p.Identity()
	b := &submissionBuilder{}
	p.Accept(b)

	extra, err := extraFields(p, b.messageField)
	if err != nil {
		return nil, err
	}
	for k, v := range b.extra {
		extra[k] = v
	}
	sub := &models.Submission{
		FormType:       p.FormType(),
		SubmitterName:  who.Name,
		SubmitterEmail: who.Email,
		SubmitterPhone: who.Phone,
		Message:        b.message,
	}
	if len(extra) > 0 {
		sub.AdditionalData = extra
	}
	return sub, nil
}

type submissionBuilder struct {
	message      string
	messageField string
	extra        map[string]any
}

func (b *submissionBuilder) use(field, value string) {
	b.message, b.messageField = value, field
}

func (b *submissionBuilder) VisitContact(p *models.ContactPayload) {
	b.use("message", p.Message)
	b.extra = p.AdditionalData
}

func (b *submissionBuilder) VisitEventPlanning(p *models.EventPlanningPayload) {
	if p.EventDescription != "" {
		b.use("eventDescription", p.EventDescription)
		return
	}
	b.message = p.EventTitle
}

func (b *submissionBuilder) VisitServiceProvider(p *models.ServiceProviderPayload) {
	if p.Description != "" {
		b.use("description", p.Description)
		return
	}
	b.message = p.CompanyName
}

func (b *submissionBuilder) VisitPartnership(p *models.PartnershipPayload) {
	b.use("proposalDescription", p.ProposalDescription)
}

func (b *submissionBuilder) VisitFeedback(p *models.FeedbackPayload) {
	if p.FeedbackText != "" {
		b.use("feedbackText", p.FeedbackText)
		return
	}
	b.message = p.EventName
}

var identityFields = []string{"submitterName", "submitterEmail", "submitterPhone", "formType", "additionalData"}

func extraFields(p models.FormPayload, messageField string) (map[string]any, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.FormType(), err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	for _, k := range identityFields {
		delete(fields, k)
	}
	if messageField != "" {
		delete(fields, messageField)
	}
	return fields, nil
}
