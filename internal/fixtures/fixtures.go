// Package fixtures serves the dashboard demo data from memory. It is picked
// by configuration and never mixed into the remote dashboard service.
package fixtures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/thenextevent/eventdesk/internal/engine"
	"github.com/thenextevent/eventdesk/internal/export"
	"github.com/thenextevent/eventdesk/internal/models"
)

var ErrNotFound = errors.New("fixture submission not found")

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Submissions returns a fresh copy of the six demo submissions.
func Submissions() []models.Submission {
	return []models.Submission{
		{
			ID: 1, FormType: models.FormContact,
			SubmitterName: "أحمد محمد", SubmitterEmail: "ahmed.mohamed@email.com", SubmitterPhone: "+966501234567",
			Message:     "أرغب في الاستفسار عن خدمات تنظيم الفعاليات للشركات. نحن شركة ناشئة نبحث عن شريك موثوق لتنظيم فعالياتنا التقنية.",
			Status:      models.StatusNew,
			SubmittedAt: at("2024-01-15T10:30:00Z"),
			Priority:    models.PriorityHigh,
			Tags:        []string{"استفسار", "شركات", "تقنية"},
			AdditionalData: map[string]any{
				"organization": "شركة التقنية المتقدمة",
				"eventType":    "مؤتمر تقني",
				"budget":       "50000-100000",
			},
		},
		{
			ID: 2, FormType: models.FormEventPlanning,
			SubmitterName: "فاطمة العلي", SubmitterEmail: "fatima.ali@company.com", SubmitterPhone: "+966507654321",
			Message:     "نحتاج لتنظيم مؤتمر تقني لشركتنا بحضور 200 شخص مع جميع التجهيزات التقنية والتصوير المباشر.",
			Status:      models.StatusInProgress,
			IsRead:      true,
			SubmittedAt: at("2024-01-14T14:45:00Z"),
			Priority:    models.PriorityUrgent,
			AssignedTo:  "سارة أحمد",
			AdminNotes:  "تم التواصل مع العميل وتحديد موعد للاجتماع يوم الأحد",
			Tags:        []string{"مؤتمر", "تقني", "شركات"},
			AdditionalData: map[string]any{
				"eventDate":  "2024-03-15",
				"guestCount": "200",
				"location":   "الرياض",
			},
		},
		{
			ID: 3, FormType: models.FormServiceProvider,
			SubmitterName: "محمد الشهري", SubmitterEmail: "mohammed.alshehri@catering.com", SubmitterPhone: "+966501111111",
			Message:     "أود التقدم كمقدم خدمات تموين للفعاليات. لدينا خبرة 10 سنوات في المجال وفريق متخصص.",
			Status:      models.StatusCompleted,
			IsRead:      true,
			SubmittedAt: at("2024-01-13T09:15:00Z"),
			Priority:    models.PriorityMedium,
			AssignedTo:  "عبدالله محمد",
			AdminNotes:  "تم قبول المقدم وإضافته للشبكة بعد مراجعة الوثائق",
			Tags:        []string{"مقدم خدمة", "تموين", "خبرة"},
			AdditionalData: map[string]any{
				"serviceType": "تموين",
				"experience":  "10 سنوات",
				"teamSize":    "15",
			},
		},
		{
			ID: 4, FormType: models.FormPartnership,
			SubmitterName: "نوره السالم", SubmitterEmail: "norah.salem@university.edu.sa", SubmitterPhone: "+966509999999",
			Message:     "نود إقامة شراكة استراتيجية مع شركتكم لتنظيم فعاليات جامعية متميزة وورش عمل للطلاب.",
			Status:      models.StatusNew,
			SubmittedAt: at("2024-01-15T16:20:00Z"),
			Priority:    models.PriorityHigh,
			Tags:        []string{"شراكة", "جامعة", "طلاب"},
			AdditionalData: map[string]any{
				"organization":    "جامعة الملك سعود",
				"partnershipType": "استراتيجية",
				"duration":        "سنة واحدة",
			},
		},
		{
			ID: 5, FormType: models.FormFeedback,
			SubmitterName: "عبدالله الحربي", SubmitterEmail: "abdullah.alharbi@email.com", SubmitterPhone: "+966508888888",
			Message:     "كان الحدث رائعاً جداً وتنظيم ممتاز، أتطلع للمشاركة في الفعاليات القادمة. شكراً لكم على الجهود المبذولة.",
			Status:      models.StatusArchived,
			IsRead:      true,
			SubmittedAt: at("2024-01-12T19:30:00Z"),
			Priority:    models.PriorityLow,
			Tags:        []string{"تقييم إيجابي", "شكر"},
			AdditionalData: map[string]any{
				"eventAttended": "مؤتمر التقنية 2024",
				"rating":        "5/5",
			},
		},
		{
			ID: 6, FormType: models.FormContact,
			SubmitterName: "سعد الغامدي", SubmitterEmail: "saad.alghamdi@business.com", SubmitterPhone: "+966502222222",
			Message:     "نحن شركة ناشئة في مجال التكنولوجيا المالية ونريد تنظيم فعالية إطلاق منتجنا الجديد.",
			Status:      models.StatusInProgress,
			IsRead:      true,
			SubmittedAt: at("2024-01-14T11:10:00Z"),
			Priority:    models.PriorityMedium,
			AssignedTo:  "خالد أحمد",
			Tags:        []string{"إطلاق منتج", "تكنولوجيا مالية"},
			AdditionalData: map[string]any{
				"productType": "تطبيق دفع",
				"launchDate":  "2024-02-28",
			},
		},
	}
}

// DemoStats is the summary shown next to the demo submissions.
func DemoStats() models.DashboardStats {
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

// Provider is an in-memory engine.Source. Mutations change its copy of the
// data, so a demo session behaves like a live one until restart.
type Provider struct {
	mu   sync.Mutex
	subs []models.Submission
	now  func() time.Time
}

var _ engine.Source = (*Provider)(nil)

// New returns a provider over subs, or over the demo set when subs is nil.
func New(subs []models.Submission) *Provider {
	if subs == nil {
		subs = Submissions()
	}
	return &Provider{subs: slices.Clone(subs), now: time.Now}
}

func (p *Provider) Submissions(_ context.Context, f models.DashboardFilters) (models.Page[models.Submission], error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return engine.Query(p.subs, f), nil
}

func (p *Provider) Submission(_ context.Context, id int64) (*models.Submission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.subs {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
}

func (p *Provider) mutate(id int64, fn func(*models.Submission)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.subs {
		if p.subs[i].ID == id {
			fn(&p.subs[i])
			p.subs[i].LastUpdated = p.now().UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrNotFound, id)
}

func (p *Provider) MarkAsRead(_ context.Context, id int64) error {
	return p.mutate(id, func(s *models.Submission) { s.IsRead = true })
}

func (p *Provider) UpdateStatus(_ context.Context, id int64, status models.Status, notes string) error {
	return p.mutate(id, func(s *models.Submission) {
		s.Status = status
		if notes != "" {
			s.AdminNotes = notes
		}
	})
}

func (p *Provider) Assign(_ context.Context, id int64, assignee string) error {
	return p.mutate(id, func(s *models.Submission) { s.AssignedTo = assignee })
}

func (p *Provider) AddNote(_ context.Context, id int64, note string) error {
	return p.mutate(id, func(s *models.Submission) {
		if s.AdminNotes != "" {
			s.AdminNotes += "\n"
		}
		s.AdminNotes += note
	})
}

func (p *Provider) Delete(_ context.Context, id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.subs)
	p.subs = slices.DeleteFunc(p.subs, func(s models.Submission) bool { return s.ID == id })
	if len(p.subs) == n {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func (p *Provider) Export(_ context.Context, f models.DashboardFilters, format models.ExportFormat) (*models.Blob, error) {
	p.mu.Lock()
	matched := engine.Filter(p.subs, f)
	p.mu.Unlock()

	var buf bytes.Buffer
	if err := export.Write(&buf, format, matched); err != nil {
		return nil, err
	}
	return &models.Blob{
		Data:        buf.Bytes(),
		ContentType: export.ContentType(format),
		FileName:    export.FileName(export.ServerPrefix, format, p.now()),
	}, nil
}
