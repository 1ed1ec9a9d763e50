package backend

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/repository"
)

// budgetMidpoints values each event-planning budget band in SAR. The open
// top band counts at its lower bound.
var budgetMidpoints = map[string]float64{
	"less-than-50k":  25000,
	"50k-100k":       75000,
	"100k-250k":      175000,
	"250k-500k":      375000,
	"more-than-500k": 500000,
}

var periodDays = map[string]int{"week": 7, "month": 30, "quarter": 90, "year": 365}

type DashboardService struct {
	subs  *repository.SubmissionRepo
	users *repository.UserRepo
	forms *SubmissionService
	now   func() time.Time
}

func NewDashboardService(subs *repository.SubmissionRepo, users *repository.UserRepo, forms *SubmissionService) *DashboardService {
	return &DashboardService{subs: subs, users: users, forms: forms, now: time.Now}
}

func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	byStatus, err := s.subs.CountBy(ctx, "status", "")
	if err != nil {
		return nil, err
	}
	byPriority, err := s.subs.CountBy(ctx, "priority", "")
	if err != nil {
		return nil, err
	}
	active, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.revenue(ctx)
	if err != nil {
		return nil, err
	}
	growth, err := s.monthlyGrowth(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		ActiveUsers:   int64(active),
		TotalRevenue:  revenue,
		SystemStatus:  models.SystemOnline,
		MonthlyGrowth: growth,
		ByStatus:      make(map[models.Status]int64, len(byStatus)),
		ByPriority:    make(map[models.Priority]int64, len(byPriority)),
	}
	for k, n := range byStatus {
		stats.ByStatus[models.Status(k)] = n
		stats.TotalSubmissions += n
	}
	for k, n := range byPriority {
		stats.ByPriority[models.Priority(k)] = n
	}
	stats.PendingReviews = stats.ByStatus[models.StatusNew] + stats.ByStatus[models.StatusInProgress]
	stats.CompletedForms = stats.ByStatus[models.StatusCompleted]
	return stats, nil
}

// revenue sums the budget midpoints of completed event-planning requests.
// Requests without a recognised band add nothing.
func (s *DashboardService) revenue(ctx context.Context) (float64, error) {
	data, err := s.subs.AdditionalData(ctx, models.FormEventPlanning, models.StatusCompleted)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, d := range data {
		band, _ := d["budget"].(string)
		total += budgetMidpoints[band]
	}
	return total, nil
}

// monthlyGrowth compares this calendar month's submissions with last
// month's, as a percentage rounded to one decimal.
func (s *DashboardService) monthlyGrowth(ctx context.Context) (float64, error) {
	now := s.now().UTC()
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	current, err := s.subs.CountBetween(ctx, "", thisMonth, time.Time{})
	if err != nil {
		return 0, err
	}
	previous, err := s.subs.CountBetween(ctx, "", lastMonth, thisMonth)
	if err != nil {
		return 0, err
	}
	return growth(current, previous), nil
}

func growth(current, previous int64) float64 {
	switch {
	case previous == 0 && current == 0:
		return 0
	case previous == 0:
		return 100
	}
	pct := float64(current-previous) / float64(previous) * 100
	return math.Round(pct*10) / 10
}

// Analytics aggregates submissions over a period: week, month, quarter or
// year.
func (s *DashboardService) Analytics(ctx context.Context, period string) (map[string]any, error) {
	if period == "" {
		period = "month"
	}
	days, ok := periodDays[period]
	if !ok {
		return nil, FieldErrors{"period": {fmt.Sprintf("unknown period %q", period)}}
	}
	daily, err := s.forms.DailyCounts(ctx, days)
	if err != nil {
		return nil, err
	}
	byType, err := s.subs.CountBy(ctx, "form_type", "")
	if err != nil {
		return nil, err
	}
	byStatus, err := s.subs.CountBy(ctx, "status", "")
	if err != nil {
		return nil, err
	}
	var inPeriod int64
	for _, d := range daily {
		inPeriod += d.Count
	}
	return map[string]any{
		"period":            period,
		"totalInPeriod":     inPeriod,
		"dailySubmissions":  daily,
		"submissionsByType": byType,
		"statusBreakdown":   byStatus,
	}, nil
}

// Users lists the staff accounts submissions can be assigned to.
func (s *DashboardService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	active := users[:0]
	for _, u := range users {
		if u.IsActive {
			active = append(active, u.ToResponse())
		}
	}
	return active, nil
}
