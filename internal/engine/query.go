// Package engine filters, pages and mutates dashboard submissions. The same
// Filter and Paginate functions back the remote dashboard, the demo fixtures
// and the reference API.
package engine

import (
	"strings"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
)

// DefaultLimit is the page size used when a query gives none.
const DefaultLimit = 10

func active(v string) bool { return v != "" && v != models.FilterAll }

// parseDay accepts a date (2006-01-02) or a full RFC 3339 timestamp.
func parseDay(v string) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

type predicate func(models.Submission) bool

func predicates(f models.DashboardFilters) []predicate {
	var ps []predicate
	if term := strings.ToLower(f.SearchTerm); term != "" {
		ps = append(ps, func(s models.Submission) bool {
			return strings.Contains(strings.ToLower(s.SubmitterName), term) ||
				strings.Contains(strings.ToLower(s.SubmitterEmail), term) ||
				strings.Contains(strings.ToLower(s.Message), term)
		})
	}
	if active(f.FormType) {
		ps = append(ps, func(s models.Submission) bool { return string(s.FormType) == f.FormType })
	}
	if active(f.Status) {
		ps = append(ps, func(s models.Submission) bool { return string(s.Status) == f.Status })
	}
	if active(f.Priority) {
		ps = append(ps, func(s models.Submission) bool { return string(s.Priority) == f.Priority })
	}
	if active(f.AssignedTo) {
		ps = append(ps, func(s models.Submission) bool { return s.AssignedTo == f.AssignedTo })
	}
	// Date bounds cover whole UTC days. Unparseable bounds are ignored.
	if from, ok := parseDay(f.DateFrom); ok {
		from = from.UTC().Truncate(24 * time.Hour)
		ps = append(ps, func(s models.Submission) bool { return !s.SubmittedAt.Before(from) })
	}
	if to, ok := parseDay(f.DateTo); ok {
		end := to.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
		ps = append(ps, func(s models.Submission) bool { return s.SubmittedAt.Before(end) })
	}
	return ps
}

// Filter keeps the submissions matching every active filter, in input order.
// Page and Limit are ignored.
func Filter(subs []models.Submission, f models.DashboardFilters) []models.Submission {
	ps := predicates(f)
	out := make([]models.Submission, 0, len(subs))
next:
	for _, s := range subs {
		for _, p := range ps {
			if !p(s) {
				continue next
			}
		}
		out = append(out, s)
	}
	return out
}

// Paginate slices subs into 1-based pages. A page past the end is empty.
func Paginate(subs []models.Submission, page, limit int) models.Page[models.Submission] {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	total := len(subs)
	out := models.Page[models.Submission]{
		Data:  []models.Submission{},
		Total: total,
		Page:  page,
		Limit: limit,
	}
	if total > 0 {
		out.TotalPages = (total-1)/limit + 1
	}
	// Compare before multiplying so huge page numbers cannot overflow.
	if total == 0 || page-1 > (total-1)/limit {
		return out
	}
	start := (page - 1) * limit
	end := start + min(limit, total-start)
	out.Data = append(out.Data, subs[start:end]...)
	return out
}

// Query filters subs and returns the requested page.
func Query(subs []models.Submission, f models.DashboardFilters) models.Page[models.Submission] {
	return Paginate(Filter(subs, f), f.Page, f.Limit)
}
