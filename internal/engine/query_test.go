package engine

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenextevent/eventdesk/internal/models"
)

func numbered(n int) []models.Submission {
	subs := make([]models.Submission, n)
	for i := range subs {
		subs[i] = models.Submission{
			ID:             int64(i + 1),
			FormType:       models.FormContact,
			SubmitterName:  fmt.Sprintf("Guest %d", i+1),
			SubmitterEmail: fmt.Sprintf("guest%d@example.com", i+1),
			Status:         models.StatusNew,
			Priority:       models.PriorityMedium,
		}
	}
	return subs
}

func TestPaginateBoundary(t *testing.T) {
	subs := numbered(25)

	p := Paginate(subs, 3, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 25, p.Total)
	require.Len(t, p.Data, 5)
	assert.Equal(t, int64(21), p.Data[0].ID)

	p = Paginate(subs, 4, 10)
	assert.Empty(t, p.Data)
	assert.NotNil(t, p.Data)
	assert.Equal(t, 3, p.TotalPages)
}

func TestPaginateHugeValues(t *testing.T) {
	subs := numbered(3)

	p := Paginate(subs, 1<<62+1, 4)
	assert.Empty(t, p.Data)
	assert.Equal(t, 1, p.TotalPages)

	p = Paginate(subs, math.MaxInt64/2, 3)
	assert.Empty(t, p.Data)

	p = Paginate(subs, math.MaxInt, math.MaxInt)
	assert.Empty(t, p.Data)
	assert.Equal(t, 1, p.TotalPages)

	p = Paginate(subs, 1, math.MaxInt)
	assert.Len(t, p.Data, 3)
	assert.Equal(t, 1, p.TotalPages)
}

func TestPaginateDefaults(t *testing.T) {
	p := Paginate(numbered(12), 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Len(t, p.Data, 10)
	assert.Equal(t, 2, p.TotalPages)

	p = Paginate(nil, 1, 10)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Data)
}

func TestFilterSearchFields(t *testing.T) {
	subs := []models.Submission{
		{ID: 1, SubmitterName: "Omar Saleh"},
		{ID: 2, SubmitterEmail: "OMAR@example.com"},
		{ID: 3, Message: "ask omar about venues"},
		{ID: 4, SubmitterName: "Lina"},
	}
	got := Filter(subs, models.DashboardFilters{SearchTerm: "oMaR"})
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, ids(got))
}

func TestFilterAllSentinel(t *testing.T) {
	subs := numbered(3)
	subs[1].Status = models.StatusCompleted
	f := models.DashboardFilters{FormType: models.FilterAll, Status: models.FilterAll, Priority: models.FilterAll, AssignedTo: models.FilterAll}
	assert.Len(t, Filter(subs, f), 3)

	f.Status = string(models.StatusCompleted)
	assert.Equal(t, []int64{2}, ids(Filter(subs, f)))
}

func TestFilterIsOrderIndependent(t *testing.T) {
	subs := numbered(6)
	subs[0].FormType = models.FormFeedback
	subs[2].Status = models.StatusArchived
	subs[3].FormType = models.FormFeedback
	subs[3].Status = models.StatusArchived

	both := Filter(subs, models.DashboardFilters{FormType: "feedback", Status: "archived"})
	typeThenStatus := Filter(Filter(subs, models.DashboardFilters{FormType: "feedback"}), models.DashboardFilters{Status: "archived"})
	statusThenType := Filter(Filter(subs, models.DashboardFilters{Status: "archived"}), models.DashboardFilters{FormType: "feedback"})

	assert.Equal(t, []int64{4}, ids(both))
	assert.Equal(t, ids(both), ids(typeThenStatus))
	assert.Equal(t, ids(both), ids(statusThenType))
}

func TestFilterDateRangeIsInclusive(t *testing.T) {
	subs := []models.Submission{
		{ID: 1, SubmittedAt: time.Date(2024, 1, 12, 23, 59, 0, 0, time.UTC)},
		{ID: 2, SubmittedAt: time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)},
		{ID: 3, SubmittedAt: time.Date(2024, 1, 14, 23, 59, 59, 0, time.UTC)},
		{ID: 4, SubmittedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	got := Filter(subs, models.DashboardFilters{DateFrom: "2024-01-13", DateTo: "2024-01-14"})
	assert.Equal(t, []int64{2, 3}, ids(got))

	// malformed bounds are ignored
	assert.Len(t, Filter(subs, models.DashboardFilters{DateFrom: "yesterday"}), 4)
}

func TestQueryAppliesPage(t *testing.T) {
	p := Query(numbered(15), models.DashboardFilters{Page: 2, Limit: 10})
	assert.Len(t, p.Data, 5)
	assert.Equal(t, 2, p.Page)
}

func ids(subs []models.Submission) []int64 {
	out := make([]int64, len(subs))
	for i, s := range subs {
		out[i] = s.ID
	}
	return out
}
