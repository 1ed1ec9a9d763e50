package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenextevent/eventdesk/internal/engine"
	"github.com/thenextevent/eventdesk/internal/fixtures"
	"github.com/thenextevent/eventdesk/internal/models"
)

type countingSource struct {
	*fixtures.Provider
	markCalls  int
	failLoad   error
	lastExport models.DashboardFilters
}

func (c *countingSource) Submissions(ctx context.Context, f models.DashboardFilters) (models.Page[models.Submission], error) {
	if c.failLoad != nil {
		return models.Page[models.Submission]{}, c.failLoad
	}
	return c.Provider.Submissions(ctx, f)
}

func (c *countingSource) MarkAsRead(ctx context.Context, id int64) error {
	c.markCalls++
	return c.Provider.MarkAsRead(ctx, id)
}

func (c *countingSource) Export(ctx context.Context, f models.DashboardFilters, format models.ExportFormat) (*models.Blob, error) {
	c.lastExport = f
	return c.Provider.Export(ctx, f, format)
}

func newEngine(t *testing.T) (*engine.Engine, *countingSource) {
	t.Helper()
	src := &countingSource{Provider: fixtures.New(nil)}
	return engine.New(src), src
}

func TestEmptySearchReturnsAllFixtures(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Load(context.Background(), models.DashboardFilters{SearchTerm: ""}))

	v := e.View()
	assert.Equal(t, engine.Ready, v.Phase)
	assert.Equal(t, 6, v.Page.Total)
	assert.Len(t, v.Page.Data, 6)
}

func TestCombinedFilterOverFixtures(t *testing.T) {
	e, _ := newEngine(t)
	require.NoError(t, e.Load(context.Background(), models.DashboardFilters{FormType: "contact", Status: "new"}))

	v := e.View()
	require.Len(t, v.Page.Data, 1)
	assert.Equal(t, int64(1), v.Page.Data[0].ID)
}

func TestNotLoadedIsNotEmpty(t *testing.T) {
	e, _ := newEngine(t)
	v := e.View()
	assert.Equal(t, engine.NotLoaded, v.Phase)
	assert.False(t, v.Empty())

	require.NoError(t, e.Load(context.Background(), models.DashboardFilters{SearchTerm: "nobody-matches-this"}))
	v = e.View()
	assert.Equal(t, engine.Ready, v.Phase)
	assert.True(t, v.Empty())
}

func TestLoadFailureState(t *testing.T) {
	e, src := newEngine(t)
	src.failLoad = errors.New("boom")

	err := e.Load(context.Background(), models.DashboardFilters{})
	require.Error(t, err)
	v := e.View()
	assert.Equal(t, engine.Failed, v.Phase)
	assert.False(t, v.Empty())
	assert.ErrorIs(t, v.Err, src.failLoad)
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	e, src := newEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Load(ctx, models.DashboardFilters{}))

	require.NoError(t, e.MarkAsRead(ctx, 1))
	require.NoError(t, e.MarkAsRead(ctx, 1))
	assert.Equal(t, 2, src.markCalls)

	for _, s := range e.View().Page.Data {
		if s.ID == 1 {
			assert.True(t, s.IsRead)
		}
	}
}

func TestCompletedCanGoBackToNew(t *testing.T) {
	e, src := newEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Load(ctx, models.DashboardFilters{Status: "completed"}))
	require.Len(t, e.View().Page.Data, 1)

	require.NoError(t, e.UpdateStatus(ctx, 3, models.StatusNew, ""))
	assert.Equal(t, models.StatusNew, e.View().Page.Data[0].Status)

	page, err := src.Submissions(ctx, models.DashboardFilters{Status: "new"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

type strictPolicy struct{}

func (strictPolicy) Allow(from, to models.Status) error {
	if from == models.StatusCompleted && to == models.StatusNew {
		return errors.New("completed is final")
	}
	return nil
}

func TestCustomPolicyBlocksTransition(t *testing.T) {
	src := fixtures.New(nil)
	e := engine.New(src, engine.WithPolicy(strictPolicy{}))
	ctx := context.Background()
	require.NoError(t, e.Load(ctx, models.DashboardFilters{}))

	err := e.UpdateStatus(ctx, 3, models.StatusNew, "")
	assert.ErrorIs(t, err, engine.ErrTransitionDenied)
}

func TestUnknownStatusRejected(t *testing.T) {
	e, _ := newEngine(t)
	assert.ErrorIs(t, e.UpdateStatus(context.Background(), 1, "closed", ""), engine.ErrTransitionDenied)
}

func TestAssignAndDeletePatchView(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Load(ctx, models.DashboardFilters{}))

	require.NoError(t, e.Assign(ctx, 4, "Khalid"))
	require.NoError(t, e.AddNote(ctx, 4, "called back"))
	require.NoError(t, e.Delete(ctx, 5))

	v := e.View()
	assert.Equal(t, 5, v.Page.Total)
	for _, s := range v.Page.Data {
		assert.NotEqual(t, int64(5), s.ID)
		if s.ID == 4 {
			assert.Equal(t, "Khalid", s.AssignedTo)
		}
	}

	assert.ErrorIs(t, e.Delete(ctx, 99), fixtures.ErrNotFound)
}

func TestDeleteRecountsPages(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Load(ctx, models.DashboardFilters{Limit: 3}))
	v := e.View()
	require.Equal(t, 6, v.Page.Total)
	require.Equal(t, 2, v.Page.TotalPages)

	for _, s := range v.Page.Data {
		require.NoError(t, e.Delete(ctx, s.ID))
	}
	v = e.View()
	assert.Equal(t, 3, v.Page.Total)
	assert.Equal(t, 1, v.Page.TotalPages)
	assert.Empty(t, v.Page.Data)
}

func TestBulkUpdateStatusJoinsErrors(t *testing.T) {
	e, _ := newEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Load(ctx, models.DashboardFilters{}))

	err := e.BulkUpdateStatus(ctx, []int64{1, 99, 4}, models.StatusArchived, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, fixtures.ErrNotFound)

	require.NoError(t, e.Reload(ctx))
	for _, s := range e.View().Page.Data {
		if s.ID == 1 || s.ID == 4 {
			assert.Equal(t, models.StatusArchived, s.Status)
		}
	}
}

func TestExportUsesCurrentFiltersAcrossPages(t *testing.T) {
	e, src := newEngine(t)
	ctx := context.Background()
	require.NoError(t, e.Load(ctx, models.DashboardFilters{FormType: "contact", Page: 2, Limit: 1}))

	blob, err := e.Export(ctx, models.ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "contact", src.lastExport.FormType)
	assert.Zero(t, src.lastExport.Page)
	assert.Contains(t, string(blob.Data), "ahmed.mohamed@email.com")
	assert.Contains(t, string(blob.Data), "saad.alghamdi@business.com")
	assert.NotContains(t, string(blob.Data), "fatima.ali@company.com")
}

func TestExportCSVNamesFile(t *testing.T) {
	blob, err := engine.ExportCSV(fixtures.Submissions(), time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "form_data_2024-02-01.csv", blob.FileName)
}
