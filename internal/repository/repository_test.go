package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenextevent/eventdesk/internal/db"
	"github.com/thenextevent/eventdesk/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := db.Open(ctx, db.SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(ctx, conn, db.SQLite))
	return conn
}

var base = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func newSubmission(ft models.FormType, status models.Status, at time.Time) *models.Submission {
	return &models.Submission{
		FormType:       ft,
		SubmitterName:  "أحمد محمد",
		SubmitterEmail: "ahmed@example.com",
		SubmitterPhone: "+966501234567",
		Message:        "hello",
		Status:         status,
		Priority:       models.PriorityMedium,
		SubmittedAt:    at,
		LastUpdated:    at,
	}
}

func TestSubmissionRepo_CreateAndFind(t *testing.T) {
	repo := NewSubmissionRepo(openTestDB(t))
	ctx := context.Background()

	sub := newSubmission(models.FormEventPlanning, models.StatusNew, base)
	sub.Tags = []string{"مؤتمر"}
	sub.AdditionalData = map[string]any{"budget": "50k-100k", "guestCount": float64(200)}
	id, err := repo.Create(ctx, sub)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.FormEventPlanning, got.FormType)
	assert.Equal(t, "أحمد محمد", got.SubmitterName)
	assert.Equal(t, []string{"مؤتمر"}, got.Tags)
	assert.Equal(t, "50k-100k", got.AdditionalData["budget"])
	assert.True(t, got.SubmittedAt.Equal(base))
	assert.Nil(t, got.UpdatedAt)
	assert.False(t, got.IsRead)

	_, err = repo.FindByID(ctx, id+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmissionRepo_ListCategoricalFilters(t *testing.T) {
	repo := NewSubmissionRepo(openTestDB(t))
	ctx := context.Background()
	for i, ft := range []models.FormType{models.FormContact, models.FormContact, models.FormFeedback} {
		_, err := repo.Create(ctx, newSubmission(ft, models.StatusNew, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, models.DashboardFilters{FormType: models.FilterAll})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.FormFeedback, all[0].FormType, "newest first")

	contacts, err := repo.List(ctx, models.DashboardFilters{FormType: string(models.FormContact), Status: "new"})
	require.NoError(t, err)
	assert.Len(t, contacts, 2)

	none, err := repo.List(ctx, models.DashboardFilters{Status: string(models.StatusArchived)})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestSubmissionRepo_Mutations(t *testing.T) {
	repo := NewSubmissionRepo(openTestDB(t))
	ctx := context.Background()
	id, err := repo.Create(ctx, newSubmission(models.FormContact, models.StatusNew, base))
	require.NoError(t, err)
	later := base.Add(time.Hour)

	require.NoError(t, repo.UpdateStatus(ctx, id, models.StatusCompleted, "", later))
	require.NoError(t, repo.UpdateStatus(ctx, id, models.StatusNew, "reopened", later))
	require.NoError(t, repo.SetRead(ctx, id, true, later))
	require.NoError(t, repo.SetRead(ctx, id, true, later))
	require.NoError(t, repo.Assign(ctx, id, "سارة أحمد", later))
	require.NoError(t, repo.AppendNote(ctx, id, "called back", later))

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.Status)
	assert.True(t, got.IsRead)
	assert.Equal(t, "سارة أحمد", got.AssignedTo)
	assert.Equal(t, "reopened\ncalled back", got.AdminNotes)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.LastUpdated.Equal(later))

	assert.ErrorIs(t, repo.UpdateStatus(ctx, id+1, models.StatusNew, "", later), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), ErrNotFound)
}

func TestSubmissionRepo_BulkIsAllOrNothing(t *testing.T) {
	repo := NewSubmissionRepo(openTestDB(t))
	ctx := context.Background()
	a, err := repo.Create(ctx, newSubmission(models.FormContact, models.StatusNew, base))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newSubmission(models.FormContact, models.StatusNew, base))
	require.NoError(t, err)

	err = repo.UpdateStatusMany(ctx, []int64{a, b + 50}, models.StatusArchived, "", base)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := repo.FindByID(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.Status)

	require.NoError(t, repo.UpdateStatusMany(ctx, []int64{a, b}, models.StatusArchived, "", base))
	require.NoError(t, repo.DeleteMany(ctx, []int64{a, b}))
	left, err := repo.List(ctx, models.DashboardFilters{})
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestSubmissionRepo_Aggregates(t *testing.T) {
	repo := NewSubmissionRepo(openTestDB(t))
	ctx := context.Background()
	fixtures := []struct {
		ft     models.FormType
		status models.Status
		at     time.Time
		budget string
	}{
		{models.FormEventPlanning, models.StatusCompleted, base, "50k-100k"},
		{models.FormEventPlanning, models.StatusCompleted, base.AddDate(0, -1, 0), "less-than-50k"},
		{models.FormEventPlanning, models.StatusNew, base, "more-than-500k"},
		{models.FormContact, models.StatusNew, base.AddDate(0, 0, -2), ""},
	}
	for _, f := range fixtures {
		s := newSubmission(f.ft, f.status, f.at)
		if f.budget != "" {
			s.AdditionalData = map[string]any{"budget": f.budget}
		}
		_, err := repo.Create(ctx, s)
		require.NoError(t, err)
	}

	byStatus, err := repo.CountBy(ctx, "status", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"completed": 2, "new": 2}, byStatus)

	byType, err := repo.CountBy(ctx, "form_type", models.FormEventPlanning)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"event-planning": 3}, byType)

	_, err = repo.CountBy(ctx, "submitter_email", "")
	assert.ErrorIs(t, err, ErrInvalid)

	n, err := repo.CountBetween(ctx, "", base.AddDate(0, 0, -7), time.Time{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	data, err := repo.AdditionalData(ctx, models.FormEventPlanning, models.StatusCompleted)
	require.NoError(t, err)
	assert.Len(t, data, 2)

	times, err := repo.SubmittedSince(ctx, base.AddDate(0, 0, -3))
	require.NoError(t, err)
	require.Len(t, times, 3)
	assert.True(t, times[0].Before(times[2]))
}

func TestUserRepo(t *testing.T) {
	repo := NewUserRepo(openTestDB(t))
	ctx := context.Background()
	u := &models.User{Email: "Admin@Example.com", PasswordHash: "hash", FirstName: "Sara", Role: models.RoleAdmin, IsActive: true, CreatedAt: base}
	id, err := repo.Create(ctx, u)
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Email: "admin@example.com", PasswordHash: "x", CreatedAt: base})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := repo.FindByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "admin@example.com", got.Email)
	assert.Nil(t, got.LastLoginAt)

	require.NoError(t, repo.TouchLogin(ctx, id, base.Add(time.Hour)))
	inactive := false
	last := "Ali"
	require.NoError(t, repo.Update(ctx, id, models.UserUpdate{LastName: &last, IsActive: &inactive}))
	got, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Sara Ali", got.FullName())
	assert.False(t, got.IsActive)
	require.NotNil(t, got.LastLoginAt)

	active, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, active)

	assert.ErrorIs(t, repo.Update(ctx, id+1, models.UserUpdate{}), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, id))
	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestContentRepo(t *testing.T) {
	repo := NewContentRepo(openTestDB(t))
	ctx := context.Background()
	hero, err := repo.Create(ctx, models.ContentInput{ContentKey: "hero.title", SectionKey: "hero", ContentValue: "مرحبا", Language: "ar", SortOrder: 2, IsActive: true}, base)
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.ContentInput{ContentKey: "hero.sub", SectionKey: "hero", ContentValue: "sub", Language: "ar", SortOrder: 1, IsActive: true}, base)
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.ContentInput{ContentKey: "hero.title", SectionKey: "hero", ContentValue: "dup", Language: "ar"}, base)
	assert.ErrorIs(t, err, ErrConflict)

	section, err := repo.Active(ctx, "section_key", "hero")
	require.NoError(t, err)
	require.Len(t, section, 2)
	assert.Equal(t, "hero.sub", section[0].ContentKey)

	byKey, err := repo.FindByKey(ctx, "hero.title", "")
	require.NoError(t, err)
	assert.Equal(t, "مرحبا", byKey.ContentValue)

	toggled, err := repo.ToggleActive(ctx, hero.ID, base)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
	_, err = repo.FindByKey(ctx, "hero.title", "ar")
	assert.ErrorIs(t, err, ErrNotFound)

	upserted, err := repo.Upsert(ctx, []models.ContentInput{
		{ContentKey: "hero.title", SectionKey: "hero", ContentValue: "أهلا", Language: "ar", IsActive: true},
		{ContentKey: "hero.title", SectionKey: "hero", ContentValue: "Welcome", Language: "en", IsActive: true},
	}, base)
	require.NoError(t, err)
	require.Len(t, upserted, 2)
	assert.Equal(t, hero.ID, upserted[0].ID)

	active := true
	page, err := repo.List(ctx, models.ContentListParams{Language: "ar", IsActive: &active, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)

	_, err = repo.Active(ctx, "content_value", "x")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMediaRepo(t *testing.T) {
	repo := NewMediaRepo(openTestDB(t))
	ctx := context.Background()
	for i, name := range []string{"stage.jpg", "brochure.pdf"} {
		ft := "image/jpeg"
		if i == 1 {
			ft = "application/pdf"
		}
		_, err := repo.Create(ctx, &models.MediaFile{
			FileName: name, OriginalName: name, FileType: ft, FileSize: 1000, URL: "/uploads/" + name,
			BlobKey: name, Category: "events", IsPublic: i == 0, UploadedAt: base,
		})
		require.NoError(t, err)
	}

	public, err := repo.Public(ctx, "")
	require.NoError(t, err)
	require.Len(t, public, 1)

	images, err := repo.List(ctx, models.MediaListParams{FileType: "image"})
	require.NoError(t, err)
	assert.Equal(t, 1, images.TotalCount)

	found, err := repo.List(ctx, models.MediaListParams{Search: "BROCH"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)

	alt := "brochure cover"
	pub := true
	require.NoError(t, repo.Update(ctx, found.Items[0].ID, models.MediaUpdate{AltText: &alt, IsPublic: &pub}, base))
	public, err = repo.Public(ctx, "events")
	require.NoError(t, err)
	assert.Len(t, public, 2)

	stats, err := repo.Statistics(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalFiles)
	assert.EqualValues(t, 2000, stats.TotalSize)
	assert.EqualValues(t, 2, stats.ByCategory["events"])
	assert.EqualValues(t, 1, stats.ByType["application/pdf"])
}

func TestMediaRepoHugePage(t *testing.T) {
	repo := NewMediaRepo(openTestDB(t))
	ctx := context.Background()
	_, err := repo.Create(ctx, &models.MediaFile{
		FileName: "a.jpg", OriginalName: "a.jpg", FileType: "image/jpeg", FileSize: 10, URL: "/uploads/a.jpg",
		BlobKey: "a.jpg", Category: "events", UploadedAt: base,
	})
	require.NoError(t, err)

	page, err := repo.List(ctx, models.MediaListParams{Page: math.MaxInt / 2, PageSize: 50})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)

	page, err = repo.List(ctx, models.MediaListParams{Page: 1, PageSize: math.MaxInt})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.TotalPages)
}

func TestSEORepo(t *testing.T) {
	repo := NewSEORepo(openTestDB(t))
	ctx := context.Background()
	cfg := models.SEOConfiguration{
		PageName: "home", Language: "ar", MetaTitle: "الرئيسية", MetaDescription: "desc", IsActive: true,
		AdditionalMetaTags: []models.MetaTag{{Name: "robots", Content: "index"}},
		StructuredData:     map[string]any{"@type": "Organization"},
	}
	id, err := repo.Create(ctx, cfg, base)
	require.NoError(t, err)
	_, err = repo.Create(ctx, cfg, base)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := repo.FindByPage(ctx, "home", "ar")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Organization", got.StructuredData["@type"])
	assert.Len(t, got.AdditionalMetaTags, 1)

	require.NoError(t, repo.SetActive(ctx, id, false, base))
	_, err = repo.FindByPage(ctx, "home", "ar")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.List(ctx, models.SEOListParams{Search: "HOM"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.TotalCount)
}

func TestEmailRepo_LogsAndStatistics(t *testing.T) {
	repo := NewEmailRepo(openTestDB(t))
	ctx := context.Background()
	tplID, err := repo.CreateTemplate(ctx, models.EmailTemplate{Name: "reply", Subject: "Re", HTMLContent: "<p>{{ name }}</p>", Language: "ar", IsActive: true}, base)
	require.NoError(t, err)
	tpl, err := repo.TemplateByName(ctx, "reply", "ar")
	require.NoError(t, err)
	assert.Equal(t, tplID, tpl.ID)

	for i, msg := range []string{"m1", "m2", "m3", "m4"} {
		_, err := repo.CreateLog(ctx, &models.EmailLog{
			Recipient: "a@example.com", Subject: "s", Status: models.EmailSent, MessageID: msg,
			SentAt: base.AddDate(0, 0, i%2), TemplateID: &tplID,
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.SetStatus(ctx, "m1", models.EmailDelivered, "", base))
	require.NoError(t, repo.SetStatus(ctx, "m2", models.EmailBounced, "Permanent/General", base))
	require.NoError(t, repo.SetStatus(ctx, "m3", models.EmailFailed, "timeout", base))
	assert.ErrorIs(t, repo.SetStatus(ctx, "missing", models.EmailFailed, "", base), ErrNotFound)

	stats, err := repo.Statistics(ctx, base.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalSent)
	assert.EqualValues(t, 1, stats.TotalDelivered)
	assert.EqualValues(t, 1, stats.TotalBounced)
	assert.EqualValues(t, 1, stats.TotalFailed)
	assert.InDelta(t, 25.0, stats.DeliveryRate, 0.001)
	require.Len(t, stats.ChartData, 2)
	assert.Equal(t, "2024-01-15", stats.ChartData[0].Date)

	logs, err := repo.Logs(ctx, models.EmailLogParams{Status: "bounced"})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, "Permanent/General", logs.Items[0].ErrorMessage)
	require.NotNil(t, logs.Items[0].TemplateID)

	sameDay, err := repo.Logs(ctx, models.EmailLogParams{DateFrom: "2024-01-16", DateTo: "2024-01-16"})
	require.NoError(t, err)
	assert.Equal(t, 2, sameDay.TotalCount)
}

func TestSubmissionRepo_DriverErrors(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewSubmissionRepo(conn)
	ctx := context.Background()

	mock.ExpectQuery(`(?s)SELECT .* FROM submissions WHERE id`).WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`(?s)SELECT .* FROM submissions`).WillReturnError(boom)
	_, err = repo.List(ctx, models.DashboardFilters{})
	assert.ErrorIs(t, err, boom)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM submissions").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM submissions").WithArgs(int64(2)).WillReturnError(boom)
	mock.ExpectRollback()
	err = repo.DeleteMany(ctx, []int64{1, 2})
	assert.ErrorIs(t, err, boom)

	mock.ExpectExec("UPDATE submissions SET is_read").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetRead(ctx, 9, true, base), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
