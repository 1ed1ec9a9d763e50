package app

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenextevent/eventdesk/internal/apiclient"
	"github.com/thenextevent/eventdesk/internal/config"
	"github.com/thenextevent/eventdesk/internal/models"
	"github.com/thenextevent/eventdesk/internal/service"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "password123"
)

func newServer(t *testing.T, submitLimit int) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	cfg.Auth.AdminEmail = adminEmail
	cfg.Auth.AdminPassword = adminPassword
	cfg.RateLimit.SubmitLimit = submitLimit
	cfg.Media.Dir = t.TempDir()

	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler)
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return srv
}

func newClient(t *testing.T, srv *httptest.Server) (*apiclient.Client, *service.Services) {
	t.Helper()
	session, err := apiclient.NewSession(nil, srv.URL)
	require.NoError(t, err)
	c := apiclient.New(srv.URL+"/api", session)
	return c, service.New(c, service.DashboardOptions{})
}

func login(t *testing.T, svc *service.Services, email, password string) {
	t.Helper()
	_, err := svc.Auth.Login(context.Background(), models.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
}

func contactPayload() *models.ContactPayload {
	return &models.ContactPayload{
		Submitter: models.Submitter{Name: "Sara Ali", Email: "sara@example.com", Phone: "+966501234567"},
		Message:   "We would like to plan a product launch in Riyadh.",
	}
}

func TestSubmitThenReadBack(t *testing.T) {
	srv := newServer(t, 10)
	_, svc := newClient(t, srv)
	ctx := context.Background()

	sub, err := svc.Forms.Submit(ctx, contactPayload())
	require.NoError(t, err)
	require.NotZero(t, sub.ID)
	assert.Equal(t, models.StatusNew, sub.Status)
	assert.False(t, sub.IsRead)

	_, err = svc.Forms.Get(ctx, sub.ID)
	assert.True(t, apiclient.IsUnauthorized(err))

	login(t, svc, adminEmail, adminPassword)
	require.True(t, svc.Auth.IsAuthenticated())

	got, err := svc.Forms.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", got.SubmitterEmail)
	assert.Equal(t, "Sara Ali", got.SubmitterName)
	assert.Equal(t, contactPayload().Message, got.Message)

	require.NoError(t, svc.Dashboard.UpdateStatus(ctx, sub.ID, models.StatusInProgress, "called back"))
	require.NoError(t, svc.Dashboard.MarkAsRead(ctx, sub.ID))
	got, err = svc.Dashboard.Submission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.True(t, got.IsRead)
	assert.Contains(t, got.AdminNotes, "called back")

	stats, degraded := svc.Dashboard.Stats(ctx).Or(service.DefaultStats)
	assert.False(t, degraded)
	assert.EqualValues(t, 1, stats.TotalSubmissions)
	assert.EqualValues(t, 1, stats.PendingReviews)
}

func TestServerRejectsInvalidSubmission(t *testing.T) {
	srv := newServer(t, 10)
	c, _ := newClient(t, srv)

	// Raw post so the client-side validation is skipped.
	err := c.Post(context.Background(), "/forms/submit", map[string]any{
		"formType":       "contact",
		"submitterName":  "",
		"submitterEmail": "not-an-email",
		"message":        "hi",
	}, nil)
	require.Error(t, err)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.FieldErrors("submitterName"))
	assert.NotEmpty(t, apiErr.FieldErrors("submitterEmail"))

	err = c.Post(context.Background(), "/forms/submit", map[string]any{"formType": "survey"}, nil)
	assert.Equal(t, http.StatusBadRequest, apiclient.StatusCode(err))
}

func TestSubmitRateLimited(t *testing.T) {
	srv := newServer(t, 2)
	_, svc := newClient(t, srv)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Forms.Submit(ctx, contactPayload())
		require.NoError(t, err)
	}
	_, err := svc.Forms.Submit(ctx, contactPayload())
	assert.Equal(t, http.StatusTooManyRequests, apiclient.StatusCode(err))
}

func TestStaffCannotRegisterUsers(t *testing.T) {
	srv := newServer(t, 10)
	_, admin := newClient(t, srv)
	ctx := context.Background()
	login(t, admin, adminEmail, adminPassword)

	staff, err := admin.Auth.Register(ctx, models.RegisterRequest{
		Email: "staff@example.com", Password: "password123", FirstName: "Omar",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, staff.Role)

	_, other := newClient(t, srv)
	login(t, other, "staff@example.com", "password123")
	_, err = other.Auth.Register(ctx, models.RegisterRequest{
		Email: "third@example.com", Password: "password123", FirstName: "Lina",
	})
	assert.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))

	me, err := other.Auth.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "staff@example.com", me.Email)

	require.NoError(t, other.Auth.Logout(ctx))
	assert.False(t, other.Auth.IsAuthenticated())
	_, err = other.Auth.CurrentUser(ctx)
	assert.True(t, apiclient.IsUnauthorized(err))
}

func TestMediaUploadAndPublicListing(t *testing.T) {
	srv := newServer(t, 10)
	_, svc := newClient(t, srv)
	ctx := context.Background()
	login(t, svc, adminEmail, adminPassword)

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	data := buf.Bytes()

	file, err := svc.Media.Upload(ctx, service.UploadFile{
		Name: "hero.png", ContentType: "image/png", Size: int64(len(data)), Body: bytes.NewReader(data),
	}, "gallery", "Hero banner")
	require.NoError(t, err)
	assert.Equal(t, 4, file.Width)
	assert.Equal(t, 3, file.Height)
	assert.Equal(t, "gallery", file.Category)
	assert.False(t, file.IsPublic)

	public, err := svc.Media.Public(ctx, "gallery")
	require.NoError(t, err)
	assert.Empty(t, public)

	require.NoError(t, svc.Media.SetPublic(ctx, file.ID, true))
	public, err = svc.Media.Public(ctx, "gallery")
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, file.ID, public[0].ID)

	resp, err := http.Get(srv.URL + file.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	served, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, data, served)
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newServer(t, 10)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))
}
