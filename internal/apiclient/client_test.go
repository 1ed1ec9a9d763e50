package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenextevent/eventdesk/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *Session) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	session, err := NewSession(&MemoryStore{}, srv.URL)
	require.NoError(t, err)
	return New(srv.URL+"/api", session), session
}

func TestBearerHeaderOnlyWithToken(t *testing.T) {
	var seen []string
	c, session := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	require.NoError(t, c.Get(ctx, "/auth/me", nil, nil))
	require.NoError(t, session.SetToken("tok-1"))
	require.NoError(t, c.Get(ctx, "/auth/me", nil, nil))
	require.NoError(t, session.RemoveToken())
	require.NoError(t, c.Get(ctx, "/auth/me", nil, nil))

	assert.Equal(t, []string{"", "Bearer tok-1", ""}, seen)
}

func TestGetEncodesQueryStruct(t *testing.T) {
	var got string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[],"total":0,"page":2,"limit":20,"totalPages":0}`))
	})
	var page models.Page[models.Submission]
	err := c.Get(context.Background(), "/admin/submissions", models.DashboardFilters{Status: "new", Page: 2, Limit: 20}, &page)
	require.NoError(t, err)
	assert.Equal(t, "limit=20&page=2&status=new", got)
	assert.Equal(t, 2, page.Page)
}

func TestJSONBodyAndDecode(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/forms/submit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "message": body["message"]})
	})
	var out models.Submission
	require.NoError(t, c.Post(context.Background(), "/forms/submit", map[string]string{"message": "hello"}, &out))
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "hello", out.Message)
}

func TestTextResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("pong"))
	})
	var s string
	require.NoError(t, c.Get(context.Background(), "/ping", nil, &s))
	assert.Equal(t, "pong", s)

	var m map[string]any
	var decErr *DecodeError
	assert.ErrorAs(t, c.Get(context.Background(), "/ping", nil, &m), &decErr)
}

func TestAPIErrorWithFieldErrors(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"validation failed","errors":{"submitterEmail":["email is required","email address is not valid"]}}`))
	})
	err := c.Post(context.Background(), "/forms/submit", map[string]string{}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "validation failed", apiErr.Message)
	assert.Equal(t, []string{"email is required", "email address is not valid"}, apiErr.FieldErrors("submitterEmail"))
}

func TestAPIErrorDefaultMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	err := c.Delete(context.Background(), "/forms/1", nil)
	assert.EqualError(t, err, "HTTP Error: 502")
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
}

func TestMalformedJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":`))
	})
	var out models.Submission
	var decErr *DecodeError
	assert.ErrorAs(t, c.Get(context.Background(), "/forms/1", nil, &out), &decErr)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	session, err := NewSession(nil, url)
	require.NoError(t, err)
	c := New(url, session)

	err = c.Get(context.Background(), "/auth/me", nil, nil)
	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "/auth/me", tErr.Path)
}

func TestDefaultTimeoutApplies(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c.timeout = 50 * time.Millisecond

	err := c.Get(context.Background(), "/slow", nil, nil)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestUploadUsesMultipartContentType(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "logo.png", fh.Filename)
		assert.Equal(t, "PNGDATA", string(data))
		assert.Equal(t, "branding", r.FormValue("category"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":3,"fileName":"logo.png"}`))
	})
	form := NewMultipart().File("file", "logo.png", "image/png", strings.NewReader("PNGDATA")).Field("category", "branding")
	var out models.MediaFile
	require.NoError(t, c.Upload(context.Background(), "/media/upload", form, &out))
	assert.Equal(t, int64(3), out.ID)
}

func TestDownloadReadsFileName(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "excel", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="submissions_2025-01-02.xlsx"`)
		_, _ = w.Write([]byte{1, 2, 3})
	})
	blob, err := c.Download(context.Background(), "/admin/submissions/export", map[string]string{"format": "excel"})
	require.NoError(t, err)
	assert.Equal(t, "submissions_2025-01-02.xlsx", blob.FileName)
	assert.Equal(t, []byte{1, 2, 3}, blob.Data)
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(&APIError{StatusCode: 401}))
	assert.False(t, IsUnauthorized(errors.New("x")))
}
