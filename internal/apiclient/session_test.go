package apiclient

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenextevent/eventdesk/internal/models"
)

func TestSessionPersistsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventdesk", "session.json")
	s, err := NewSession(NewFileStore(path), "https://api.example.com")
	require.NoError(t, err)

	require.NoError(t, s.SetToken("abc"))
	require.NoError(t, s.SetUser(&models.User{ID: 1, Email: "admin@example.com"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	restored, err := NewSession(NewFileStore(path), "https://api.example.com")
	require.NoError(t, err)
	assert.Equal(t, "abc", restored.Token())
	require.NotNil(t, restored.User())
	assert.Equal(t, "admin@example.com", restored.User().Email)
}

func TestSessionCookieAttributes(t *testing.T) {
	s, err := NewSession(nil, "https://api.example.com")
	require.NoError(t, err)
	assert.Nil(t, s.Cookie())

	require.NoError(t, s.SetToken("abc"))
	c := s.Cookie()
	require.NotNil(t, c)
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)

	u, _ := url.Parse("https://api.example.com/dashboard")
	cookies := s.Jar().Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "abc", cookies[0].Value)
}

func TestRemoveTokenClearsEverything(t *testing.T) {
	store := &MemoryStore{}
	s, err := NewSession(store, "https://api.example.com")
	require.NoError(t, err)
	require.NoError(t, s.SetToken("abc"))
	require.NoError(t, s.SetUser(&models.User{ID: 1}))

	require.NoError(t, s.RemoveToken())

	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.Nil(t, s.Cookie())
	snap, _ := store.Load()
	assert.Equal(t, Snapshot{}, snap)
	u, _ := url.Parse("https://api.example.com/")
	assert.Empty(t, s.Jar().Cookies(u))
}

func TestSessionsAreIsolated(t *testing.T) {
	a, err := NewSession(nil, "https://api.example.com")
	require.NoError(t, err)
	b, err := NewSession(nil, "https://api.example.com")
	require.NoError(t, err)

	require.NoError(t, a.SetToken("a-token"))
	assert.Empty(t, b.Token())
}

func TestFileStoreMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "none.json"))
	snap, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, snap.Token)
	assert.NoError(t, store.Clear())
}
