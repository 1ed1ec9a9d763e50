package apiclient

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/thenextevent/eventdesk/internal/models"
)

const (
	// CookieName is read by the dashboard route guard.
	CookieName   = "auth_token"
	cookieMaxAge = 7 * 24 * time.Hour
)

// Session holds the credentials of one API caller. Each Client gets its own
// Session, so separate users never share a token.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.User
	store TokenStore
	jar   http.CookieJar
	site  *url.URL
}

// NewSession restores any snapshot found in store. siteURL scopes the
// auth cookie; it is normally the API base URL.
func NewSession(store TokenStore, siteURL string) (*Session, error) {
	if store == nil {
		store = &MemoryStore{}
	}
	site, err := url.Parse(siteURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	s := &Session{store: store, jar: jar, site: site}
	snap, err := store.Load()
	if err != nil {
		return nil, err
	}
	s.token = snap.Token
	s.user = snap.User
	if s.token != "" {
		s.jar.SetCookies(s.site, []*http.Cookie{s.cookie(s.token)})
	}
	return s, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken keeps token for the rest of the process, persists it, and sets
// the auth cookie.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.jar.SetCookies(s.site, []*http.Cookie{s.cookie(token)})
	return s.store.Save(Snapshot{Token: s.token, User: s.user})
}

// RemoveToken drops the token and the cached user from memory, the store
// and the cookie jar.
func (s *Session) RemoveToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	expired := s.cookie("")
	expired.MaxAge = -1
	s.jar.SetCookies(s.site, []*http.Cookie{expired})
	return s.store.Clear()
}

func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) SetUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u != nil {
		cp := *u
		u = &cp
	}
	s.user = u
	return s.store.Save(Snapshot{Token: s.token, User: s.user})
}

// Cookie returns the auth cookie for the current token, or nil.
func (s *Session) Cookie() *http.Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return nil
	}
	return s.cookie(s.token)
}

// Jar exposes the session cookies to an http.Client.
func (s *Session) Jar() http.CookieJar { return s.jar }

func (s *Session) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cookieMaxAge / time.Second),
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
