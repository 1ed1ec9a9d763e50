// Package apiclient is the only component that talks to the backing REST
// API. It attaches the session token, parses responses by content type and
// turns failures into typed errors. It never retries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/thenextevent/eventdesk/internal/models"
)

// DefaultTimeout bounds a request whose context carries no deadline.
const DefaultTimeout = 30 * time.Second

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	session *Session
	http    Doer
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(d Doer) Option { return func(c *Client) { c.http = d } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// New builds a client rooted at baseURL (for example
// https://api.example.com/api). The session is required.
func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Jar: session.Jar()}
	}
	return c
}

func (c *Client) Session() *Session { return c.session }

func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET. q may be nil, url.Values, or a struct with `url` tags.
func (c *Client) Get(ctx context.Context, path string, q any, out any) error {
	target, err := c.url(path, q)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodGet, path, target, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.send(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodDelete, path, nil, out)
}

// Upload posts a multipart body. The content type comes from the form and
// carries the boundary; no JSON header is set.
func (c *Client) Upload(ctx context.Context, path string, form *Multipart, out any) error {
	body, contentType, err := form.Encode()
	if err != nil {
		return err
	}
	target, err := c.url(path, nil)
	if err != nil {
		return err
	}
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.do(req, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.handle(resp, path, out)
}

// Download fetches a binary body such as an export file.
func (c *Client) Download(ctx context.Context, path string, q any) (*models.Blob, error) {
	target, err := c.url(path, q)
	if err != nil {
		return nil, err
	}
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: path, Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, apiError(resp, data)
	}
	blob := &models.Blob{Data: data, ContentType: resp.Header.Get("Content-Type")}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		blob.FileName = params["filename"]
	}
	return blob, nil
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	target, err := c.url(path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, method, path, target, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.handle(resp, path, out)
}

func (c *Client) do(req *http.Request, path string) (*http.Response, error) {
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(req.Context(), "api request failed", "method", req.Method, "path", path, "error", err)
		return nil, &TransportError{Method: req.Method, Path: path, Err: err}
	}
	c.logger.DebugContext(req.Context(), "api request", "method", req.Method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// handle decodes JSON into out, hands other bodies back as text, and turns
// non-2xx responses into an APIError.
func (c *Client) handle(resp *http.Response, path string, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Path: path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	contentType := resp.Header.Get("Content-Type")
	if isJSON(contentType) {
		if err := json.Unmarshal(data, out); err != nil {
			return &DecodeError{StatusCode: resp.StatusCode, ContentType: contentType, Err: err}
		}
		return nil
	}
	switch v := out.(type) {
	case *string:
		*v = string(data)
	case *[]byte:
		*v = data
	default:
		return &DecodeError{StatusCode: resp.StatusCode, ContentType: contentType,
			Err: fmt.Errorf("cannot decode text body into %T", out)}
	}
	return nil
}

func apiError(resp *http.Response, data []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if isJSON(resp.Header.Get("Content-Type")) {
		_ = json.Unmarshal(data, apiErr)
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP Error: %d", resp.StatusCode)
	}
	return apiErr
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func (c *Client) url(path string, q any) (string, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	values, err := encodeQuery(q)
	if err != nil {
		return "", err
	}
	if enc := values.Encode(); enc != "" {
		target += "?" + enc
	}
	return target, nil
}

func encodeQuery(q any) (url.Values, error) {
	switch v := q.(type) {
	case nil:
		return url.Values{}, nil
	case url.Values:
		return v, nil
	case map[string]string:
		out := url.Values{}
		for k, val := range v {
			if val != "" {
				out.Set(k, val)
			}
		}
		return out, nil
	}
	values, err := query.Values(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return values, nil
}

func (c *Client) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// IsTimeout reports whether err came from a request that ran out of time.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
