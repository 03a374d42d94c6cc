// Package bookapi is the HTTP client for the external books resource.
package bookapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/listenupapp/bookshelf/internal/domain"
	"github.com/listenupapp/bookshelf/internal/id"
)

const (
	// DefaultBaseURL is where a local json-server style books service listens.
	DefaultBaseURL = "http://localhost:3001"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Bookshelf/1.0"
	maxRedirects     = 2

	// Error bodies are truncated in StatusError.
	maxErrorBody = 512
)

// Options configures a Client. Zero values fall back to defaults, except
// Timeout where a negative value disables the per-request timeout.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RPS       float64 // 0 disables outbound limiting
	Burst     int
	UserAgent string
	Logger    *slog.Logger
}

// Client talks to the books collection at <BaseURL>/books.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates a books service client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	switch {
	case opts.Timeout == 0:
		opts.Timeout = defaultTimeout
	case opts.Timeout < 0:
		opts.Timeout = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Client{
		http: &http.Client{
			Timeout:       opts.Timeout,
			CheckRedirect: redirectPolicy,
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	return c
}

func redirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects to %s", maxRedirects, req.URL)
	}
	return nil
}

// BaseURL returns the service root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	if err := c.doRequest(ctx, http.MethodGet, "/books", nil, &books); err != nil {
		return nil, wrapError("list", 0, err)
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

// Create posts the full record and returns the service's acknowledgement.
func (c *Client) Create(ctx context.Context, book domain.Book) (domain.Book, error) {
	var created domain.Book
	if err := c.doRequest(ctx, http.MethodPost, "/books", book, &created); err != nil {
		return domain.Book{}, wrapError("create", book.ID, err)
	}
	return created, nil
}

// Update replaces the record stored under id with book.
func (c *Client) Update(ctx context.Context, bookID int64, book domain.Book) (domain.Book, error) {
	var updated domain.Book
	if err := c.doRequest(ctx, http.MethodPut, bookPath(bookID), book, &updated); err != nil {
		return domain.Book{}, wrapError("update", bookID, err)
	}
	return updated, nil
}

// Delete removes the record stored under id.
func (c *Client) Delete(ctx context.Context, bookID int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, bookPath(bookID), nil, nil); err != nil {
		return wrapError("delete", bookID, err)
	}
	return nil
}

func bookPath(bookID int64) string {
	return "/books/" + strconv.FormatInt(bookID, 10)
}

// doRequest executes a JSON request with rate limiting. out may be nil; an
// empty success body leaves out untouched.
func (c *Client) doRequest(ctx context.Context, method, path string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := id.RequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("books request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func checkStatus(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return ErrBadRequest
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= 500:
		return ErrServer
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return &StatusError{StatusCode: code, Body: text}
}
