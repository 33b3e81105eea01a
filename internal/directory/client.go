package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erdilatifi/User-Management-App/internal/record"
)

// DefaultBaseURL is the public directory the listing was built against.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 4 << 20

// Fetch outcomes reported to the Observer.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Observer is told the outcome of every listing fetch.
type Observer interface {
	ObserveFetch(outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string) {}

// Address is the postal address a detail lookup returns.
type Address struct {
	Street  string `json:"street" yaml:"street"`
	Suite   string `json:"suite" yaml:"suite"`
	City    string `json:"city" yaml:"city"`
	Zipcode string `json:"zipcode" yaml:"zipcode"`
}

// Detail is a directory user with the contact fields the listing drops.
type Detail struct {
	Record  record.Record `json:"record" yaml:"record"`
	Phone   string        `json:"phone" yaml:"phone"`
	Website string        `json:"website" yaml:"website"`
	Address Address       `json:"address" yaml:"address"`
}

// Client talks to the remote user directory. Requests are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout takes precedence
// over the one passed to NewClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the directory at baseURL. A non-positive
// timeout means no client-side timeout beyond the caller's context.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: max(timeout, 0)},
		observer:   nopObserver{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the directory root with no trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchUsers retrieves the whole directory as Remote records. Any failure is
// a *FetchError and no records are returned.
func (c *Client) FetchUsers(ctx context.Context) ([]record.Record, error) {
	url := c.baseURL + "/users"
	c.logger.Debug("fetching directory", "url", url)

	records, err := c.fetchUsers(ctx, url)
	if err != nil {
		c.observer.ObserveFetch(OutcomeError)
		c.logger.Warn("directory fetch failed", "url", url, "error", err)
		return nil, err
	}

	c.observer.ObserveFetch(OutcomeOK)
	c.logger.Info("directory fetched", "url", url, "records", len(records))
	return records, nil
}

func (c *Client) fetchUsers(ctx context.Context, url string) ([]record.Record, error) {
	body, status, err := c.get(ctx, url)
	if err != nil {
		return nil, &FetchError{Op: "list", URL: url, Status: status, Err: err}
	}
	records, err := DecodeUsers(body)
	if err != nil {
		return nil, &FetchError{Op: "list", URL: url, Status: status, Err: err}
	}
	return records, nil
}

// FetchUser retrieves one directory user with contact details. A 404 yields
// a *FetchError wrapping ErrNotFound.
func (c *Client) FetchUser(ctx context.Context, id int64) (Detail, error) {
	url := fmt.Sprintf("%s/users/%d", c.baseURL, id)

	body, status, err := c.get(ctx, url)
	if err != nil {
		return Detail{}, &FetchError{Op: "detail", URL: url, Status: status, Err: err}
	}
	d, err := DecodeDetail(body)
	if err != nil {
		return Detail{}, &FetchError{Op: "detail", URL: url, Status: status, Err: err}
	}
	if d.Record.ID != id {
		return Detail{}, &FetchError{Op: "detail", URL: url, Status: status,
			Err: fmt.Errorf("response is for id %d", d.Record.ID)}
	}
	return d, nil
}

// get performs a GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, resp.StatusCode, errors.New(http.StatusText(resp.StatusCode))
	}
	return body, resp.StatusCode, nil
}
