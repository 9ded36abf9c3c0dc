package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "heroes"

	availableIncidentsPath = "incidents/available"
	pageParam              = "page"

	// TotalCountHeader carries the number of incidents available across all pages
	TotalCountHeader = "X-Total-Count"

	// Only the start of an error body is kept for the error message
	maxErrorBodyBytes = 512
)

// Incident is a case posted by an organization (ONG) asking for a donation.
// The API joins each incident with the organization that owns it.
type Incident struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Value       float64 `json:"value"`
	OngID       string  `json:"ong_id,omitempty"`
	Name        string  `json:"name"`
	Email       string  `json:"email,omitempty"`
	Whatsapp    string  `json:"whatsapp,omitempty"`
	City        string  `json:"city,omitempty"`
	UF          string  `json:"uf,omitempty"`
}

// Page is a single batch of incidents returned by the API
type Page struct {
	Number    int
	Incidents []Incident

	// TotalCount is only meaningful when HasTotal is true, ie: the response carried the header
	TotalCount int
	HasTotal   bool
}

// IncidentClient defines the calls made to the incidents API and makes it easier to mock
// them in tests
type IncidentClient interface {
	ListAvailableIncidentsWithContext(ctx context.Context, page int) (*Page, error)
}

// Config holds the settings used to build a Client
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// HTTPClient overrides the default client; Timeout is ignored when set
	HTTPClient *http.Client
}

// Client implements IncidentClient over HTTP
type Client struct {
	baseURL    *url.URL
	userAgent  string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api.NewClient(): base URL is required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api.NewClient(): invalid base URL `%v`: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api.NewClient(): base URL `%v` must be http or https", cfg.BaseURL)
	}

	c := &Client{
		baseURL:    u,
		userAgent:  cfg.UserAgent,
		httpClient: cfg.HTTPClient,
	}

	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}

	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}

	return c, nil
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListAvailableIncidentsWithContext fetches one page (1-based) of available incidents
func (c *Client) ListAvailableIncidentsWithContext(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("api.ListAvailableIncidents(): invalid page %d", page)
	}

	u := c.baseURL.JoinPath(availableIncidentsPath)
	q := u.Query()
	q.Set(pageParam, strconv.Itoa(page))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("api.ListAvailableIncidents(): failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues("error").Inc()
		return nil, fail(KindNetwork, page, 0, "request failed", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fail(KindServer, page, resp.StatusCode, msg, nil)
	}

	return decodePage(resp, page)
}

func decodePage(resp *http.Response, page int) (*Page, error) {
	p := &Page{Number: page}

	if err := json.NewDecoder(resp.Body).Decode(&p.Incidents); err != nil {
		return nil, fail(KindMalformed, page, resp.StatusCode, "response body is not a list of incidents", err)
	}

	// A literal `null` body decodes cleanly; treat it as an empty page
	if p.Incidents == nil {
		p.Incidents = []Incident{}
	}

	total, ok, err := parseTotalCount(resp.Header)
	if err != nil {
		return nil, fail(KindMalformed, page, resp.StatusCode, "bad total count header", err)
	}
	p.TotalCount, p.HasTotal = total, ok

	return p, nil
}

// parseTotalCount reads the total count header; a missing header is not an error
func parseTotalCount(h http.Header) (int, bool, error) {
	v := strings.TrimSpace(h.Get(TotalCountHeader))
	if v == "" {
		return 0, false, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s `%v` is not an integer", TotalCountHeader, v)
	}
	if n < 0 {
		return 0, false, fmt.Errorf("%s `%v` is negative", TotalCountHeader, v)
	}

	return n, true, nil
}
