package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weatherforecast/middleware"
	"weatherforecast/models"
)

// maxPayloadBytes bounds how much of an upstream body is read
const maxPayloadBytes = 1 << 20

// ForecastPath is the service route the client consumes
const ForecastPath = "/weatherforecast"

// ServiceSource fetches forecasts from a remote Forecast Service over HTTP
type ServiceSource struct {
	baseURL    *url.URL
	httpClient *http.Client
	retries    int
	retryPause time.Duration
}

// ServiceSourceOption customizes a ServiceSource
type ServiceSourceOption func(*ServiceSource)

// WithRetries sets how many extra attempts are made when the service is unreachable
func WithRetries(n int) ServiceSourceOption {
	return func(s *ServiceSource) {
		if n < 0 {
			n = 0
		}
		s.retries = n
	}
}

// WithRetryPause sets the pause between attempts
func WithRetryPause(d time.Duration) ServiceSourceOption {
	return func(s *ServiceSource) {
		s.retryPause = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) ServiceSourceOption {
	return func(s *ServiceSource) {
		s.httpClient = c
	}
}

// NewServiceSource creates a source for the service at baseURL.
// timeout bounds every attempt, including reading the body.
func NewServiceSource(baseURL string, timeout time.Duration, opts ...ServiceSourceOption) (*ServiceSource, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid service base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid service base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid service base URL %q: missing host", baseURL)
	}

	s := &ServiceSource{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryPause: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the provider name
func (s *ServiceSource) Name() string {
	return "ForecastService"
}

// BaseURL returns the resolved service address
func (s *ServiceSource) BaseURL() string {
	return s.baseURL.String()
}

// FetchForecast requests a forecast from the service.
// Only unreachable-network failures are retried.
func (s *ServiceSource) FetchForecast(ctx context.Context, days int) ([]models.ForecastEntry, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.retryPause):
			case <-ctx.Done():
				return nil, s.transportError(ctx, ctx.Err())
			}
		}

		entries, err := s.fetchOnce(ctx, days)
		if err == nil {
			return entries, nil
		}
		lastErr = err
		// Caller cancellations carry no kind and end the loop here
		if kind, _ := KindOf(err); kind != KindNetworkUnreachable {
			break
		}
	}
	return nil, lastErr
}

func (s *ServiceSource) fetchOnce(ctx context.Context, days int) ([]models.ForecastEntry, error) {
	endpoint := s.baseURL.JoinPath(ForecastPath)
	if days > 0 {
		params := url.Values{}
		params.Add("days", strconv.Itoa(days))
		endpoint.RawQuery = params.Encode()
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.RequestIDHeader, id)
	}

	// Execute request
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, s.transportError(ctx, err)
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, s.transportError(ctx, fmt.Errorf("failed to read response body: %w", err))
	}

	// Check for error status code
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := &FetchError{Kind: KindUpstreamNonSuccess, Source: s.Name(), StatusCode: resp.StatusCode}
		if snippet := strings.TrimSpace(string(body)); snippet != "" {
			if len(snippet) > 200 {
				snippet = snippet[:200]
			}
			fe.Err = fmt.Errorf("%s", snippet)
		}
		return nil, fe
	}

	// Parse response
	var entries []models.ForecastEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &FetchError{Kind: KindMalformedPayload, Source: s.Name(), Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if entries == nil {
		return nil, &FetchError{Kind: KindMalformedPayload, Source: s.Name(), Err: fmt.Errorf("response is not a forecast array")}
	}
	for i, e := range entries {
		if !models.IsKnownSummary(e.Summary) {
			return nil, &FetchError{Kind: KindMalformedPayload, Source: s.Name(), Err: fmt.Errorf("entry %d: unknown summary %q", i, e.Summary)}
		}
	}

	return entries, nil
}

// transportError classifies a failure to reach or read from the service.
// When the caller canceled ctx the error is returned unclassified.
func (s *ServiceSource) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%s: request canceled: %w", s.Name(), err)
	}
	return &FetchError{Kind: classifyTransportError(err), Source: s.Name(), Err: err}
}

var _ ForecastSource = (*ServiceSource)(nil)
