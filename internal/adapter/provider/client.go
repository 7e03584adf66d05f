package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/polkiloo/topupshop/internal/config"
	domainErrors "github.com/polkiloo/topupshop/internal/domain/errors"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

// httpClient is the transport shared by every adapter.
type httpClient struct {
	baseURL    *url.URL
	apiKey     string
	authHeader string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func newHTTPClient(cfg config.ProviderConfig, authHeader string, logger *slog.Logger) (*httpClient, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("provider url must be absolute")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &httpClient{
		baseURL:    parsed,
		apiKey:     cfg.APIKey,
		authHeader: authHeader,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    newLimiter(cfg.RateLimit),
		logger:     logger,
	}, nil
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// do sends one JSON request. Segments are escaped one by one and appended to
// the base URL path.
func (c *httpClient) do(ctx context.Context, method string, payload any, segments ...string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrProviderUnavailable, err)
	}

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	endpoint := c.baseURL.JoinPath(escaped...)

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode provider request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(c.authHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domainErrors.ErrProviderUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("provider request rejected",
			slog.String("path", endpoint.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return nil, &domainErrors.ProviderRejectedError{StatusCode: resp.StatusCode, Body: asJSON(raw)}
	}
	return asJSON(raw), nil
}

// asJSON keeps valid JSON as is and quotes anything else so it can be
// embedded into a response body.
func asJSON(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return quoted
}

// submitWithRetry repeats a submission once when the provider was not reached.
func submitWithRetry(ctx context.Context, logger *slog.Logger, submit func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	raw, err := submit(ctx)
	if err == nil || !errors.Is(err, domainErrors.ErrProviderUnavailable) || ctx.Err() != nil {
		return raw, err
	}
	logger.Warn("provider unreachable, retrying submission", slog.String("error", err.Error()))
	return submit(ctx)
}

func missingID(raw json.RawMessage) error {
	return &domainErrors.ProviderRejectedError{StatusCode: http.StatusBadGateway, Body: raw}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// flexibleID decodes identifiers that providers send as strings or numbers.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode identifier: %w", err)
	}
	*id = flexibleID(n.String())
	return nil
}
