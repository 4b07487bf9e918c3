// Package hypixel implements the SkyBlock stats provider client. This
// package handles all communication with the provider: fetching profile
// documents, refreshing display names, and keeping every caller inside the
// shared request budget.
package hypixel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/elitefarmers/farmhand/internal/domain/profile"
	"github.com/elitefarmers/farmhand/internal/infrastructure/metrics"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the provider client.
type ClientConfig struct {
	// BaseURL is the provider API base URL.
	BaseURL string

	// APIKey authenticates every request.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RateLimiterConfig for the shared request budget.
	RateLimiterConfig RateLimiterConfig

	// CircuitBreakerConfig for fault tolerance.
	CircuitBreakerConfig CircuitBreakerConfig

	// RetryConfig for retry behavior.
	RetryConfig RetryConfig

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables request logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL, apiKey string) ClientConfig {
	return ClientConfig{
		BaseURL:              baseURL,
		APIKey:               apiKey,
		Timeout:              30 * time.Second,
		RateLimiterConfig:    DefaultRateLimiterConfig(),
		CircuitBreakerConfig: DefaultCircuitBreakerConfig(),
		RetryConfig:          DefaultRetryConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrPlayerNotFound - the identity does not exist upstream. Terminal;
	// surfaced to the caller.
	ErrPlayerNotFound = errors.New("hypixel: player not found")
)

// IsTransient reports whether an error is a recoverable provider failure
// (network, 5xx, rate limit, open circuit). Callers fall back to the last
// persisted snapshot on transient errors instead of failing outright.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrPlayerNotFound) {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}
	if errors.Is(err, ErrCircuitOpen) {
		return true
	}

	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		return false // provider rejected the request for a reason
	}

	// Anything else here is a transport-level failure.
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the provider API client. It is the system's single hard
// serialization point: every outbound request passes through the shared
// rate budget.
type Client struct {
	config         ClientConfig
	httpClient     *http.Client
	logger         *slog.Logger
	rateLimiter    *RateLimiter
	circuitBreaker *CircuitBreaker
	mapper         *Mapper
}

// NewClient creates a new provider API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:         config.Logger,
		rateLimiter:    NewRateLimiter(config.RateLimiterConfig),
		circuitBreaker: NewCircuitBreaker(config.CircuitBreakerConfig),
		mapper:         NewMapper(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// FetchSnapshot fetches a player's profiles and maps them into a domain
// snapshot. Returns ErrPlayerNotFound when the identity does not exist
// upstream; any other error is either transient (see IsTransient) or a
// hard provider rejection.
func (c *Client) FetchSnapshot(ctx context.Context, playerUUID string) (*profile.Snapshot, error) {
	path := "/v2/skyblock/profiles?uuid=" + url.QueryEscape(playerUUID)

	var response ProfilesResponseDTO
	if err := c.doRequest(ctx, path, &response); err != nil {
		return nil, fmt.Errorf("fetch profiles for %s: %w", playerUUID, err)
	}

	if !response.Success {
		return nil, &APIErrorDTO{Cause: response.Cause}
	}
	if len(response.Profiles) == 0 {
		return nil, fmt.Errorf("%w: %s has no profiles", ErrPlayerNotFound, playerUUID)
	}

	name, err := c.GetDisplayName(ctx, playerUUID)
	if err != nil {
		// The name is decoration; the snapshot is the point.
		c.logger.Warn("display name refresh failed", "player", playerUUID, "error", err)
		name = ""
	}

	return c.mapper.SnapshotFromDTO(playerUUID, name, response.Profiles, time.Now().UTC()), nil
}

// GetDisplayName fetches the player's current display name.
func (c *Client) GetDisplayName(ctx context.Context, playerUUID string) (string, error) {
	path := "/v2/player?uuid=" + url.QueryEscape(playerUUID)

	var response PlayerResponseDTO
	if err := c.doRequest(ctx, path, &response); err != nil {
		return "", fmt.Errorf("fetch player %s: %w", playerUUID, err)
	}

	if !response.Success || response.Player == nil {
		return "", fmt.Errorf("%w: %s", ErrPlayerNotFound, playerUUID)
	}
	return response.Player.DisplayName, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs a GET with rate limiting, circuit breaking, and retries.
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) error {
	if err := c.circuitBreaker.Allow(); err != nil {
		return fmt.Errorf("circuit breaker: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.RetryConfig.CalculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		// Wait for the shared budget before every attempt.
		if err := c.rateLimiter.Allow(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.doSingleRequest(ctx, path, result)
		if err == nil {
			c.circuitBreaker.RecordSuccess()
			metrics.UpdateCircuitState(int(c.circuitBreaker.State()))
			return nil
		}

		lastErr = err

		if !c.isRetryable(err) {
			c.circuitBreaker.RecordFailure()
			metrics.UpdateCircuitState(int(c.circuitBreaker.State()))
			return err
		}

		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.rateLimiter.RecordRateLimitHit(rateLimitErr.RetryAfter)
			metrics.RecordProviderRateLimited()
		}
	}

	c.circuitBreaker.RecordFailure()
	metrics.UpdateCircuitState(int(c.circuitBreaker.State()))
	return fmt.Errorf("request failed after %d retries: %w", c.config.RetryConfig.MaxRetries, lastErr)
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, path string, result interface{}) error {
	fullURL := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("API-Key", c.config.APIKey)
	}

	if c.config.Debug {
		c.logger.Debug("hypixel api request", "path", path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "provider rate limit exceeded",
		}

	case resp.StatusCode == http.StatusNotFound:
		return ErrPlayerNotFound

	case resp.StatusCode >= 500:
		return fmt.Errorf("provider error: status %d", resp.StatusCode)

	case resp.StatusCode >= 400:
		var apiErr APIErrorDTO
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Cause != "" {
			return &apiErr
		}
		return fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// isRetryable checks if an error is worth another attempt.
func (c *Client) isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPlayerNotFound) {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		return false
	}

	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH AND STATUS
// ══════════════════════════════════════════════════════════════════════════════

// ClientStatus summarizes the client's internal state.
type ClientStatus struct {
	RateLimiter    RateLimiterStatus
	CircuitBreaker CircuitBreakerStatus
}

// Status returns the current status of the client.
func (c *Client) Status() ClientStatus {
	return ClientStatus{
		RateLimiter:    c.rateLimiter.Status(),
		CircuitBreaker: c.circuitBreaker.Status(),
	}
}

// Reset resets the rate limiter and circuit breaker.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.circuitBreaker.Reset()
}
