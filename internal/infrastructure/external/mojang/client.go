// Package mojang implements the identity lookup client that resolves
// display names to player UUIDs. It is independent of the stats provider
// and sits outside its request budget; results are cached separately.
package mojang

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNameNotFound - no player carries this name.
	ErrNameNotFound = errors.New("mojang: name not found")
)

// Client resolves player names to UUIDs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new identity lookup client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// profileDTO is the identity service response.
type profileDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResolveName resolves a display name to a dashed UUID and the properly
// capitalized name.
func (c *Client) ResolveName(ctx context.Context, name string) (uuid, properName string, err error) {
	fullURL := c.baseURL + "/users/profiles/minecraft/" + url.PathEscape(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("identity lookup: %w", err)
	}
	defer resp.Body.Close()

	// The identity service answers unknown names with 404 or an empty 204.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return "", "", fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("identity lookup: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}

	var dto profileDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return "", "", fmt.Errorf("unmarshal response: %w", err)
	}
	if dto.ID == "" {
		return "", "", fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}

	return Dash(dto.ID), dto.Name, nil
}

// Dash formats an undashed UUID into the canonical dashed form. Malformed
// input is returned unchanged.
func Dash(id string) string {
	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return u.String()
}
