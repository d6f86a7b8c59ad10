package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const indexPath = "/v1/coin-price-index"

// GatewayOptions parameterise the platform HTTP gateway fetcher.
type GatewayOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Gateway fetches the coin-price index from the platform's HTTP gateway.
type Gateway struct {
	opts    GatewayOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewGateway constructs a gateway fetcher.
func NewGateway(opts GatewayOptions, logger zerolog.Logger) *Gateway {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Gateway{
		opts:    opts,
		logger:  logger.With().Str("component", "gateway_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

type indexResponse struct {
	Index     int64     `json:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrentIndex retrieves the index value over HTTP.
func (g *Gateway) CurrentIndex(ctx context.Context) (int64, error) {
	if g.baseURL == "" {
		return 0, errors.New("gateway base url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+indexPath, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(g.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload indexResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode index response: %w", err)
	}
	if payload.Index <= 0 {
		return 0, fmt.Errorf("gateway returned non-positive index %d", payload.Index)
	}

	return payload.Index, nil
}

var _ IndexFetcher = (*Gateway)(nil)
