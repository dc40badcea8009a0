package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cacheKey = "fx:usd_kes"
	cacheTTL = 5 * time.Minute
)

// Client fetches the live USD→KES rate, caching it briefly in redis and
// falling back to a configured constant when the source is unreachable or
// returns garbage.
type Client struct {
	BaseURL    string
	Fallback   float64
	HTTPClient *http.Client

	rdb    *redis.Client
	logger *zap.Logger
}

func NewClient(baseURL string, fallback float64, rdb *redis.Client, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		Fallback:   fallback,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		rdb:        rdb,
		logger:     logger,
	}
}

// USDToKES returns a positive, finite rate or an error when neither the
// source nor the fallback can supply one.
func (c *Client) USDToKES(ctx context.Context) (float64, error) {
	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if rate, err := strconv.ParseFloat(cached, 64); err == nil && valid(rate) {
				return rate, nil
			}
		}
	}

	rate, err := c.fetch(ctx)
	if err != nil || !valid(rate) {
		if err != nil {
			c.logger.Warn("fx lookup failed, using fallback rate",
				zap.Float64("fallback", c.Fallback),
				zap.Error(err))
		}
		if !valid(c.Fallback) {
			if err == nil {
				err = fmt.Errorf("fx source returned invalid rate %v", rate)
			}
			return 0, fmt.Errorf("no usable USD/KES rate: %w", err)
		}
		return c.Fallback, nil
	}

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, cacheKey, strconv.FormatFloat(rate, 'f', -1, 64), cacheTTL).Err(); err != nil {
			c.logger.Warn("fx rate cache write failed", zap.Error(err))
		}
	}
	return rate, nil
}

func (c *Client) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v6/latest/USD", nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fx source: %s", resp.Status)
	}

	var out struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("fx source: decode: %w", err)
	}

	rate, ok := out.Rates["KES"]
	if !ok {
		return 0, fmt.Errorf("fx source: no KES rate in response")
	}
	return rate, nil
}

func valid(rate float64) bool {
	return rate > 0 && !math.IsNaN(rate) && !math.IsInf(rate, 0)
}
