// Package provider is a client for the public NHL web and stats APIs.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/pable/go-hockey-metrics/internal/logging"
	"github.com/pable/go-hockey-metrics/internal/metrics"
	"github.com/pable/go-hockey-metrics/internal/xg"
)

// Document kinds, used as cache namespaces and metric labels.
const (
	KindPlayByPlay = "play-by-play"
	KindShiftChart = "shift-chart"
	KindBoxscore   = "boxscore"
	KindLanding    = "player-landing"
)

// StatusError is a non-200 response from the provider.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

// NotFound reports whether the provider has no such document.
func (e *StatusError) NotFound() bool { return e.Code == http.StatusNotFound }

// Config configures a Client.
type Config struct {
	WebBaseURL   string
	StatsBaseURL string
	Timeout      time.Duration
	RPS          float64
	Burst        int
	// Cache is optional; nil disables on-disk caching.
	Cache *Cache
}

// Client fetches game documents. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]

	mu    sync.Mutex
	hands map[int64]xg.Hand
}

// NewClient returns a rate-limited client with a circuit breaker in front
// of the provider.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "nhl-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A 4xx is the provider answering; only transport errors and 5xx
		// count against the breaker.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			if errors.As(err, &se) {
				return se.Code < 500
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("provider circuit breaker state change")
		},
	})
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		cb:      cb,
		hands:   make(map[int64]xg.Hand),
	}
}

// get performs a rate-limited GET through the breaker and returns the body.
func (c *Client) get(ctx context.Context, kind, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{URL: url, Code: resp.StatusCode}
		}
		return io.ReadAll(resp.Body)
	})
	metrics.ProviderLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.ProviderRequests.WithLabelValues(kind, "rejected").Inc()
		return nil, fmt.Errorf("GET %s: %w", url, err)
	case err != nil:
		metrics.ProviderRequests.WithLabelValues(kind, "error").Inc()
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues(kind, "ok").Inc()
	return body, nil
}

// document serves a game document from the cache or the network. Documents
// are only cached once the game is over.
func (c *Client) document(ctx context.Context, kind string, id int64, url string) ([]byte, error) {
	if c.cfg.Cache != nil {
		if data, ok := c.cfg.Cache.Get(kind, id); ok {
			metrics.ProviderRequests.WithLabelValues(kind, "cache").Inc()
			return data, nil
		}
	}
	data, err := c.get(ctx, kind, url)
	if err != nil {
		return nil, err
	}
	if c.cfg.Cache != nil && c.cacheable(kind, id, data) {
		if err := c.cfg.Cache.Put(kind, id, data); err != nil {
			logging.Warn().Err(err).Str("kind", kind).Int64("id", id).Msg("cache write failed")
		}
	}
	return data, nil
}

func (c *Client) cacheable(kind string, id int64, data []byte) bool {
	switch kind {
	case KindPlayByPlay, KindBoxscore:
		state := gjson.GetBytes(data, "gameState").String()
		return state == "OFF" || state == "FINAL"
	case KindShiftChart:
		// The chart carries no game state; trust it once a final document is cached.
		return c.cfg.Cache.Has(KindBoxscore, id) || c.cfg.Cache.Has(KindPlayByPlay, id)
	}
	return true
}

// FetchPlayByPlay returns the raw play-by-play document.
func (c *Client) FetchPlayByPlay(ctx context.Context, gameID int64) ([]byte, error) {
	url := fmt.Sprintf("%s/gamecenter/%d/play-by-play", c.cfg.WebBaseURL, gameID)
	return c.document(ctx, KindPlayByPlay, gameID, url)
}

// FetchBoxscore returns the raw boxscore document.
func (c *Client) FetchBoxscore(ctx context.Context, gameID int64) ([]byte, error) {
	url := fmt.Sprintf("%s/gamecenter/%d/boxscore", c.cfg.WebBaseURL, gameID)
	return c.document(ctx, KindBoxscore, gameID, url)
}

// FetchShiftChart returns the raw shift chart document.
func (c *Client) FetchShiftChart(ctx context.Context, gameID int64) ([]byte, error) {
	url := fmt.Sprintf("%s/shiftcharts?cayenneExp=gameId=%d", c.cfg.StatsBaseURL, gameID)
	return c.document(ctx, KindShiftChart, gameID, url)
}

// PlayerLanding holds the fields we need from /player/{id}/landing.
type PlayerLanding struct {
	PlayerID      int64  `json:"playerId"`
	Position      string `json:"position"`
	ShootsCatches string `json:"shootsCatches"`
}

// FetchPlayerLanding returns a player's profile.
func (c *Client) FetchPlayerLanding(ctx context.Context, playerID int64) (*PlayerLanding, error) {
	url := c.cfg.WebBaseURL + "/player/" + strconv.FormatInt(playerID, 10) + "/landing"
	data, err := c.document(ctx, KindLanding, playerID, url)
	if err != nil {
		return nil, err
	}
	var p PlayerLanding
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode landing %d: %w", playerID, err)
	}
	return &p, nil
}

// Hand returns the player's shooting or catching hand. Lookups are
// memoized for the life of the client.
func (c *Client) Hand(ctx context.Context, playerID int64) (xg.Hand, error) {
	c.mu.Lock()
	h, ok := c.hands[playerID]
	c.mu.Unlock()
	if ok {
		return h, nil
	}

	p, err := c.FetchPlayerLanding(ctx, playerID)
	if err != nil {
		return xg.HandUnknown, err
	}
	h = xg.ParseHand(p.ShootsCatches)

	c.mu.Lock()
	c.hands[playerID] = h
	c.mu.Unlock()
	return h, nil
}
