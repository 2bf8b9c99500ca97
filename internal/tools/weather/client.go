package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/toolhost/middleware"
)

// Query parameters sent with every forecast request.
const (
	currentFields = "temperature_2m,wind_speed_10m,weather_code"
	hourlyFields  = "temperature_2m,relative_humidity_2m,wind_speed_10m"
)

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 4 << 20

// ErrRateLimited is returned when the outbound request budget is spent.
var ErrRateLimited = errors.New("weather provider: rate limit exceeded")

// Forecast is the subset of the provider payload the tool renders.
// Pointer fields are nil when the provider omitted or nulled the value.
type Forecast struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  string   `json:"timezone"`
	Current   Current  `json:"current"`
	Hourly    Hourly   `json:"hourly"`
}

// Current holds the current conditions.
type Current struct {
	Time        string   `json:"time"`
	Temperature *float64 `json:"temperature_2m"`
	WindSpeed   *float64 `json:"wind_speed_10m"`
	WeatherCode *float64 `json:"weather_code"`
}

// Hourly holds the hourly forecast series, index-aligned with Time.
type Hourly struct {
	Time        []string   `json:"time"`
	Temperature []*float64 `json:"temperature_2m"`
	Humidity    []*float64 `json:"relative_humidity_2m"`
	WindSpeed   []*float64 `json:"wind_speed_10m"`
}

type limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Client fetches forecasts from an Open-Meteo compatible endpoint.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    limiter
	logger     middleware.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// Token bucket applied per provider host. A zero Rate disables it.
	Rate     int
	Burst    int
	Interval time.Duration

	Logger    middleware.Logger
	Transport http.RoundTripper
}

// NewClient creates a client for the endpoint in opts.
func NewClient(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("weather: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("weather: base url %q is not http(s)", opts.BaseURL)
	}

	rt := opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(rt),
		},
		logger: opts.Logger,
	}
	if c.logger == nil {
		c.logger = middleware.NopLogger{}
	}

	if opts.Rate > 0 {
		interval := opts.Interval
		if interval <= 0 {
			interval = time.Second
		}
		burst := opts.Burst
		if burst <= 0 {
			burst = opts.Rate
		}
		c.limiter = ratelimit.New(&ratelimit.Config{
			Rate:     opts.Rate,
			Burst:    burst,
			Interval: interval,
		})
	}

	return c, nil
}

// Forecast fetches current conditions and the hourly forecast at the
// given coordinates. Errors carry the provider's failure text.
func (c *Client) Forecast(ctx context.Context, latitude, longitude float64) (*Forecast, error) {
	host := c.baseURL.Host
	if c.limiter != nil && !c.limiter.Allow(ctx, host) {
		c.logger.Warn("weather request throttled", middleware.F("host", host))
		return nil, ErrRateLimited
	}

	u := *c.baseURL
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	q.Set("current", currentFields)
	q.Set("hourly", hourlyFields)
	q.Set("timezone", "auto")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather provider: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	middleware.AddSpanEvent(ctx, "weather.fetch", attribute.String("server.address", host))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("weather request failed", middleware.F("host", host), middleware.F("error", err.Error()))
		return nil, fmt.Errorf("weather provider: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("weather response",
		middleware.F("host", host),
		middleware.F("status", resp.StatusCode),
		middleware.F("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("weather provider: status %d", resp.StatusCode)
	}

	var f Forecast
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&f); err != nil {
		return nil, fmt.Errorf("weather provider: decode response: %w", err)
	}
	return &f, nil
}
