package innebandy

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/floorball-league/internal/domain/rawdata"
	"github.com/riskibarqy/floorball-league/internal/platform/logging"
	"github.com/riskibarqy/floorball-league/internal/platform/resilience"
	"github.com/riskibarqy/floorball-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultGamesURL        = "https://app.innebandy.se/api/leagueapi/getpreviousleaguegames/"
	defaultTimelineURL     = "https://app.innebandy.se/api/followgameapi/initlivetimelineblurbs"
	defaultMoreTimelineURL = "https://app.innebandy.se/api/followgameapi/getmoretimelineblurbs/"

	defaultTimeout          = 20 * time.Second
	defaultRateLimit        = 5
	defaultRateBurst        = 3
	defaultTimelineMaxPages = 200
	maxBodyBytes            = 6 << 20

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"
	platform  = "2"
)

var errTransient = crerr.New("innebandy transient failure")

type ClientConfig struct {
	HTTPClient       *http.Client
	GamesURL         string
	TimelineURL      string
	MoreTimelineURL  string
	Token            string
	Timeout          time.Duration
	RateLimit        float64
	RateBurst        int
	TimelineMaxPages int
	Logger           *logging.Logger
	CircuitBreaker   resilience.CircuitBreakerConfig
	// Archive receives every successfully fetched page when set.
	Archive rawdata.Repository
	Now     func() time.Time
}

type Client struct {
	httpClient       *http.Client
	gamesURL         string
	timelineURL      string
	moreTimelineURL  string
	token            string
	timelineMaxPages int
	logger           *logging.Logger
	limiter          *rate.Limiter
	breaker          *resilience.CircuitBreaker
	archive          rawdata.Repository
	now              func() time.Time
	flight           singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = defaultRateBurst
	}
	maxPages := cfg.TimelineMaxPages
	if maxPages <= 0 {
		maxPages = defaultTimelineMaxPages
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	breakerCfg := cfg.CircuitBreaker
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("innebandy circuit breaker state changed", "from", from, "to", to)
		}
	}

	return &Client{
		httpClient:       httpClient,
		gamesURL:         firstNonEmpty(cfg.GamesURL, defaultGamesURL),
		timelineURL:      firstNonEmpty(cfg.TimelineURL, defaultTimelineURL),
		moreTimelineURL:  firstNonEmpty(cfg.MoreTimelineURL, defaultMoreTimelineURL),
		token:            strings.TrimSpace(cfg.Token),
		timelineMaxPages: maxPages,
		logger:           logger,
		limiter:          rate.NewLimiter(rate.Limit(limit), burst),
		breaker:          resilience.NewCircuitBreakerFromConfig(breakerCfg),
		archive:          cfg.Archive,
		now:              now,
	}
}

// get performs one request under the breaker and the rate limiter. The
// client does not retry; callers own their retry policy.
func (c *Client) get(ctx context.Context, fullURL string, header http.Header) ([]byte, error) {
	v, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		runErr := c.breaker.Run(func() error {
			var reqErr error
			raw, reqErr = c.execute(ctx, fullURL, header)
			return reqErr
		}, isCircuitFailure)
		if stderrors.Is(runErr, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "innebandy circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: innebandy is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return raw, runErr
	})
	raw, _ := v.([]byte)
	return raw, err
}

func (c *Client) execute(ctx context.Context, fullURL string, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = header

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: send request: %s", errTransient, sanitizeSensitiveText(err.Error(), c.token))
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errTransient, err)
	}
	raw := append([]byte(nil), buf.B...)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("upstream status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		if isRetryableStatus(resp.StatusCode) {
			statusErr = fmt.Errorf("%w: %v", errTransient, statusErr)
		}
		c.logger.WarnContext(ctx, "innebandy request failed", "url", redactURL(fullURL), "status", resp.StatusCode)
		return nil, statusErr
	}

	return raw, nil
}

func (c *Client) archivePage(ctx context.Context, entityType, entityKey string, raw []byte) {
	if c.archive == nil {
		return
	}
	payload := rawdata.NewPayload(entityType, entityKey, raw, c.now())
	if err := c.archive.UpsertMany(ctx, []rawdata.Payload{payload}); err != nil {
		c.logger.WarnContext(ctx, "archive raw payload failed", "entity_type", entityType, "entity_key", entityKey, "error", err)
	}
}

func (c *Client) baseHeader() http.Header {
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("X-Platform", platform)
	h.Set("X-Requested-With", "XMLHttpRequest")
	return h
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

// redactURL drops the query string, which carries callback noise and cursors.
func redactURL(rawURL string) string {
	if idx := strings.IndexByte(rawURL, '?'); idx >= 0 {
		return rawURL[:idx]
	}
	return rawURL
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
