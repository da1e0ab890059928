package marketdata

import (
	"context"
	"fmt"
	"time"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
	"AtlasQuant/internal/services/analytics"
	phttp "AtlasQuant/pkg/http"
	"AtlasQuant/pkg/logger"
)

// MinRows is the smallest daily series worth analyzing. A lookback that
// yields fewer rows counts as a failed attempt and the ladder moves on.
const MinRows = 30

// Config configures the chart-API bar source.
type Config struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// Client fetches daily OHLCV series from a chart-style JSON API and
// implements BarSource. Each request walks the lookback ladder from the
// longest window down until one attempt yields enough usable rows.
type Client struct {
	cfg  Config
	http *phttp.Client
	log  *logger.Logger
}

// NewClient creates a chart-API bar source.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, analytics.NewConfigError("marketdata.base_url", "must not be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: phttp.NewClient(phttp.WithTimeout(cfg.Timeout)),
		log:  log,
	}, nil
}

// chartResponse mirrors the chart API payload. Quote arrays are pointers so
// missing points decode to nil rather than zero.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily acquires a normalized daily series for the ticker, retrying
// with progressively shorter lookbacks. The returned meta records every
// attempt for the report's fetch diagnostics.
func (c *Client) FetchDaily(ctx context.Context, ticker string) ([]models.Bar, models.FetchMeta, error) {
	meta := models.FetchMeta{}

	for _, lb := range drepo.FallbackLookbacks() {
		start := time.Now()
		bars, err := c.fetchOnce(ctx, ticker, lb)
		attempt := models.FetchAttempt{
			Source:   "chart",
			Lookback: string(lb),
			Rows:     len(bars),
			Ms:       time.Since(start).Milliseconds(),
		}
		switch {
		case err != nil:
			attempt.Err = err.Error()
		case len(bars) < MinRows:
			attempt.Err = fmt.Sprintf("only %d rows, need %d", len(bars), MinRows)
		default:
			attempt.OK = true
		}
		meta.Attempts = append(meta.Attempts, attempt)

		if attempt.OK {
			meta.Used = string(lb)
			return bars, meta, nil
		}
		if c.log != nil {
			c.log.Warn("bar fetch attempt failed",
				logger.String("ticker", ticker),
				logger.String("lookback", string(lb)),
				logger.Int("rows", len(bars)),
				logger.String("err", attempt.Err))
		}
		if ctx.Err() != nil {
			return nil, meta, ctx.Err()
		}
	}

	return nil, meta, analytics.NewDataError("fetch_daily",
		fmt.Sprintf("no lookback yielded %d usable rows for %s", MinRows, ticker))
}

func (c *Client) fetchOnce(ctx context.Context, ticker string, lb drepo.Lookback) ([]models.Bar, error) {
	var resp chartResponse
	headers := map[string]string{}
	if c.cfg.UserAgent != "" {
		headers["User-Agent"] = c.cfg.UserAgent
	}
	err := c.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    fmt.Sprintf("%s/%s", c.cfg.BaseURL, ticker),
		QueryParams: map[string][]string{
			"range":    {string(lb)},
			"interval": {"1d"},
			"events":   {"div,splits"},
		},
		Headers: headers,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart api: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart api: empty result for %s", ticker)
	}

	res := resp.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart api: no quote block for %s", ticker)
	}
	q := res.Indicators.Quote[0]
	var adj []*float64
	if len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}

	raw := make([]models.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		b := models.Bar{Time: time.Unix(ts, 0).UTC()}
		b.Open = deref(q.Open, i)
		b.High = deref(q.High, i)
		b.Low = deref(q.Low, i)
		b.Close = deref(q.Close, i)
		b.AdjClose = deref(adj, i)
		b.Volume = deref(q.Volume, i)
		raw = append(raw, b)
	}
	return Normalize(raw), nil
}

func deref(xs []*float64, i int) float64 {
	if i < len(xs) && xs[i] != nil {
		return *xs[i]
	}
	return 0
}

var _ drepo.BarSource = (*Client)(nil)
