// Package quote fetches last prices and company names from Tiingo.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"options-dashboard/internal/config"
	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/logging"
	"options-dashboard/internal/models"
	"options-dashboard/pkg/utils"
)

// Provider returns the latest quote for a ticker.
type Provider interface {
	Quote(ctx context.Context, ticker string) (models.Quote, error)
}

// Client is a Tiingo REST client.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	lookback   int
	retry      utils.RetryConfig
	limiter    *rate.Limiter
	httpClient *http.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock replaces the clock used to build the price date range.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithRetryDelay sets the initial backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retry.InitialDelay = d
		c.retry.MaxDelay = max(d, c.retry.MaxDelay)
	}
}

// NewClient creates a client from cfg. It fails when no API key is set.
func NewClient(cfg config.QuoteConfig, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigError("tiingo.api_key", "missing "+config.EnvTiingoAPIKey)
	}

	retry := utils.DefaultRetryConfig()
	retry.MaxAttempts = max(cfg.MaxAttempts, 1)
	retry.Retryable = isRetryable

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		lookback:   max(cfg.LookbackDays, 1),
		retry:      retry,
		httpClient: &http.Client{},
		logger:     logging.WithOperation(logger, "quote"),
		now:        time.Now,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type priceRow struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

type metadata struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

type priceQuery struct {
	StartDate string `url:"startDate"`
	EndDate   string `url:"endDate"`
	Columns   string `url:"columns"`
}

// Quote fetches the last close and the company name concurrently. A failed
// name lookup leaves Name empty; a failed price lookup fails the quote.
func (c *Client) Quote(ctx context.Context, ticker string) (models.Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return models.Quote{}, apperrors.NewValidationError("ticker", ticker, "must not be empty")
	}

	var (
		row  priceRow
		name string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		row, err = utils.RetryWithResult(gctx, c.retry, func() (priceRow, error) {
			return c.lastPrice(gctx, ticker)
		})
		return err
	})
	g.Go(func() error {
		meta, err := c.metadata(gctx, ticker)
		if err != nil {
			logger := logging.WithTicker(c.logger, ticker)
			logger.Debug().Err(err).Msg("Name lookup failed")
			return nil
		}
		name = meta.Name
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.Quote{}, err
	}

	return models.Quote{
		Ticker:    ticker,
		Name:      name,
		LastPrice: row.Close,
		AsOf:      row.Date,
	}, nil
}

func (c *Client) lastPrice(ctx context.Context, ticker string) (priceRow, error) {
	today := c.now().UTC()
	q, err := query.Values(priceQuery{
		StartDate: today.AddDate(0, 0, -c.lookback).Format("2006-01-02"),
		EndDate:   today.Format("2006-01-02"),
		Columns:   "close",
	})
	if err != nil {
		return priceRow{}, apperrors.NewQuoteError(ticker, "prices", 0, err)
	}

	endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices?%s", c.baseURL, url.PathEscape(ticker), q.Encode())

	var rows []priceRow
	if err := c.get(ctx, ticker, "prices", endpoint, &rows); err != nil {
		return priceRow{}, err
	}
	if len(rows) == 0 {
		return priceRow{}, apperrors.NewQuoteError(ticker, "prices", 0,
			fmt.Errorf("%w: no closes in the last %d days", apperrors.ErrQuoteUnavailable, c.lookback))
	}

	newest := rows[0]
	for _, r := range rows[1:] {
		if !r.Date.Before(newest.Date) {
			newest = r
		}
	}
	return newest, nil
}

func (c *Client) metadata(ctx context.Context, ticker string) (metadata, error) {
	var meta metadata
	endpoint := fmt.Sprintf("%s/tiingo/daily/%s", c.baseURL, url.PathEscape(ticker))
	err := c.get(ctx, ticker, "metadata", endpoint, &meta)
	return meta, err
}

// get performs one authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, ticker, op, endpoint string, out any) (err error) {
	start := time.Now()
	defer func() {
		logging.LogAPICall(c.logger, http.MethodGet, op, time.Since(start), err)
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperrors.NewQuoteError(ticker, op, 0, err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.NewQuoteError(ticker, op, 0, err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewQuoteError(ticker, op, 0, fmt.Errorf("%w: %v", apperrors.ErrQuoteUnavailable, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NewQuoteError(ticker, op, resp.StatusCode, apperrors.ErrSymbolNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.NewQuoteError(ticker, op, resp.StatusCode,
			fmt.Errorf("%w: %s", apperrors.ErrQuoteUnavailable, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewQuoteError(ticker, op, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// isRetryable retries transport failures, 429s and 5xx responses.
func isRetryable(err error) bool {
	var qerr *apperrors.QuoteError
	if !apperrors.As(err, &qerr) {
		return true
	}
	switch {
	case qerr.StatusCode == 0:
		return apperrors.Is(err, apperrors.ErrQuoteUnavailable)
	case qerr.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return qerr.StatusCode >= 500
	}
}
