// Package apiclient talks to the external product catalog and currency
// rate services. Both calls degrade gracefully: a network or payload
// failure yields a usable fallback result with the Degraded flag set, and
// the pipeline keeps going.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sales-analytics-service/internal/models"
	"sales-analytics-service/pkg/errors"
	"sales-analytics-service/pkg/logger"
)

const (
	// DefaultCatalogBaseURL is the product catalog endpoint root.
	DefaultCatalogBaseURL = "https://dummyjson.com"

	// DefaultRateBaseURL is the exchange rate endpoint root.
	DefaultRateBaseURL = "https://api.exchangerate-api.com"

	// DefaultTimeout bounds each request. There are no retries.
	DefaultTimeout = 10 * time.Second

	// DefaultProductLimit caps the catalog page size.
	DefaultProductLimit = 100

	// FallbackEURRate is used when the rate service is unreachable.
	FallbackEURRate = 0.85
)

// Config holds the client endpoints and request timeout.
type Config struct {
	CatalogBaseURL string
	RateBaseURL    string
	Timeout        time.Duration
	ProductLimit   int
}

func DefaultConfig() *Config {
	return &Config{
		CatalogBaseURL: DefaultCatalogBaseURL,
		RateBaseURL:    DefaultRateBaseURL,
		Timeout:        DefaultTimeout,
		ProductLimit:   DefaultProductLimit,
	}
}

func (c *Config) Validate() error {
	if c.CatalogBaseURL == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "catalog_base_url", c.CatalogBaseURL,
			fmt.Errorf("catalog base URL cannot be empty"))
	}
	if c.RateBaseURL == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "rate_base_url", c.RateBaseURL,
			fmt.Errorf("rate base URL cannot be empty"))
	}
	if c.Timeout <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "timeout", c.Timeout,
			fmt.Errorf("timeout must be positive"))
	}
	if c.ProductLimit <= 0 {
		c.ProductLimit = DefaultProductLimit
	}
	return nil
}

// Client fetches catalog products and currency rates over HTTP.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(config *Config, log logger.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("apiclient")
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     log,
	}, nil
}

// ProductsResult carries the catalog fetch outcome. Degraded means the
// fetch failed and Products is empty; enrichment still runs, every record
// simply goes unmatched.
type ProductsResult struct {
	Products []models.Product
	Degraded bool
	Err      error
}

type productsPayload struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
}

// FetchProducts retrieves the product catalog page. It never returns an
// error: failures are logged and reported through the Degraded flag so the
// caller can proceed without metadata.
func (c *Client) FetchProducts(ctx context.Context) *ProductsResult {
	url := fmt.Sprintf("%s/products?limit=%d", c.config.CatalogBaseURL, c.config.ProductLimit)

	var payload productsPayload
	if err := c.getJSON(ctx, url, &payload); err != nil {
		c.logger.WithError(err).WithField("url", url).Warn("Product catalog fetch failed, continuing without metadata")
		return &ProductsResult{Products: []models.Product{}, Degraded: true, Err: err}
	}

	c.logger.WithField("count", len(payload.Products)).Info("Fetched product catalog")
	return &ProductsResult{Products: payload.Products}
}

// RateResult carries a currency conversion rate. Fallback means the rate
// service was unreachable and a fixed approximation is in use.
type RateResult struct {
	BaseCurrency   string
	TargetCurrency string
	Rate           float64
	Fallback       bool
	Err            error
}

type ratesPayload struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// CurrencyRate fetches the conversion rate from base to target. On any
// failure, including a payload that lacks the target currency, it returns
// the fixed EUR fallback rate with Fallback set.
func (c *Client) CurrencyRate(ctx context.Context, base, target string) *RateResult {
	url := fmt.Sprintf("%s/v4/latest/%s", c.config.RateBaseURL, base)
	result := &RateResult{BaseCurrency: base, TargetCurrency: target}

	var payload ratesPayload
	if err := c.getJSON(ctx, url, &payload); err != nil {
		c.logger.WithError(err).WithField("url", url).Warn("Currency rate fetch failed, using fallback rate")
		result.Rate = FallbackEURRate
		result.Fallback = true
		result.Err = err
		return result
	}

	rate, ok := payload.Rates[target]
	if !ok {
		err := errors.NetworkError(errors.CodeBadPayload, url,
			fmt.Errorf("currency %q missing from rate payload", target))
		c.logger.WithError(err).Warn("Currency rate missing, using fallback rate")
		result.Rate = FallbackEURRate
		result.Fallback = true
		result.Err = err
		return result
	}

	result.Rate = rate
	return result
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.NetworkError(errors.CodeConnectionFailed, url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NetworkError(errors.CodeConnectionFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NetworkError(errors.CodeBadStatus, url,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NetworkError(errors.CodeBadPayload, url, err)
	}
	return nil
}
