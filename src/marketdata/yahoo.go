package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

// PriceProvider is the narrow contract the position summary needs: a current
// price for an asset code, best-effort. A miss degrades the summary, it never
// fails it.
type PriceProvider interface {
	CurrentPrice(ctx context.Context, code string) (decimal.Decimal, time.Time, error)
}

// ErrNoQuote is returned when the upstream has no usable price for a symbol.
var ErrNoQuote = fmt.Errorf("marketdata: no quote available")

const defaultYahooBaseURL = "https://query2.finance.yahoo.com"

// YahooClient fetches quotes from the Yahoo Finance v8 chart endpoint and
// caches them for a short TTL so a summary over many positions does not
// hammer the upstream.
type YahooClient struct {
	http *resty.Client
	ttl  time.Duration

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

type cachedQuote struct {
	price   decimal.Decimal
	asOf    time.Time
	fetched time.Time
}

func NewYahooClient(baseURL string) *YahooClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultYahooBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(8 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(isRetryableResp).
		SetHeader("User-Agent", "assetledger/1.0")

	return &YahooClient{
		http:  httpClient,
		ttl:   60 * time.Second,
		cache: make(map[string]cachedQuote),
	}
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// CurrentPrice returns the latest market price for a symbol. Prices come back
// as binary floats from the upstream; they are converted once here and stay
// decimal from then on.
func (c *YahooClient) CurrentPrice(ctx context.Context, code string) (decimal.Decimal, time.Time, error) {
	symbol := strings.ToUpper(strings.TrimSpace(code))
	if symbol == "" {
		return decimal.Zero, time.Time{}, ErrNoQuote
	}

	c.mu.RLock()
	if cached, ok := c.cache[symbol]; ok && time.Since(cached.fetched) < c.ttl {
		c.mu.RUnlock()
		return cached.price, cached.asOf, nil
	}
	c.mu.RUnlock()

	var parsed chartResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&parsed).
		SetQueryParams(map[string]string{
			"interval": "1m",
			"range":    "1d",
		}).
		Get("/v8/finance/chart/" + symbol)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	if resp.StatusCode() != http.StatusOK {
		return decimal.Zero, time.Time{}, fmt.Errorf("marketdata: yahoo http %d", resp.StatusCode())
	}

	if len(parsed.Chart.Result) == 0 {
		logger.WithFields(map[string]interface{}{
			"component": "YahooClient",
			"symbol":    symbol,
		}).Debug("No chart result for symbol")
		return decimal.Zero, time.Time{}, ErrNoQuote
	}

	meta := parsed.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return decimal.Zero, time.Time{}, ErrNoQuote
	}

	price := decimal.NewFromFloat(meta.RegularMarketPrice).Round(8)
	asOf := time.Unix(meta.RegularMarketTime, 0).UTC()

	c.mu.Lock()
	c.cache[symbol] = cachedQuote{price: price, asOf: asOf, fetched: time.Now()}
	c.mu.Unlock()

	return price, asOf, nil
}
