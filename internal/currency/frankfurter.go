package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher returns the latest exchange rates for the configured base.
type Fetcher interface {
	Fetch(ctx context.Context) (*Rates, error)
}

type Rates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

type frankfurterClient struct {
	baseURL string
	base    string
	symbols []string
	client  *http.Client
}

// NewFrankfurterClient talks to the Frankfurter latest-rates endpoint.
func NewFrankfurterClient(baseURL, base string, symbols []string) Fetcher {
	return &frankfurterClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    base,
		symbols: symbols,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *frankfurterClient) Fetch(ctx context.Context) (*Rates, error) {
	q := url.Values{}
	q.Set("from", c.base)
	if len(c.symbols) > 0 {
		q.Set("to", strings.Join(c.symbols, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates fetch: unexpected status %d", res.StatusCode)
	}

	var out Rates
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Rates) == 0 {
		return nil, fmt.Errorf("rates fetch: empty rate table")
	}
	return &out, nil
}
