package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/menuboard/internal/sync/domain"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://sheets.googleapis.com"
	defaultTimeout = 15 * time.Second

	categoriesRange = "Categories!A2:D"
	itemsRange      = "Menu Items!A2:G"
)

type Config struct {
	SpreadsheetID string
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
}

// Client reads category and item rows from the Google Sheets values API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.Named("sync.sheets"),
	}
}

type valuesResponse struct {
	Values [][]any `json:"values"`
}

// FetchCategories reads rows shaped name, displayName, sortOrder, isActive.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.CategoryRow, error) {
	values, err := c.fetchRange(ctx, categoriesRange)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.CategoryRow, 0, len(values))
	for _, raw := range values {
		name := cell(raw, 0)
		if name == "" {
			continue
		}
		active := parseBool(cell(raw, 3), true)
		rows = append(rows, domain.CategoryRow{
			Name:        name,
			DisplayName: cell(raw, 1),
			SortOrder:   parseInt(cell(raw, 2)),
			IsActive:    &active,
		})
	}
	return rows, nil
}

// FetchMenuItems reads rows shaped name, description, price, categoryName,
// isAvailable, sortOrder, imageUrl.
func (c *Client) FetchMenuItems(ctx context.Context) ([]domain.ItemRow, error) {
	values, err := c.fetchRange(ctx, itemsRange)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ItemRow, 0, len(values))
	for _, raw := range values {
		name := cell(raw, 0)
		if name == "" {
			continue
		}
		available := parseBool(cell(raw, 4), true)
		rows = append(rows, domain.ItemRow{
			Name:         name,
			Description:  optional(cell(raw, 1)),
			Price:        parsePrice(cell(raw, 2)),
			CategoryName: cell(raw, 3),
			IsAvailable:  &available,
			SortOrder:    parseInt(cell(raw, 5)),
			ImageURL:     optional(cell(raw, 6)),
		})
	}
	return rows, nil
}

func (c *Client) fetchRange(ctx context.Context, valueRange string) ([][]any, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(c.cfg.SpreadsheetID),
		url.PathEscape(valueRange),
		url.QueryEscape(c.cfg.APIKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets api status %d for range %s", resp.StatusCode, valueRange)
	}

	var payload valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Values, nil
}

func cell(row []any, index int) string {
	if index >= len(row) {
		return ""
	}
	value, ok := row[index].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func parseInt(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}

// parsePrice accepts "12" or "12.5" and keeps the deployment's whole
// currency unit convention, rounding to the nearest unit.
func parsePrice(value string) int64 {
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0
	}
	if parsed < 0 {
		return 0
	}
	return int64(parsed + 0.5)
}

func parseBool(value string, def bool) bool {
	switch strings.ToLower(value) {
	case "":
		return def
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
