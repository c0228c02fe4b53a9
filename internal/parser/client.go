package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pbaille/grocer/internal/domain"
)

// Client calls the external parse service.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client for the service at url. A timeout expiry is
// reported as an ordinary error, like any other transport failure.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type parseRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// parseResponse is the service's wire shape. The intent field may carry
// values this program does not know about (e.g. "other").
type parseResponse struct {
	Intent   string          `json:"intent"`
	Item     string          `json:"item"`
	Quantity int             `json:"quantity"`
	Category string          `json:"category,omitempty"`
	Filters  *domain.Filters `json:"filters,omitempty"`
	Speech   string          `json:"speech,omitempty"`
}

// Parse sends the utterance to the service and converts its reply to an
// Intent. Any failure is returned to the caller, who is expected to fall
// back to the local heuristic.
func (c *Client) Parse(ctx context.Context, text, language string) (domain.Intent, error) {
	jsonBody, err := json.Marshal(parseRequest{Text: text, Language: language})
	if err != nil {
		return domain.Intent{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return domain.Intent{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.Intent{}, fmt.Errorf("parse service error (status %d): %s", resp.StatusCode, string(body))
	}

	var wire parseResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return domain.Intent{}, fmt.Errorf("unmarshal response: %w", err)
	}

	return wire.toIntent(), nil
}

func (r parseResponse) toIntent() domain.Intent {
	kind := domain.IntentKind(r.Intent)
	switch kind {
	case domain.IntentAddItem, domain.IntentRemoveItem, domain.IntentSearchItem:
	default:
		kind = domain.IntentUnknown
	}

	quantity := r.Quantity
	if quantity < 1 {
		quantity = 1
	}

	return domain.Intent{
		Kind:     kind,
		Item:     r.Item,
		Quantity: quantity,
		Category: r.Category,
		Filters:  r.Filters,
		Speech:   r.Speech,
	}
}
