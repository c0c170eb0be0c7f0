// internal/fx/provider.go
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Provider fetches a live rate for a currency pair. Implementations must
// treat the call as best effort; the Service absorbs every failure.
type Provider interface {
	FetchRate(ctx context.Context, base, billing string) (float64, error)
}

// HTTPProvider talks to an exchange-rate HTTP API of the common
// "GET ?base=X&symbols=Y -> {\"rates\":{\"Y\": n}}" shape.
type HTTPProvider struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewHTTPProvider(rawURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		URL:    rawURL,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *HTTPProvider) FetchRate(ctx context.Context, base, billing string) (float64, error) {
	if p.URL == "" {
		return 0, fmt.Errorf("fx provider url not configured")
	}
	if p.APIKey == "" {
		return 0, fmt.Errorf("fx provider api key not configured")
	}

	u, err := url.Parse(p.URL)
	if err != nil {
		return 0, fmt.Errorf("fx provider url: %w", err)
	}
	q := u.Query()
	q.Set("base", base)
	q.Set("symbols", billing)
	q.Set("apikey", p.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, err
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("fx provider returned %d", resp.StatusCode)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode fx response: %w", err)
	}

	rate, ok := body.Rates[billing]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("fx response missing rate for %s", billing)
	}
	return rate, nil
}
