package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Solana name-service lookup client.
//
// Resolves a wallet address to its registered human-readable domain names
// via the solana.fm socials search API. The engine only needs the name
// strings; reputation scoring happens in the heuristics package.
//
// Failure semantics: callers treat any error or empty result as "no
// domains" — reputation data is an optional signal and its absence must
// never block an analysis.

const defaultBaseURL = "https://socials.solana.fm"

type Config struct {
	BaseURL string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// searchResponse mirrors the subset of the socials search payload carrying
// domain registrations.
type searchResponse struct {
	LabelSearch []struct {
		Document struct {
			EntityType string `json:"entityType"`
			Name       string `json:"name"`
		} `json:"document"`
	} `json:"labelSearch"`
}

// LookupDomains returns the domain names registered for an address, in the
// API's result order. An address with no registrations yields an empty
// slice and no error.
func (c *Client) LookupDomains(ctx context.Context, address string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/search?searchQuery=%s&network=Mainnet", c.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sns lookup %s: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sns lookup %s: HTTP %d", address, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("sns lookup %s: decode: %w", address, err)
	}

	var domains []string
	for _, item := range payload.LabelSearch {
		if item.Document.EntityType != "Domains" || item.Document.Name == "" {
			continue
		}
		domains = append(domains, item.Document.Name)
	}
	return domains, nil
}
