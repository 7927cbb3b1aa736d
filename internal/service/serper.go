package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"shopmate/internal/config"
	"shopmate/internal/model"
)

// SerperClient searches the Serper shopping API for candidate products.
// Provider-level failures (non-2xx, network errors, malformed records)
// degrade to an empty result list and are logged; they never surface to
// the orchestrator as errors.
type SerperClient struct {
	cfg        *config.SerperConfig
	httpClient *http.Client
}

// NewSerperClient creates a new catalog search client. A missing API key
// is a fatal configuration error, resolved at startup rather than per-turn.
func NewSerperClient(cfg *config.SerperConfig) (*SerperClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SERPER_API_KEY environment variable is not set")
	}
	return &SerperClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}, nil
}

// serperRequest is the shopping search payload
type serperRequest struct {
	Q        string `json:"q"`
	Location string `json:"location,omitempty"`
	Num      int    `json:"num,omitempty"`
	TBS      string `json:"tbs,omitempty"`
}

// serperResponse is the shopping search response envelope
type serperResponse struct {
	Shopping []model.SerperProduct `json:"shopping"`
}

// SearchProducts queries the provider with the extracted parameters.
// Results keep the provider's native relevance order.
func (c *SerperClient) SearchProducts(ctx context.Context, params *model.SearchParameters) ([]model.Product, error) {
	payload := serperRequest{
		Q:        params.Query(),
		Location: c.cfg.Location,
		Num:      c.cfg.ResultCount,
		TBS:      buildTBS(params.Filters),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return []model.Product{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		log.Printf("Error building Serper request: %v", err)
		return []model.Product{}, nil
	}
	req.Header.Set("X-API-KEY", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Error searching products: %v", err)
		return []model.Product{}, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading Serper response: %v", err)
		return []model.Product{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Serper API error: Status %d, Response: %s", resp.StatusCode, string(respBody))
		return []model.Product{}, nil
	}

	var data serperResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		log.Printf("Error decoding Serper response: %v", err)
		return []model.Product{}, nil
	}

	products := make([]model.Product, 0, len(data.Shopping))
	for _, raw := range data.Shopping {
		products = append(products, model.ProductFromSerper(raw))
	}

	return products, nil
}

// buildTBS encodes filters into the provider's tbs query parameter.
// Returns "" when no filter beyond the mr:1 marker applies.
func buildTBS(filters *model.SearchFilters) string {
	parts := []string{"mr:1"}

	if filters != nil {
		if pr := filters.PriceRange; pr != nil {
			switch {
			case pr.Min != nil && pr.Max != nil:
				parts = append(parts, fmt.Sprintf("price:1,ppr_min:%g,ppr_max:%g", *pr.Min, *pr.Max))
			case pr.Max != nil:
				parts = append(parts, fmt.Sprintf("price:1,ppr_max:%g", *pr.Max))
			case pr.Min != nil:
				parts = append(parts, fmt.Sprintf("price:1,ppr_min:%g", *pr.Min))
			}
		}

		if filters.MinRating != nil && *filters.MinRating > 0 {
			parts = append(parts, fmt.Sprintf("avg_rating:%d", int(*filters.MinRating*100)))
		}

		if filters.FreeShipping != nil && *filters.FreeShipping {
			parts = append(parts, "ship:1")
		}
		if filters.FreeReturns != nil && *filters.FreeReturns {
			parts = append(parts, "free_return:1")
		}
	}

	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, ",")
}
