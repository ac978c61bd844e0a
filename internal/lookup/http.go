package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/domain"
)

// HTTPSource queries a JSON price API. The expected response shape is
//
//	{"status": "ok", "prices": [{"property_type": ..., "min_price": ...,
//	 "max_price": ..., "source": ...}]}
//
// Any transport failure, timeout or non-200 answer maps to ErrUnavailable.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource builds a price client for the given base URL. The timeout
// bounds the whole request including body read.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type priceResponse struct {
	Status string      `json:"status"`
	Prices []wirePrice `json:"prices"`
}

type wirePrice struct {
	PropertyType string `json:"property_type"`
	MinPrice     int64  `json:"min_price"`
	MaxPrice     int64  `json:"max_price"`
	Source       string `json:"source"`
}

// Lookup fetches price options for the postcode, optionally filtered by
// property type.
func (h *HTTPSource) Lookup(ctx context.Context, postcode, propertyType string) ([]domain.PriceOption, error) {
	query := url.Values{}
	query.Set("postcode", postcode)
	if propertyType != "" {
		query.Set("property_type", propertyType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/prices?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: price API returned HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode price response: %v", ErrUnavailable, err)
	}

	options := make([]domain.PriceOption, 0, len(body.Prices))
	for _, p := range body.Prices {
		options = append(options, domain.PriceOption{
			PropertyType: p.PropertyType,
			MinPrice:     p.MinPrice,
			MaxPrice:     p.MaxPrice,
			Source:       p.Source,
		})
	}
	return options, nil
}
