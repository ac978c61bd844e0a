package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PostcodeClient checks UK outcodes against a postcodes.io-shaped API:
// GET /outcodes/{outcode} answers existence, GET /outcodes/{outcode}/nearest
// supplies neighbours used as suggestions for typos.
type PostcodeClient struct {
	baseURL string
	client  *http.Client
}

// NewPostcodeClient builds a checker for the given API base URL.
func NewPostcodeClient(baseURL string, timeout time.Duration) *PostcodeClient {
	return &PostcodeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type outcodeResponse struct {
	Status int             `json:"status"`
	Result json.RawMessage `json:"result"`
}

type nearestResponse struct {
	Status int `json:"status"`
	Result []struct {
		Outcode string `json:"outcode"`
	} `json:"result"`
}

// Check reports whether the outcode exists. For unknown outcodes it adds
// nearby suggestions on a best-effort basis; a failing suggestion call never
// fails the check itself.
func (p *PostcodeClient) Check(ctx context.Context, outcode string) (CheckResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.outcodeURL(outcode, ""), nil)
	if err != nil {
		return CheckResult{}, fmt.Errorf("build outcode request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return CheckResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body outcodeResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return CheckResult{}, fmt.Errorf("%w: decode outcode response: %v", ErrUnavailable, err)
		}
		if body.Status == http.StatusOK {
			return CheckResult{Valid: true}, nil
		}
		return CheckResult{Valid: false, Suggestions: p.nearby(ctx, outcode)}, nil
	case http.StatusNotFound:
		return CheckResult{Valid: false, Suggestions: p.nearby(ctx, outcode)}, nil
	default:
		return CheckResult{}, fmt.Errorf("%w: postcode API returned HTTP %d", ErrUnavailable, resp.StatusCode)
	}
}

// nearby fetches neighbouring outcodes, excluding the queried one.
func (p *PostcodeClient) nearby(ctx context.Context, outcode string) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.outcodeURL(outcode, "/nearest"), nil)
	if err != nil {
		return nil
	}

	resp, err := p.client.Do(req)
	if err != nil {
		slog.Debug("Nearby outcode lookup failed", "outcode", outcode, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	var body nearestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil
	}

	var codes []string
	for _, item := range body.Result {
		if !strings.EqualFold(item.Outcode, outcode) {
			codes = append(codes, item.Outcode)
		}
	}
	return codes
}

func (p *PostcodeClient) outcodeURL(outcode, suffix string) string {
	return p.baseURL + "/outcodes/" + url.PathEscape(outcode) + suffix
}
