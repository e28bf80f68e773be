// internal/upc/client.go

// Package upc is the boundary client for the external UPC/EAN lookup
// service. Intake uses it to enrich upcMatched before routing; a lookup
// failure degrades to "no match" and never blocks routing.
package upc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	stderrors "marketplace-routing/internal/common/errors"
	"marketplace-routing/internal/common/logger"
)

// Product is the subset of lookup fields the intake flow consumes.
type Product struct {
	UPC      string `json:"upc"`
	Title    string `json:"title"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Matched  bool   `json:"matched"`
}

// Client calls the lookup service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a lookup client with the given request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithFields(map[string]interface{}{"component": "upc-client"}),
	}
}

// Lookup resolves a UPC code. A 404 from the service is a clean "no match";
// transport and server errors are returned as retryable lookup errors.
func (c *Client) Lookup(ctx context.Context, code string) (*Product, error) {
	endpoint := fmt.Sprintf("%s/v1/products/%s", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, stderrors.NewUPCLookupError(err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, stderrors.NewUPCLookupError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &Product{UPC: code, Matched: false}, nil
	case resp.StatusCode != http.StatusOK:
		return nil, stderrors.NewUPCLookupError(fmt.Errorf("lookup %s: status %d", code, resp.StatusCode))
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, stderrors.NewUPCLookupError(err)
	}
	product.UPC = code
	product.Matched = true
	return &product, nil
}
