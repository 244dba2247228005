// Package geocoding implements the geolocation gateway against a
// positionstack-style reverse-geocoding HTTP API.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trips-service/internal/domain"
)

// reverseResponse is the wire shape of the reverse-geocoding endpoint:
// a data array whose first entry is the best match for the queried point.
type reverseResponse struct {
	Data []struct {
		Country  string `json:"country"`
		Locality string `json:"locality"`
	} `json:"data"`
}

// Client resolves coordinates via GET {base}/reverse?access_key=...&query=lat,lon&limit=1.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient constructs a Client for the given API base URL and key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve looks up country/locality for coords. The remote finding no match
// for the point is a valid empty result, not an error; timeouts, transport
// errors, and non-2xx statuses all fold into an error wrapping
// domain.ErrGateway.
func (c *Client) Resolve(ctx context.Context, coords domain.GeolocationCoordinates) (domain.GeolocationInfo, bool, error) {
	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("query", fmt.Sprintf("%f,%f", coords.Latitude, coords.Longitude))
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return domain.GeolocationInfo{}, false, fmt.Errorf("geocoding.Client.Resolve: %w: %w", domain.ErrGateway, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return domain.GeolocationInfo{}, false, fmt.Errorf("geocoding.Client.Resolve: %w: %w", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.GeolocationInfo{}, false, fmt.Errorf("geocoding.Client.Resolve: %w: unexpected status %d", domain.ErrGateway, resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.GeolocationInfo{}, false, fmt.Errorf("geocoding.Client.Resolve: %w: decode response: %w", domain.ErrGateway, err)
	}

	if len(body.Data) == 0 {
		return domain.GeolocationInfo{}, false, nil
	}

	first := body.Data[0]
	return domain.GeolocationInfo{Country: first.Country, Locality: first.Locality}, true, nil
}
