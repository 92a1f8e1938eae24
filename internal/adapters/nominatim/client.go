package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/donamatch/donamatch/internal/core/domain"
)

// addressOrder is the order components appear in a formatted address.
var addressOrder = []string{"road", "house_number", "suburb", "city", "town", "county", "state", "postcode", "country"}

// Client implements ports.Geocoder against a Nominatim server.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// New creates a Nominatim client. Nominatim's usage policy requires an
// identifying User-Agent.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// Reverse looks up the address at point.
func (c *Client) Reverse(ctx context.Context, point domain.GeoPoint) (*domain.Address, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(point.Lon, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: nominatim: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: nominatim returned HTTP %d", domain.ErrUpstream, resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode nominatim response: %v", domain.ErrUpstream, err)
	}
	// Nominatim reports "Unable to geocode" with a 200 status.
	if body.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, body.Error)
	}
	if body.Address == nil {
		body.Address = map[string]string{}
	}

	return &domain.Address{
		DisplayName: body.DisplayName,
		Components:  body.Address,
		Formatted:   FormatAddress(body.Address),
	}, nil
}

// FormatAddress joins the known, non-empty address components with ", ".
func FormatAddress(components map[string]string) string {
	parts := make([]string, 0, len(addressOrder))
	for _, k := range addressOrder {
		if v := strings.TrimSpace(components[k]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
