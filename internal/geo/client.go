// Package geo resolves free-text place names to coordinates using a
// Nominatim-compatible HTTP endpoint. Lookups are best-effort: the trip
// service treats any error here as "no coordinates" and persists anyway.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoResult is returned when the lookup succeeds but matches nothing.
var ErrNoResult = errors.New("no geocoding result")

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Lookuper resolves a place query to coordinates. The trip service depends
// on this interface so tests can substitute a stub without network access.
type Lookuper interface {
	Lookup(ctx context.Context, query string) (Coordinates, error)
}

// Client calls a Nominatim-style /search endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client for the given base URL. A trailing slash on
// the base URL is tolerated. The timeout bounds the whole lookup; callers
// additionally pass a context per request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// nominatimResult is the subset of the search response we read.
// Nominatim returns lat/lon as JSON strings.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Lookup resolves query (e.g. "Chicago, IL") to coordinates.
// Returns ErrNoResult when the service has no match.
func (c *Client) Lookup(ctx context.Context, query string) (Coordinates, error) {
	u := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: build request: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "waypoint-api")

	resp, err := c.http.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: unexpected status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: decode: %w", err)
	}
	if len(results) == 0 {
		return Coordinates{}, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geo.Client.Lookup: parse lon: %w", err)
	}

	return Coordinates{Latitude: lat, Longitude: lon}, nil
}
