// Package geocode resolves a free-text location into a single
// best-match longitude/latitude pair using a Mapbox-style forward
// geocoding endpoint. The service is a black box: one HTTP call, no
// retries, and a transport failure propagates to the caller like any
// other dependency failure.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Point is a GeoJSON-style position: longitude first, then latitude.
type Point struct {
	Longitude float64
	Latitude  float64
}

// Client calls the forward geocoding API. A zero BaseURL disables the
// client: Forward then reports "no match" for every query, leaving
// campground geometry unset.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a geocoding client. baseURL is the endpoint prefix
// up to (not including) the query text, e.g.
// "https://api.mapbox.com/geocoding/v5/mapbox.places".
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Forward geocodes the given free-text location. The second return
// value reports whether the service produced any match at all; zero
// matches is a normal outcome, not an error.
func (c *Client) Forward(ctx context.Context, location string) (Point, bool, error) {
	if c.baseURL == "" {
		return Point{}, false, nil
	}
	endpoint := fmt.Sprintf("%s/%s.json?limit=1&access_token=%s",
		c.baseURL, url.PathEscape(location), url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Point{}, false, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return Point{}, false, fmt.Errorf("geocode request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Point{}, false, fmt.Errorf("geocode request: unexpected status %d", res.StatusCode)
	}

	var body struct {
		Features []struct {
			Center []float64 `json:"center"`
		} `json:"features"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return Point{}, false, fmt.Errorf("geocode response: %w", err)
	}
	if len(body.Features) == 0 || len(body.Features[0].Center) < 2 {
		return Point{}, false, nil
	}
	return Point{
		Longitude: body.Features[0].Center[0],
		Latitude:  body.Features[0].Center[1],
	}, true, nil
}
