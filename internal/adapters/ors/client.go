// Package ors implements the RoutingProvider port against the
// OpenRouteService directions API.
package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/pkg/metrics"
)

const defaultBaseURL = "https://api.openrouteservice.org"

// Client calls the OpenRouteService /v2/directions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New creates a Client. An empty apiKey returns nil: callers treat a nil
// provider as "road routing disabled" and fall back to straight lines.
func New(apiKey, baseURL string, timeout time.Duration) *Client {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// profileFor maps a travel mode to an OpenRouteService routing profile.
func profileFor(mode domain.TravelMode) string {
	if mode == domain.ModeWalking {
		return "foot-walking"
	}
	return "driving-car"
}

// directionsRequest is the POST body. The API expects [lon, lat] pairs.
type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

// directionsResponse is the subset of the GeoJSON response we read.
type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"` // meters
				Duration float64 `json:"duration"` // seconds
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Route fetches a road path between two points.
func (c *Client) Route(ctx context.Context, from, to domain.GeoPoint, mode domain.TravelMode) (*domain.RouteResult, error) {
	url := fmt.Sprintf("%s/v2/directions/%s/geojson", c.baseURL, profileFor(mode))

	body, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{toLonLat(from), toLonLat(to)},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()
	metrics.RoutingRequestDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("HTTP %d from directions API", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var dr directionsResponse
	if err := json.Unmarshal(raw, &dr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(dr.Features) == 0 {
		return nil, fmt.Errorf("directions API returned no route")
	}

	feat := dr.Features[0]
	coords := make([]domain.GeoPoint, 0, len(feat.Geometry.Coordinates))
	for _, pair := range feat.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		coords = append(coords, fromLonLat(pair[0], pair[1]))
	}

	return &domain.RouteResult{
		Coordinates: coords,
		DistanceKm:  math.Round(feat.Properties.Summary.Distance/1000*10) / 10,
		DurationMin: int(math.Round(feat.Properties.Summary.Duration / 60)),
		Kind:        domain.RouteRoad,
	}, nil
}

// toLonLat converts a point to the wire order the API expects. This and
// fromLonLat are the only places the axis swap happens.
func toLonLat(p domain.GeoPoint) [2]float64 {
	return [2]float64{p.Lon, p.Lat}
}

// fromLonLat converts a wire pair back to a point.
func fromLonLat(lon, lat float64) domain.GeoPoint {
	return domain.GeoPoint{Lat: lat, Lon: lon}
}
