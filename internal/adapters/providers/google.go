package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/platform/obs"
)

const googleDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"

// GoogleProvider implements RouteProvider using the Google Directions API.
// Durations are traffic-aware (departure_time=now) when Google reports them.
type GoogleProvider struct {
	client
}

func NewGoogleProvider(apiKey string, opts ...Option) (*GoogleProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google maps api key is empty")
	}
	return &GoogleProvider{client: newClient(apiKey, googleDirectionsURL, opts)}, nil
}

func (g *GoogleProvider) Name() string { return "google" }

type googleValue struct {
	Value int `json:"value"`
}

type googleDirectionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Duration          googleValue  `json:"duration"`
			DurationInTraffic *googleValue `json:"duration_in_traffic"`
			Distance          googleValue  `json:"distance"`
		} `json:"legs"`
	} `json:"routes"`
}

func (g *GoogleProvider) Fetch(ctx context.Context, route domain.RouteConfig) (_ domain.Estimate, err error) {
	defer obs.Time(ctx, "google.Fetch")(&err)

	var decoded googleDirectionsResponse
	err = g.getJSON(ctx, func() (*http.Request, error) {
		req, err := g.newRequest(ctx, http.MethodGet, g.baseURL, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("origin", route.Origin.LatLng())
		q.Set("destination", route.Destination.LatLng())
		q.Set("departure_time", "now")
		q.Set("key", g.apiKey)
		req.URL.RawQuery = q.Encode()
		return req, nil
	}, &decoded)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("google directions request: %w", err)
	}

	if decoded.Status != "OK" {
		msg := strings.TrimSpace(decoded.Status + " " + decoded.ErrorMessage)
		return domain.Estimate{}, fmt.Errorf("google API error: %s", msg)
	}
	if len(decoded.Routes) == 0 || len(decoded.Routes[0].Legs) == 0 {
		return domain.Estimate{}, errors.New("google API returned no routes")
	}

	route0 := decoded.Routes[0]
	leg := route0.Legs[0]

	duration := leg.Duration.Value
	if leg.DurationInTraffic != nil {
		duration = leg.DurationInTraffic.Value
	}
	noTraffic := leg.Duration.Value

	return domain.Estimate{
		DurationSeconds:          duration,
		DurationNoTrafficSeconds: &noTraffic,
		DistanceMeters:           leg.Distance.Value,
		Polyline:                 route0.OverviewPolyline.Points,
	}, nil
}
