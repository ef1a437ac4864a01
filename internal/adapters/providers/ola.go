package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/platform/obs"
)

const olaDirectionsURL = "https://api.olamaps.io/routing/v1/directions"

// OlaProvider implements RouteProvider using the Ola Maps directions API.
type OlaProvider struct {
	client
}

func NewOlaProvider(apiKey string, opts ...Option) (*OlaProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ola maps api key is empty")
	}
	return &OlaProvider{client: newClient(apiKey, olaDirectionsURL, opts)}, nil
}

func (o *OlaProvider) Name() string { return "ola" }

// Ola reports duration and distance as plain numbers, not {value} objects.
type olaDirectionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline string `json:"overview_polyline"`
		Legs             []struct {
			Duration float64 `json:"duration"`
			Distance float64 `json:"distance"`
		} `json:"legs"`
	} `json:"routes"`
}

func (o *OlaProvider) Fetch(ctx context.Context, route domain.RouteConfig) (_ domain.Estimate, err error) {
	defer obs.Time(ctx, "ola.Fetch")(&err)

	var decoded olaDirectionsResponse
	// Ola takes a POST with every parameter in the query string and no body.
	err = o.getJSON(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodPost, o.baseURL, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("api_key", o.apiKey)
		q.Set("origin", route.Origin.LatLng())
		q.Set("destination", route.Destination.LatLng())
		q.Set("steps", "true")
		q.Set("overview", "full")
		req.URL.RawQuery = q.Encode()
		return req, nil
	}, &decoded)
	if err != nil {
		var he *HTTPStatusError
		if errors.As(err, &he) {
			return domain.Estimate{}, fmt.Errorf("ola maps HTTP %d: %s", he.Code, he.Body)
		}
		return domain.Estimate{}, fmt.Errorf("ola directions request: %w", err)
	}

	if decoded.Status != "SUCCESS" || len(decoded.Routes) == 0 || len(decoded.Routes[0].Legs) == 0 {
		status := decoded.Status
		if status == "" {
			status = "no routes"
		}
		return domain.Estimate{}, fmt.Errorf("ola maps API error: %s", status)
	}

	route0 := decoded.Routes[0]
	leg := route0.Legs[0]

	return domain.Estimate{
		DurationSeconds: int(math.Round(leg.Duration)),
		DistanceMeters:  int(math.Round(leg.Distance)),
		Polyline:        route0.OverviewPolyline,
	}, nil
}
