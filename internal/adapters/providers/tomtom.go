package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/platform/obs"
	"route-divergence-service/internal/polyline"
)

const tomtomBaseURL = "https://api.tomtom.com"

// TomTomProvider implements RouteProvider using the TomTom Routing API.
// TomTom returns raw points, which are encoded into the polyline format here.
type TomTomProvider struct {
	client
}

func NewTomTomProvider(apiKey string, opts ...Option) (*TomTomProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("tomtom api key is empty")
	}
	return &TomTomProvider{client: newClient(apiKey, tomtomBaseURL, opts)}, nil
}

func (t *TomTomProvider) Name() string { return "tomtom" }

type tomtomRouteResponse struct {
	Routes []struct {
		Summary struct {
			LengthInMeters        int  `json:"lengthInMeters"`
			TravelTimeInSeconds   int  `json:"travelTimeInSeconds"`
			TrafficDelayInSeconds *int `json:"trafficDelayInSeconds"`
		} `json:"summary"`
		Legs []struct {
			Points []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"points"`
		} `json:"legs"`
	} `json:"routes"`
}

func (t *TomTomProvider) Fetch(ctx context.Context, route domain.RouteConfig) (_ domain.Estimate, err error) {
	defer obs.Time(ctx, "tomtom.Fetch")(&err)

	endpoint := fmt.Sprintf("%s/routing/1/calculateRoute/%s:%s/json",
		t.baseURL, route.Origin.LatLng(), route.Destination.LatLng())

	var decoded tomtomRouteResponse
	err = t.getJSON(ctx, func() (*http.Request, error) {
		req, err := t.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("key", t.apiKey)
		q.Set("traffic", "true")
		q.Set("travelMode", "car")
		req.URL.RawQuery = q.Encode()
		return req, nil
	}, &decoded)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("tomtom routing request: %w", err)
	}

	if len(decoded.Routes) == 0 {
		return domain.Estimate{}, errors.New("tomtom API returned no routes")
	}

	route0 := decoded.Routes[0]
	summary := route0.Summary

	var points []domain.GeoPoint
	if len(route0.Legs) > 0 {
		points = make([]domain.GeoPoint, 0, len(route0.Legs[0].Points))
		for _, p := range route0.Legs[0].Points {
			points = append(points, domain.GeoPoint{Lat: p.Latitude, Lng: p.Longitude})
		}
	}

	delay := 0
	if summary.TrafficDelayInSeconds != nil {
		delay = *summary.TrafficDelayInSeconds
	}

	return domain.Estimate{
		DurationSeconds:     summary.TravelTimeInSeconds,
		DistanceMeters:      summary.LengthInMeters,
		TrafficDelaySeconds: &delay,
		Polyline:            polyline.Encode(points),
	}, nil
}
