package dto

import "route-divergence-service/internal/services"

type SeriesResponse struct {
	RouteID string                    `json:"routeId"`
	Count   int                       `json:"count"`
	Series  []services.ProviderSeries `json:"series"`
}
