package handlers

import (
	"net/http"

	"github.com/mmcloughlin/geohash"

	"route-divergence-service/internal/api/dto"
	"route-divergence-service/internal/domain"
)

// Geohash cells of this length are roughly 150m across.
const geohashPrecision = 7

// RouteHandler lists the monitored routes.
type RouteHandler struct {
	routes []dto.RouteResponse
}

func NewRouteHandler(routes []domain.RouteConfig) *RouteHandler {
	res := make([]dto.RouteResponse, 0, len(routes))
	for _, rc := range routes {
		res = append(res, dto.RouteResponse{
			ID:                 rc.ID,
			Label:              rc.Label,
			Origin:             rc.Origin,
			Destination:        rc.Destination,
			OriginGeohash:      geohash.EncodeWithPrecision(rc.Origin.Lat, rc.Origin.Lng, geohashPrecision),
			DestinationGeohash: geohash.EncodeWithPrecision(rc.Destination.Lat, rc.Destination.Lng, geohashPrecision),
		})
	}
	return &RouteHandler{routes: res}
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	writeJSON(w, r, http.StatusOK, h.routes)
}
