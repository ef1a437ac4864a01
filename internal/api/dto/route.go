package dto

import "route-divergence-service/internal/domain"

type RouteResponse struct {
	ID                 string          `json:"id"`
	Label              string          `json:"label"`
	Origin             domain.GeoPoint `json:"origin"`
	Destination        domain.GeoPoint `json:"destination"`
	OriginGeohash      string          `json:"origin_geohash"`
	DestinationGeohash string          `json:"destination_geohash"`
}
