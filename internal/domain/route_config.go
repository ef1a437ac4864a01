package domain

// RouteConfig is one monitored origin/destination pair.
// It is loaded once at startup and never mutated afterwards.
type RouteConfig struct {
	ID          string   `json:"id" validate:"required"`
	Label       string   `json:"label" validate:"required"`
	Origin      GeoPoint `json:"origin"`
	Destination GeoPoint `json:"destination"`
}
