package api

import (
	"net/http"

	"route-divergence-service/internal/api/handlers"
	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// providers fixes the series order; nil derives it from the stored records.
func NewRouter(sink ports.RecordSink, routes []domain.RouteConfig, providers []string) http.Handler {
	mux := http.NewServeMux()

	routeHandler := handlers.NewRouteHandler(routes)
	recordHandler := handlers.NewRecordHandler(sink, routes, providers)

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/api/routes", routeHandler.List)
	mux.HandleFunc("/api/data/{routeID}", recordHandler.All)
	mux.HandleFunc("/api/data/{routeID}/latest", recordHandler.Latest)
	mux.HandleFunc("/api/data/{routeID}/series", recordHandler.Series)

	return requestIDMiddleware(loggingMiddleware(mux))
}
