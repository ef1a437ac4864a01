package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"route-divergence-service/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadRoutes reads and validates the monitored routes from a JSON file.
func LoadRoutes(jsonPath string) ([]domain.RouteConfig, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load routes: read %q: %w", jsonPath, err)
	}

	return ParseRoutes(data)
}

// ParseRoutes decodes a JSON array of routes. Ids must be unique and
// usable as file names; coordinates must be in WGS-84 range.
func ParseRoutes(data []byte) ([]domain.RouteConfig, error) {
	var routes []domain.RouteConfig
	if err := json.Unmarshal(data, &routes); err != nil {
		return nil, fmt.Errorf("load routes: parse json: %w", err)
	}
	if len(routes) == 0 {
		return nil, errors.New("load routes: no routes configured")
	}

	seen := make(map[string]struct{}, len(routes))
	for i := range routes {
		r := &routes[i]
		r.ID = strings.TrimSpace(r.ID)
		r.Label = strings.TrimSpace(r.Label)

		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("load routes: route at index %d: %w", i, err)
		}
		if strings.ContainsAny(r.ID, `/\`) || strings.Contains(r.ID, "..") {
			return nil, fmt.Errorf("load routes: route at index %d: id %q must not contain path separators", i, r.ID)
		}
		if _, ok := seen[r.ID]; ok {
			return nil, fmt.Errorf("load routes: duplicate route id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	return routes, nil
}
