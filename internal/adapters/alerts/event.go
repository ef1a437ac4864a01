package alerts

import (
	"encoding/json"
	"fmt"

	"route-divergence-service/internal/ports"
)

const EventRouteDivergence = "route.divergence"

// Event is the envelope published to message brokers.
type Event struct {
	Type string                `json:"type"`
	Data ports.DivergenceAlert `json:"data"`
}

func encodeEvent(alert ports.DivergenceAlert) ([]byte, error) {
	body, err := json.Marshal(Event{Type: EventRouteDivergence, Data: alert})
	if err != nil {
		return nil, fmt.Errorf("encode divergence event: %w", err)
	}
	return body, nil
}

// routingKey is "route.divergence.<routeID>" so consumers can bind per route.
func routingKey(alert ports.DivergenceAlert) string {
	return EventRouteDivergence + "." + alert.RouteID
}
