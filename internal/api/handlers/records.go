package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"route-divergence-service/internal/api/dto"
	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/ports"
	"route-divergence-service/internal/services"
)

const defaultLatest = 100

// RecordHandler exposes the stored poll records of known routes.
type RecordHandler struct {
	Sink      ports.RecordSink
	Providers []string

	known map[string]struct{}
}

func NewRecordHandler(sink ports.RecordSink, routes []domain.RouteConfig, providers []string) *RecordHandler {
	known := make(map[string]struct{}, len(routes))
	for _, rc := range routes {
		known[rc.ID] = struct{}{}
	}
	return &RecordHandler{Sink: sink, Providers: providers, known: known}
}

// routeID extracts and checks the path's route id, answering 404 for unknown routes.
func (h *RecordHandler) routeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("routeID")
	if _, ok := h.known[id]; !ok {
		writeError(w, r, http.StatusNotFound, "unknown route")
		return "", false
	}
	return id, true
}

func (h *RecordHandler) All(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	id, ok := h.routeID(w, r)
	if !ok {
		return
	}

	records, err := h.Sink.ReadAll(r.Context(), id)
	if err != nil {
		h.internalError(w, r, id, err)
		return
	}

	writeJSON(w, r, http.StatusOK, nonNil(records))
}

// Latest returns the newest n records (query "n", default 100), oldest first.
func (h *RecordHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	id, ok := h.routeID(w, r)
	if !ok {
		return
	}

	records, err := h.Sink.ReadLatest(r.Context(), id, parseCount(r.URL.Query().Get("n")))
	if err != nil {
		h.internalError(w, r, id, err)
		return
	}

	writeJSON(w, r, http.StatusOK, nonNil(records))
}

// Series returns the per-provider chart model. Without "n" every record is used.
func (h *RecordHandler) Series(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	id, ok := h.routeID(w, r)
	if !ok {
		return
	}

	var (
		records []domain.PollRecord
		err     error
	)
	if raw := r.URL.Query().Get("n"); raw != "" {
		records, err = h.Sink.ReadLatest(r.Context(), id, parseCount(raw))
	} else {
		records, err = h.Sink.ReadAll(r.Context(), id)
	}
	if err != nil {
		h.internalError(w, r, id, err)
		return
	}

	providers := h.Providers
	if len(providers) == 0 {
		providers = services.ProvidersIn(records)
	}

	writeJSON(w, r, http.StatusOK, dto.SeriesResponse{
		RouteID: id,
		Count:   len(records),
		Series:  services.BuildSeries(records, providers),
	})
}

func (h *RecordHandler) internalError(w http.ResponseWriter, r *http.Request, routeID string, err error) {
	log.Error().Err(err).Str("route_id", routeID).Str("path", r.URL.Path).Msg("read records failed")
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

// parseCount falls back to the default unless raw is a positive integer.
func parseCount(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultLatest
	}
	return n
}

func nonNil(records []domain.PollRecord) []domain.PollRecord {
	if records == nil {
		return []domain.PollRecord{}
	}
	return records
}
