package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
	"github.com/IIXINGCHEN/ip-api-production/internal/usecase/aggregation"
	"github.com/IIXINGCHEN/ip-api-production/internal/usecase/threat"
)

// LookupHandler exposes the two engines over HTTP. It is a thin
// translation layer: parameter extraction, error mapping, JSON out.
type LookupHandler struct {
	geo    *aggregation.Service
	threat *threat.Service
	logger *slog.Logger
}

// NewLookupHandler creates the lookup handler.
func NewLookupHandler(geo *aggregation.Service, ts *threat.Service, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{geo: geo, threat: ts, logger: logger}
}

// GetGeo handles GET /api/v1/geo/{ip}: geolocation only.
func (h *LookupHandler) GetGeo(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, aggregation.Options{})
}

// GetLookup handles GET /api/v1/lookup/{ip}: geolocation with the
// threat assessment attached.
func (h *LookupHandler) GetLookup(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, aggregation.Options{IncludeThreat: true})
}

func (h *LookupHandler) lookup(w http.ResponseWriter, r *http.Request, opts aggregation.Options) {
	ip := chi.URLParam(r, "ip")
	rc := entity.RequestContextFrom(r)

	record, err := h.geo.Lookup(r.Context(), ip, rc, opts)
	if err != nil {
		if errors.Is(err, aggregation.ErrInvalidIP) {
			ErrorResponse(w, http.StatusBadRequest, "invalid ip address")
			return
		}
		h.logger.Error("lookup failed", "ip", ip, "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "failed to retrieve information")
		return
	}

	JSONResponse(w, http.StatusOK, record)
}

// GetThreat handles GET /api/v1/threat/{ip}: threat assessment only.
func (h *LookupHandler) GetThreat(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	rc := entity.RequestContextFrom(r)

	assessment, err := h.threat.AssessIP(r.Context(), ip, rc)
	if err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid ip address")
		return
	}

	JSONResponse(w, http.StatusOK, assessment)
}
