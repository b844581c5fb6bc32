package restserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/chrissnell/tidegauge/internal/log"
	"github.com/chrissnell/tidegauge/internal/store"
	"github.com/chrissnell/tidegauge/pkg/config"
	"github.com/chrissnell/tidegauge/pkg/responseformat"
)

const maxListLimit = 1000

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// ConstituentInfo is one catalog entry as served by /constituents
type ConstituentInfo struct {
	Name        string  `json:"name"`
	Doodson     [6]int  `json:"doodson"`
	Description string  `json:"description"`
	Speed       float64 `json:"speedDegPerHour"`
	Period      float64 `json:"periodHours"`
}

func (h *Handlers) Healthz(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]string{"status": "healthy"}, nil)
}

// ListRuns serves /runs?station=NAME&limit=N
func (h *Handlers) ListRuns(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	limit := 100
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			h.formatter.WriteError(w, req, http.StatusBadRequest, "limit must be an integer between 1 and 1000")
			return
		}
		limit = n
	}

	runs, err := h.controller.Store.ListRuns(req.Context(), q.Get("station"), limit)
	if err != nil {
		log.Errorf("error listing runs: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "error listing runs")
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}

	h.formatter.WriteResponse(w, req, runs, nil)
}

func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	run, err := h.controller.Store.GetRun(req.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		h.formatter.WriteError(w, req, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		log.Errorf("error fetching run %s: %v", id, err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, "error fetching run")
		return
	}

	h.formatter.WriteResponse(w, req, run, nil)
}

// ListConstituents serves the catalog with speeds evaluated at ?at=TIME,
// defaulting to J2000
func (h *Handlers) ListConstituents(w http.ResponseWriter, req *http.Request) {
	at := j2000
	if v := req.URL.Query().Get("at"); v != "" {
		t, err := config.ParseTime(v)
		if err != nil {
			h.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
			return
		}
		at = t
	}

	cs := h.controller.Catalog.Constituents()
	out := make([]ConstituentInfo, len(cs))
	for i, c := range cs {
		out[i] = ConstituentInfo{
			Name:        c.Name,
			Doodson:     c.Doodson,
			Description: c.Description,
			Speed:       c.Speed(at),
			Period:      c.Period(at),
		}
	}

	h.formatter.WriteResponse(w, req, out, map[string]string{"Cache-Control": "max-age=3600"})
}

var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
