package controllers

import (
	"net/http"

	"github.com/cis1951/lec8-backend/internal/broadcast"
	"github.com/cis1951/lec8-backend/internal/runtime"
)

// Welcome is the body of GET /.
const Welcome = "Welcome to the iOstagram API!"

// GeneralController serves the root greeting and health checks.
type GeneralController struct {
	rt *runtime.Runtime
	bc *broadcast.Broadcaster
}

func NewGeneralController(rt *runtime.Runtime, bc *broadcast.Broadcaster) *GeneralController {
	return &GeneralController{rt: rt, bc: bc}
}

type healthResponse struct {
	Status      string        `json:"status"`
	Subscribers int           `json:"subscribers"`
	Storage     runtime.Stats `json:"storage"`
}

// RegisterRoutes registers general routes with the given mux.
func (c *GeneralController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", c.handleRoot)
	mux.HandleFunc("/healthz", c.handleHealth)
}

func (c *GeneralController) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, "GET")
		return
	}
	writeText(w, http.StatusOK, Welcome)
}

// handleHealth returns 200 with live subscriber and storage counts if storage
// answers, 503 otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not_serving"}` + "\n"))
		return
	}
	writeJSON(w, healthResponse{Status: "ok", Subscribers: c.bc.Count(), Storage: c.rt.Stats()})
}
