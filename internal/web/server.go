package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tempctl/internal/panel"
	"tempctl/internal/sim"
)

// Server is the HTTP surface for the excluded rendering/input collaborators:
// a status snapshot, button and environment command endpoints, a live
// websocket stream, and Prometheus metrics.
type Server struct {
	core    *sim.Simulator
	b       *Broadcaster
	metrics *Metrics
	started time.Time
}

func NewServer(core *sim.Simulator, b *Broadcaster, metrics *Metrics) *Server {
	return &Server{core: core, b: b, metrics: metrics, started: time.Now().UTC()}
}

// Handler builds the routed, logged handler tree.
func (s *Server) Handler(logWriter io.Writer) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/button/{id}/{edge}", s.handleButton).Methods(http.MethodPost)
	r.HandleFunc("/api/env", s.handleEnv).Methods(http.MethodPost)
	r.HandleFunc("/api/live", s.handleLive).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))

	return handlers.RecoveryHandler()(handlers.CombinedLoggingHandler(logWriter, r))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusResponse struct {
	Service   string       `json:"service"`
	NowUTC    string       `json:"now_utc"`
	UptimeSec int64        `json:"uptime_sec"`
	State     sim.Snapshot `json:"state"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	now := time.Now().UTC()
	resp := statusResponse{
		Service:   "tempctl",
		NowUTC:    now.Format(time.RFC3339Nano),
		UptimeSec: int64(now.Sub(s.started).Seconds()),
		State:     s.core.Snapshot(),
	}
	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

func (s *Server) handleButton(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := panel.Button(vars["id"])
	if !panel.KnownButton(id) {
		http.Error(w, fmt.Sprintf("unknown button %q", vars["id"]), http.StatusNotFound)
		return
	}

	now := time.Now()
	switch vars["edge"] {
	case "press":
		s.core.ButtonDown(id, now)
		s.metrics.CountButton(string(id))
	case "release":
		s.core.ButtonUp(id, now)
	case "click":
		// Convenience: a full short press in one call.
		s.core.ButtonDown(id, now)
		s.core.ButtonUp(id, now.Add(50*time.Millisecond))
		s.metrics.CountButton(string(id))
	default:
		http.Error(w, fmt.Sprintf("unknown edge %q", vars["edge"]), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("{\"ok\":true}\n"))
}

type envRequest struct {
	AmbientTemp     *float64 `json:"ambient_temp,omitempty"`
	CoolingRate     *float64 `json:"cooling_rate,omitempty"`
	HeaterGain      *float64 `json:"heater_gain,omitempty"`
	ExternalHeat    *float64 `json:"external_heat,omitempty"`
	SensorConnected *bool    `json:"sensor_connected,omitempty"`
}

func (s *Server) handleEnv(w http.ResponseWriter, r *http.Request) {
	var req envRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if req.AmbientTemp != nil {
		s.core.SetAmbientTemp(*req.AmbientTemp)
	}
	if req.CoolingRate != nil {
		s.core.SetCoolingRate(*req.CoolingRate)
	}
	if req.HeaterGain != nil {
		s.core.SetHeaterGain(*req.HeaterGain)
	}
	if req.ExternalHeat != nil {
		s.core.SetExternalHeat(*req.ExternalHeat)
	}
	if req.SensorConnected != nil {
		s.core.SetSensorConnected(*req.SensorConnected)
	}
	w.WriteHeader(http.StatusNoContent)
}
