package web

import (
	"github.com/prometheus/client_golang/prometheus"

	"tempctl/internal/sim"
)

// Metrics exposes the loop state to Prometheus. Gauges are refreshed from
// snapshots on the broadcast path.
type Metrics struct {
	pv       prometheus.Gauge
	sv       prometheus.Gauge
	mv       prometheus.Gauge
	stop     prometheus.Gauge
	autotune prometheus.Gauge
	mode     *prometheus.GaugeVec

	buttonPresses *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pv: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tempctl_pv_degrees",
			Help: "Current process value in degrees C.",
		}),
		sv: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tempctl_sv_degrees",
			Help: "Current setpoint in degrees C.",
		}),
		mv: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tempctl_mv_percent",
			Help: "Manipulated value driving the heater, 0-100.",
		}),
		stop: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tempctl_stop_control",
			Help: "1 while the control output is forced off.",
		}),
		autotune: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tempctl_autotune_active",
			Help: "1 while a relay autotune session runs.",
		}),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tempctl_mode",
			Help: "Controller mode indicator (1 for the active mode).",
		}, []string{"mode"}),
		buttonPresses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tempctl_button_presses_total",
			Help: "Front-panel button events received over the API.",
		}, []string{"button"}),
	}
	reg.MustRegister(m.pv, m.sv, m.mv, m.stop, m.autotune, m.mode, m.buttonPresses)
	return m
}

func (m *Metrics) Observe(snap sim.Snapshot) {
	if m == nil {
		return
	}
	m.pv.Set(snap.PV)
	m.sv.Set(snap.SV)
	m.mv.Set(snap.MV)
	m.stop.Set(b2f(snap.StopControl))
	m.autotune.Set(b2f(snap.AutotuneActive))
	for _, mode := range []string{"onoff", "pid", "autotune", "stopped"} {
		m.mode.WithLabelValues(mode).Set(b2f(mode == snap.Mode))
	}
}

func (m *Metrics) CountButton(button string) {
	if m == nil {
		return
	}
	m.buttonPresses.WithLabelValues(button).Inc()
}

func b2f(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
