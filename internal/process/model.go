package process

import "math/rand"

// Simulated sensor input range. PV saturates at these bounds; a PV sitting
// exactly on a bound is reported as an over/under-range condition so the
// display layer can show the usual SSSS/UUUU style indication.
const (
	PVMin = -200.0
	PVMax = 1300.0
)

// Config describes the simulated thermal environment.
//
// All fields may be changed between steps; the model reads them on every
// Advance call and never writes them.
type Config struct {
	// AmbientTemp is the temperature the process drifts toward with no
	// heater output, in degrees C.
	AmbientTemp float64
	// ThermalInertia divides the net heat flux. Values <= 0 behave as 1.
	ThermalInertia float64
	// CoolingRate is the fraction of (pv - ambient) lost per second.
	CoolingRate float64
	// HeaterGain is the heating rate in degrees/second at MV = 100%.
	HeaterGain float64
	// ExternalHeat is an additional heat source in degrees/second,
	// supplied by whatever drives the environment (e.g. an ambient
	// volume sampler).
	ExternalHeat float64
	// SensorConnected false freezes the PV; the control layer treats it
	// as a sensor fault.
	SensorConnected bool
}

// Model integrates the process value under heater output and ambient loss.
//
// Not safe for concurrent use; the sim core serializes access.
type Model struct {
	cfg Config
	pv  float64
	rng *rand.Rand
}

// New returns a fully deterministic model starting at initialPV.
func New(cfg Config, initialPV float64) *Model {
	return &Model{cfg: cfg, pv: clamp(initialPV, PVMin, PVMax)}
}

// NewNoisy is New with a sensor noise source attached. A nil rng behaves
// like New.
func NewNoisy(cfg Config, initialPV float64, rng *rand.Rand) *Model {
	m := New(cfg, initialPV)
	m.rng = rng
	return m
}

func (m *Model) PV() float64 { return m.pv }

func (m *Model) Config() Config { return m.cfg }

func (m *Model) SetAmbientTemp(v float64)  { m.cfg.AmbientTemp = v }
func (m *Model) SetCoolingRate(v float64)  { m.cfg.CoolingRate = v }
func (m *Model) SetHeaterGain(v float64)   { m.cfg.HeaterGain = v }
func (m *Model) SetExternalHeat(v float64) { m.cfg.ExternalHeat = v }
func (m *Model) SetSensorConnected(v bool) { m.cfg.SensorConnected = v }

func (m *Model) SensorConnected() bool { return m.cfg.SensorConnected }

// OverRange reports PV saturated high; UnderRange saturated low.
func (m *Model) OverRange() bool  { return m.pv >= PVMax }
func (m *Model) UnderRange() bool { return m.pv <= PVMin }

// Advance integrates the PV over dtSeconds with the heater at mv percent
// (0-100). With the sensor disconnected the PV holds its last value.
func (m *Model) Advance(dtSeconds, mv float64) {
	if dtSeconds <= 0 || !m.cfg.SensorConnected {
		return
	}

	gain := m.cfg.ExternalHeat + (mv/100.0)*m.cfg.HeaterGain
	loss := (m.pv - m.cfg.AmbientTemp) * m.cfg.CoolingRate

	inertia := m.cfg.ThermalInertia
	if inertia <= 0 {
		inertia = 1
	}

	m.pv += (gain - loss) * dtSeconds / inertia

	if m.rng != nil {
		// Symmetric sensor noise, +/- 0.01 degrees per unit dt.
		m.pv += (m.rng.Float64()*2 - 1) * 0.01 * dtSeconds
	}

	m.pv = clamp(m.pv, PVMin, PVMax)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
