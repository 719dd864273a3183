package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"tempctl/internal/control"
	"tempctl/internal/panel"
	"tempctl/internal/process"
)

// Options configures a simulator core.
type Options struct {
	// PhysicsInterval is the plant integration step (fast).
	PhysicsInterval time.Duration
	// ControlInterval is the sampling period of the controller. It must
	// not be shorter than the physics step.
	ControlInterval time.Duration
	// PollInterval drives long-press detection while keys are held.
	PollInterval time.Duration

	InitialSV float64
	InitialPV float64
	Physics   process.Config

	// NoiseSeed seeds the sensor noise source; 0 disables noise.
	NoiseSeed int64
}

func (o *Options) applyDefaults() {
	if o.PhysicsInterval <= 0 {
		o.PhysicsInterval = 100 * time.Millisecond
	}
	if o.ControlInterval <= 0 {
		o.ControlInterval = 500 * time.Millisecond
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 50 * time.Millisecond
	}
}

// Snapshot is the externally visible state, for rendering and telemetry.
type Snapshot struct {
	PV float64 `json:"pv"`
	SV float64 `json:"sv"`
	MV float64 `json:"mv"`

	Level     string `json:"level"`
	Item      string `json:"item"`
	ItemValue string `json:"item_value"`

	Mode           string `json:"mode"`
	StopControl    bool   `json:"stop_control"`
	AutotuneActive bool   `json:"autotune_active"`
	Locked         bool   `json:"locked"`

	SensorConnected bool `json:"sensor_connected"`
	OverRange       bool `json:"over_range"`
	UnderRange      bool `json:"under_range"`
}

// Simulator is the owned controller core: plant, control loop, parameter
// store and front panel behind one mutex. Every exported method is safe for
// concurrent use; the three periodic loops and any adapters (web, GPIO,
// telemetry) all funnel through here.
type Simulator struct {
	log *slog.Logger
	opt Options

	mu    sync.Mutex
	plant *process.Model
	prm   *control.Params
	ctrl  *control.Controller
	mach  *panel.Machine
	disp  *panel.Dispatcher

	sv float64
	mv float64

	// physicsSteps gates control ticks: the controller never runs against
	// a PV the plant has not advanced since its previous tick.
	physicsSteps    uint64
	lastControlStep uint64

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(log *slog.Logger, opt Options) *Simulator {
	opt.applyDefaults()
	if log == nil {
		log = slog.Default()
	}

	var rng *rand.Rand
	if opt.NoiseSeed != 0 {
		rng = rand.New(rand.NewSource(opt.NoiseSeed))
	}

	prm := control.NewParams()
	s := &Simulator{
		log:    log,
		opt:    opt,
		plant:  process.NewNoisy(opt.Physics, opt.InitialPV, rng),
		prm:    prm,
		ctrl:   control.NewController(prm, opt.ControlInterval.Seconds()),
		mach:   panel.NewMachine(),
		sv:     clampPV(opt.InitialSV),
		stopCh: make(chan struct{}),
	}
	s.disp = panel.NewDispatcher(s.mach, s.adjustItemLocked)
	return s
}

// adjustItemLocked routes an up/down press to the setpoint or the parameter
// store. Called by the dispatcher with s.mu already held (the dispatcher is
// only ever invoked from locked entry points).
func (s *Simulator) adjustItemLocked(item string, dir int) {
	if item == panel.ItemPVSV {
		// The write-protection lock also freezes the setpoint.
		if s.prm.Locked() && s.mach.Level() != panel.LevelProtection {
			return
		}
		s.sv = clampPV(s.sv + float64(dir))
		return
	}

	eff := s.prm.Adjust(item, dir, s.mach.Level() == panel.LevelProtection)
	switch eff {
	case control.EffectStartAutotune:
		s.ctrl.StartAutotune()
		s.log.Info("autotune started")
	case control.EffectCancelAutotune:
		s.ctrl.CancelAutotune()
		s.log.Info("autotune cancelled")
	}
}

// ButtonDown registers a key press at the given instant.
func (s *Simulator) ButtonDown(id panel.Button, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disp.ButtonDown(id, now)
}

// ButtonUp registers a key release.
func (s *Simulator) ButtonUp(id panel.Button, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disp.ButtonUp(id, now)
}

// Poll runs long-press detection against the given instant.
func (s *Simulator) Poll(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disp.CheckLongPresses(now)
}

// StepPhysics advances the plant by dt under the current heater output.
func (s *Simulator) StepPhysics(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plant.Advance(dt.Seconds(), s.mv)
	s.physicsSteps++
}

// StepControl runs one control tick. The tick is skipped when the plant has
// not advanced since the previous control tick, so the controller never
// samples stale state.
func (s *Simulator) StepControl() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.physicsSteps == s.lastControlStep {
		return
	}
	s.lastControlStep = s.physicsSteps

	s.mv = s.ctrl.Tick(
		s.plant.PV(),
		s.sv,
		s.plant.SensorConnected(),
		s.mach.StopControl(),
	)
}

// Snapshot returns a consistent view of the core state.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.mach.SelectedItem()
	val := s.prm.Format(item)
	if item == panel.ItemPVSV {
		val = formatTemp(s.sv)
	}

	return Snapshot{
		PV:              s.plant.PV(),
		SV:              s.sv,
		MV:              s.mv,
		Level:           s.mach.Level().String(),
		Item:            item,
		ItemValue:       val,
		Mode:            s.ctrl.Mode(s.plant.SensorConnected(), s.mach.StopControl()).String(),
		StopControl:     s.mach.StopControl(),
		AutotuneActive:  s.ctrl.TuningActive(),
		Locked:          s.prm.Locked(),
		SensorConnected: s.plant.SensorConnected(),
		OverRange:       s.plant.OverRange(),
		UnderRange:      s.plant.UnderRange(),
	}
}

// Environment setters, for the excluded ambient/audio collaborators.

func (s *Simulator) SetAmbientTemp(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plant.SetAmbientTemp(v)
}

func (s *Simulator) SetCoolingRate(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plant.SetCoolingRate(v)
}

func (s *Simulator) SetHeaterGain(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plant.SetHeaterGain(v)
}

func (s *Simulator) SetExternalHeat(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plant.SetExternalHeat(v)
}

func (s *Simulator) SetSensorConnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plant.SetSensorConnected(v)
}

func clampPV(v float64) float64 {
	if v < process.PVMin {
		return process.PVMin
	}
	if v > process.PVMax {
		return process.PVMax
	}
	return v
}

func formatTemp(v float64) string {
	// One decimal, matching the parameter display resolution.
	return fmt.Sprintf("%.1f", v)
}
