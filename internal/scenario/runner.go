package scenario

import (
	"time"

	"tempctl/internal/panel"
	"tempctl/internal/sim"
)

// Runner replays a script against a simulator core on a synthetic clock.
// No wall time is involved: the run is exactly reproducible.
type Runner struct {
	Sim *sim.Simulator

	// PhysicsInterval is the synthetic step; ControlInterval must be a
	// multiple of it. Zero values take the usual 100ms/500ms cadence.
	PhysicsInterval time.Duration
	ControlInterval time.Duration
}

// Run steps the simulator through the script and returns the number of
// events applied.
func (r *Runner) Run(sc Script) int {
	phys := r.PhysicsInterval
	if phys <= 0 {
		phys = 100 * time.Millisecond
	}
	ctrl := r.ControlInterval
	if ctrl <= 0 {
		ctrl = 500 * time.Millisecond
	}
	every := int(ctrl / phys)
	if every < 1 {
		every = 1
	}

	epoch := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	applied := 0
	next := 0

	for step := 0; ; step++ {
		elapsed := time.Duration(step) * phys
		if elapsed > sc.Duration {
			break
		}
		now := epoch.Add(elapsed)

		for next < len(sc.Events) && sc.Events[next].T <= elapsed {
			r.apply(sc.Events[next], now)
			applied++
			next++
		}

		r.Sim.Poll(now)
		r.Sim.StepPhysics(phys)
		if step%every == 0 {
			r.Sim.StepControl()
		}
	}
	return applied
}

func (r *Runner) apply(ev Event, now time.Time) {
	switch ev.Action {
	case ActionPress:
		r.Sim.ButtonDown(panel.Button(ev.Button), now)
	case ActionRelease:
		r.Sim.ButtonUp(panel.Button(ev.Button), now)
	case ActionAmbientTemp:
		r.Sim.SetAmbientTemp(ev.Value)
	case ActionCoolingRate:
		r.Sim.SetCoolingRate(ev.Value)
	case ActionHeaterGain:
		r.Sim.SetHeaterGain(ev.Value)
	case ActionExternalHeat:
		r.Sim.SetExternalHeat(ev.Value)
	case ActionSensorConnected:
		r.Sim.SetSensorConnected(ev.Value != 0)
	}
}
