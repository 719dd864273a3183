package control

import "math"

// Mode is the controller's operating state.
type Mode int

const (
	ModeONOFF Mode = iota
	ModePID
	ModeAutotuning
	ModeStopped
)

func (m Mode) String() string {
	switch m {
	case ModeONOFF:
		return "onoff"
	case ModePID:
		return "pid"
	case ModeAutotuning:
		return "autotune"
	case ModeStopped:
		return "stopped"
	}
	return "unknown"
}

const (
	// integralLimit bounds the accumulated I term (anti-windup).
	integralLimit = 100.0
	// integralDeadband stops accumulation near the setpoint so the I term
	// does not creep while the loop is settled.
	integralDeadband = 0.1
	// AutotuneDuration is how long a relay-feedback session runs before
	// the identified constants are installed.
	AutotuneDuration = 20.0 // seconds
)

// Controller computes the manipulated value from PV, SV and the parameter
// store, using ON/OFF, PID or a relay-feedback autotune step.
//
// The control period is fixed at construction; the caller invokes Tick once
// per period. Not safe for concurrent use.
type Controller struct {
	params *Params
	period float64 // seconds per control tick

	mv       float64
	integral float64
	lastPV   float64
	haveLast bool

	tune *autotuneSession
}

func NewController(params *Params, periodSeconds float64) *Controller {
	if periodSeconds <= 0 {
		periodSeconds = 0.5
	}
	return &Controller{params: params, period: periodSeconds}
}

func (c *Controller) MV() float64        { return c.mv }
func (c *Controller) Integral() float64  { return c.integral }
func (c *Controller) TuningActive() bool { return c.tune != nil }

// Mode reports the state the next Tick would run in, given the fail-safe
// inputs.
func (c *Controller) Mode(sensorOK, stop bool) Mode {
	switch {
	case !sensorOK || stop:
		return ModeStopped
	case c.tune != nil:
		return ModeAutotuning
	case c.params.Cntl == AlgorithmONOFF:
		return ModeONOFF
	default:
		return ModePID
	}
}

// StartAutotune begins a relay-feedback session. A session already in
// progress keeps running.
func (c *Controller) StartAutotune() {
	if c.tune != nil {
		return
	}
	c.tune = &autotuneSession{pvMax: math.Inf(-1), pvMin: math.Inf(1)}
	c.params.Autotune = true
}

// CancelAutotune abandons the session without installing constants.
func (c *Controller) CancelAutotune() {
	c.tune = nil
	c.params.Autotune = false
}

// Tick runs one control step and returns the new MV (0-100).
//
// Fail-safe has priority: a disconnected sensor or an asserted stop forces
// MV to 0 and clears the integral accumulator before any algorithm runs.
func (c *Controller) Tick(pv, sv float64, sensorOK, stop bool) float64 {
	if !sensorOK || stop {
		c.mv = 0
		c.integral = 0
		return c.mv
	}

	switch {
	case c.tune != nil:
		c.stepAutotune(pv, sv)
	case c.params.Cntl == AlgorithmONOFF:
		c.stepONOFF(pv, sv)
	default:
		c.stepPID(pv, sv)
	}

	c.lastPV = pv
	c.haveLast = true
	return c.mv
}

// stepONOFF switches the heater with a hysteresis band below the setpoint.
// Inside the band the previous MV holds.
func (c *Controller) stepONOFF(pv, sv float64) {
	diff := pv - sv
	switch {
	case diff < -c.params.Hys:
		c.mv = 100
	case diff > 0:
		c.mv = 0
	}
}

// stepPID is the single-degree error form with a proportional band: the P
// gain is 100/band, so a larger p gives a gentler response.
func (c *Controller) stepPID(pv, sv float64) {
	err := sv - pv
	gain := 100.0 / c.params.P

	// Halve the accumulator when the PV crosses the setpoint, before this
	// tick's accumulation. Damps overshoot after a crossing.
	if c.haveLast && crossed(c.lastPV, pv, sv) {
		c.integral *= 0.5
	}
	if math.Abs(err) > integralDeadband {
		c.integral += err / c.params.I
	}
	if c.integral > integralLimit {
		c.integral = integralLimit
	}
	if c.integral < -integralLimit {
		c.integral = -integralLimit
	}

	// Derivative on measurement, so setpoint steps do not spike the output.
	var dTerm float64
	if c.haveLast {
		dTerm = gain * c.params.D * (c.lastPV - pv) / c.period
	}

	out := gain*err + c.integral + dTerm
	if out < 0 {
		out = 0
	}
	if out > 100 {
		out = 100
	}
	c.mv = out
}

func crossed(prev, cur, sv float64) bool {
	return (prev < sv && cur >= sv) || (prev > sv && cur <= sv)
}
