package control

import "math"

// Relay half-amplitude: autotune swings MV between 0 and 100.
const relayAmplitude = 50.0

// Fallback constants installed when the relay never completed enough
// oscillation to identify anything (factory-reset values).
const (
	fallbackP = 8.0
	fallbackI = 233.0
	fallbackD = 40.0
)

// autotuneSession tracks one AT-2 relay-feedback run. The session observes
// the PV envelope and the relay switching times; on expiry it turns the
// estimate into PID constants via Ziegler-Nichols.
type autotuneSession struct {
	elapsed float64 // simulated seconds since start

	pvMax float64
	pvMin float64

	relayOn bool
	onTimes []float64 // elapsed at each off->on switch
}

// stepAutotune drives the relay and, once the fixed duration has elapsed,
// terminates the session: autotune reverts to off, the identified constants
// are installed, and the controller lands in PID mode.
func (c *Controller) stepAutotune(pv, sv float64) {
	s := c.tune
	s.elapsed += c.period

	if pv > s.pvMax {
		s.pvMax = pv
	}
	if pv < s.pvMin {
		s.pvMin = pv
	}

	on := pv < sv
	if on && !s.relayOn {
		s.onTimes = append(s.onTimes, s.elapsed)
	}
	s.relayOn = on
	if on {
		c.mv = 100
	} else {
		c.mv = 0
	}

	if s.elapsed < AutotuneDuration {
		return
	}

	p, i, d := s.identify()
	c.params.Set(ParamP, p)
	c.params.Set(ParamI, i)
	c.params.Set(ParamD, d)
	c.params.Autotune = false
	c.params.Cntl = AlgorithmPID
	c.integral = 0
	c.tune = nil
}

// identify estimates PID constants from the observed oscillation
// (Astrom-Hagglund ultimate gain, Ziegler-Nichols tuning). Without two full
// relay periods, or with a degenerate amplitude, the fallback set is used.
func (s *autotuneSession) identify() (p, i, d float64) {
	if len(s.onTimes) < 3 {
		return fallbackP, fallbackI, fallbackD
	}
	amplitude := (s.pvMax - s.pvMin) / 2
	if amplitude <= 0 || math.IsInf(amplitude, 0) {
		return fallbackP, fallbackI, fallbackD
	}

	// Ultimate period: mean spacing of the off->on switch instants.
	first, last := s.onTimes[0], s.onTimes[len(s.onTimes)-1]
	tu := (last - first) / float64(len(s.onTimes)-1)
	if tu <= 0 {
		return fallbackP, fallbackI, fallbackD
	}

	ku := 4 * relayAmplitude / (math.Pi * amplitude)
	kp := 0.6 * ku

	// The PID step works in proportional-band form, so the identified gain
	// maps back to a band of 100/kp degrees.
	p = math.Round(100/kp*10) / 10
	i = math.Round(0.5 * tu)
	d = math.Round(0.125 * tu)
	if p < 0.1 {
		p = 0.1
	}
	if i < 1 {
		i = 1
	}
	if d < 1 {
		d = 1
	}
	return p, i, d
}
