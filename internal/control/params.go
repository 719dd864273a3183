package control

import "fmt"

// Parameter names follow the front-panel labels of the emulated device.
const (
	ParamAT         = "at"   // autotune request (off / at-2)
	ParamP          = "p"    // proportional band, degrees
	ParamI          = "i"    // integral time, seconds
	ParamD          = "d"    // derivative time, seconds
	ParamHys        = "hys"  // ON/OFF hysteresis, degrees
	ParamSensorType = "in-t" // input sensor type code
	ParamCntl       = "cntl" // control algorithm (pid / onof)
	ParamProtect    = "oapt" // operation/adjustment protect lock
)

// Algorithm is the cntl parameter value.
type Algorithm int

const (
	AlgorithmPID Algorithm = iota
	AlgorithmONOFF
)

func (a Algorithm) String() string {
	if a == AlgorithmONOFF {
		return "onof"
	}
	return "pid"
}

// The two sensor type codes the simulator accepts (in-t).
const (
	SensorTypeK = 5
	SensorTypeJ = 6
)

// ProtectLocked is the oapt value that freezes all parameter and setpoint
// edits outside the protection level.
const ProtectLocked = 3

// Effect is a side request raised by an adjustment that the caller (the sim
// core) has to act on; the store itself never owns an autotune session.
type Effect int

const (
	EffectNone Effect = iota
	EffectStartAutotune
	EffectCancelAutotune
)

// Params is the named control parameter store.
//
// Numeric parameters are floored at 0.1 on every adjustment, so a stored
// value is never zero or negative. Not safe for concurrent use.
type Params struct {
	Autotune   bool
	P          float64
	I          float64
	D          float64
	Hys        float64
	SensorType int
	Cntl       Algorithm
	Protect    int
}

// Defaults mirror a freshly reset controller.
func NewParams() *Params {
	return &Params{
		P:          10,
		I:          233,
		D:          40,
		Hys:        1.0,
		SensorType: SensorTypeK,
		Cntl:       AlgorithmPID,
	}
}

const (
	stepFine   = 0.1
	stepCoarse = 1.0
	floorValue = 0.1
)

// Adjust applies a single up/down press to the named parameter. dir is +1 or
// -1. inProtection reports whether the caller currently sits in the
// protection level; when the lock is set (oapt == 3) every adjustment made
// outside that level is silently dropped.
func (p *Params) Adjust(name string, dir int, inProtection bool) Effect {
	if p.Protect == ProtectLocked && !inProtection {
		return EffectNone
	}
	if dir == 0 {
		return EffectNone
	}

	switch name {
	case ParamAT:
		if dir > 0 {
			p.Autotune = true
			return EffectStartAutotune
		}
		p.Autotune = false
		return EffectCancelAutotune
	case ParamCntl:
		if dir > 0 {
			p.Cntl = AlgorithmPID
		} else {
			p.Cntl = AlgorithmONOFF
		}
	case ParamProtect:
		p.Protect += dir
		if p.Protect < 0 {
			p.Protect = 0
		}
		if p.Protect > ProtectLocked {
			p.Protect = ProtectLocked
		}
	case ParamSensorType:
		if p.SensorType == SensorTypeK {
			p.SensorType = SensorTypeJ
		} else {
			p.SensorType = SensorTypeK
		}
	case ParamP:
		p.P = floored(p.P + float64(dir)*stepFine)
	case ParamHys:
		p.Hys = floored(p.Hys + float64(dir)*stepFine)
	case ParamI:
		p.I = floored(p.I + float64(dir)*stepCoarse)
	case ParamD:
		p.D = floored(p.D + float64(dir)*stepCoarse)
	}
	return EffectNone
}

// Set overwrites a numeric parameter directly (autotune installation path).
// Values below the floor are raised to it.
func (p *Params) Set(name string, v float64) {
	switch name {
	case ParamP:
		p.P = floored(v)
	case ParamI:
		p.I = floored(v)
	case ParamD:
		p.D = floored(v)
	case ParamHys:
		p.Hys = floored(v)
	}
}

// Format renders the named parameter the way the lower display would.
func (p *Params) Format(name string) string {
	switch name {
	case ParamAT:
		if p.Autotune {
			return "at-2"
		}
		return "off"
	case ParamP:
		return fmt.Sprintf("%.1f", p.P)
	case ParamI:
		return fmt.Sprintf("%.0f", p.I)
	case ParamD:
		return fmt.Sprintf("%.0f", p.D)
	case ParamHys:
		return fmt.Sprintf("%.1f", p.Hys)
	case ParamSensorType:
		return fmt.Sprintf("%d", p.SensorType)
	case ParamCntl:
		return p.Cntl.String()
	case ParamProtect:
		return fmt.Sprintf("%d", p.Protect)
	}
	return ""
}

// Locked reports the oapt write-protection state.
func (p *Params) Locked() bool { return p.Protect == ProtectLocked }

func floored(v float64) float64 {
	if v < floorValue {
		return floorValue
	}
	return v
}
