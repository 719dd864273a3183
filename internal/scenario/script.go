package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tempctl/internal/panel"
)

// Script is a deterministic, script-driven front-panel session description.
//
// Time is expressed as Go duration strings (e.g. "0s", "250ms", "10s").
// If Duration is zero, it is derived from the latest event time.
//
// YAML schema (v1):
//
//	version: 1
//	duration: 30s
//	events:
//	  - t: 0s
//	    action: press
//	    button: level
//	  - t: 3500ms
//	    action: release
//	    button: level
//	  - t: 5s
//	    action: ambient_temp
//	    value: 30
//
// Actions: press/release (with button), ambient_temp, cooling_rate,
// heater_gain, external_heat, sensor_connected (value 0 disconnects).
//
// Events must use non-decreasing t values. Keep this struct stable: scripts
// are test fixtures.
type Script struct {
	Version  int           `yaml:"version"`
	Duration time.Duration `yaml:"duration"`
	Events   []Event       `yaml:"events"`
}

// Event is one time-stamped script action.
type Event struct {
	T      time.Duration `yaml:"t"`
	Action string        `yaml:"action"`
	Button string        `yaml:"button,omitempty"`
	Value  float64       `yaml:"value,omitempty"`
}

const (
	ActionPress           = "press"
	ActionRelease         = "release"
	ActionAmbientTemp     = "ambient_temp"
	ActionCoolingRate     = "cooling_rate"
	ActionHeaterGain      = "heater_gain"
	ActionExternalHeat    = "external_heat"
	ActionSensorConnected = "sensor_connected"
)

// Load reads and validates a YAML script from path.
func Load(path string) (Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	return Parse(b)
}

// Parse unmarshals and validates a YAML script.
func Parse(b []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Script{}, err
	}
	if err := s.validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

func (s *Script) validate() error {
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Version != 1 {
		return fmt.Errorf("unsupported script version %d", s.Version)
	}

	var prev time.Duration
	for i, ev := range s.Events {
		if ev.T < 0 {
			return fmt.Errorf("events[%d].t is negative", i)
		}
		if ev.T < prev {
			return fmt.Errorf("events[%d].t goes backwards", i)
		}
		prev = ev.T

		switch ev.Action {
		case ActionPress, ActionRelease:
			if !panel.KnownButton(panel.Button(ev.Button)) {
				return fmt.Errorf("events[%d]: unknown button %q", i, ev.Button)
			}
		case ActionAmbientTemp, ActionCoolingRate, ActionHeaterGain,
			ActionExternalHeat, ActionSensorConnected:
		default:
			return fmt.Errorf("events[%d]: unknown action %q", i, ev.Action)
		}
	}

	if s.Duration <= 0 {
		if len(s.Events) == 0 {
			return fmt.Errorf("duration is required (or derivable from events)")
		}
		s.Duration = s.Events[len(s.Events)-1].T
	}
	if s.Duration <= 0 {
		return fmt.Errorf("duration is required (or derivable from events)")
	}
	return nil
}
