package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Sim       SimConfig       `yaml:"sim"`
	Web       WebConfig       `yaml:"web"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Buttons   ButtonsConfig   `yaml:"buttons"`
	Ambient   AmbientConfig   `yaml:"ambient"`
}

type SimConfig struct {
	PhysicsInterval time.Duration `yaml:"physics_interval"`
	ControlInterval time.Duration `yaml:"control_interval"`
	PollInterval    time.Duration `yaml:"poll_interval"`

	InitialSV float64 `yaml:"initial_sv"`
	InitialPV float64 `yaml:"initial_pv"`

	AmbientTemp    float64 `yaml:"ambient_temp"`
	ThermalInertia float64 `yaml:"thermal_inertia"`
	CoolingRate    float64 `yaml:"cooling_rate"`
	HeaterGain     float64 `yaml:"heater_gain"`

	// NoiseSeed seeds the sensor noise source; 0 disables noise.
	NoiseSeed int64 `yaml:"noise_seed"`
}

type WebConfig struct {
	Enable bool   `yaml:"enable"`
	Addr   string `yaml:"addr"`
}

type TelemetryConfig struct {
	Enable   bool          `yaml:"enable"`
	Brokers  []string      `yaml:"brokers"`
	Topic    string        `yaml:"topic"`
	Rate     time.Duration `yaml:"rate"`
	DeviceID string        `yaml:"device_id"`
}

type ButtonsConfig struct {
	Enable bool `yaml:"enable"`
	// Lines maps button names (level, mode, up, down) to BCM GPIO numbers.
	Lines map[string]int `yaml:"lines"`
}

type AmbientConfig struct {
	Enable bool `yaml:"enable"`
	// Bus is the I2C device path, e.g. /dev/i2c-1.
	Bus string `yaml:"bus"`
	// Addr is the 7-bit sensor address (TMP102-class part).
	Addr     uint16        `yaml:"addr"`
	Interval time.Duration `yaml:"interval"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Sim.PhysicsInterval <= 0 {
		cfg.Sim.PhysicsInterval = 100 * time.Millisecond
	}
	if cfg.Sim.ControlInterval <= 0 {
		cfg.Sim.ControlInterval = 500 * time.Millisecond
	}
	if cfg.Sim.PollInterval <= 0 {
		cfg.Sim.PollInterval = 50 * time.Millisecond
	}
	if cfg.Sim.ControlInterval < cfg.Sim.PhysicsInterval {
		return Config{}, fmt.Errorf("sim.control_interval must not be shorter than sim.physics_interval")
	}
	if cfg.Sim.AmbientTemp == 0 {
		cfg.Sim.AmbientTemp = 25
	}
	if cfg.Sim.CoolingRate <= 0 {
		cfg.Sim.CoolingRate = 0.05
	}
	if cfg.Sim.HeaterGain <= 0 {
		cfg.Sim.HeaterGain = 10
	}
	if cfg.Sim.InitialSV == 0 {
		cfg.Sim.InitialSV = 100
	}
	if cfg.Sim.InitialPV == 0 {
		cfg.Sim.InitialPV = cfg.Sim.AmbientTemp
	}

	if cfg.Web.Enable && cfg.Web.Addr == "" {
		cfg.Web.Addr = ":8080"
	}

	if cfg.Telemetry.Enable {
		if len(cfg.Telemetry.Brokers) == 0 {
			return Config{}, fmt.Errorf("telemetry.brokers is required when telemetry.enable is true")
		}
		if cfg.Telemetry.Topic == "" {
			return Config{}, fmt.Errorf("telemetry.topic is required when telemetry.enable is true")
		}
		if cfg.Telemetry.Rate <= 0 {
			cfg.Telemetry.Rate = time.Second
		}
	}

	if cfg.Buttons.Enable {
		for _, name := range []string{"level", "mode", "up", "down"} {
			if _, ok := cfg.Buttons.Lines[name]; !ok {
				return Config{}, fmt.Errorf("buttons.lines.%s is required when buttons.enable is true", name)
			}
		}
	}

	if cfg.Ambient.Enable {
		if cfg.Ambient.Bus == "" {
			cfg.Ambient.Bus = "/dev/i2c-1"
		}
		if cfg.Ambient.Addr == 0 {
			cfg.Ambient.Addr = 0x48
		}
		if cfg.Ambient.Interval <= 0 {
			cfg.Ambient.Interval = 5 * time.Second
		}
	}

	return cfg, nil
}
