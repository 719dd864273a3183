package ambient

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tempctl/internal/i2c"
)

// tempReg is the temperature register on TMP102-class parts: two bytes,
// 12-bit left-justified, 0.0625 C per LSB.
const tempReg = 0x00

// Reader samples a hardware ambient-temperature sensor over I2C and feeds
// the value into the simulated environment. Entirely optional: without it
// the ambient temperature is whatever the config or the env API set.
type Reader struct {
	log *slog.Logger
	dev *i2c.Dev
}

func Open(log *slog.Logger, bus string, addr uint16) (*Reader, error) {
	if log == nil {
		log = slog.Default()
	}
	dev, err := i2c.Open(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("ambient: open %s: %w", bus, err)
	}
	return &Reader{log: log, dev: dev}, nil
}

func (r *Reader) Close() error { return r.dev.Close() }

// ReadTempC reads one temperature sample.
func (r *Reader) ReadTempC() (float64, error) {
	var b [2]byte
	if err := r.dev.ReadReg(tempReg, b[:]); err != nil {
		return 0, fmt.Errorf("ambient: read temp: %w", err)
	}
	return decodeTemp(b), nil
}

// Run polls the sensor and pushes samples into set until ctx is done. Read
// errors are logged and skipped; the loop keeps going.
func (r *Reader) Run(ctx context.Context, interval time.Duration, set func(float64)) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	r.log.Info("ambient sensor poll started", "interval", interval.String())

	for {
		select {
		case <-t.C:
			c, err := r.ReadTempC()
			if err != nil {
				r.log.Error("ambient read failed", "err", err)
				continue
			}
			set(c)
		case <-ctx.Done():
			r.log.Info("ambient sensor poll stopped")
			return
		}
	}
}

func decodeTemp(b [2]byte) float64 {
	raw := int16(uint16(b[0])<<8|uint16(b[1])) >> 4
	return float64(raw) * 0.0625
}
