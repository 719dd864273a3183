package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"tempctl/internal/sim"
)

// Reading is one published loop sample.
type Reading struct {
	DeviceID  string    `json:"deviceId"`
	RunID     string    `json:"runId"`
	Timestamp time.Time `json:"timestamp"`

	PV float64 `json:"pv"`
	SV float64 `json:"sv"`
	MV float64 `json:"mv"`

	Mode     string `json:"mode"`
	Level    string `json:"level"`
	Autotune bool   `json:"autotune"`
	Fault    bool   `json:"fault"`
}

// NewReading builds a Reading from a snapshot.
func NewReading(deviceID, runID string, now time.Time, snap sim.Snapshot) Reading {
	return Reading{
		DeviceID:  deviceID,
		RunID:     runID,
		Timestamp: now,
		PV:        snap.PV,
		SV:        snap.SV,
		MV:        snap.MV,
		Mode:      snap.Mode,
		Level:     snap.Level,
		Autotune:  snap.AutotuneActive,
		Fault:     !snap.SensorConnected || snap.OverRange || snap.UnderRange,
	}
}

// Publisher ships loop readings to Kafka at a fixed rate. One publisher
// instance corresponds to one run; the run ID is minted at construction.
type Publisher struct {
	log      *slog.Logger
	w        *kafka.Writer
	deviceID string
	runID    string
}

func NewPublisher(log *slog.Logger, brokers []string, topic, deviceID string) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	if deviceID == "" {
		deviceID = "tempctl-" + uuid.NewString()[:8]
	}
	return &Publisher{
		log: log,
		w: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
		deviceID: deviceID,
		runID:    uuid.NewString(),
	}
}

func (p *Publisher) Close() error { return p.w.Close() }

// Run samples snapshotFn every rate and publishes until ctx is done.
func (p *Publisher) Run(ctx context.Context, rate time.Duration, snapshotFn func() sim.Snapshot) {
	if rate <= 0 {
		rate = time.Second
	}
	t := time.NewTicker(rate)
	defer t.Stop()
	p.log.Info("telemetry publisher started", "deviceId", p.deviceID, "rate", rate.String())

	for {
		select {
		case now := <-t.C:
			_ = p.publish(ctx, NewReading(p.deviceID, p.runID, now.UTC(), snapshotFn()))
		case <-ctx.Done():
			p.log.Info("telemetry publisher stopped", "deviceId", p.deviceID)
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, r Reading) error {
	b, err := json.Marshal(r)
	if err != nil {
		p.log.Error("telemetry marshal failed", "err", err)
		return err
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.DeviceID),
		Value: b,
		Time:  r.Timestamp,
	})
	if err != nil && ctx.Err() == nil {
		p.log.Error("kafka write failed", "err", err, "deviceId", r.DeviceID)
	}
	return err
}
