package sim

import (
	"testing"
	"time"

	"tempctl/internal/panel"
	"tempctl/internal/process"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSim() *Simulator {
	return New(nil, Options{
		InitialSV: 100,
		InitialPV: 25,
		Physics: process.Config{
			AmbientTemp:     25,
			CoolingRate:     0.05,
			HeaterGain:      10,
			SensorConnected: true,
		},
	})
}

func TestStepControl_SkippedBeforeFirstPhysicsStep(t *testing.T) {
	s := newTestSim()

	// PV far below SV would drive the output up, but the plant has not
	// advanced yet so the tick must be skipped.
	s.StepControl()
	if mv := s.Snapshot().MV; mv != 0 {
		t.Fatalf("mv=%v want 0 before first physics step", mv)
	}

	s.StepPhysics(100 * time.Millisecond)
	s.StepControl()
	if mv := s.Snapshot().MV; mv <= 0 {
		t.Fatalf("mv=%v want positive once the plant advanced", mv)
	}
}

func TestStepControl_RequiresFreshPhysics(t *testing.T) {
	s := newTestSim()
	s.StepPhysics(100 * time.Millisecond)
	s.StepControl()
	mv1 := s.Snapshot().MV

	// A second control tick with no physics step in between is a no-op
	// even if the setpoint moved meanwhile.
	s.SetSensorConnected(true)
	s.StepControl()
	if mv := s.Snapshot().MV; mv != mv1 {
		t.Fatalf("mv=%v want %v: control ran against stale plant state", mv, mv1)
	}
}

func TestSensorDisconnect_FailSafeOnNextTick(t *testing.T) {
	s := newTestSim()
	s.StepPhysics(100 * time.Millisecond)
	s.StepControl()
	if s.Snapshot().MV == 0 {
		t.Fatalf("mv=0 want heating before the fault")
	}

	s.SetSensorConnected(false)
	s.StepPhysics(100 * time.Millisecond)
	s.StepControl()
	snap := s.Snapshot()
	if snap.MV != 0 {
		t.Fatalf("mv=%v want 0 after sensor fault", snap.MV)
	}
	if snap.Mode != "stopped" {
		t.Fatalf("mode=%q want stopped", snap.Mode)
	}
}

func TestButtons_AdjustSetpoint(t *testing.T) {
	s := newTestSim()

	press(s, panel.ButtonUp, 0)
	press(s, panel.ButtonUp, time.Second)
	press(s, panel.ButtonDown, 2*time.Second)
	if sv := s.Snapshot().SV; sv != 101 {
		t.Fatalf("sv=%v want 101", sv)
	}
}

func TestButtons_SetpointLocked(t *testing.T) {
	s := newTestSim()
	s.prm.Protect = 3

	press(s, panel.ButtonUp, 0)
	if sv := s.Snapshot().SV; sv != 100 {
		t.Fatalf("sv=%v want 100: oapt lock must freeze the setpoint", sv)
	}
}

func TestButtons_ParameterAdjustLockedOutsideProtection(t *testing.T) {
	s := newTestSim()
	s.prm.Protect = 3

	// Enter adjustment level, select p.
	press(s, panel.ButtonLevel, 0)
	press(s, panel.ButtonMode, time.Second)
	if item := s.Snapshot().Item; item != "p" {
		t.Fatalf("item=%q want p", item)
	}
	before := s.prm.P
	press(s, panel.ButtonUp, 2*time.Second)
	if s.prm.P != before {
		t.Fatalf("p=%v want %v: locked edit went through", s.prm.P, before)
	}
}

func TestButtons_ProtectAdjustableUnderLock(t *testing.T) {
	s := newTestSim()
	s.prm.Protect = 3

	// Joint long hold into the protection level.
	s.ButtonDown(panel.ButtonLevel, t0)
	s.ButtonDown(panel.ButtonMode, t0)
	s.Poll(t0.Add(3100 * time.Millisecond))
	s.ButtonUp(panel.ButtonLevel, t0.Add(3200*time.Millisecond))
	s.ButtonUp(panel.ButtonMode, t0.Add(3200*time.Millisecond))

	snap := s.Snapshot()
	if snap.Level != "protection" {
		t.Fatalf("level=%q want protection", snap.Level)
	}
	press(s, panel.ButtonDown, 4*time.Second)
	if s.prm.Protect != 2 {
		t.Fatalf("oapt=%v want 2: oapt must stay adjustable from protection", s.prm.Protect)
	}
}

func TestLongHold_InitialLevelStopsControl(t *testing.T) {
	s := newTestSim()
	s.StepPhysics(100 * time.Millisecond)
	s.StepControl()

	s.ButtonDown(panel.ButtonLevel, t0)
	s.Poll(t0.Add(3500 * time.Millisecond))
	s.ButtonUp(panel.ButtonLevel, t0.Add(3600*time.Millisecond))

	snap := s.Snapshot()
	if snap.Level != "initial" {
		t.Fatalf("level=%q want initial", snap.Level)
	}
	if !snap.StopControl {
		t.Fatalf("stopControl=false want true")
	}

	s.StepPhysics(100 * time.Millisecond)
	s.StepControl()
	if mv := s.Snapshot().MV; mv != 0 {
		t.Fatalf("mv=%v want 0 while stopped", mv)
	}
}

func TestAutotune_StartedFromAdjustmentLevel(t *testing.T) {
	s := newTestSim()

	press(s, panel.ButtonLevel, 0) // adjustment; at selected
	press(s, panel.ButtonUp, time.Second)
	snap := s.Snapshot()
	if !snap.AutotuneActive {
		t.Fatalf("autotune inactive after at+")
	}
	if snap.ItemValue != "at-2" {
		t.Fatalf("item value=%q want at-2", snap.ItemValue)
	}

	press(s, panel.ButtonDown, 2*time.Second)
	if s.Snapshot().AutotuneActive {
		t.Fatalf("autotune still active after at-")
	}
}

func TestSnapshot_OperationShowsSetpoint(t *testing.T) {
	s := newTestSim()
	snap := s.Snapshot()
	if snap.Item != panel.ItemPVSV {
		t.Fatalf("item=%q want %q", snap.Item, panel.ItemPVSV)
	}
	if snap.ItemValue != "100.0" {
		t.Fatalf("item value=%q want 100.0", snap.ItemValue)
	}
}

// press does a short key click at offset d from the test epoch.
func press(s *Simulator, b panel.Button, d time.Duration) {
	s.ButtonDown(b, t0.Add(d))
	s.ButtonUp(b, t0.Add(d+100*time.Millisecond))
}
