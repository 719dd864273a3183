package control

import (
	"math"
	"testing"
)

func newTestController() *Controller {
	p := NewParams()
	p.Cntl = AlgorithmPID
	return NewController(p, 0.5)
}

func TestTick_FailSafeForcesZero(t *testing.T) {
	c := newTestController()
	c.integral = 42
	c.mv = 77

	if mv := c.Tick(50, 100, false, false); mv != 0 {
		t.Fatalf("mv=%v want 0 on sensor fault", mv)
	}
	if c.Integral() != 0 {
		t.Fatalf("integral=%v want 0 after fail-safe", c.Integral())
	}

	c.mv = 77
	if mv := c.Tick(50, 100, true, true); mv != 0 {
		t.Fatalf("mv=%v want 0 under stop", mv)
	}
}

func TestTick_ONOFFSwitching(t *testing.T) {
	c := newTestController()
	c.params.Cntl = AlgorithmONOFF
	c.params.Hys = 1.0

	cases := []struct {
		pv     float64
		wantMV float64
	}{
		{98.5, 100}, // below sv-hys: heat
		{100.5, 0},  // above sv: off
	}
	for _, tc := range cases {
		if mv := c.Tick(tc.pv, 100, true, false); mv != tc.wantMV {
			t.Fatalf("pv=%v: mv=%v want %v", tc.pv, mv, tc.wantMV)
		}
	}
}

func TestTick_ONOFFDeadbandHoldsMV(t *testing.T) {
	c := newTestController()
	c.params.Cntl = AlgorithmONOFF
	c.params.Hys = 1.0

	c.Tick(98.5, 100, true, false) // drives mv to 100
	if mv := c.Tick(99.5, 100, true, false); mv != 100 {
		t.Fatalf("mv=%v want 100 held inside deadband", mv)
	}

	c.Tick(100.5, 100, true, false) // drives mv to 0
	if mv := c.Tick(99.5, 100, true, false); mv != 0 {
		t.Fatalf("mv=%v want 0 held inside deadband", mv)
	}
}

func TestTick_PIDProportionalBand(t *testing.T) {
	c := newTestController()
	c.params.P = 10
	c.params.I = 1e12 // neutralize I
	c.params.D = 0

	// err=2, gain=100/10 => P term 20.
	mv := c.Tick(98, 100, true, false)
	if math.Abs(mv-20) > 1e-6 {
		t.Fatalf("mv=%v want ~20", mv)
	}

	// A wider band responds more gently.
	c2 := newTestController()
	c2.params.P = 40
	c2.params.I = 1e12
	c2.params.D = 0
	if mv2 := c2.Tick(98, 100, true, false); mv2 >= mv {
		t.Fatalf("band 40 mv=%v not gentler than band 10 mv=%v", mv2, mv)
	}
}

func TestTick_IntegralStaysBounded(t *testing.T) {
	c := newTestController()
	c.params.I = 1

	for i := 0; i < 10000; i++ {
		c.Tick(0, 1000, true, false)
		if got := c.Integral(); got < -integralLimit || got > integralLimit {
			t.Fatalf("tick %d: integral=%v outside [-100,100]", i, got)
		}
	}
	if got := c.Integral(); got != integralLimit {
		t.Fatalf("integral=%v want saturation at %v", got, integralLimit)
	}
}

func TestTick_IntegralDeadband(t *testing.T) {
	c := newTestController()
	c.params.I = 1

	// |err| = 0.05 <= deadband: no accumulation.
	c.Tick(99.95, 100, true, false)
	if got := c.Integral(); got != 0 {
		t.Fatalf("integral=%v want 0 inside deadband", got)
	}
}

func TestTick_CrossingHalvesIntegral(t *testing.T) {
	c := newTestController()
	c.params.I = 1

	// Build up some integral below the setpoint.
	c.Tick(90, 100, true, false)
	c.Tick(95, 100, true, false)
	pre := c.Integral()
	if pre <= 0 {
		t.Fatalf("integral=%v want positive before crossing", pre)
	}

	// lastPv=95 < sv=100 <= pv=100.05, and the new error is inside the
	// deadband so nothing accumulates on top of the halving.
	c.Tick(100.05, 100, true, false)
	if got := c.Integral(); math.Abs(got-pre/2) > 1e-9 {
		t.Fatalf("integral=%v want %v (half of %v)", got, pre/2, pre)
	}
}

func TestTick_CrossingHalvesIntegralDownward(t *testing.T) {
	c := newTestController()
	c.params.I = 1

	c.Tick(110, 100, true, false)
	c.Tick(105, 100, true, false)
	pre := c.Integral()
	if pre >= 0 {
		t.Fatalf("integral=%v want negative before crossing", pre)
	}

	c.Tick(99.95, 100, true, false)
	if got := c.Integral(); math.Abs(got-pre/2) > 1e-9 {
		t.Fatalf("integral=%v want %v", got, pre/2)
	}
}

func TestTick_DerivativeOnMeasurement(t *testing.T) {
	c := newTestController()
	c.params.P = 10
	c.params.I = 1e12
	c.params.D = 2

	c.Tick(50, 50, true, false)
	// Setpoint step with an unchanged PV must not produce a derivative kick.
	mv := c.Tick(50, 90, true, false)
	want := (100.0 / 10.0) * 40.0 // pure P, clamped to 100
	if want > 100 {
		want = 100
	}
	if math.Abs(mv-want) > 1e-6 {
		t.Fatalf("mv=%v want %v (no derivative on setpoint change)", mv, want)
	}

	// A rising PV pulls the output down through the D term.
	c2 := newTestController()
	c2.params.P = 100
	c2.params.I = 1e12
	c2.params.D = 10
	c2.Tick(50, 60, true, false)
	withD := c2.Tick(55, 60, true, false)

	c3 := newTestController()
	c3.params.P = 100
	c3.params.I = 1e12
	c3.params.D = 0
	c3.Tick(50, 60, true, false)
	withoutD := c3.Tick(55, 60, true, false)

	if withD >= withoutD {
		t.Fatalf("mv with D=%v not below mv without D=%v on rising PV", withD, withoutD)
	}
}

func TestTick_MVClampedToRange(t *testing.T) {
	c := newTestController()
	c.params.P = 0.1

	if mv := c.Tick(-200, 1300, true, false); mv != 100 {
		t.Fatalf("mv=%v want clamp at 100", mv)
	}
	if mv := c.Tick(1300, -200, true, false); mv != 0 {
		t.Fatalf("mv=%v want clamp at 0", mv)
	}
}

func TestMode_Dispatch(t *testing.T) {
	c := newTestController()

	if got := c.Mode(false, false); got != ModeStopped {
		t.Fatalf("mode=%v want stopped on sensor fault", got)
	}
	if got := c.Mode(true, true); got != ModeStopped {
		t.Fatalf("mode=%v want stopped under stop", got)
	}
	if got := c.Mode(true, false); got != ModePID {
		t.Fatalf("mode=%v want pid", got)
	}
	c.params.Cntl = AlgorithmONOFF
	if got := c.Mode(true, false); got != ModeONOFF {
		t.Fatalf("mode=%v want onoff", got)
	}
	c.StartAutotune()
	if got := c.Mode(true, false); got != ModeAutotuning {
		t.Fatalf("mode=%v want autotune", got)
	}
}
