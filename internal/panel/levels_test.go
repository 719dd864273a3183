package panel

import (
	"testing"

	"tempctl/internal/control"
)

func TestNavigateShort_Toggle(t *testing.T) {
	m := NewMachine()

	m.NavigateShort()
	if m.Level() != LevelAdjustment {
		t.Fatalf("level=%v want adjustment", m.Level())
	}
	m.NavigateShort()
	if m.Level() != LevelOperation {
		t.Fatalf("level=%v want operation", m.Level())
	}
}

func TestNavigateShort_DeepLevelsReturnToOperation(t *testing.T) {
	m := NewMachine()

	m.EnterInitial()
	if !m.StopControl() {
		t.Fatalf("stopControl=false want true in initial level")
	}
	m.NavigateShort()
	if m.Level() != LevelOperation {
		t.Fatalf("level=%v want operation", m.Level())
	}
	if m.StopControl() {
		t.Fatalf("stopControl=true after leaving initial level")
	}

	m.EnterProtection()
	m.NavigateShort()
	if m.Level() != LevelOperation {
		t.Fatalf("level=%v want operation", m.Level())
	}
}

func TestNextItem_CyclesWithinLevel(t *testing.T) {
	m := NewMachine()
	m.NavigateShort() // adjustment: at, p, i, d, hys

	want := []string{control.ParamP, control.ParamI, control.ParamD, control.ParamHys, control.ParamAT}
	for _, w := range want {
		m.NextItem()
		if got := m.SelectedItem(); got != w {
			t.Fatalf("selected=%q want %q", got, w)
		}
	}
}

func TestEnter_ResetsMenuIndex(t *testing.T) {
	m := NewMachine()
	m.NavigateShort()
	m.NextItem()
	m.NextItem()
	if m.MenuIndex() != 2 {
		t.Fatalf("menuIndex=%d want 2", m.MenuIndex())
	}

	m.NavigateShort()
	if m.MenuIndex() != 0 {
		t.Fatalf("menuIndex=%d want reset to 0", m.MenuIndex())
	}

	// Re-entering the same level also resets.
	m.EnterInitial()
	m.NextItem()
	m.EnterInitial()
	if m.MenuIndex() != 0 {
		t.Fatalf("menuIndex=%d want reset on re-enter", m.MenuIndex())
	}
}

func TestSelectedItem_PerLevel(t *testing.T) {
	m := NewMachine()
	if got := m.SelectedItem(); got != ItemPVSV {
		t.Fatalf("operation selected=%q want %q", got, ItemPVSV)
	}

	m.EnterInitial()
	if got := m.SelectedItem(); got != control.ParamSensorType {
		t.Fatalf("initial selected=%q want %q", got, control.ParamSensorType)
	}

	m.EnterProtection()
	if got := m.SelectedItem(); got != control.ParamProtect {
		t.Fatalf("protection selected=%q want %q", got, control.ParamProtect)
	}
}
