package panel

import "tempctl/internal/control"

// Level is a front-panel access tier. Each tier owns an ordered list of
// selectable items; the mode key cycles through them.
type Level int

const (
	LevelOperation Level = iota
	LevelAdjustment
	LevelInitial
	LevelProtection
)

func (l Level) String() string {
	switch l {
	case LevelOperation:
		return "operation"
	case LevelAdjustment:
		return "adjustment"
	case LevelInitial:
		return "initial"
	case LevelProtection:
		return "protection"
	}
	return "unknown"
}

// ItemPVSV is the operation level's pseudo-parameter: the PV/SV readout,
// whose up/down action edits the setpoint.
const ItemPVSV = "pv_sv"

func (l Level) items() []string {
	switch l {
	case LevelOperation:
		return []string{ItemPVSV}
	case LevelAdjustment:
		return []string{control.ParamAT, control.ParamP, control.ParamI, control.ParamD, control.ParamHys}
	case LevelInitial:
		return []string{control.ParamSensorType, control.ParamCntl}
	case LevelProtection:
		return []string{control.ParamProtect}
	}
	return nil
}

// Machine tracks the active level and the selected item within it.
//
// Entering the initial-setting level asserts stop: the control output is
// forced to 0 while configuration is open. Not safe for concurrent use.
type Machine struct {
	level       Level
	menuIndex   int
	stopControl bool
}

func NewMachine() *Machine {
	return &Machine{level: LevelOperation}
}

func (m *Machine) Level() Level      { return m.level }
func (m *Machine) MenuIndex() int    { return m.menuIndex }
func (m *Machine) StopControl() bool { return m.stopControl }

// SelectedItem is the item the up/down keys currently act on.
func (m *Machine) SelectedItem() string {
	items := m.level.items()
	if m.menuIndex < 0 || m.menuIndex >= len(items) {
		return ""
	}
	return items[m.menuIndex]
}

// NextItem advances the menu selection cyclically.
func (m *Machine) NextItem() {
	items := m.level.items()
	if len(items) == 0 {
		return
	}
	m.menuIndex = (m.menuIndex + 1) % len(items)
}

// NavigateShort is the short press of the level key: operation and
// adjustment toggle, the deeper levels fall back to operation.
func (m *Machine) NavigateShort() {
	switch m.level {
	case LevelOperation:
		m.enter(LevelAdjustment)
	case LevelAdjustment:
		m.enter(LevelOperation)
	default:
		m.enter(LevelOperation)
	}
}

// EnterInitial is the solo long press of the level key.
func (m *Machine) EnterInitial() {
	m.enter(LevelInitial)
}

// EnterProtection is the joint long press of level+mode.
func (m *Machine) EnterProtection() {
	m.enter(LevelProtection)
}

func (m *Machine) enter(l Level) {
	m.level = l
	m.menuIndex = 0
	m.stopControl = l == LevelInitial
}
