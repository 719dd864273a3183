package panel

import "time"

// Button identifies a physical front-panel key.
type Button string

const (
	ButtonLevel Button = "level"
	ButtonMode  Button = "mode"
	ButtonUp    Button = "up"
	ButtonDown  Button = "down"
)

// KnownButton reports whether id names a front-panel key.
func KnownButton(id Button) bool {
	switch id {
	case ButtonLevel, ButtonMode, ButtonUp, ButtonDown:
		return true
	}
	return false
}

const (
	// Releases shorter than this dispatch the short-press action.
	shortPressMax = time.Second
	// Holds reaching this fire long-press transitions, during the hold.
	longPressMin = 3 * time.Second
)

// hold is the per-button record alive while a key is physically down.
// handled marks holds already consumed by a long-press transition so the
// release does not also fire the short-press action.
type hold struct {
	start   time.Time
	handled bool
}

// Dispatcher turns raw button down/up events plus periodic hold sampling
// into navigation and adjustment commands on the level machine.
//
// Adjust is called for short presses of up/down with the selected item and
// direction; the owner routes it to the parameter store or the setpoint.
// Not safe for concurrent use.
type Dispatcher struct {
	machine *Machine
	adjust  func(item string, dir int)

	holds map[Button]*hold
}

func NewDispatcher(machine *Machine, adjust func(item string, dir int)) *Dispatcher {
	return &Dispatcher{
		machine: machine,
		adjust:  adjust,
		holds:   make(map[Button]*hold),
	}
}

// ButtonDown opens a hold record. A duplicate down event for a key already
// held is ignored.
func (d *Dispatcher) ButtonDown(id Button, now time.Time) {
	if !KnownButton(id) {
		return
	}
	if _, ok := d.holds[id]; ok {
		return
	}
	d.holds[id] = &hold{start: now}
}

// ButtonUp closes the hold record and, unless a long-press rule already
// consumed it, dispatches the short-press action.
func (d *Dispatcher) ButtonUp(id Button, now time.Time) {
	h, ok := d.holds[id]
	if !ok {
		return
	}
	delete(d.holds, id)

	if h.handled || now.Sub(h.start) >= shortPressMax {
		return
	}

	switch id {
	case ButtonLevel:
		d.machine.NavigateShort()
	case ButtonMode:
		d.machine.NextItem()
	case ButtonUp:
		d.fireAdjust(+1)
	case ButtonDown:
		d.fireAdjust(-1)
	}
}

// CheckLongPresses samples the live holds against the long-press threshold.
// Call it every evaluation cycle while keys are held: the transitions fire
// during the hold, not on release. The joint level+mode rule wins over the
// solo level rule when both keys are down.
func (d *Dispatcher) CheckLongPresses(now time.Time) {
	lvl, lvlHeld := d.holds[ButtonLevel]
	mode, modeHeld := d.holds[ButtonMode]

	if lvlHeld && modeHeld && !lvl.handled && !mode.handled {
		// Joint duration is the shorter of the two individual holds.
		joint := now.Sub(lvl.start)
		if mh := now.Sub(mode.start); mh < joint {
			joint = mh
		}
		if joint >= longPressMin {
			lvl.handled = true
			mode.handled = true
			d.machine.EnterProtection()
			return
		}
	}

	if lvlHeld && !modeHeld && !lvl.handled && now.Sub(lvl.start) >= longPressMin {
		lvl.handled = true
		d.machine.EnterInitial()
	}
}

// Held reports whether a key currently has an open hold record.
func (d *Dispatcher) Held(id Button) bool {
	_, ok := d.holds[id]
	return ok
}

func (d *Dispatcher) fireAdjust(dir int) {
	if d.adjust == nil {
		return
	}
	item := d.machine.SelectedItem()
	if item == "" {
		return
	}
	d.adjust(item, dir)
}
