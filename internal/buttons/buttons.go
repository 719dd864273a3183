package buttons

import (
	"time"

	"tempctl/internal/panel"
)

// Sink receives physical button edges. The simulator core satisfies it.
type Sink interface {
	ButtonDown(id panel.Button, now time.Time)
	ButtonUp(id panel.Button, now time.Time)
}
