//go:build linux

package buttons

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"tempctl/internal/panel"
)

// Open requests the configured BCM GPIO lines as debounced, pulled-up
// inputs and forwards edges to the sink. Buttons are wired active-low:
// a falling edge is a press.
func Open(lines map[string]int, sink Sink) (*Reader, error) {
	r := &Reader{}
	for name, pin := range lines {
		id := panel.Button(name)
		if !panel.KnownButton(id) {
			r.Close()
			return nil, fmt.Errorf("buttons: unknown button %q", name)
		}
		line, err := requestLine(pin, func(evt gpiocdev.LineEvent) {
			now := time.Now()
			switch evt.Type {
			case gpiocdev.LineEventFallingEdge:
				sink.ButtonDown(id, now)
			case gpiocdev.LineEventRisingEdge:
				sink.ButtonUp(id, now)
			}
		})
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("buttons: line %s (GPIO%d): %w", name, pin, err)
		}
		r.lines = append(r.lines, line)
	}
	return r, nil
}

func requestLine(pin int, handler func(gpiocdev.LineEvent)) (*gpiocdev.Line, error) {
	// On Pi, line names are commonly "GPIO17", etc. Scan the chips the way
	// the kernel exposes them; header GPIOs are not always on gpiochip0.
	lineName := fmt.Sprintf("GPIO%d", pin)

	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", e.Name()))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithBothEdges,
			gpiocdev.WithDebounce(5*time.Millisecond),
			gpiocdev.WithEventHandler(handler),
			gpiocdev.WithConsumer("tempctl-panel"),
		)
		_ = chip.Close()
		if err != nil {
			continue
		}
		return line, nil
	}

	return nil, fmt.Errorf("gpio line %q not found (or busy)", lineName)
}

// Reader owns the requested lines until Close.
type Reader struct {
	lines []*gpiocdev.Line
}

func (r *Reader) Close() {
	if r == nil {
		return
	}
	for _, l := range r.lines {
		_ = l.Close()
	}
	r.lines = nil
}
