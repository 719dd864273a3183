//go:build !linux

package buttons

import "fmt"

// Stub for non-Linux platforms; the simulator runs without hardware keys.
type Reader struct{}

func Open(lines map[string]int, sink Sink) (*Reader, error) {
	return nil, fmt.Errorf("buttons: gpio unsupported on this platform")
}

func (r *Reader) Close() {}
