//go:build linux

package i2c

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Minimal Linux I2C device handle backed by /dev/i2c-*.
//
// I2C_RDWR gives us a combined write+read (repeated start), which register
// reads on most temperature sensors require.

const (
	i2cMrd  = 0x0001
	i2cRdwr = 0x0707
)

type msg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type rdwrData struct {
	msgs  uintptr
	nmsgs uint32
}

// Dev is a device at a 7-bit address on one opened bus.
type Dev struct {
	f    *os.File
	addr uint16
}

// Open opens the bus (e.g. /dev/i2c-1) and binds the device address.
func Open(path string, addr uint16) (*Dev, error) {
	path = filepath.Clean(path)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &Dev{f: f, addr: addr}, nil
}

func (d *Dev) Close() error {
	if d == nil || d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

// ReadReg fills dst from the register at reg (write-then-read transfer).
func (d *Dev) ReadReg(reg byte, dst []byte) error {
	_, err := d.tx([]byte{reg}, dst)
	return err
}

// WriteReg writes a single register byte.
func (d *Dev) WriteReg(reg, value byte) error {
	_, err := d.tx([]byte{reg, value}, nil)
	return err
}

func (d *Dev) tx(w, r []byte) (int, error) {
	if d == nil || d.f == nil {
		return 0, errors.New("i2c device is nil")
	}
	if d.addr == 0 || d.addr > 0x7F {
		return 0, fmt.Errorf("invalid i2c addr 0x%X", d.addr)
	}

	msgs := make([]msg, 0, 2)
	if len(w) > 0 {
		msgs = append(msgs, msg{addr: d.addr, flags: 0, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))})
	}
	if len(r) > 0 {
		msgs = append(msgs, msg{addr: d.addr, flags: i2cMrd, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))})
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	data := rdwrData{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), uintptr(i2cRdwr), uintptr(unsafe.Pointer(&data)))
	if errno != 0 {
		return 0, errno
	}
	if len(r) > 0 {
		return len(r), nil
	}
	return len(w), nil
}
