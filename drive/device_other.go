//go:build !linux

package drive

import "github.com/petrkotek/magtape/errors"

// OpenLinuxDevice is unavailable outside Linux; the ioctl-based driver in
// linux_tape.go only builds under //go:build linux. Non-Linux builds of
// cmd/magtape still link by calling this stub, which always reports
// ErrNotSupported -- real hardware use requires a Linux build, simulated
// drives work everywhere via NewSimulator.
func OpenLinuxDevice(path string) (RawDevice, error) {
	return nil, errors.ErrNotSupported.WithMessage("raw tape device access requires a Linux build")
}
