// Package fixture provides test-only helpers for building an in-memory
// simulated Drive/Manager pair, the tape-domain analogue of disko's
// testing.LoadDiskImage: every package's tests that need a working drive
// without real hardware go through here instead of hand-rolling the
// Simulator wiring at each call site.
package fixture

import (
	"io"
	"testing"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/drive"
	"github.com/petrkotek/magtape/driveprofile"
	"github.com/petrkotek/magtape/streammgr"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// DefaultParams is a small, permissive capability set for tests that don't
// care about a specific drive model: setmarks supported, single partition,
// block sizes generous enough that the stream layer's direct-bypass paths
// exercise easily without a multi-megabyte fixture.
var DefaultParams = magtape.DriveParams{
	MinBlockSize:     64,
	DefaultBlockSize: 1024,
	MaxBlockSize:     1 << 16,
	MaxPartitions:    1,
	SupportsSetMarks: true,
}

// NewSimulatedDrive opens an in-memory Simulator through the same
// drive.Open retry/param-fill path production code uses, backed by
// capacityBytes of simulated media, failing the test immediately on any
// setup error.
func NewSimulatedDrive(t *testing.T, params magtape.DriveParams, capacityBytes uint64) (*drive.Drive, *drive.Simulator) {
	t.Helper()
	sim := drive.NewSimulator(params, capacityBytes)
	drv, err := drive.Open(func() (drive.RawDevice, error) { return sim, nil })
	require.NoError(t, err)
	return drv, sim
}

// NewProfiledSimulatedDrive is NewSimulatedDrive parametrized by a named
// driveprofile entry instead of a literal magtape.DriveParams, for tests
// exercising a specific drive model's capability combination (e.g. the
// "lto5" two-partition layout versus "dds2"'s single-partition fallback).
func NewProfiledSimulatedDrive(t *testing.T, slug string, capacityBytes uint64) (*drive.Drive, *drive.Simulator) {
	t.Helper()
	profile, err := driveprofile.Get(slug)
	require.NoError(t, err)
	return NewSimulatedDrive(t, profile.DriveParams(), capacityBytes)
}

// NewPreparedManager builds a Manager over a fresh Simulator and carries it
// through Open -> MediaLoaded -> MediaPrepared, returning the underlying
// Drive and Simulator alongside it for tests that want to drive the
// session API directly or inspect the recorded tape image.
func NewPreparedManager(t *testing.T, params magtape.DriveParams, capacityBytes uint64, useTOCMark bool) (*streammgr.Manager, *drive.Drive, *drive.Simulator) {
	t.Helper()
	drv, sim := NewSimulatedDrive(t, params, capacityBytes)
	mgr := streammgr.New(drv)
	require.NoError(t, mgr.MarkOpen())
	require.NoError(t, mgr.LoadMedia())
	require.NoError(t, mgr.PrepareMedia(useTOCMark))
	return mgr, drv, sim
}

// TapeImageBytes wraps a copy of data in a seekable io.ReadWriteSeeker, the
// same way disko's LoadDiskImage turns a raw image buffer into something
// test code can Seek around in -- used by tests that want to replay
// previously captured wire-format bytes (a TOC payload, a file header)
// without re-deriving them from a live Manager on every run.
func TapeImageBytes(data []byte) io.ReadWriteSeeker {
	cp := make([]byte, len(data))
	copy(cp, data)
	return bytesextra.NewReadWriteSeeker(cp)
}
