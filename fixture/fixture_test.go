package fixture

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSimulatedDrive(t *testing.T) {
	drv, sim := NewSimulatedDrive(t, DefaultParams, 1<<20)
	require.NotNil(t, drv)
	require.NotNil(t, sim)
}

func TestNewProfiledSimulatedDrive(t *testing.T) {
	drv, _ := NewProfiledSimulatedDrive(t, "lto5", 4<<20)
	require.True(t, drv.Params.SupportsSetMarks)
	require.True(t, drv.Params.CanPartition())
}

func TestNewPreparedManager(t *testing.T) {
	mgr, drv, sim := NewPreparedManager(t, DefaultParams, 1<<20, false)
	require.NotNil(t, mgr)
	require.NotNil(t, drv)
	require.NotNil(t, sim)
}

func TestTapeImageBytes(t *testing.T) {
	original := []byte("hello tape")
	rws := TapeImageBytes(original)

	buf := make([]byte, len(original))
	n, err := rws.Read(buf)
	require.NoError(t, err)
	require.Equal(t, original, buf[:n])

	// Mutating the source slice afterward must not affect the snapshot.
	original[0] = 'X'
	_, err = rws.Seek(0, 0)
	require.NoError(t, err)
	n, err = rws.Read(buf)
	require.NoError(t, err)
	require.Equal(t, byte('h'), buf[0])
}
