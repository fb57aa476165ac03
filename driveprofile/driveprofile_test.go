package driveprofile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetKnownProfile(t *testing.T) {
	p, err := Get("lto7")
	require.NoError(t, err)
	require.Equal(t, "LTO-7", p.Name)
	require.True(t, p.SupportsSetMarks != 0)

	params := p.DriveParams()
	require.True(t, params.CanPartition())
	require.True(t, params.SupportsSetMarks)
	require.Equal(t, uint32(65536), params.DefaultBlockSize)
}

func TestGetUnknownProfile(t *testing.T) {
	_, err := Get("does-not-exist")
	require.Error(t, err)
}

func TestNamesNonEmpty(t *testing.T) {
	require.NotEmpty(t, Names())
}
