package streammgr

import (
	"testing"

	"github.com/petrkotek/magtape"
	"github.com/petrkotek/magtape/drive"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/assert"
)

func newTestManager(t *testing.T, supportsSetmarks bool) (*Manager, *drive.Simulator) {
	t.Helper()
	params := magtape.DriveParams{
		MinBlockSize:     64,
		DefaultBlockSize: 1024,
		MaxBlockSize:     1 << 16,
		MaxPartitions:    1,
		SupportsSetMarks: supportsSetmarks,
	}
	sim := drive.NewSimulator(params, 1<<20)
	drv, err := drive.Open(func() (drive.RawDevice, error) { return sim, nil })
	require.NoError(t, err)

	mgr := New(drv)
	require.NoError(t, mgr.MarkOpen())
	require.NoError(t, mgr.LoadMedia())
	require.NoError(t, mgr.PrepareMedia(false))
	return mgr, sim
}

func TestManager_StateLegality_EveryTransitionIsInTable(t *testing.T) {
	mgr, _ := newTestManager(t, true)
	assert.Equal(t, StateMediaPrepared, mgr.state)

	require.NoError(t, mgr.transition(StateWritingContent))
	require.NoError(t, mgr.transition(StateMediaPrepared))
}

func TestManager_IllegalTransition_Rejected(t *testing.T) {
	mgr, _ := newTestManager(t, true)
	mgr.state = StateOpen
	err := mgr.transition(StateWritingContent)
	require.Error(t, err)
}

func TestManager_WritingContent_ReadTOC_SilentlyEndsPhase(t *testing.T) {
	mgr, _ := newTestManager(t, true)
	ws, err := mgr.ProduceWriteContentStream(-1, 0)
	require.NoError(t, err)
	require.NoError(t, ws.Close())
	mgr.activeStream = streamNone

	_, err = mgr.ProduceReadTOCStream(false, -1)
	require.NoError(t, err)
	assert.Equal(t, StateReadingTOC, mgr.state)
}

func TestManager_CapacityGuard_RejectsOversizedFile(t *testing.T) {
	mgr, _ := newTestManager(t, true)
	_, err := mgr.ProduceWriteContentStream(10<<20, 0)
	require.Error(t, err)
}

func TestManager_OnlyOneStreamOutstanding(t *testing.T) {
	mgr, _ := newTestManager(t, true)
	_, err := mgr.ProduceWriteContentStream(-1, 0)
	require.NoError(t, err)

	_, err = mgr.ProduceReadTOCStream(false, -1)
	require.Error(t, err, "a second stream request should fail while one is outstanding")
}

func TestManager_EndWriteContentSet_AdvancesCursor(t *testing.T) {
	mgr, _ := newTestManager(t, true)
	ws, err := mgr.ProduceWriteContentStream(-1, 0)
	require.NoError(t, err)
	ws.Write([]byte("hello"))
	require.NoError(t, ws.Close())

	require.NoError(t, mgr.EndWriteContentSet())
	assert.Equal(t, magtape.CursorEndOfContent, mgr.Cursor())
}
