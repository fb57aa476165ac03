package catalog

import (
	"testing"
	"time"

	"github.com/petrkotek/magtape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTOC(t *testing.T) *magtape.TOC {
	t.Helper()
	now := time.Now()
	toc := magtape.NewTOC("test", now)

	set0 := magtape.SetTOC{Volume: 1}
	f0 := catalogFile(toc, "/a.txt", now.Add(-time.Hour))
	f1 := catalogFile(toc, "/b.txt", now.Add(-time.Hour))
	require.NoError(t, set0.Append(f0))
	require.NoError(t, set0.Append(f1))
	toc.BeginSet(set0)

	set1 := magtape.SetTOC{Volume: 1}
	require.NoError(t, set1.SetIncremental(true))
	f2 := catalogFile(toc, "/A.TXT", now) // case-insensitive override of /a.txt
	require.NoError(t, set1.Append(f2))
	toc.BeginSet(set1)

	return toc
}

func catalogFile(toc *magtape.TOC, name string, modified time.Time) magtape.FileInfo {
	fi := magtape.NewFileInfo(magtape.FileDescriptor{FullName: name, LastModified: modified}, 0)
	return AssignUID(toc, fi)
}

func TestFindBaseSet_StopsAtNonIncremental(t *testing.T) {
	toc := buildTOC(t)
	assert.Equal(t, 0, FindBaseSet(toc, 1))
	assert.Equal(t, 0, FindBaseSet(toc, 0))
}

func TestSelectIncremental_NewerSetShadowsOlder(t *testing.T) {
	toc := buildTOC(t)
	sels := SelectIncremental(toc, 1, NewPatternSet(nil))
	require.Len(t, sels, 2)

	assert.Equal(t, 1, sels[0].SetIndex)
	assert.Len(t, sels[0].FileIndices, 1) // /A.TXT

	assert.Equal(t, 0, sels[1].SetIndex)
	assert.Len(t, sels[1].FileIndices, 1) // only /b.txt, /a.txt shadowed
	assert.Equal(t, "/b.txt", toc.Sets[0].Files[sels[1].FileIndices[0]].Descriptor.FullName)
}

func TestIsUpToDate(t *testing.T) {
	toc := buildTOC(t)
	now := time.Now()
	assert.True(t, IsUpToDate(toc, 1, "/a.txt", now.Add(-2*time.Hour)))
	assert.False(t, IsUpToDate(toc, 1, "/c.txt", now.Add(-2*time.Hour)))
}

func TestPatternSet_GlobMatching(t *testing.T) {
	ps := NewPatternSet([]string{"*.TXT"})
	assert.True(t, ps.Match("report.txt"))
	assert.False(t, ps.Match("report.bin"))

	assert.True(t, NewPatternSet(nil).Match("anything"))
	assert.False(t, NewPatternSet([]string{}).Match("anything"))
}

func TestPatternSet_TrailingSeparatorMatchesDottedNameUnderDirectory(t *testing.T) {
	ps := NewPatternSet([]string{"/backups/"})
	assert.True(t, ps.Match("/backups/x.log"))
}

func TestFirstLastSetOnVolume(t *testing.T) {
	toc := buildTOC(t)
	toc.Sets[1].Volume = 2
	assert.Equal(t, 0, FirstSetOnVolume(toc, 0))
	assert.Equal(t, 0, LastSetOnVolume(toc, 0))
	assert.Equal(t, 1, FirstSetOnVolume(toc, 1))
}
