package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWALAppendAndReplayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.lxud.wal")
	w, err := openWAL(path)
	require.NoError(t, err)

	require.NoError(t, w.append(walEvent{Reading: "か", Surface: "可", Now: 1}))
	require.NoError(t, w.append(walEvent{
		Reading: "わたしは",
		Surface: "私は",
		Now:     2,
		Bigrams: []bigramEvent{{PrevSurface: "私", NextReading: "は", NextSurface: "は"}},
	}))
	require.NoError(t, w.close())

	events, err := replayWAL(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "可", events[0].Surface)
	assert.Equal(t, "私は", events[1].Surface)
	assert.Len(t, events[1].Bigrams, 1)
}

func TestReplayWALMissingFileReturnsEmpty(t *testing.T) {
	events, err := replayWAL(filepath.Join(t.TempDir(), "missing.wal"))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestReplayWALStopsAtTruncatedFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.lxud.wal")
	w, err := openWAL(path)
	require.NoError(t, err)
	require.NoError(t, w.append(walEvent{Reading: "か", Surface: "可", Now: 1}))
	require.NoError(t, w.close())

	// Append a truncated trailing frame header promising more payload than exists.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0xFF, 0xFF, 0xFF, 0x7F, 0, 0, 0, 0})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, err := replayWAL(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "可", events[0].Surface)
}

func TestCompactAfterKeepsOnlyPostCutoffFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.lxud.wal")
	w, err := openWAL(path)
	require.NoError(t, err)
	require.NoError(t, w.append(walEvent{Reading: "one", Surface: "1", Now: 1}))
	cutoff, err := w.size()
	require.NoError(t, err)
	require.NoError(t, w.append(walEvent{Reading: "two", Surface: "2", Now: 2}))

	require.NoError(t, w.compactAfter(cutoff))
	require.NoError(t, w.close())

	events, err := replayWAL(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2", events[0].Surface)
}
