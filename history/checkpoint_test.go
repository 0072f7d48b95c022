package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingCheckpointStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "history.lxud"), testConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Boost("か", "可", 0))
}

func TestSaveOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.lxud")
	s, err := Open(path, testConfig())
	require.NoError(t, err)
	s.Record("かんじ", "漢字", nil, 100)
	require.NoError(t, s.Save(path))
	require.NoError(t, s.Close())

	reloaded, err := Open(path, testConfig())
	require.NoError(t, err)
	assert.Greater(t, reloaded.Boost("かんじ", "漢字", 100), 0.0)
}

func TestOpenReplaysWALOnTopOfCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.lxud")
	s, err := Open(path, testConfig())
	require.NoError(t, err)
	s.Record("checkpointed", "A", nil, 0)
	require.NoError(t, s.Save(path))

	// Recorded after the checkpoint snapshot: lives only in the WAL.
	s.Record("walonly", "B", nil, 1)
	require.NoError(t, s.Close())

	reloaded, err := Open(path, testConfig())
	require.NoError(t, err)
	assert.Greater(t, reloaded.Boost("checkpointed", "A", 1), 0.0)
	assert.Greater(t, reloaded.Boost("walonly", "B", 1), 0.0)
}

func TestSaveCompactsWALToPostCheckpointTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.lxud")
	s, err := Open(path, testConfig())
	require.NoError(t, err)
	s.Record("first", "A", nil, 0)
	require.NoError(t, s.Save(path))

	s.Record("second", "B", nil, 1)
	require.NoError(t, s.Save(path))
	require.NoError(t, s.Close())

	events, err := replayWAL(path + ".wal")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecodeCheckpointRejectsBadMagic(t *testing.T) {
	_, err := decodeCheckpoint([]byte("XXXX\x01"))
	assert.Error(t, err)
}

func TestDecodeCheckpointRejectsBadVersion(t *testing.T) {
	_, err := decodeCheckpoint([]byte(Magic + "\x09"))
	assert.Error(t, err)
}

func TestDecodeCheckpointRejectsTruncated(t *testing.T) {
	_, err := decodeCheckpoint([]byte("LX"))
	assert.Error(t, err)
}
