package userdict

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	d := New()
	d.Register("かんじ", "漢字")
	d.Register("かんじ", "感じ")
	d.Register("べつ", "別")

	path := filepath.Join(t.TempDir(), "user.lxuw")
	require.NoError(t, d.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, d.Len(), loaded.Len())

	entries, ok := loaded.Lookup("かんじ")
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, WinningCost, entries[0].WordCost)
	assert.Equal(t, GeneralNounLeftID, entries[0].LeftID)
}

func TestLoadMissingFileReturnsEmptyDictionary(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "missing.lxuw"))
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
}

func TestFromBytesRejectsBadMagic(t *testing.T) {
	_, err := FromBytes([]byte("XXXX\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"))
	assert.Error(t, err)
}

func TestFromBytesRejectsTruncated(t *testing.T) {
	_, err := FromBytes([]byte("LX"))
	assert.Error(t, err)
}
