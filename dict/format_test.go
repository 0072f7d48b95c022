package dict

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	d := New()
	d.Insert("かんじ", Entry{Reading: "かんじ", Surface: "漢字", LeftID: 1, RightID: 2, WordCost: -100, Role: ContentWord})
	d.Insert("かんじ", Entry{Reading: "かんじ", Surface: "感じ", LeftID: 1, RightID: 2, WordCost: -50, Role: ContentWord})
	d.Insert("の", Entry{Reading: "の", Surface: "の", LeftID: 3, RightID: 3, WordCost: 0, Role: FunctionWord})

	path := filepath.Join(t.TempDir(), "system.lxdx")
	require.NoError(t, d.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, d.Len(), loaded.Len())

	entries, ok := loaded.Lookup("かんじ")
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, "漢字", entries[0].Surface)
	assert.Equal(t, int16(-100), entries[0].WordCost)
	assert.Equal(t, ContentWord, entries[0].Role)

	fnEntries, ok := loaded.Lookup("の")
	require.True(t, ok)
	assert.Equal(t, FunctionWord, fnEntries[0].Role)
}

func TestFromBytesRejectsBadMagic(t *testing.T) {
	_, err := FromBytes([]byte("XXXX\x01\x00\x00\x00\x00\x00\x00\x00\x00"))
	assert.Error(t, err)
}

func TestFromBytesRejectsTruncated(t *testing.T) {
	_, err := FromBytes([]byte("LX"))
	assert.Error(t, err)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.lxdx"))
	assert.Error(t, err)
}
