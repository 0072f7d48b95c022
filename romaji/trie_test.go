package romaji

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupExactNoLongerMember(t *testing.T) {
	tr := NewTrie(map[string]string{"ka": "か"})
	kind, kana := tr.Lookup("ka")
	assert.Equal(t, Exact, kind)
	assert.Equal(t, "か", kana)
}

func TestLookupMatchPrefixWhenNoExactMember(t *testing.T) {
	tr := NewTrie(map[string]string{"ka": "か", "ki": "き"})
	kind, kana := tr.Lookup("k")
	assert.Equal(t, MatchPrefix, kind)
	assert.Empty(t, kana)
}

func TestLookupExactAndPrefixWhenBothApply(t *testing.T) {
	tr := NewTrie(map[string]string{"n": "ん", "na": "な"})
	kind, kana := tr.Lookup("n")
	assert.Equal(t, ExactAndPrefix, kind)
	assert.Equal(t, "ん", kana)
}

func TestLookupNoneWhenKeyIsNotInTrie(t *testing.T) {
	tr := NewTrie(map[string]string{"ka": "か"})
	kind, _ := tr.Lookup("z")
	assert.Equal(t, None, kind)
}

func TestLookupEmptyKeyIsNone(t *testing.T) {
	tr := NewTrie(map[string]string{"ka": "か"})
	kind, _ := tr.Lookup("")
	assert.Equal(t, None, kind)
}

func TestHasReportsExactMembership(t *testing.T) {
	tr := NewTrie(map[string]string{"ka": "か"})
	kana, ok := tr.Has("ka")
	assert.True(t, ok)
	assert.Equal(t, "か", kana)

	_, ok = tr.Has("k")
	assert.False(t, ok)
}
