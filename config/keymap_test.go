package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKeymapParsesValidEntries(t *testing.T) {
	km := BuildKeymap(map[string][]string{
		"36": {"\n", "\n"},
		"9":  {"\t", "TAB"},
	})
	o, ok := km.Lookup(9)
	require.True(t, ok)
	assert.Equal(t, "\t", o.Normal)
	assert.Equal(t, "TAB", o.Shifted)
}

func TestBuildKeymapSkipsNonNumericKey(t *testing.T) {
	km := BuildKeymap(map[string][]string{"notanumber": {"a", "A"}})
	assert.Empty(t, km)
}

func TestBuildKeymapSkipsWrongArity(t *testing.T) {
	km := BuildKeymap(map[string][]string{"9": {"only-one"}})
	assert.Empty(t, km)
}

func TestKeymapLookupMissingKeyReturnsFalse(t *testing.T) {
	km := BuildKeymap(nil)
	_, ok := km.Lookup(1)
	assert.False(t, ok)
}
