package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexime/connection"
	"lexime/dict"
	"lexime/history"
)

func TestGenerateStandardOrdersLearnedSurfacesAfterViterbiPaths(t *testing.T) {
	d := dict.New()
	d.Insert("か", dict.Entry{Reading: "か", Surface: "可", WordCost: -100})

	h := history.New(history.DefaultConfig())
	h.Record("か", "learned", nil, 0)

	g := newTestGenerator(d, h)
	result := g.Generate("か", Standard, 0)

	idxViterbi := indexOf(result.Surfaces, "可")
	idxLearned := indexOf(result.Surfaces, "learned")
	require.GreaterOrEqual(t, idxViterbi, 0)
	require.GreaterOrEqual(t, idxLearned, 0)
	assert.Less(t, idxViterbi, idxLearned)
}

func TestGenerateStandardCapsAtMaxResults(t *testing.T) {
	d := dict.New()
	for i := 0; i < 20; i++ {
		d.Insert("か", dict.Entry{Reading: "か", Surface: string(rune('a' + i)), WordCost: int16(i)})
	}
	g := NewGenerator(d, connection.Unigram(), nil, Config{NBest: 20, MaxResults: 3})
	result := g.Generate("か", Standard, 0)
	assert.LessOrEqual(t, len(result.Surfaces), 3)
}

func TestInsertByBoostPromotesToSecondPosition(t *testing.T) {
	seen := map[string]bool{"a": true}
	out := insertByBoost([]string{"a", "b", "c"}, "new", seen)
	assert.Equal(t, []string{"a", "new", "b", "c"}, out)
}

func TestInsertByBoostIgnoresAlreadySeenSurface(t *testing.T) {
	seen := map[string]bool{"a": true, "b": true}
	out := insertByBoost([]string{"a", "b"}, "b", seen)
	assert.Equal(t, []string{"a", "b"}, out)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
