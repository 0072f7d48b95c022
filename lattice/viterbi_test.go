package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexime/connection"
	"lexime/dict"
)

func TestNBestReturnsCheapestPathFirst(t *testing.T) {
	d := dict.New()
	d.Insert("かんじ", dict.Entry{Reading: "かんじ", Surface: "漢字", WordCost: -100})
	d.Insert("かんじ", dict.Entry{Reading: "かんじ", Surface: "感じ", WordCost: -50})

	l := Build(d, "かんじ")
	cf := DefaultCostFunction(connection.Unigram())

	paths := NBest(l, cf, 5)
	require.NotEmpty(t, paths)
	assert.Equal(t, "漢字", paths[0].Surface())
	for i := 1; i < len(paths); i++ {
		assert.LessOrEqual(t, paths[i-1].TotalCost, paths[i].TotalCost)
	}
}

func TestNBestExcludesSentinelsFromSegments(t *testing.T) {
	d := dict.New()
	d.Insert("か", dict.Entry{Reading: "か", Surface: "可", WordCost: 0})

	l := Build(d, "か")
	cf := DefaultCostFunction(connection.Unigram())

	paths := NBest(l, cf, 3)
	require.NotEmpty(t, paths)
	require.Len(t, paths[0].Segments, 1)
	assert.Equal(t, "可", paths[0].Segments[0].Surface)
}

func TestNBestOnEmptyReadingReturnsSingleEmptyPath(t *testing.T) {
	d := dict.New()
	l := Build(d, "")
	cf := DefaultCostFunction(connection.Unigram())

	paths := NBest(l, cf, 3)
	require.Len(t, paths, 1)
	assert.Empty(t, paths[0].Segments)
	assert.Equal(t, "", paths[0].Surface())
}

func TestNBestDedupsIdenticalSurfacesKeepingCheapest(t *testing.T) {
	d := dict.New()
	// Two nodes at the same span producing the same surface: cheaper one
	// should win and only one path with that surface should survive.
	d.Insert("てすと", dict.Entry{Reading: "てすと", Surface: "テスト", WordCost: -100})
	d.Insert("てすと", dict.Entry{Reading: "てすと", Surface: "テスト", WordCost: 50})

	l := Build(d, "てすと")
	cf := DefaultCostFunction(connection.Unigram())

	paths := NBest(l, cf, 5)
	count := 0
	var best int64
	for _, p := range paths {
		if p.Surface() == "テスト" {
			count++
			best = p.TotalCost
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, int64(-100), best)
}

func TestNBestRespectsOvergenerateLimit(t *testing.T) {
	d := dict.New()
	d.Insert("か", dict.Entry{Reading: "か", Surface: "可", WordCost: 0})
	d.Insert("か", dict.Entry{Reading: "か", Surface: "化", WordCost: 10})
	d.Insert("か", dict.Entry{Reading: "か", Surface: "蚊", WordCost: 20})

	l := Build(d, "か")
	cf := DefaultCostFunction(connection.Unigram())

	paths := NBest(l, cf, 1)
	assert.Len(t, paths, 1)
	assert.Equal(t, "可", paths[0].Surface())
}

func TestNBestMultiSegmentPathConcatenatesSurfacesInOrder(t *testing.T) {
	d := dict.New()
	d.Insert("わたし", dict.Entry{Reading: "わたし", Surface: "私", WordCost: -10})
	d.Insert("は", dict.Entry{Reading: "は", Surface: "は", WordCost: -10})

	l := Build(d, "わたしは")
	cf := DefaultCostFunction(connection.Unigram())

	paths := NBest(l, cf, 3)
	require.NotEmpty(t, paths)
	assert.Equal(t, "私は", paths[0].Surface())
	require.Len(t, paths[0].Segments, 2)
	assert.Equal(t, "私", paths[0].Segments[0].Surface)
	assert.Equal(t, "は", paths[0].Segments[1].Surface)
}

func TestDedupBySurfaceSortsAscendingByCost(t *testing.T) {
	paths := []Path{
		{Segments: []Segment{{Surface: "b"}}, TotalCost: 10},
		{Segments: []Segment{{Surface: "a"}}, TotalCost: 5},
	}
	out := dedupBySurface(paths)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Surface())
	assert.Equal(t, "b", out[1].Surface())
}

func TestDedupBySurfaceDropsDuplicatesKeepingCheapest(t *testing.T) {
	paths := []Path{
		{Segments: []Segment{{Surface: "x"}}, TotalCost: 20},
		{Segments: []Segment{{Surface: "x"}}, TotalCost: 5},
	}
	out := dedupBySurface(paths)
	require.Len(t, out, 1)
	assert.Equal(t, int64(5), out[0].TotalCost)
}
