package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexime/dict"
	"lexime/history"
	"lexime/lattice"
	"lexime/rerank"
)

func TestExtendChainFollowsBestSuccessor(t *testing.T) {
	h := history.New(history.DefaultConfig())
	h.Record("base", "base来", []history.Segment{{Reading: "x", Surface: "base"}, {Reading: "らい", Surface: "来"}}, 0)

	g := &Generator{History: h}
	out := g.extendChain("base", "base", 0)
	require.Len(t, out, 1)
	assert.Equal(t, "base来", out[0])
}

func TestExtendChainStopsOnCycle(t *testing.T) {
	h := history.New(history.DefaultConfig())
	// A -> B, B -> A: a two-node cycle.
	h.Record("x", "x", []history.Segment{{Reading: "r", Surface: "A"}, {Reading: "r", Surface: "B"}}, 0)
	h.Record("x", "x", []history.Segment{{Reading: "r", Surface: "B"}, {Reading: "r", Surface: "A"}}, 0)

	g := &Generator{History: h}
	out := g.extendChain("base", "A", 0)
	assert.Len(t, out, 1)
}

func TestExtendChainStopsWhenNoSuccessors(t *testing.T) {
	h := history.New(history.DefaultConfig())
	g := &Generator{History: h}
	out := g.extendChain("base", "nosuccessor", 0)
	assert.Empty(t, out)
}

func TestGeneratePredictiveAppendsRawReading(t *testing.T) {
	d := dict.New()
	g := newTestGenerator(d, nil)
	result := g.generatePredictive("かんじ", nil, nil, 0)
	assert.Contains(t, result.Surfaces, "かんじ")
}

func TestGeneratePredictiveExtendsChainFromLastPhrase(t *testing.T) {
	h := history.New(history.DefaultConfig())
	h.Record("x", "x", []history.Segment{{Reading: "r", Surface: "可"}, {Reading: "らい", Surface: "来"}}, 0)

	g := &Generator{History: h, Config: DefaultConfig()}
	scored := []rerank.Scored{{
		Path:    lattice.Path{Segments: []lattice.Segment{{Reading: "か", Surface: "可"}}},
		Phrases: []rerank.Phrase{{Reading: "か", Surface: "可"}},
	}}
	result := g.generatePredictive("か", scored, nil, 0)
	assert.Contains(t, result.Surfaces, "可来")
}
