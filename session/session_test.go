package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexime/candidate"
	"lexime/config"
	"lexime/history"
	"lexime/rerank"
	"lexime/romaji"
	"lexime/worker"
)

// fakeSource is a synchronous candidateSource: Submit stashes the request,
// TryRecv hands back whatever result was queued by a test via enqueue.
type fakeSource struct {
	lastReq   worker.Request
	queued    []worker.Result
	submitted int
}

func (f *fakeSource) Submit(req worker.Request) {
	f.lastReq = req
	f.submitted++
}

func (f *fakeSource) enqueue(res worker.Result) {
	f.queued = append(f.queued, res)
}

func (f *fakeSource) TryRecv() (worker.Result, bool) {
	if len(f.queued) == 0 {
		return worker.Result{}, false
	}
	res := f.queued[0]
	f.queued = f.queued[1:]
	return res, true
}

func testTrie(t *testing.T) *romaji.Trie {
	t.Helper()
	table, err := romaji.LoadTable("")
	require.NoError(t, err)
	return romaji.NewTrie(table)
}

func newTestSession(t *testing.T, src *fakeSource) *Session {
	t.Helper()
	s := &Session{
		Mode:    candidate.Standard,
		Trie:    testTrie(t),
		History: history.New(history.DefaultConfig()),
		Worker:  src,
		Now:     func() uint64 { return 0 },
	}
	return s
}

func TestHandleKeyStartsComposingOnLowercaseLetter(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	resp := s.HandleKey(KeyEvent{Text: "k"})
	require.True(t, resp.Consumed)
	require.True(t, s.IsComposing())
	assert.Equal(t, "k", s.Comp.PendingRomaji)
}

func TestHandleKeyIgnoresUnrecognizedKeyWhenIdle(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	resp := s.HandleKey(KeyEvent{KeyCode: KeyReturn})
	assert.False(t, resp.Consumed)
	assert.False(t, s.IsComposing())
}

func TestShiftLetterStartsSuppressedCollapseComposition(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	// Hosts deliver the shifted literal text on Shift+letter.
	resp := s.HandleKey(KeyEvent{Text: "K", Shift: true})
	require.True(t, resp.Consumed)
	require.True(t, s.IsComposing())
	assert.True(t, s.Comp.SuppressCollapse)
	assert.Equal(t, "k", s.Comp.PendingRomaji)
}

func TestBackspaceRemovesPendingRomaji(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.HandleKey(KeyEvent{Text: "k"})
	resp := s.HandleKey(KeyEvent{KeyCode: KeyBackspace})
	require.True(t, resp.Consumed)
	assert.False(t, s.IsComposing())
}

func TestCancelClearsComposition(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.HandleKey(KeyEvent{Text: "k"})
	s.HandleKey(KeyEvent{Text: "a"}) // composed kana "か"
	resp := s.HandleKey(KeyEvent{KeyCode: KeyEscape})
	require.True(t, resp.Consumed)
	assert.False(t, s.IsComposing())

	foundHide, foundCommit := false, false
	for _, ev := range resp.Events {
		if ev.Kind == EventHideCandidates {
			foundHide = true
		}
		if ev.Kind == EventCommit && ev.Text == "か" {
			foundCommit = true
		}
	}
	assert.True(t, foundHide)
	assert.True(t, foundCommit, "escape must commit the force-drained kana")
	assert.Greater(t, s.History.Boost("か", "か", 0), 0.0, "escape must record the reading as its own surface")
}

func TestCancelOnEmptyCompositionOnlyHidesCandidates(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.Comp = &Composition{}
	resp := s.HandleKey(KeyEvent{KeyCode: KeyEscape})
	require.True(t, resp.Consumed)
	for _, ev := range resp.Events {
		assert.NotEqual(t, EventCommit, ev.Kind)
	}
}

func TestHandleIdleEisuKeyEmitsSwitchToAbc(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	resp := s.HandleKey(KeyEvent{KeyCode: KeyEisu})
	require.True(t, resp.Consumed)
	assert.False(t, s.IsComposing())

	found := false
	for _, ev := range resp.Events {
		if ev.Kind == EventSwitchToAbc {
			found = true
		}
	}
	assert.True(t, found)
}

func TestHandleIdleRecognizedPunctuationStartsComposing(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	resp := s.HandleKey(KeyEvent{Text: "."})
	require.True(t, resp.Consumed)
	require.True(t, s.IsComposing())
	assert.Equal(t, "、", s.Comp.ComposedKana)
}

func TestHandleComposingRecognizedPunctuationCommitsSelectionThenInsertsDirectly(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.HandleKey(KeyEvent{Text: "k"})
	s.HandleKey(KeyEvent{Text: "a"}) // composed kana "か"

	resp := s.HandleKey(KeyEvent{Text: "."})
	require.True(t, resp.Consumed)
	assert.False(t, s.IsComposing())

	var commits []string
	for _, ev := range resp.Events {
		if ev.Kind == EventCommit {
			commits = append(commits, ev.Text)
		}
	}
	assert.Equal(t, []string{"か", "、"}, commits)
}

func TestPollIgnoresStaleGeneration(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(t, src)
	s.HandleKey(KeyEvent{Text: "k"})

	src.enqueue(worker.Result{Generation: 999, Result: candidate.Result{Surfaces: []string{"stale"}}})
	resp := s.Poll()
	assert.False(t, resp.Consumed)
	assert.Nil(t, s.Comp.Candidates)
}

func TestPollAppliesCurrentGenerationResult(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(t, src)
	s.HandleKey(KeyEvent{Text: "k"})

	src.enqueue(worker.Result{Generation: src.lastReq.Generation, Result: candidate.Result{
		Surfaces: []string{"可", "化"},
		Phrases: map[string][]rerank.Phrase{
			"可": {{Reading: "か", Surface: "可"}},
		},
	}})
	resp := s.Poll()
	require.True(t, resp.Consumed)
	assert.Equal(t, []string{"可", "化"}, s.Comp.Candidates)
}

// TestCommitRawLooksUpPhrasesBySurfaceNotIndex exercises the fix where a
// committed candidate pulled from a source other than the top Viterbi path
// (e.g. a learned surface merged at a later position) still records the
// correct phrases, since lookup is keyed by surface rather than by
// SelectedIndex into Paths.
func TestCommitRawLooksUpPhrasesBySurfaceNotIndex(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(t, src)
	s.HandleKey(KeyEvent{Text: "k"})
	s.HandleKey(KeyEvent{Text: "a"}) // composed kana "か", the recorded reading

	src.enqueue(worker.Result{Generation: src.lastReq.Generation, Result: candidate.Result{
		Surfaces: []string{"可", "化"},
		Phrases: map[string][]rerank.Phrase{
			"可": {{Reading: "か", Surface: "可"}},
			"化": {{Reading: "か", Surface: "化"}},
		},
	}})
	s.Poll()

	s.Comp.SelectedIndex = 1 // select "化", the second candidate
	s.commitRaw()

	boost := s.History.Boost("か", "化", 0)
	assert.Greater(t, boost, 0.0)
	assert.Equal(t, 0.0, s.History.Boost("か", "可", 0))
}

func TestCommitClearsComposition(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.HandleKey(KeyEvent{Text: "k"})
	resp := s.HandleKey(KeyEvent{KeyCode: KeyReturn})
	require.True(t, resp.Consumed)
	assert.False(t, s.IsComposing())
}

func TestNextCandidateCyclesSelection(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.Comp = &Composition{Candidates: []string{"a", "b", "c"}}
	s.HandleKey(KeyEvent{KeyCode: KeySpace})
	assert.Equal(t, 1, s.Comp.SelectedIndex)
	s.HandleKey(KeyEvent{KeyCode: KeySpace})
	assert.Equal(t, 2, s.Comp.SelectedIndex)
	s.HandleKey(KeyEvent{KeyCode: KeySpace})
	assert.Equal(t, 0, s.Comp.SelectedIndex)
}

func TestMoveSelectionWrapsBackward(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.Comp = &Composition{Candidates: []string{"a", "b", "c"}}
	resp := s.HandleKey(KeyEvent{KeyCode: KeyUp})
	require.True(t, resp.Consumed)
	assert.Equal(t, 2, s.Comp.SelectedIndex)
}

func TestCheckStabilityAutoCommitsAfterThreshold(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.Comp = &Composition{ComposedKana: "かのこり"}

	path := rerank.Scored{Phrases: []rerank.Phrase{
		{Reading: "か", Surface: "可"},
		{Reading: "の", Surface: "の"},
		{Reading: "こ", Surface: "子"},
		{Reading: "り", Surface: "り"},
	}}
	s.Comp.Paths = []rerank.Scored{path}

	var resp KeyResponse
	var committed bool
	for i := 0; i < StabilityThreshold; i++ {
		resp, committed = s.checkStability()
	}
	require.True(t, committed)
	assert.Equal(t, "のこり", s.Comp.ComposedKana)

	foundCommit := false
	for _, ev := range resp.Events {
		if ev.Kind == EventCommit && ev.Text == "可" {
			foundCommit = true
		}
	}
	assert.True(t, foundCommit)
}

func TestCheckStabilityCoalescesLeadingASCIIRun(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.Comp = &Composition{ComposedKana: "abよてい"}

	path := rerank.Scored{Phrases: []rerank.Phrase{
		{Reading: "a", Surface: "a"},
		{Reading: "b", Surface: "b"},
		{Reading: "よ", Surface: "予"},
		{Reading: "てい", Surface: "定"},
	}}
	s.Comp.Paths = []rerank.Scored{path}

	var resp KeyResponse
	var committed bool
	for i := 0; i < StabilityThreshold; i++ {
		resp, committed = s.checkStability()
	}
	require.True(t, committed)
	assert.Equal(t, "よてい", s.Comp.ComposedKana)

	foundCommit := false
	for _, ev := range resp.Events {
		if ev.Kind == EventCommit && ev.Text == "ab" {
			foundCommit = true
		}
	}
	assert.True(t, foundCommit, "the leading ASCII run must commit as one unit")
}

func TestCheckStabilityResetsBelowSegmentThreshold(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.Comp = &Composition{ComposedKana: "か"}
	s.Comp.Paths = []rerank.Scored{{Phrases: []rerank.Phrase{{Reading: "か", Surface: "可"}}}}

	_, committed := s.checkStability()
	assert.False(t, committed)
}

func TestApplyKeymapPassesThroughWithNoOverride(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	ev := s.applyKeymap(KeyEvent{KeyCode: 1, Text: "x"})
	assert.Equal(t, "x", ev.Text)
}

func TestApplyKeymapSubstitutesConfiguredOverride(t *testing.T) {
	s := newTestSession(t, &fakeSource{})
	s.Keymap = config.Keymap{9: config.KeyOverride{Normal: "\t", Shifted: "TAB"}}

	ev := s.applyKeymap(KeyEvent{KeyCode: 9, Text: "ignored"})
	assert.Equal(t, "\t", ev.Text)

	shifted := s.applyKeymap(KeyEvent{KeyCode: 9, Text: "ignored", Shift: true})
	assert.Equal(t, "TAB", shifted.Text)
}
