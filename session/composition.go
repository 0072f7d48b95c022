package session

import (
	"unicode"

	"lexime/rerank"
)

// Composition is the session's in-progress input (spec §3): created empty
// on entering composing, mutated by every key, destroyed on commit/cancel.
type Composition struct {
	ComposedKana     string
	PendingRomaji    string
	Candidates       []string
	Paths            []rerank.Scored
	Phrases          map[string][]rerank.Phrase // candidate surface -> its source phrases, for history recording
	SelectedIndex    int
	Stability        stabilityTracker
	SuppressCollapse bool // Shift+letter composing mode (spec §4.7's idle-state rule)
}

// Reading is the lookup key fed to the candidate generator and recorded to
// history on commit: the composed kana only. Pending romaji is not part of
// it, and callers use it as is.
func (c *Composition) Reading() string {
	return c.ComposedKana
}

// IsEmpty reports whether the composition holds no kana or pending romaji,
// the condition for returning to idle.
func (c *Composition) IsEmpty() bool {
	return c.ComposedKana == "" && c.PendingRomaji == ""
}

// SelectedSurface returns the currently highlighted candidate, or the
// composed kana itself if no candidates have been computed yet.
func (c *Composition) SelectedSurface() string {
	if c.SelectedIndex >= 0 && c.SelectedIndex < len(c.Candidates) {
		return c.Candidates[c.SelectedIndex]
	}
	return c.ComposedKana
}

// stabilityTracker implements spec §4.7's auto-commit stability rule:
// the top path's first-phrase reading must repeat for STABILITY_THRESHOLD
// consecutive recomputations, with the path carrying SEGMENT_THRESHOLD+
// phrases, before the first phrase auto-commits.
type stabilityTracker struct {
	lastReading string
	repeatCount int
}

const (
	StabilityThreshold = 3
	SegmentThreshold   = 4
)

// Observe updates the tracker with the latest top path's first-phrase
// reading and returns the current repeat count.
func (t *stabilityTracker) Observe(firstPhraseReading string) int {
	if firstPhraseReading != "" && firstPhraseReading == t.lastReading {
		t.repeatCount++
	} else {
		t.lastReading = firstPhraseReading
		t.repeatCount = 1
	}
	return t.repeatCount
}

// Reset clears the tracker, e.g. after an auto-commit.
func (t *stabilityTracker) Reset() {
	t.lastReading = ""
	t.repeatCount = 0
}

// asciiRunLen implements spec §4.7's companion coalescing rule: a leading
// run of phrases that are each entirely ASCII letters/digits auto-commits
// as one word rather than character-by-character. Returns 0 if the leading
// phrase isn't ASCII, so the caller falls back to committing it alone.
func asciiRunLen(phrases []rerank.Phrase) int {
	n := 0
	for _, p := range phrases {
		if !isASCIIWord(p.Surface) {
			break
		}
		n++
	}
	return n
}

func isASCIIWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// coalescePhrases concatenates a run of phrases' readings and surfaces into
// a single commit unit (spec §4.7).
func coalescePhrases(phrases []rerank.Phrase) (reading, surface string) {
	for _, p := range phrases {
		reading += p.Reading
		surface += p.Surface
	}
	return reading, surface
}
