package session

import (
	"strings"

	"lexime/candidate"
	"lexime/config"
	"lexime/history"
	"lexime/rerank"
	"lexime/romaji"
	"lexime/worker"
)

// candidateSource is the subset of *worker.Worker the session needs,
// narrowed so tests can substitute a synchronous fake (grounded on the
// teacher's habit of depending on the narrowest interface a collaborator
// offers, e.g. dict.Lookuper over *dict.Dictionary).
type candidateSource interface {
	Submit(req worker.Request)
	TryRecv() (worker.Result, bool)
}

// Session is one composing conversation (spec §3, §6). Idle is represented
// by Comp == nil; composing by a non-nil, possibly-empty Comp.
type Session struct {
	ID string

	Comp *Composition
	Mode candidate.Mode

	DeferCandidates bool
	AbcPassthrough  bool

	generation uint64

	Trie    *romaji.Trie
	Keymap  config.Keymap
	History *history.Store
	Worker  candidateSource
	Now     func() uint64
}

// New builds a session in the idle state.
func New(id string, trie *romaji.Trie, km config.Keymap, hist *history.Store, w *worker.Worker, now func() uint64) *Session {
	return &Session{
		ID:      id,
		Mode:    candidate.Standard,
		Trie:    trie,
		Keymap:  km,
		History: hist,
		Worker:  w,
		Now:     now,
	}
}

// IsComposing reports whether the session currently holds a composition
// (spec §3's two states).
func (s *Session) IsComposing() bool {
	return s.Comp != nil
}

// SetDeferCandidates toggles whether Poll suppresses ShowCandidates events;
// while set, Poll still applies results but never emits the panel (spec §6).
func (s *Session) SetDeferCandidates(v bool) { s.DeferCandidates = v }

// SetConversionMode switches between Standard and Predictive candidate
// generation (spec §6).
func (s *Session) SetConversionMode(m candidate.Mode) { s.Mode = m }

// SetAbcPassthrough toggles programmer-mode ASCII passthrough (spec §4.7,
// §6).
func (s *Session) SetAbcPassthrough(v bool) { s.AbcPassthrough = v }

// HandleKey dispatches one keystroke. It never blocks: recomputing
// candidates only submits a request to the worker and returns a
// SchedulePoll event (spec §4.8).
func (s *Session) HandleKey(ev KeyEvent) KeyResponse {
	ev = s.applyKeymap(ev)

	if s.AbcPassthrough && !s.IsComposing() {
		return notConsumed()
	}

	if s.IsComposing() {
		return s.handleComposing(ev)
	}
	return s.handleIdle(ev)
}

// applyKeymap substitutes ev.Text with the configured override for ev.KeyCode,
// if one exists (spec §4.7's programmer-mode keymap, spec §6). The override
// applies regardless of state; it only ever changes which literal a key
// types, never a control key's function.
func (s *Session) applyKeymap(ev KeyEvent) KeyEvent {
	if s.Keymap == nil {
		return ev
	}
	override, ok := s.Keymap.Lookup(ev.KeyCode)
	if !ok {
		return ev
	}
	if ev.Shift {
		ev.Text = override.Shifted
	} else {
		ev.Text = override.Normal
	}
	return ev
}

// handleIdle is the idle-state dispatch table (spec §4.7): the Eisu key
// emits SwitchToAbc; an ASCII letter or digit, or a punctuation key the
// romaji trie recognizes, starts a composition (see isComposableStart);
// everything else passes through unconsumed. Shift+letter starts a
// composition that suppresses the romaji collapse pass, per the spec's
// literal-latin escape hatch.
func (s *Session) handleIdle(ev KeyEvent) KeyResponse {
	if ev.KeyCode == KeyEisu {
		return consumed(SwitchToAbcEvent())
	}
	if !s.isComposableStart(ev) {
		return notConsumed()
	}

	s.Comp = &Composition{SuppressCollapse: ev.Shift}
	return s.feedText(strings.ToLower(ev.Text))
}

// handleComposing is the composing-state dispatch table (spec §4.7).
func (s *Session) handleComposing(ev KeyEvent) KeyResponse {
	switch ev.KeyCode {
	case KeyReturn:
		return s.commitRaw()
	case KeyEscape:
		return s.cancel()
	case KeyBackspace:
		return s.backspace()
	case KeySpace:
		return s.nextCandidate()
	case KeyTab:
		return s.commitSelected()
	case KeyUp, KeyLeft:
		return s.moveSelection(-1)
	case KeyDown, KeyRight:
		return s.moveSelection(1)
	}

	if ev.Text == "" {
		return notConsumed()
	}
	if s.isRecognizedPunctuation(ev.Text) {
		return s.insertPunctuation(ev.Text)
	}
	return s.feedText(strings.ToLower(ev.Text))
}

// isComposableStart reports whether ev should open a new composition: a
// printable ascii letter/digit with no control modifier, or a punctuation
// key the romaji trie itself recognizes (spec §4.7's idle-state table, e.g.
// "." -> "、"). Shift is allowed on a letter (it selects SuppressCollapse,
// the literal-latin escape hatch) and the produced text is lowercased
// before it reaches the romaji transducer.
func (s *Session) isComposableStart(ev KeyEvent) bool {
	if ev.HasModifier || ev.Text == "" {
		return false
	}
	r := []rune(ev.Text)
	if len(r) != 1 {
		return false
	}
	c := r[0]
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return true
	}
	return s.isRecognizedPunctuation(ev.Text)
}

// isRecognizedPunctuation reports whether text is an exact member of the
// romaji trie that isn't itself a letter/digit, i.e. a punctuation shortcut
// like "." or "[" (spec §4.7).
func (s *Session) isRecognizedPunctuation(text string) bool {
	if s.Trie == nil || text == "" {
		return false
	}
	r := []rune(text)
	if len(r) != 1 {
		return false
	}
	if c := r[0]; (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
		return false
	}
	_, ok := s.Trie.Has(text)
	return ok
}

// insertPunctuation implements the composing-state "recognized punctuation"
// row (spec §4.7): commit whatever is currently selected, then insert the
// punctuation's kana directly rather than feeding it into the romaji
// pipeline like an ordinary letter.
func (s *Session) insertPunctuation(text string) KeyResponse {
	_, kana := s.Trie.Lookup(text)

	var events []Event
	if surface := s.Comp.SelectedSurface(); surface != "" {
		s.recordHistory(s.Comp.Reading(), surface, s.Comp.Phrases[surface])
		events = append(events, CommitEvent(surface))
	}

	s.Comp = nil
	s.generation++
	events = append(events, CommitEvent(kana), HideCandidatesEvent())
	return consumed(events...)
}

// feedText runs the romaji transducer over newly typed text, collapses
// latin-before-vowel runs unless suppressed, and requests fresh candidates.
func (s *Session) feedText(text string) KeyResponse {
	composed, pending := romaji.Convert(s.Trie, s.Comp.ComposedKana, s.Comp.PendingRomaji+text, false)
	if !s.Comp.SuppressCollapse {
		composed = romaji.Collapse(s.Trie, composed)
	}
	s.Comp.ComposedKana = composed
	s.Comp.PendingRomaji = pending

	events := []Event{SetMarkedTextEvent(s.Comp.ComposedKana + s.Comp.PendingRomaji)}
	events = append(events, s.requestCandidates()...)
	return consumed(events...)
}

// requestCandidates submits an async request for the composition's current
// reading and asks the host to poll for the result (spec §4.8).
func (s *Session) requestCandidates() []Event {
	if s.Comp.IsEmpty() || s.Worker == nil {
		return nil
	}
	s.generation++
	s.Worker.Submit(worker.Request{
		Generation: s.generation,
		Reading:    s.Comp.Reading(),
		Mode:       s.Mode,
	})
	return []Event{SchedulePollEvent()}
}

// Poll drains at most one pending candidate result and, if still current,
// applies it to the composition: updates Candidates/Paths, resets the
// selection, runs the auto-commit stability check, and emits
// ShowCandidates unless DeferCandidates suppresses it (spec §4.7, §4.8).
func (s *Session) Poll() KeyResponse {
	if s.Worker == nil || !s.IsComposing() {
		return notConsumed()
	}
	res, ok := s.Worker.TryRecv()
	if !ok || res.Generation != s.generation {
		return notConsumed()
	}

	s.Comp.Candidates = res.Result.Surfaces
	s.Comp.Paths = res.Result.Paths
	s.Comp.Phrases = res.Result.Phrases
	s.Comp.SelectedIndex = 0

	if resp, autoCommitted := s.checkStability(); autoCommitted {
		return resp
	}

	if s.DeferCandidates || len(s.Comp.Candidates) == 0 {
		return consumed()
	}
	return consumed(ShowCandidatesEvent(s.Comp.Candidates, s.Comp.SelectedIndex))
}

// checkStability implements spec §4.7's auto-commit rule: once the top
// path's first phrase reading has recurred STABILITY_THRESHOLD times
// running and the path has at least SEGMENT_THRESHOLD phrases, the first
// phrase commits on its own and the remainder stays in composition. A
// companion rule coalesces a leading run of all-ASCII phrases into one
// commit unit instead of committing them one character at a time.
func (s *Session) checkStability() (KeyResponse, bool) {
	if len(s.Comp.Paths) == 0 {
		s.Comp.Stability.Reset()
		return KeyResponse{}, false
	}
	top := s.Comp.Paths[0]
	if len(top.Phrases) < SegmentThreshold {
		s.Comp.Stability.Reset()
		return KeyResponse{}, false
	}

	run := asciiRunLen(top.Phrases)
	if run == 0 {
		run = 1
	}
	unit := top.Phrases[:run]
	reading, surface := coalescePhrases(unit)

	count := s.Comp.Stability.Observe(reading)
	if count < StabilityThreshold {
		return KeyResponse{}, false
	}

	s.Comp.Stability.Reset()
	s.recordHistory(reading, surface, unit)

	remainingReading := s.Comp.ComposedKana[len(reading):]
	s.Comp.ComposedKana = remainingReading
	s.Comp.Candidates = nil
	s.Comp.Paths = nil
	s.Comp.SelectedIndex = 0

	events := []Event{CommitEvent(surface), SetMarkedTextEvent(remainingReading)}
	events = append(events, s.requestCandidates()...)
	return consumed(events...), true
}

func (s *Session) backspace() KeyResponse {
	switch {
	case s.Comp.PendingRomaji != "":
		r := []rune(s.Comp.PendingRomaji)
		s.Comp.PendingRomaji = string(r[:len(r)-1])
	case s.Comp.ComposedKana != "":
		r := []rune(s.Comp.ComposedKana)
		s.Comp.ComposedKana = string(r[:len(r)-1])
	default:
		return s.cancel()
	}

	if s.Comp.IsEmpty() {
		s.Comp = nil
		return consumed(HideCandidatesEvent())
	}

	events := []Event{SetMarkedTextEvent(s.Comp.ComposedKana + s.Comp.PendingRomaji)}
	events = append(events, s.requestCandidates()...)
	return consumed(events...)
}

// cancel is Escape's behavior (spec §4.7): force-drain any pending romaji,
// commit the result as literal hiragana, and record it to history under
// its own reading (DESIGN.md's Open Question decision), rather than
// discarding the composition outright.
func (s *Session) cancel() KeyResponse {
	composed, _ := romaji.Convert(s.Trie, s.Comp.ComposedKana, s.Comp.PendingRomaji, true)

	s.Comp = nil
	s.generation++
	if composed == "" {
		return consumed(HideCandidatesEvent())
	}
	s.recordHistory(composed, composed, nil)
	return consumed(CommitEvent(composed), HideCandidatesEvent())
}

// commitRaw commits the highlighted candidate (or the raw kana if no
// candidates have arrived yet) and records history over every phrase
// boundary the winning path crossed (spec §4.6's "commit always records").
func (s *Session) commitRaw() KeyResponse {
	surface := s.Comp.SelectedSurface()
	reading := s.Comp.Reading()
	s.recordHistory(reading, surface, s.Comp.Phrases[surface])

	s.Comp = nil
	s.generation++
	return consumed(CommitEvent(surface), HideCandidatesEvent())
}

// commitSelected is Tab's behavior: identical to Return in both conversion
// modes (spec's Open Question decision, recorded in DESIGN.md).
func (s *Session) commitSelected() KeyResponse {
	return s.commitRaw()
}

func (s *Session) recordHistory(reading, surface string, phrases []rerank.Phrase) {
	if s.History == nil {
		return
	}
	segs := make([]history.Segment, len(phrases))
	for i, p := range phrases {
		segs[i] = history.Segment{Reading: p.Reading, Surface: p.Surface}
	}
	s.History.Record(reading, surface, segs, s.Now())
}

func (s *Session) nextCandidate() KeyResponse {
	if len(s.Comp.Candidates) == 0 {
		return s.requestOnlyResponse()
	}
	s.Comp.SelectedIndex = (s.Comp.SelectedIndex + 1) % len(s.Comp.Candidates)
	return consumed(ShowCandidatesEvent(s.Comp.Candidates, s.Comp.SelectedIndex))
}

func (s *Session) moveSelection(delta int) KeyResponse {
	n := len(s.Comp.Candidates)
	if n == 0 {
		return s.requestOnlyResponse()
	}
	s.Comp.SelectedIndex = ((s.Comp.SelectedIndex+delta)%n + n) % n
	return consumed(ShowCandidatesEvent(s.Comp.Candidates, s.Comp.SelectedIndex))
}

func (s *Session) requestOnlyResponse() KeyResponse {
	events := s.requestCandidates()
	return consumed(events...)
}
