package history

import (
	"sort"
	"sync"

	"lexime/lexlog"
)

// Segment is the minimal shape Record needs from a winning candidate path:
// enough to derive phrase-boundary bigrams without coupling this package to
// lattice.Segment or rerank.Phrase.
type Segment struct {
	Reading string
	Surface string
}

// Successor is one ranked result of BigramSuccessors.
type Successor struct {
	Reading string
	Surface string
	Boost   float64
}

// Store is the unigram/bigram learning store (spec §3, §4.6). Reads take a
// reader lock, writes a writer lock; WAL frames are appended synchronously
// under the writer lock (spec §5).
type Store struct {
	mu       sync.RWMutex
	cfg      Config
	unigrams map[UnigramKey]*Entry
	bigrams  map[BigramKey]*Entry

	wal *walWriter
}

// New builds an empty, unpersisted store (tests, or the first run before a
// checkpoint path is configured).
func New(cfg Config) *Store {
	return &Store{
		cfg:      cfg,
		unigrams: make(map[UnigramKey]*Entry),
		bigrams:  make(map[BigramKey]*Entry),
	}
}

// Record bumps the unigram (reading, surface); if segments has at least two
// entries, also bumps each phrase-boundary bigram (spec §4.6). Appends one
// WAL frame synchronously.
func (s *Store) Record(reading, surface string, segments []Segment, now uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := walEvent{
		Reading: reading,
		Surface: surface,
		Now:     now,
	}
	s.bumpUnigram(reading, surface, now)

	if len(segments) >= 2 {
		for i := 1; i < len(segments); i++ {
			bk := BigramKey{
				PrevSurface: segments[i-1].Surface,
				NextReading: segments[i].Reading,
				NextSurface: segments[i].Surface,
			}
			s.bumpBigram(bk, now)
			ev.Bigrams = append(ev.Bigrams, bigramEvent{
				PrevSurface: bk.PrevSurface,
				NextReading: bk.NextReading,
				NextSurface: bk.NextSurface,
			})
		}
	}

	s.evictLocked()

	if s.wal != nil {
		if err := s.wal.append(ev); err != nil {
			lexlog.Warnf("history: WAL append failed: %v", err)
		}
	}
}

func (s *Store) bumpUnigram(reading, surface string, now uint64) {
	k := UnigramKey{Reading: reading, Surface: surface}
	e, ok := s.unigrams[k]
	if !ok {
		e = &Entry{}
		s.unigrams[k] = e
	}
	e.Frequency++
	e.LastUsed = now
}

func (s *Store) bumpBigram(k BigramKey, now uint64) {
	e, ok := s.bigrams[k]
	if !ok {
		e = &Entry{}
		s.bigrams[k] = e
	}
	e.Frequency++
	e.LastUsed = now
}

// Boost returns clamp(frequency * BoostPerUse, MaxBoost) * decay(last_used,
// now) for (reading, surface), or 0 if never observed (spec §4.6).
func (s *Store) Boost(reading, surface string, now uint64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.unigrams[UnigramKey{Reading: reading, Surface: surface}]
	if !ok {
		return 0
	}
	return s.boostOf(e, now)
}

func (s *Store) boostOf(e *Entry, now uint64) float64 {
	raw := clampBoost(float64(e.Frequency)*s.cfg.BoostPerUse, s.cfg.MaxBoost)
	return raw * decay(e.LastUsed, now, s.cfg.HalfLifeHours)
}

// BigramSuccessors returns every recorded (next_reading, next_surface) that
// followed prevSurface, sorted descending by boost (spec §4.6). now is used
// to compute the decay component of each boost.
func (s *Store) BigramSuccessors(prevSurface string, now uint64) []Successor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Successor
	for k, e := range s.bigrams {
		if k.PrevSurface != prevSurface {
			continue
		}
		out = append(out, Successor{
			Reading: k.NextReading,
			Surface: k.NextSurface,
			Boost:   s.boostOf(e, now),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Boost > out[j].Boost })
	return out
}

// LearnedSurfaces returns every surface learned for reading, sorted
// descending by boost (used by the candidate generator's Standard mode
// step 2, spec §4.5).
func (s *Store) LearnedSurfaces(reading string, now uint64) []Successor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Successor
	for k, e := range s.unigrams {
		if k.Reading != reading {
			continue
		}
		out = append(out, Successor{Reading: k.Reading, Surface: k.Surface, Boost: s.boostOf(e, now)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Boost > out[j].Boost })
	return out
}

// evictLocked drops the lowest frequency*decay entries from whichever table
// is at capacity until 10% of that table's capacity is free (spec §4.6).
// Caller must hold the write lock. now is approximated as the latest
// LastUsed seen, since eviction happens inline with a record() call.
func (s *Store) evictLocked() {
	evictMap(s.unigrams, s.cfg.MaxUnigrams, s.cfg.HalfLifeHours)
	evictMap(s.bigrams, s.cfg.MaxBigrams, s.cfg.HalfLifeHours)
}

func evictMap[K comparable](m map[K]*Entry, cap int, halfLifeHours float64) {
	if cap <= 0 || len(m) <= cap {
		return
	}
	now := latestLastUsed(m)
	type scored struct {
		key   K
		score float64
	}
	scores := make([]scored, 0, len(m))
	for k, e := range m {
		scores = append(scores, scored{key: k, score: float64(e.Frequency) * decay(e.LastUsed, now, halfLifeHours)})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score < scores[j].score })

	target := cap - cap/10
	for _, sc := range scores {
		if len(m) <= target {
			break
		}
		delete(m, sc.key)
	}
}

func latestLastUsed[K comparable](m map[K]*Entry) uint64 {
	var max uint64
	for _, e := range m {
		if e.LastUsed > max {
			max = e.LastUsed
		}
	}
	return max
}
