package history

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"lexime/lexerr"
	"lexime/lexlog"
)

// Magic and Version identify the LXUD checkpoint format (spec §6):
// [4B magic "LXUD"][1B version][msgpack-serialized (unigrams, bigrams)].
const (
	Magic   = "LXUD"
	Version = 1
)

type unigramRecord struct {
	Reading   string
	Surface   string
	Frequency uint32
	LastUsed  uint64
}

type bigramRecord struct {
	PrevSurface string
	NextReading string
	NextSurface string
	Frequency   uint32
	LastUsed    uint64
}

type checkpointPayload struct {
	Unigrams []unigramRecord
	Bigrams  []bigramRecord
}

// Open loads the checkpoint at path (if any), replays the sibling
// <path>.wal on top of it, and leaves the store ready to append further WAL
// frames to that same file (spec §4.6's persistence protocol).
func Open(path string, cfg Config) (*Store, error) {
	s := New(cfg)

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			payload, perr := decodeCheckpoint(b)
			if perr != nil {
				lexlog.Warnf("history: checkpoint %s unreadable, starting empty: %v", path, perr)
			} else {
				for _, u := range payload.Unigrams {
					s.unigrams[UnigramKey{Reading: u.Reading, Surface: u.Surface}] = &Entry{Frequency: u.Frequency, LastUsed: u.LastUsed}
				}
				for _, bg := range payload.Bigrams {
					s.bigrams[BigramKey{PrevSurface: bg.PrevSurface, NextReading: bg.NextReading, NextSurface: bg.NextSurface}] = &Entry{Frequency: bg.Frequency, LastUsed: bg.LastUsed}
				}
			}
		case os.IsNotExist(err):
			// first run; nothing to load
		default:
			return nil, lexerr.Wrap(lexerr.FileIo, "history.Open.read", path, err)
		}

		walPath := path + ".wal"
		events, rerr := replayWAL(walPath)
		if rerr != nil {
			return nil, rerr
		}
		for _, ev := range events {
			s.bumpUnigram(ev.Reading, ev.Surface, ev.Now)
			for _, bg := range ev.Bigrams {
				s.bumpBigram(BigramKey{PrevSurface: bg.PrevSurface, NextReading: bg.NextReading, NextSurface: bg.NextSurface}, ev.Now)
			}
		}

		w, werr := openWAL(walPath)
		if werr != nil {
			return nil, werr
		}
		s.wal = w
	}

	return s, nil
}

func decodeCheckpoint(b []byte) (checkpointPayload, error) {
	var payload checkpointPayload
	if len(b) < 4+1 {
		return payload, lexerr.Wrap(lexerr.Deserialize, "history.decodeCheckpoint", "", errTruncated)
	}
	if string(b[0:4]) != Magic {
		return payload, lexerr.Wrap(lexerr.InvalidHeader, "history.decodeCheckpoint", "", errBadMagic)
	}
	if b[4] != Version {
		return payload, lexerr.Wrap(lexerr.UnsupportedVersion, "history.decodeCheckpoint", "", errBadVersion)
	}
	if err := msgpack.Unmarshal(b[5:], &payload); err != nil {
		return payload, lexerr.Wrap(lexerr.Deserialize, "history.decodeCheckpoint.unmarshal", "", err)
	}
	return payload, nil
}

// Save writes the checkpoint atomically and truncates the WAL (spec §4.6).
// Takes a reader lock to clone the in-memory state, per spec §5, then
// writes outside the lock; the WAL truncation takes the writer lock only
// for the duration of the truncate.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	payload := checkpointPayload{
		Unigrams: make([]unigramRecord, 0, len(s.unigrams)),
		Bigrams:  make([]bigramRecord, 0, len(s.bigrams)),
	}
	for k, e := range s.unigrams {
		payload.Unigrams = append(payload.Unigrams, unigramRecord{Reading: k.Reading, Surface: k.Surface, Frequency: e.Frequency, LastUsed: e.LastUsed})
	}
	for k, e := range s.bigrams {
		payload.Bigrams = append(payload.Bigrams, bigramRecord{PrevSurface: k.PrevSurface, NextReading: k.NextReading, NextSurface: k.NextSurface, Frequency: e.Frequency, LastUsed: e.LastUsed})
	}
	var walCutoff int64
	if s.wal != nil {
		if sz, err := s.wal.size(); err == nil {
			walCutoff = sz
		}
	}
	s.mu.RUnlock()

	body, err := msgpack.Marshal(payload)
	if err != nil {
		return lexerr.Wrap(lexerr.Deserialize, "history.Save.marshal", path, err)
	}
	out := make([]byte, 0, 5+len(body))
	out = append(out, Magic...)
	out = append(out, Version)
	out = append(out, body...)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return lexerr.Wrap(lexerr.FileIo, "history.Save.write", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return lexerr.Wrap(lexerr.FileIo, "history.Save.rename", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wal != nil {
		if err := s.wal.compactAfter(walCutoff); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the WAL file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wal == nil {
		return nil
	}
	return s.wal.close()
}
