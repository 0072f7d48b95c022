// Package engine owns the shared, immutable-after-load resources a process
// hosting this input method needs (spec §3): the system dictionary, the
// connection-cost matrix, the romaji table, settings, and the mutable
// per-user stores (user dictionary, learning history). It creates sessions
// and the shared async worker they submit candidate requests to.
package engine

import (
	"path/filepath"

	"github.com/google/uuid"

	"lexime/candidate"
	"lexime/config"
	"lexime/connection"
	"lexime/dict"
	"lexime/history"
	"lexime/rerank"
	"lexime/romaji"
	"lexime/session"
	"lexime/userdict"
	"lexime/worker"
)

// Paths names every on-disk resource the engine loads (spec §6). Dict is
// mandatory: dict.Load fails on a missing file, and so does Open. Any other
// path left empty or naming a missing file falls back to an empty/embedded
// default rather than erroring, matching connection.Load/
// config.LoadSettings/romaji.LoadTrie's missing-file behavior.
type Paths struct {
	Dict              string
	Connection        string
	RomajiTable       string
	Settings          string
	UserDict          string
	HistoryCheckpoint string
}

// Engine bundles the resources every session in one process shares.
type Engine struct {
	Dict     *dict.CompositeDictionary
	Matrix   *connection.Matrix
	Trie     *romaji.Trie
	Settings config.Settings
	Keymap   config.Keymap
	UserDict *userdict.Dictionary
	History  *history.Store
	Worker   *worker.Worker

	historyPath string
	now         func() uint64
}

// Open loads every resource named in paths and starts the shared worker
// goroutine. now supplies the clock history.Store.Boost/Record use;
// pass a real Unix-seconds clock in production and a fake one in tests.
func Open(paths Paths, now func() uint64) (*Engine, error) {
	systemDict, err := dict.Load(paths.Dict)
	if err != nil {
		return nil, err
	}
	matrix, err := connection.Load(paths.Connection)
	if err != nil {
		return nil, err
	}
	trie, err := romaji.LoadTrie(paths.RomajiTable)
	if err != nil {
		return nil, err
	}
	settings, err := config.LoadSettings(paths.Settings)
	if err != nil {
		return nil, err
	}
	ud, err := userdict.Load(paths.UserDict)
	if err != nil {
		return nil, err
	}

	hist, err := openHistory(paths.HistoryCheckpoint, settings)
	if err != nil {
		return nil, err
	}

	composite := &dict.CompositeDictionary{User: ud, System: systemDict}
	gen := candidate.NewGenerator(composite, matrix, hist, candidate.Config{
		NBest:      settings.Candidates.NBest,
		MaxResults: settings.Candidates.MaxResults,
	})
	gen.Reranker.Config = rerankConfigFrom(settings)

	e := &Engine{
		Dict:        composite,
		Matrix:      matrix,
		Trie:        trie,
		Settings:    settings,
		Keymap:      config.BuildKeymap(settings.Keymap),
		UserDict:    ud,
		History:     hist,
		Worker:      worker.Start(gen, now),
		historyPath: paths.HistoryCheckpoint,
		now:         now,
	}
	return e, nil
}

func openHistory(path string, settings config.Settings) (*history.Store, error) {
	cfg := history.Config{
		BoostPerUse:   settings.History.BoostPerUse,
		MaxBoost:      settings.History.MaxBoost,
		HalfLifeHours: settings.History.HalfLifeHours,
		MaxUnigrams:   settings.History.MaxUnigrams,
		MaxBigrams:    settings.History.MaxBigrams,
	}
	if path == "" {
		return history.New(cfg), nil
	}
	return history.Open(path, cfg)
}

// CreateSession builds a new idle session sharing this engine's resources.
// An empty id gets a generated one (spec §6: sessions are host-issued
// identifiers, but a host that doesn't care about the id shouldn't have to
// invent one).
func (e *Engine) CreateSession(id string) *session.Session {
	if id == "" {
		id = uuid.NewString()
	}
	return session.New(id, e.Trie, e.Keymap, e.History, e.Worker, e.now)
}

// SaveHistory checkpoints the learning store to its configured path, if
// any (spec §4.6). Call periodically and at shutdown.
func (e *Engine) SaveHistory() error {
	if e.historyPath == "" || e.History == nil {
		return nil
	}
	return e.History.Save(e.historyPath)
}

// Close releases the worker goroutine and closes the history WAL handle.
func (e *Engine) Close() error {
	if e.Worker != nil {
		e.Worker.Stop()
	}
	if e.History == nil {
		return nil
	}
	return e.History.Close()
}

// DefaultPaths builds a Paths rooted at dir using the filenames settings
// documents (spec §6), useful for cmd/ tools that take a single data
// directory argument.
func DefaultPaths(dir string) Paths {
	return Paths{
		Dict:              filepath.Join(dir, "system.lxdx"),
		Connection:        filepath.Join(dir, "connection.lxcx"),
		RomajiTable:       filepath.Join(dir, "romaji.toml"),
		Settings:          filepath.Join(dir, "settings.toml"),
		UserDict:          filepath.Join(dir, "user.lxuw"),
		HistoryCheckpoint: filepath.Join(dir, "history.lxud"),
	}
}

// rerankConfigFrom adapts the [cost]/[reranker] settings sections into a
// rerank.Config, so settings.toml actually governs reranking instead of
// rerank.DefaultConfig()'s hardcoded values (spec §6).
func rerankConfigFrom(settings config.Settings) rerank.Config {
	return rerank.Config{
		SegmentPenalty:       settings.Cost.SegmentPenalty,
		MixedScriptBonus:     settings.Cost.MixedScriptBonus,
		KatakanaPenalty:      settings.Cost.KatakanaPenalty,
		PureKanjiBonus:       settings.Cost.PureKanjiBonus,
		LatinPenalty:         settings.Cost.LatinPenalty,
		LengthVarianceWeight: settings.Reranker.LengthVarianceWeight,
		StructureCostFilter:  settings.Reranker.StructureCostFilter,
	}
}
