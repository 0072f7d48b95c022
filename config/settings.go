// Package config decodes settings.toml (spec §6) with load-or-default
// semantics; romaji.toml is loaded by package romaji. LoadSettings reads and
// decodes the file on every call: the package holds no process-wide cached
// copy, so loading once per process is up to the caller (engine.Open).
package config

import (
	_ "embed"
	"os"

	"github.com/BurntSushi/toml"

	"lexime/lexerr"
	"lexime/lexlog"
)

//go:embed defaults/settings.toml
var defaultSettingsTOML []byte

// CostSection is the [cost] section of settings.toml.
type CostSection struct {
	SegmentPenalty   int64 `toml:"segment_penalty"`
	MixedScriptBonus int64 `toml:"mixed_script_bonus"`
	KatakanaPenalty  int64 `toml:"katakana_penalty"`
	PureKanjiBonus   int64 `toml:"pure_kanji_bonus"`
	LatinPenalty     int64 `toml:"latin_penalty"`
	UnknownWordCost  int64 `toml:"unknown_word_cost"`
}

// RerankerSection is the [reranker] section.
type RerankerSection struct {
	LengthVarianceWeight float64 `toml:"length_variance_weight"`
	StructureCostFilter  int64   `toml:"structure_cost_filter"`
}

// HistorySection is the [history] section.
type HistorySection struct {
	BoostPerUse   float64 `toml:"boost_per_use"`
	MaxBoost      float64 `toml:"max_boost"`
	HalfLifeHours float64 `toml:"half_life_hours"`
	MaxUnigrams   int     `toml:"max_unigrams"`
	MaxBigrams    int     `toml:"max_bigrams"`
}

// CandidatesSection is the [candidates] section.
type CandidatesSection struct {
	NBest      int `toml:"nbest"`
	MaxResults int `toml:"max_results"`
}

// Settings is the full decoded shape of settings.toml (spec §6).
type Settings struct {
	Cost       CostSection         `toml:"cost"`
	Reranker   RerankerSection     `toml:"reranker"`
	History    HistorySection      `toml:"history"`
	Candidates CandidatesSection   `toml:"candidates"`
	Keymap     map[string][]string `toml:"keymap"`
}

// LoadSettings returns the settings at path, or the embedded defaults if
// path is empty, missing, or fails to parse (spec §7: ConfigParse falls
// back to embedded defaults and logs). A user file entirely replaces the
// defaults; there is no field-level merge.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		return decodeSettings(defaultSettingsTOML)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return decodeSettings(defaultSettingsTOML)
		}
		return Settings{}, lexerr.Wrap(lexerr.FileIo, "config.LoadSettings", path, err)
	}
	settings, err := decodeSettings(b)
	if err != nil {
		lexlog.Warnf("config: failed to parse %s, falling back to defaults: %v", path, err)
		return decodeSettings(defaultSettingsTOML)
	}
	return settings, nil
}

func decodeSettings(b []byte) (Settings, error) {
	var s Settings
	if _, err := toml.Decode(string(b), &s); err != nil {
		return Settings{}, lexerr.Wrap(lexerr.ConfigParse, "config.decodeSettings", "", err)
	}
	return s, nil
}
