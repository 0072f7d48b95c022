package config

import (
	"strconv"

	"lexime/lexlog"
)

// KeyOverride is a programmer-mode keymap entry: the literal text to
// substitute for a key code, normal and shifted (spec §4.7, §6).
type KeyOverride struct {
	Normal  string
	Shifted string
}

// Keymap resolves a settings.toml [keymap] section into key-code-indexed
// overrides.
type Keymap map[uint16]KeyOverride

// BuildKeymap parses the raw `"key_code" -> [normal, shifted]` table from
// Settings.Keymap. Malformed entries (bad key, wrong arity) are skipped and
// logged rather than failing the whole load (spec §7 ConfigParse policy).
func BuildKeymap(raw map[string][]string) Keymap {
	km := make(Keymap, len(raw))
	for k, v := range raw {
		code, err := strconv.ParseUint(k, 10, 16)
		if err != nil || len(v) != 2 {
			lexlog.Warnf("config: skipping malformed keymap entry %q", k)
			continue
		}
		km[uint16(code)] = KeyOverride{Normal: v[0], Shifted: v[1]}
	}
	return km
}

// Lookup returns the override for keyCode, if any.
func (km Keymap) Lookup(keyCode uint16) (KeyOverride, bool) {
	o, ok := km[keyCode]
	return o, ok
}
