package romaji

import (
	_ "embed"
	"os"

	"github.com/BurntSushi/toml"

	"lexime/lexerr"
	"lexime/lexlog"
)

//go:embed defaults.toml
var defaultsTOML []byte

// tomlDoc is the shape of romaji.toml (spec §6): one table whose keys are
// roman-letter sequences and whose values are kana strings.
type tomlDoc struct {
	Table map[string]string `toml:"table"`
}

// LoadTable returns the romaji table at path, or the embedded defaults if
// path is empty, names a missing file, or fails to parse; any other read
// error is returned. A user file entirely replaces the defaults — no merge
// (spec §4.1, §6).
func LoadTable(path string) (map[string]string, error) {
	if path == "" {
		return decodeTable(defaultsTOML)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return decodeTable(defaultsTOML)
		}
		return nil, lexerr.Wrap(lexerr.FileIo, "romaji.LoadTable", path, err)
	}
	table, err := decodeTable(b)
	if err != nil {
		lexlog.Warnf("romaji: failed to parse %s, falling back to defaults: %v", path, err)
		return decodeTable(defaultsTOML)
	}
	return table, nil
}

func decodeTable(b []byte) (map[string]string, error) {
	var doc tomlDoc
	if _, err := toml.Decode(string(b), &doc); err != nil {
		return nil, lexerr.Wrap(lexerr.ConfigParse, "romaji.decodeTable", "", err)
	}
	return doc.Table, nil
}

// LoadTrie is a convenience wrapper combining LoadTable and NewTrie.
func LoadTrie(path string) (*Trie, error) {
	table, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return NewTrie(table), nil
}
