package romaji

// Convert is the romaji transducer's public contract (spec §4.1):
// convert(composed_kana, pending_romaji, force) -> (composed_kana', pending_romaji').
func Convert(t *Trie, composedKana, pendingRomaji string, force bool) (string, string) {
	composed, pending := composedKana, pendingRomaji
	for pending != "" {
		kind, kana := t.Lookup(pending)
		switch kind {
		case Exact:
			composed += kana
			pending = ""
		case ExactAndPrefix:
			if !force {
				return composed, pending
			}
			composed += kana
			pending = ""
		case MatchPrefix:
			if !force {
				return composed, pending
			}
			var progressed bool
			composed, pending, progressed = drainNone(t, composed, pending, force)
			if !progressed {
				return composed, pending
			}
		case None:
			var progressed bool
			composed, pending, progressed = drainNone(t, composed, pending, force)
			if !progressed {
				return composed, pending
			}
		}
	}
	return composed, pending
}

// drainNone implements the four sub-rules of the "None" case (spec §4.1):
// longest-proper-prefix commit, sokuon, hatsuon, and force-passthrough.
// progressed is false only when none of the rules applied and force is
// false, meaning the caller should stop and wait for more input.
func drainNone(t *Trie, composed, pending string, force bool) (newComposed, newPending string, progressed bool) {
	runes := []rune(pending)

	for l := len(runes) - 1; l >= 1; l-- {
		sub := string(runes[:l])
		kind, kana := t.Lookup(sub)
		if kind == Exact || kind == ExactAndPrefix {
			return composed + kana, string(runes[l:]), true
		}
	}

	if len(runes) >= 2 && runes[0] == runes[1] && !isVowel(runes[0]) && runes[0] != 'n' {
		return composed + "っ", string(runes[1:]), true
	}

	if len(runes) >= 2 && runes[0] == 'n' && !isVowel(runes[1]) && runes[1] != 'n' && runes[1] != 'y' {
		return composed + "ん", string(runes[1:]), true
	}

	if force {
		return composed + string(runes[0]), string(runes[1:]), true
	}
	return composed, pending, false
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'i', 'u', 'e', 'o':
		return true
	default:
		return false
	}
}

var hiraganaVowelRomaji = map[rune]string{
	'あ': "a", 'い': "i", 'う': "u", 'え': "e", 'お': "o",
}

// Collapse scans composed for runs of lowercase ASCII letters immediately
// followed by one of the five hiragana vowels; if the (latin-run + that
// vowel's romaji) composite is a valid trie key, the run collapses to its
// kana (spec §4.1, e.g. "kあ" -> "か"). Idempotent: a second pass finds no
// more latin-before-vowel runs to collapse.
func Collapse(t *Trie, composed string) string {
	runes := []rune(composed)
	out := make([]rune, 0, len(runes))
	i := 0
	for i < len(runes) {
		j := i
		for j < len(runes) && isLowerASCII(runes[j]) {
			j++
		}
		if j > i && j < len(runes) {
			if vowelRomaji, ok := hiraganaVowelRomaji[runes[j]]; ok {
				candidate := string(runes[i:j]) + vowelRomaji
				if kana, found := t.Has(candidate); found {
					out = append(out, []rune(kana)...)
					i = j + 1
					continue
				}
			}
		}
		if j > i {
			// The whole run did not collapse: keep it as typed.
			out = append(out, runes[i:j]...)
			i = j
			continue
		}
		out = append(out, runes[i])
		i++
	}
	return string(out)
}

func isLowerASCII(r rune) bool {
	return r >= 'a' && r <= 'z'
}
