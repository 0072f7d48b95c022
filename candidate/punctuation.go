package candidate

// punctuationVariants maps a recognized punctuation reading to its
// fullwidth and halfwidth forms (spec §4.5: fullwidth first, then halfwidth
// alternatives). Keyed by the kana/symbol the romaji trie already produced,
// since by the time Generate sees a reading it has already been through
// romaji conversion.
var punctuationVariants = map[string][]string{
	"ー": {"ー", "-"},
	"、": {"、", ","},
	"。": {"。", "."},
	"・": {"・", "/"},
	"「": {"「", "["},
	"」": {"」", "]"},
}

// punctuationSubstitution returns the fullwidth-then-halfwidth variants when
// reading is exactly a single recognized punctuation token (spec §4.5).
func (g *Generator) punctuationSubstitution(reading string) ([]string, bool) {
	variants, ok := punctuationVariants[reading]
	if !ok {
		return nil, false
	}
	out := make([]string, len(variants))
	copy(out, variants)
	return out, true
}
