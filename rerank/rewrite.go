package rerank

// Rewriter runs after reranking and may emit additional candidate surfaces
// from a scored path (spec §4.4). The set of rewriters is closed, so they
// are plain functions rather than an interface hierarchy.
type Rewriter func(s Scored) []string

// KatakanaRewriter adds a variant whose segments are katakana-converted
// from the reading.
func KatakanaRewriter(s Scored) []string {
	reading := ""
	for _, p := range s.Phrases {
		reading += p.Reading
	}
	if reading == "" {
		return nil
	}
	return []string{ToKatakana(reading)}
}

// HiraganaVariantRewriter substitutes every segment's surface with its
// reading, producing the all-hiragana rendering of the path.
func HiraganaVariantRewriter(s Scored) []string {
	out := ""
	for _, p := range s.Phrases {
		out += p.Reading
	}
	if out == "" {
		return nil
	}
	return []string{out}
}

// NumericRewriter emits half-width and full-width digit variants when a
// segment's reading is a recognizable Japanese numeral expression (spec
// §4.4, e.g. にじゅうさん -> 23, 23).
func NumericRewriter(s Scored) []string {
	var out []string
	for _, p := range s.Phrases {
		n, ok := parseJapaneseNumber(p.Reading)
		if !ok {
			continue
		}
		out = append(out, formatHalfWidth(n), formatFullWidth(n))
	}
	return out
}

// ToKatakana converts a hiragana string to katakana by shifting each rune
// in the hiragana block up to its katakana counterpart (a fixed 0x60 code
// point offset); runes outside the hiragana block pass through unchanged.
func ToKatakana(hiragana string) string {
	out := make([]rune, 0, len(hiragana))
	for _, r := range hiragana {
		if r >= 0x3041 && r <= 0x3096 {
			out = append(out, r+0x60)
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}

// DefaultRewriters is the closed set applied after reranking.
func DefaultRewriters() []Rewriter {
	return []Rewriter{KatakanaRewriter, HiraganaVariantRewriter, NumericRewriter}
}
