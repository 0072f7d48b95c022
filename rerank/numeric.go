package rerank

import "strconv"

// numberToken is one morpheme of a Japanese numeral reading: either a digit
// value (0-9) or a place-value multiplier.
type numberToken struct {
	text  string
	value int
	large bool // true for 万 (10,000) and above; false for 十/百/千
	unit  bool // true if this token is a multiplier rather than a bare digit
}

// numberTokens is tried longest-match-first at every position.
var numberTokens = []numberToken{
	{"きゅう", 9, false, false},
	{"じゅう", 10, false, true},
	{"じゅっ", 10, false, true},
	{"ひゃく", 100, false, true},
	{"びゃく", 100, false, true},
	{"ぴゃく", 100, false, true},
	{"ろっ", 6, false, false},
	{"はっ", 8, false, false},
	{"なな", 7, false, false},
	{"しち", 7, false, false},
	{"れい", 0, false, false},
	{"ぜろ", 0, false, false},
	{"ぜん", 1000, false, true},
	{"せん", 1000, false, true},
	{"まん", 10000, true, true},
	{"いち", 1, false, false},
	{"に", 2, false, false},
	{"さん", 3, false, false},
	{"よん", 4, false, false},
	{"ご", 5, false, false},
	{"ろく", 6, false, false},
	{"はち", 8, false, false},
	{"く", 9, false, false},
	{"し", 4, false, false},
}

func init() {
	// Longer tokens must be tried before their prefixes (e.g. "じゅう" before
	// a hypothetical one-rune token starting the same way).
	sortTokensByLengthDesc(numberTokens)
}

func sortTokensByLengthDesc(toks []numberToken) {
	for i := 1; i < len(toks); i++ {
		for j := i; j > 0 && len([]rune(toks[j].text)) > len([]rune(toks[j-1].text)); j-- {
			toks[j], toks[j-1] = toks[j-1], toks[j]
		}
	}
}

// parseJapaneseNumber parses a pure-hiragana numeral reading (e.g.
// "にじゅうさん" -> 23) using the standard digit/small-unit/large-unit
// accumulation algorithm. Returns (0, false) if reading isn't a clean match.
func parseJapaneseNumber(reading string) (int, bool) {
	runes := []rune(reading)
	if len(runes) == 0 {
		return 0, false
	}
	result := 0
	group := 0
	pending := -1 // -1 means "no pending digit seen yet"
	i := 0
	matchedAny := false
	for i < len(runes) {
		tok, ok := matchToken(runes[i:])
		if !ok {
			return 0, false
		}
		matchedAny = true
		i += len([]rune(tok.text))
		if !tok.unit {
			pending = tok.value
			continue
		}
		digit := pending
		if digit < 0 {
			digit = 1
		}
		if tok.large {
			group += digit
			result += group * tok.value
			group = 0
		} else {
			group += digit * tok.value
		}
		pending = -1
	}
	if pending >= 0 {
		group += pending
	}
	result += group
	if !matchedAny {
		return 0, false
	}
	return result, true
}

func matchToken(runes []rune) (numberToken, bool) {
	for _, tok := range numberTokens {
		tr := []rune(tok.text)
		if len(tr) > len(runes) {
			continue
		}
		if string(runes[:len(tr)]) == tok.text {
			return tok, true
		}
	}
	return numberToken{}, false
}

// formatHalfWidth and formatFullWidth render n as ASCII and fullwidth digits.
func formatHalfWidth(n int) string {
	return strconv.Itoa(n)
}

func formatFullWidth(n int) string {
	s := strconv.Itoa(n)
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r+0xFEE0)
		} else {
			out = append(out, r)
		}
	}
	return string(out)
}
