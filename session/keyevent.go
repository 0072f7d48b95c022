package session

// KeyEvent is a single keystroke delivered by the host (spec §4.7, §6:
// `Session::handle_key(key_code, text, shift, has_modifier)`).
type KeyEvent struct {
	KeyCode     uint16
	Text        string
	Shift       bool
	HasModifier bool
}

// Virtual key codes the dispatch tables recognize, matching the host
// platform's physical key identifiers (not ASCII) — the same codes the
// default keymap's "10"/"93" entries refer to.
const (
	KeyReturn    uint16 = 36
	KeyTab       uint16 = 48
	KeySpace     uint16 = 49
	KeyBackspace uint16 = 51
	KeyEscape    uint16 = 53
	KeyLeft      uint16 = 123
	KeyRight     uint16 = 124
	KeyDown      uint16 = 125
	KeyUp        uint16 = 126
	KeyEisu      uint16 = 102
)
