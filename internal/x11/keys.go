package x11

import "github.com/BurntSushi/xgb/xproto"

// Keycodes is a table of raw keycodes used when parsing binding
// specifications out of the configuration file. A fixed US QWERTY layout
// is assumed; remapped layouts should bind by keysym instead once that
// lookup path exists.
var Keycodes = map[string]xproto.Keycode{
	"0": 19, "1": 10, "2": 11, "3": 12, "4": 13,
	"5": 14, "6": 15, "7": 16, "8": 17, "9": 18,
	"a": 38, "b": 56, "c": 54, "d": 40, "e": 26,
	"f": 41, "g": 42, "h": 43, "i": 31, "j": 44,
	"k": 45, "l": 46, "m": 58, "n": 57, "o": 32,
	"p": 33, "q": 24, "r": 27, "s": 39, "t": 28,
	"u": 30, "v": 55, "w": 25, "x": 53, "y": 29, "z": 52,
	"f1": 67, "f2": 68, "f3": 69, "f4": 70, "f5": 71, "f6": 72,
	"f7": 73, "f8": 74, "f9": 75, "f10": 76, "f11": 95, "f12": 96,
	"down": 116, "left": 113, "right": 114, "up": 111,
	"apostrophe": 48, "grave": 49, "backslash": 51, "comma": 59,
	"equal": 21, "minus": 20, "period": 60, "semicolon": 47,
	"slash": 61, "space": 65, "tab": 23, "enter": 36, "return": 36,
	"escape": 9, "esc": 9, "backspace": 22, "delete": 119, "del": 119,
	"end": 115, "home": 110, "insert": 118, "ins": 118,
}

// KeypadAliases maps keypad-specific keycodes to the non-keypad keycode a
// binding should also match against. A lookup that misses on the raw
// (keypad) keycode retries through this table before reporting no-match.
var KeypadAliases = map[xproto.Keycode]xproto.Keycode{
	88: 116, // KP_Down  -> Down
	83: 113, // KP_Left  -> Left
	85: 114, // KP_Right -> Right
	80: 111, // KP_Up    -> Up
	90: 19,  // KP_0     -> 0
	87: 10,  // KP_1     -> 1
	91: 60,  // KP_Decimal -> period
}

// Modifiers is a table of modifier names used when parsing binding
// specifications.
var Modifiers = map[string]Keymod{
	"ctrl": ModCtrl, "control": ModCtrl, "lctrl": ModCtrl, "lcontrol": ModCtrl,
	"shift": ModShift, "lshift": ModShift,
	"alt": Mod1, "lalt": Mod1, "mod1": Mod1,
	"super": Mod4, "mod4": Mod4, "win": Mod4,
	"mod2": Mod2, "mod3": Mod3, "mod5": Mod5,
	"lock": ModLock, "modlock": ModLock,
}

// Buttons is a table of pointer button names used when parsing binding
// specifications.
var Buttons = map[string]xproto.Button{
	"lmb": xproto.ButtonIndex1, "leftclick": xproto.ButtonIndex1, "mouse1": xproto.ButtonIndex1, "m1": xproto.ButtonIndex1,
	"mmb": xproto.ButtonIndex2, "middleclick": xproto.ButtonIndex2, "mouse2": xproto.ButtonIndex2, "m2": xproto.ButtonIndex2,
	"rmb": xproto.ButtonIndex3, "rightclick": xproto.ButtonIndex3, "mouse3": xproto.ButtonIndex3, "m3": xproto.ButtonIndex3,
	"mouse4": xproto.ButtonIndex4, "m4": xproto.ButtonIndex4,
	"mouse5": xproto.ButtonIndex5, "m5": xproto.ButtonIndex5,
}

// runeKeycodes is the reverse of Keycodes' letter/digit run, used to turn
// a raw keycode back into printable text for minibuffer text entry. Built
// under the same fixed-US-QWERTY assumption as Keycodes.
var runeKeycodes = map[xproto.Keycode]rune{
	19: '0', 10: '1', 11: '2', 12: '3', 13: '4',
	14: '5', 15: '6', 16: '7', 17: '8', 18: '9',
	38: 'a', 56: 'b', 54: 'c', 40: 'd', 26: 'e',
	41: 'f', 42: 'g', 43: 'h', 31: 'i', 44: 'j',
	45: 'k', 46: 'l', 58: 'm', 57: 'n', 32: 'o',
	33: 'p', 24: 'q', 27: 'r', 39: 's', 28: 't',
	30: 'u', 55: 'v', 25: 'w', 53: 'x', 29: 'y', 52: 'z',
	65: ' ', 59: ',', 60: '.', 48: '\'', 51: '\\',
	47: ';', 61: '/', 20: '-', 21: '=', 49: '`',
}

// shiftedRunes gives the shift-state glyph for punctuation keys whose
// shifted form isn't a simple uppercase letter.
var shiftedRunes = map[rune]rune{
	'0': ')', '1': '!', '2': '@', '3': '#', '4': '$',
	'5': '%', '6': '^', '7': '&', '8': '*', '9': '(',
	',': '<', '.': '>', '\'': '"', '\\': '|', ';': ':',
	'/': '?', '-': '_', '=': '+', '`': '~',
}

// KeycodeToRune resolves a raw keycode to the printable rune it produces
// under the fixed US QWERTY layout Keycodes assumes, honoring shift for
// case and the usual punctuation pairs. ok is false for keycodes with no
// printable mapping (function keys, modifiers, arrows, …).
func KeycodeToRune(code xproto.Keycode, shift bool) (r rune, ok bool) {
	base, ok := runeKeycodes[code]
	if !ok {
		return 0, false
	}
	if !shift {
		return base, true
	}
	if base >= 'a' && base <= 'z' {
		return base - ('a' - 'A'), true
	}
	if shifted, ok := shiftedRunes[base]; ok {
		return shifted, true
	}
	return base, true
}
