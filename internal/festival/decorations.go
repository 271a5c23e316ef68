package festival

import (
	"strings"
	"unicode"
)

// StripDecorations removes flag emoji and other pictographic symbols that
// festival data uses to decorate locations, then trims surrounding space.
// Letters, including accented ones, are kept unchanged.
func StripDecorations(location string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if isDecoration(r) {
			return -1
		}
		return r
	}, location))
}

func isDecoration(r rune) bool {
	switch {
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators (flags)
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0xE0020 && r <= 0xE007F: // tag characters (subdivision flags)
		return true
	case r == 0x200D || r == 0x20E3: // zero width joiner, keycap
		return true
	case unicode.Is(unicode.So, r):
		return true
	}
	return false
}
