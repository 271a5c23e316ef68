package colour

const (
	// Black is the dark on-colour.
	Black = "#000000"
	// White is the light on-colour.
	White = "#FFFFFF"

	// MinTextContrast is the WCAG AA contrast target for normal text.
	MinTextContrast = 4.5
)

// ReadableOnColour returns the text or icon colour, Black or White, that
// reads best on top of background. background may be a hex colour or a CSS
// gradient; gradients are approximated by their first colour stop.
//
// Empty input yields Black. Any other input that cannot be resolved is
// treated as a white background.
func ReadableOnColour(background string) string {
	if background == "" {
		return Black
	}
	return ReadableOn(ParseColourValue(background))
}

// ReadableOn is ReadableOnColour for an already parsed value.
func ReadableOn(v ColourValue) string {
	if v.IsEmpty() {
		return Black
	}
	rgb, _ := v.RGB()
	return onColourFor(rgb)
}

// OnColour returns the readable on-colour for v.
func (v ColourValue) OnColour() string {
	return ReadableOn(v)
}

// onColourFor picks between black and white for a resolved background.
// Black is checked first when it is at least as contrasting as white. The
// weaker colour is only returned when the stronger one misses MinTextContrast
// and the weaker is strictly better.
func onColourFor(bg RGB) string {
	lum := bg.Luminance()
	cWhite := luminanceRatio(lum, 1.0)
	cBlack := luminanceRatio(lum, 0.0)

	if cBlack >= cWhite {
		if cBlack >= MinTextContrast {
			return Black
		}
		if cWhite > cBlack {
			return White
		}
		return Black
	}

	if cWhite >= MinTextContrast {
		return White
	}
	if cBlack > cWhite {
		return Black
	}
	return White
}

// OnColourContrast returns the contrast ratio between background and its
// readable on-colour.
func OnColourContrast(background string) float64 {
	rgb, _ := ParseColourValue(background).RGB()
	on, _ := ParseHex(ReadableOnColour(background))
	return luminanceRatio(rgb.Luminance(), on.Luminance())
}
