package colour

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ColourKind tags what a raw colour string holds.
type ColourKind int

const (
	// KindInvalid is anything that is neither a hex colour nor a gradient.
	KindInvalid ColourKind = iota
	// KindHex is a #RGB or #RRGGBB colour.
	KindHex
	// KindGradient is a CSS gradient descriptor such as linear-gradient(...).
	KindGradient
)

// String returns the lowercase name of the kind.
func (k ColourKind) String() string {
	switch k {
	case KindHex:
		return "hex"
	case KindGradient:
		return "gradient"
	default:
		return "invalid"
	}
}

var (
	hexPattern          = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	gradientStopPattern = regexp.MustCompile(`#[0-9a-fA-F]{6}`)
	cssGradientPattern  = regexp.MustCompile(`^(repeating-)?(linear|radial|conic)-gradient\([^;{}<>]*\)$`)

	// fallbackBackground is used whenever a colour cannot be resolved.
	fallbackBackground = RGB{R: 255, G: 255, B: 255}
)

// ColourValue is a raw colour string parsed once into its kind.
// The zero value is an invalid colour.
type ColourValue struct {
	Kind ColourKind
	Raw  string
}

// ParseColourValue classifies raw. It never fails; unrecognised input is
// returned as KindInvalid so callers can still fall back deterministically.
func ParseColourValue(raw string) ColourValue {
	switch {
	case strings.Contains(raw, "gradient"):
		return ColourValue{Kind: KindGradient, Raw: raw}
	case hexPattern.MatchString(raw):
		return ColourValue{Kind: KindHex, Raw: raw}
	default:
		return ColourValue{Kind: KindInvalid, Raw: raw}
	}
}

// IsEmpty reports whether the value holds no input at all.
func (v ColourValue) IsEmpty() bool {
	return v.Raw == ""
}

// String returns the raw colour string.
func (v ColourValue) String() string {
	return v.Raw
}

// RGB resolves the value to a single colour. Gradients resolve to their first
// six-digit colour stop. ok is false when the fallback (white) was used.
func (v ColourValue) RGB() (rgb RGB, ok bool) {
	raw := v.Raw
	if v.Kind == KindGradient {
		raw = gradientStopPattern.FindString(raw)
		if raw == "" {
			return fallbackBackground, false
		}
	}

	rgb, err := ParseHex(raw)
	if err != nil {
		return fallbackBackground, false
	}
	return rgb, true
}

// SafeCSS reports whether Raw can be written into a stylesheet unchanged:
// a hex colour or a single CSS gradient function with no declaration or
// comment delimiters.
func (v ColourValue) SafeCSS() bool {
	switch v.Kind {
	case KindHex:
		return true
	case KindGradient:
		return cssGradientPattern.MatchString(v.Raw) &&
			!strings.Contains(v.Raw, "/*") && !strings.Contains(v.Raw, "*/")
	default:
		return false
	}
}

// CSS returns the value in a form usable as a CSS background. Gradients that
// are not SafeCSS and invalid values are replaced with the resolved colour.
func (v ColourValue) CSS() string {
	switch {
	case v.Kind == KindGradient && v.SafeCSS():
		return v.Raw
	default:
		rgb, _ := v.RGB()
		return rgb.Hex()
	}
}

// MarshalJSON encodes the value as its raw string.
func (v ColourValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw)
}

// UnmarshalJSON parses a JSON string into a ColourValue.
func (v *ColourValue) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("colour must be a string: %w", err)
	}
	*v = ParseColourValue(raw)
	return nil
}

// UnmarshalYAML parses a YAML scalar into a ColourValue.
func (v *ColourValue) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("colour must be a string: %w", err)
	}
	*v = ParseColourValue(raw)
	return nil
}

// ParseHex parses a #RGB or #RRGGBB string, expanding the shorthand form by
// duplicating each digit.
func ParseHex(s string) (RGB, error) {
	if !hexPattern.MatchString(s) {
		return RGB{}, fmt.Errorf("invalid hex colour %q", s)
	}

	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return RGB{
		R: uint8(n >> 16),
		G: uint8(n >> 8),
		B: uint8(n),
	}, nil
}
