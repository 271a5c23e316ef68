package colour

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// HexUpper returns the RGB color as an uppercase hex string (e.g., "#1A2B3C").
func (rgb RGB) HexUpper() string {
	return fmt.Sprintf("#%02X%02X%02X", rgb.R, rgb.G, rgb.B)
}

// Color converts the value to a fully opaque color.Color.
func (rgb RGB) Color() color.Color {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// Palette represents a collection of colours extracted from an image.
// Weights, when present, hold the relative share of each colour and sum to 1.
type Palette struct {
	Colors  []color.Color
	Weights []float64
}

// NewPalette creates a new Palette with the given colors.
func NewPalette(colors []color.Color) *Palette {
	return &Palette{
		Colors: colors,
	}
}

// NewPaletteWithWeights creates a Palette with a weight per colour.
func NewPaletteWithWeights(colors []color.Color, weights []float64) *Palette {
	return &Palette{
		Colors:  colors,
		Weights: weights,
	}
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// Weight returns the weight of the colour at index i, or 0 when unweighted.
func (p *Palette) Weight(i int) float64 {
	if i < 0 || i >= len(p.Weights) {
		return 0
	}
	return p.Weights[i]
}

// ToHex converts the palette colors to hex strings.
func (p *Palette) ToHex() []string {
	hexColors := make([]string, len(p.Colors))
	for i, c := range p.Colors {
		hexColors[i] = ToRGB(c).Hex()
	}
	return hexColors
}

// Swatch describes one palette colour together with the text colour that
// reads best on top of it.
type Swatch struct {
	Hex      string  `json:"hex"`
	RGB      RGB     `json:"rgb"`
	Weight   float64 `json:"weight,omitempty"`
	OnColour string  `json:"on_colour"`
	Contrast float64 `json:"contrast"`
}

// Swatches returns a Swatch for every palette colour, in palette order.
func (p *Palette) Swatches() []Swatch {
	swatches := make([]Swatch, len(p.Colors))
	for i, c := range p.Colors {
		rgb := ToRGB(c)
		on := onColourFor(rgb)
		onRGB, _ := ParseHex(on)
		swatches[i] = Swatch{
			Hex:      rgb.Hex(),
			RGB:      rgb,
			Weight:   p.Weight(i),
			OnColour: on,
			Contrast: luminanceRatio(rgb.Luminance(), onRGB.Luminance()),
		}
	}
	return swatches
}

// ToJSON converts the palette to indented JSON.
func (p *Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		Count  int      `json:"count"`
		Colors []Swatch `json:"colors"`
	}{
		Count:  len(p.Colors),
		Colors: p.Swatches(),
	}, "", "  ")
}
