// Package theme derives in-flight entertainment frame themes from brand
// colours and attaches festival cards for the selected destination.
package theme

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"github.com/jmylchreest/skytint/internal/cache"
	"github.com/jmylchreest/skytint/internal/colour"
	"github.com/jmylchreest/skytint/internal/festival"
)

// ErrInvalidSpec wraps validation failures from Derive.
var ErrInvalidSpec = errors.New("invalid theme spec")

// Spec is the input to Derive.
type Spec struct {
	Name       string   `json:"name" validate:"required,max=64,cssname"`
	Primary    string   `json:"primary" validate:"required,colour"`
	Secondary  string   `json:"secondary,omitempty" validate:"omitempty,colour"`
	Background string   `json:"background,omitempty" validate:"omitempty,colour"`
	City       string   `json:"city,omitempty" validate:"max=128"`
	Dates      []string `json:"dates,omitempty" validate:"max=2,dive,datetime=2006-01-02"`
}

// Token is a colour together with the text colour that reads on it.
type Token struct {
	Value    colour.ColourValue `json:"value"`
	CSS      string             `json:"css"`
	On       string             `json:"on"`
	Contrast float64            `json:"contrast"`
}

// NewToken resolves the on-colour and contrast for v.
func NewToken(v colour.ColourValue) Token {
	return Token{
		Value:    v,
		CSS:      v.CSS(),
		On:       colour.ReadableOn(v),
		Contrast: colour.OnColourContrast(v.Raw),
	}
}

func tokenFromRGB(rgb colour.RGB) Token {
	return NewToken(colour.ParseColourValue(rgb.HexUpper()))
}

// Card is a festival card shown on the destination screen.
type Card struct {
	Festival   string `json:"festival"`
	Slug       string `json:"slug"`
	City       string `json:"city"`
	StartDay   int    `json:"startDay"`
	EndDay     int    `json:"endDay"`
	Type       string `json:"type,omitempty"`
	Theme      string `json:"theme,omitempty"`
	Image      string `json:"image,omitempty"`
	Background Token  `json:"background"`
}

// CardFromFestival builds a card painted in the festival colour.
func CardFromFestival(f festival.Festival) Card {
	return Card{
		Festival:   f.Name,
		Slug:       Slug(f.Name),
		City:       f.City(),
		StartDay:   f.StartDay,
		EndDay:     f.EndDay,
		Type:       f.Type,
		Theme:      f.Theme,
		Image:      f.Image,
		Background: NewToken(f.Color),
	}
}

// Theme is a complete set of frame colours.
type Theme struct {
	Name         string `json:"name"`
	Primary      Token  `json:"primary"`
	PrimaryMuted Token  `json:"primaryMuted"`
	Secondary    Token  `json:"secondary"`
	Background   Token  `json:"background"`
	Surface      Token  `json:"surface"`
	Border       Token  `json:"border"`
	Cards        []Card `json:"cards"`
}

// Derive validates spec and builds a Theme, adding one card per festival.
func Derive(spec Spec, festivals []festival.Festival) (*Theme, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}

	primaryValue := colour.ParseColourValue(spec.Primary)
	primary, _ := primaryValue.RGB()

	secondaryValue := colour.ParseColourValue(spec.Secondary)
	if spec.Secondary == "" {
		secondaryValue = colour.ParseColourValue(colour.AdjustLightness(primary, -0.18).HexUpper())
	}

	backgroundValue := colour.ParseColourValue(spec.Background)
	if spec.Background == "" {
		backgroundValue = colour.ParseColourValue(colour.White)
	}
	background, _ := backgroundValue.RGB()

	// Surfaces step towards the on-colour so they stay distinguishable.
	lightBackground := colour.ReadableOn(backgroundValue) == colour.Black
	surfaceDelta, borderDelta := 0.06, 0.15
	if lightBackground {
		surfaceDelta, borderDelta = -0.04, -0.12
	}

	t := &Theme{
		Name:         spec.Name,
		Primary:      NewToken(primaryValue),
		PrimaryMuted: tokenFromRGB(colour.AdjustLightness(colour.AdjustSaturation(primary, 0.55), 0.25)),
		Secondary:    NewToken(secondaryValue),
		Background:   NewToken(backgroundValue),
		Surface:      tokenFromRGB(colour.AdjustLightness(background, surfaceDelta)),
		Border:       tokenFromRGB(colour.AdjustLightness(background, borderDelta)),
		Cards:        make([]Card, 0, len(festivals)),
	}

	for _, f := range festivals {
		t.Cards = append(t.Cards, CardFromFestival(f))
	}

	return t, nil
}

// Tokens returns the theme tokens with their CSS variable suffixes, in
// render order.
func (t *Theme) Tokens() []NamedToken {
	return []NamedToken{
		{Name: "primary", Token: t.Primary},
		{Name: "primary-muted", Token: t.PrimaryMuted},
		{Name: "secondary", Token: t.Secondary},
		{Name: "background", Token: t.Background},
		{Name: "surface", Token: t.Surface},
		{Name: "border", Token: t.Border},
	}
}

// NamedToken pairs a token with its variable name.
type NamedToken struct {
	Name string
	Token
}

var validate = NewValidator()

// NewValidator returns a validator with the "colour" and "cssname" tags
// registered. "colour" accepts hex colours and single CSS gradient functions.
// "cssname" rejects text that could close a comment or a rule in the
// rendered stylesheet.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("colour", func(fl validator.FieldLevel) bool {
		return colour.ParseColourValue(fl.Field().String()).SafeCSS()
	})
	_ = v.RegisterValidation("cssname", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return !strings.ContainsAny(name, ";{}<>") &&
			!strings.Contains(name, "/*") && !strings.Contains(name, "*/")
	})
	return v
}

// Validate checks spec against its field rules.
func Validate(spec Spec) error {
	err := validate.Struct(spec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidSpec, strings.Join(msgs, "; "))
}

// Slug turns a festival name into a CSS class fragment. Accents are folded
// to ASCII. When other letters have to be dropped, a short hash of the name
// is appended so that distinct names keep distinct slugs.
func Slug(name string) string {
	var b strings.Builder
	dash, dropped := false, false
	for _, r := range norm.NFD.String(strings.ToLower(name)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
			continue
		case r > unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSymbol(r)):
			dropped = true
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if !dropped {
		return slug
	}
	suffix := cache.HashKey(name)[:8]
	if slug == "" {
		return "festival-" + suffix
	}
	return slug + "-" + suffix
}
