package font

import "strings"

// Variation is one weight/style combination a font can provide.
type Variation struct {
	Weight string
	Style  string
	Label  string
}

// Variations lists every supported combination in canonical order:
// weights ascending, normal before italic.
var Variations = [...]Variation{
	{"100", "normal", "Thin 100"},
	{"100", "italic", "Thin Italic"},
	{"200", "normal", "Extra Light 200"},
	{"200", "italic", "Extra Light Italic"},
	{"300", "normal", "Light 300"},
	{"300", "italic", "Light Italic"},
	{"400", "normal", "Regular 400"},
	{"400", "italic", "Regular Italic"},
	{"500", "normal", "Medium 500"},
	{"500", "italic", "Medium Italic"},
	{"600", "normal", "SemiBold 600"},
	{"600", "italic", "SemiBold Italic"},
	{"700", "normal", "Bold 700"},
	{"700", "italic", "Bold Italic"},
	{"800", "normal", "ExtraBold 800"},
	{"800", "italic", "ExtraBold Italic"},
	{"900", "normal", "Black 900"},
	{"900", "italic", "Black Italic"},
}

// Token returns the stored form, e.g. "700_italic".
func (v Variation) Token() string {
	return v.Weight + "_" + v.Style
}

// LookupVariation finds the variation for a stored token.
func LookupVariation(token string) (Variation, bool) {
	for _, v := range Variations {
		if v.Token() == token {
			return v, true
		}
	}
	return Variation{}, false
}

// SplitToken splits a "{weight}_{style}" token. Parts past the second are
// ignored and a missing style yields "".
func SplitToken(token string) (weight, style string) {
	parts := strings.Split(token, "_")
	weight = parts[0]
	if len(parts) > 1 {
		style = parts[1]
	}
	return weight, style
}

// ShorthandToken converts a stored token to its CSS-facing form.
func ShorthandToken(token string) string {
	return shorthand(SplitToken(token))
}

func shorthand(weight, style string) string {
	if style == "normal" {
		style = ""
	}
	return weight + style
}
