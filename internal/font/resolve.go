package font

import (
	"html"
	"strings"
)

// Descriptor is the normalized view of a font handed to typography pickers.
type Descriptor struct {
	FontFamily        string   `json:"font_family"`
	FontFamilyDisplay string   `json:"font_family_display"`
	Variants          Variants `json:"variants"`
}

// Variants is either Shorthands (grouped fonts) or Faces (individually named
// fonts). Consumers must switch on the concrete type.
type Variants interface {
	isVariants()
	Len() int
}

// Shorthands lists CSS-facing variant tokens such as "400" or "700italic".
type Shorthands []string

// Faces lists one entry per individually named weight/style.
type Faces []Face

// Face binds a concrete family name to the weight and style it provides.
type Face struct {
	FontFamily string `json:"font-family"`
	FontWeight string `json:"font-weight"`
	FontStyle  string `json:"font-style"`
}

func (Shorthands) isVariants() {}
func (Faces) isVariants()      {}

func (s Shorthands) Len() int { return len(s) }
func (f Faces) Len() int      { return len(f) }

// Scheme reports which naming scheme produced d.
func (d Descriptor) Scheme() NamingScheme {
	if _, ok := d.Variants.(Faces); ok {
		return NamingIndividual
	}
	return NamingGrouped
}

// Resolve builds the descriptor for r. The boolean is false when the record
// has nothing usable and must be skipped; that is never an error.
func Resolve(r *Record) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	switch r.NamingScheme() {
	case NamingGrouped:
		return resolveGrouped(r)
	case NamingIndividual:
		return resolveIndividual(r)
	}
	return Descriptor{}, false
}

func resolveGrouped(r *Record) (Descriptor, bool) {
	family := strings.TrimSpace(r.FontFamilyName)
	if family == "" || len(r.Variations) == 0 {
		return Descriptor{}, false
	}

	variants := make(Shorthands, 0, len(r.Variations))
	for _, token := range r.Variations {
		variants = append(variants, ShorthandToken(token))
	}

	return Descriptor{
		FontFamily:        html.EscapeString(family),
		FontFamilyDisplay: html.EscapeString(strings.TrimSpace(r.Title)),
		Variants:          variants,
	}, true
}

func resolveIndividual(r *Record) (Descriptor, bool) {
	var faces Faces
	for _, v := range Variations {
		name := r.IndividualName(v)
		if name == "" {
			continue
		}
		faces = append(faces, Face{
			FontFamily: html.EscapeString(name),
			FontWeight: v.Weight,
			FontStyle:  v.Style,
		})
	}
	if len(faces) == 0 {
		return Descriptor{}, false
	}

	// Pickers list the font under its title; each face keeps its own family.
	title := html.EscapeString(strings.TrimSpace(r.Title))
	return Descriptor{
		FontFamily:        title,
		FontFamilyDisplay: title,
		Variants:          faces,
	}, true
}
