// Package integrations adapts resolved fonts to the shapes expected by
// editors and typography pickers.
package integrations

import (
	"strings"

	"fonto/internal/font"
)

// DefaultFontFormats is TinyMCE's stock font list; custom fonts are
// prepended to it.
const DefaultFontFormats = "Andale Mono=andale mono,monospace;" +
	"Arial=arial,helvetica,sans-serif;" +
	"Arial Black=arial black,sans-serif;" +
	"Book Antiqua=book antiqua,palatino,serif;" +
	"Comic Sans MS=comic sans ms,sans-serif;" +
	"Courier New=courier new,courier,monospace;" +
	"Georgia=georgia,palatino,serif;" +
	"Helvetica=helvetica,arial,sans-serif;" +
	"Impact=impact,sans-serif;" +
	"Symbol=symbol;" +
	"Tahoma=tahoma,arial,helvetica,sans-serif;" +
	"Terminal=terminal,monaco,monospace;" +
	"Times New Roman=times new roman,times,serif;" +
	"Trebuchet MS=trebuchet ms,geneva,sans-serif;" +
	"Verdana=verdana,geneva,sans-serif;" +
	"Webdings=webdings;" +
	"Wingdings=wingdings,zapf dingbats"

// FontFormats builds the value of TinyMCE's font_formats setting.
//
// Grouped fonts appear once under their title. Individually named fonts
// bake weight and style into each family name, so every face is listed on
// its own.
func FontFormats(fonts []font.Resolved) string {
	var b strings.Builder
	for _, rf := range fonts {
		d := rf.Descriptor
		switch v := d.Variants.(type) {
		case font.Shorthands:
			writeFormat(&b, d.FontFamilyDisplay, d.FontFamily)
		case font.Faces:
			for _, face := range v {
				writeFormat(&b, face.FontFamily, face.FontFamily)
			}
		}
	}
	b.WriteString(DefaultFontFormats)
	return b.String()
}

func writeFormat(b *strings.Builder, label, family string) {
	b.WriteString(label)
	b.WriteByte('=')
	b.WriteString(family)
	b.WriteByte(';')
}
