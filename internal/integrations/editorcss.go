package integrations

import (
	"fmt"
	"html"
	"io"
	"strings"
	"unicode"

	"fonto/internal/font"
)

// WriteEditorCSS writes the stylesheet loaded into the rich-text editor.
// Every face of an individually named font gets a class rule binding its
// family to its weight and style, e.g.
//
//	.fonto-my-font-100-italic { font-family: "MyFont-ThinItalic"; font-weight: 100; font-style: italic; }
//
// Grouped fonts need no rules; their embed code already declares them.
func WriteEditorCSS(w io.Writer, fonts []font.Resolved) error {
	if _, err := io.WriteString(w, "/* Custom fonts */\n"); err != nil {
		return err
	}
	for _, rf := range fonts {
		faces, ok := rf.Descriptor.Variants.(font.Faces)
		if !ok {
			continue
		}
		slug := Slug(html.UnescapeString(rf.Descriptor.FontFamily))
		for _, face := range faces {
			_, err := fmt.Fprintf(w, ".fonto-%s-%s-%s { font-family: %s; font-weight: %s; font-style: %s; }\n",
				slug, face.FontWeight, face.FontStyle,
				cssString(html.UnescapeString(face.FontFamily)), face.FontWeight, face.FontStyle)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Slug lowercases s and joins its letter/digit runs with dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "<", `\3c `)
	return `"` + r.Replace(s) + `"`
}
