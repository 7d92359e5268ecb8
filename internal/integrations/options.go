package integrations

import (
	"encoding/json"
	"fmt"
	"html"
	"io"

	"fonto/internal/font"
)

// GroupLabel is the heading custom fonts are listed under in pickers.
const GroupLabel = "Custom Fonts"

// OptionType returns the option type a typography picker uses to tell how
// the font's variants are shaped.
func OptionType(d font.Descriptor) string {
	return "custom_" + string(d.Scheme())
}

// WriteOptions renders fonts as an <optgroup> of <option> elements for a
// typography picker's font <select>. The option whose family equals active is
// marked selected. Nothing is written when fonts is empty.
func WriteOptions(w io.Writer, active string, fonts []font.Resolved) error {
	if len(fonts) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "<optgroup label=\"%s\">\n", GroupLabel); err != nil {
		return err
	}
	for _, rf := range fonts {
		if err := writeOption(w, active, rf.Descriptor); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</optgroup>\n")
	return err
}

func writeOption(w io.Writer, active string, d font.Descriptor) error {
	variants, err := json.Marshal(d.Variants)
	if err != nil {
		return fmt.Errorf("failed to encode variants of %q: %w", d.FontFamily, err)
	}

	selected := ""
	if isActive(d.FontFamily, active) {
		selected = " selected"
	}
	_, err = fmt.Fprintf(w, "<option value=\"%s\" data-type=\"%s\" data-variants=\"%s\"%s>%s</option>\n",
		d.FontFamily, OptionType(d), html.EscapeString(string(variants)), selected, d.FontFamilyDisplay)
	return err
}

// isActive compares a resolved (escaped) family with the picker's value,
// which may arrive escaped or not.
func isActive(family, active string) bool {
	if active == "" {
		return false
	}
	return family == active || family == html.EscapeString(active)
}
