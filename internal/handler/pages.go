package handler

import (
	"bytes"
	"html"
	"html/template"
	"net/http"

	"fonto/internal/font"
	"fonto/web"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const sampleText = "The quick brown fox jumps over the lazy dog"

type pageFont struct {
	ID      int
	Title   string
	Family  string
	Samples []sample
}

type sample struct {
	Family string
	Weight string
	Style  string
	Label  string
}

// samples lists one preview line per variation of a resolved font.
// Descriptor values are HTML-escaped; templates escape again, so they are
// unescaped here.
func samples(r *font.Record, d font.Descriptor) []sample {
	var out []sample
	switch v := d.Variants.(type) {
	case font.Shorthands:
		family := html.UnescapeString(d.FontFamily)
		for _, token := range r.Variations {
			variation, ok := font.LookupVariation(token)
			if !ok {
				continue
			}
			out = append(out, sample{Family: family, Weight: variation.Weight, Style: variation.Style, Label: variation.Label})
		}
	case font.Faces:
		for _, face := range v {
			label := face.FontWeight + " " + face.FontStyle
			if variation, ok := font.LookupVariation(face.FontWeight + "_" + face.FontStyle); ok {
				label = variation.Label
			}
			out = append(out, sample{
				Family: html.UnescapeString(face.FontFamily),
				Weight: face.FontWeight,
				Style:  face.FontStyle,
				Label:  label,
			})
		}
	}
	return out
}

func newPageFont(rf font.Resolved) pageFont {
	return pageFont{
		ID:      rf.Record.ID,
		Title:   html.UnescapeString(rf.Descriptor.FontFamilyDisplay),
		Family:  html.UnescapeString(rf.Descriptor.FontFamily),
		Samples: samples(rf.Record, rf.Descriptor),
	}
}

// Index lists every published font with a preview line.
func (h *Handler) Index(c echo.Context) error {
	ctx := c.Request().Context()

	fonts := []pageFont{}
	for _, rf := range h.fonts.ResolvedFonts(ctx) {
		if pf := newPageFont(rf); len(pf.Samples) > 0 {
			fonts = append(fonts, pf)
		}
	}

	return h.render(c, "index.html", map[string]interface{}{
		"Head":  template.HTML(h.fonts.FrontEmbedCode(ctx)),
		"Fonts": fonts,
		"Text":  sampleText,
	})
}

// FontPage previews every variation of one published font.
func (h *Handler) FontPage(c echo.Context) error {
	id, err := font.ParseID(c.Param("id"))
	if err != nil {
		return c.String(http.StatusNotFound, "Font not found")
	}
	ctx := c.Request().Context()

	r, err := h.store.Get(ctx, id)
	if err != nil || !r.Published() {
		return c.String(http.StatusNotFound, "Font not found")
	}
	d, ok := font.Resolve(r)
	if !ok {
		return c.String(http.StatusNotFound, "Font not found")
	}

	description, err := renderMarkdown(r.Content)
	if err != nil {
		h.log.Warn("Failed to render font description", zap.Int("id", id), zap.Error(err))
	}

	return h.render(c, "font.html", map[string]interface{}{
		"Head":        template.HTML(h.fonts.FrontEmbedCode(ctx)),
		"Font":        newPageFont(font.Resolved{Record: r, Descriptor: d}),
		"Description": description,
		"Text":        sampleText,
	})
}

func (h *Handler) render(c echo.Context, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := web.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("Failed to render page", zap.String("template", name), zap.Error(err))
		return c.String(http.StatusInternalServerError, "Failed to load page")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
