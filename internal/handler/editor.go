package handler

import (
	"bytes"
	"net/http"

	"fonto/internal/integrations"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EditorHeadCode returns the embed code the rich-text editor injects into
// its iframe head.
func (h *Handler) EditorHeadCode(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"code": h.fonts.AdminEmbedCode(c.Request().Context()),
	})
}

// EditorFontFormats returns the editor's font menu with custom fonts first.
func (h *Handler) EditorFontFormats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"font_formats": integrations.FontFormats(h.fonts.ResolvedFonts(c.Request().Context())),
	})
}

// EditorCSS serves the stylesheet mapping individually named faces to their
// weight and style inside the editor.
func (h *Handler) EditorCSS(c echo.Context) error {
	if !h.fonts.Hooks().EditorCSS.Apply(true) {
		return c.NoContent(http.StatusNotFound)
	}

	var buf bytes.Buffer
	if err := integrations.WriteEditorCSS(&buf, h.fonts.ResolvedFonts(c.Request().Context())); err != nil {
		h.log.Error("Failed to render editor CSS", zap.Error(err))
		return c.String(http.StatusInternalServerError, "/* failed */")
	}
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", buf.Bytes())
}

// TypographyOptions renders the <option> markup contributed to a typography
// picker whose current value is the "active" query value.
func (h *Handler) TypographyOptions(c echo.Context) error {
	var buf bytes.Buffer
	h.fonts.FontOptions(c.Request().Context(), &buf, c.QueryParam("active"))
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// TypographyFonts returns the third-party font map and its group label.
func (h *Handler) TypographyFonts(c echo.Context) error {
	label, fonts := h.fonts.ThirdPartyFonts(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]interface{}{
		"label": label,
		"fonts": fonts,
	})
}
