package handler

import (
	"net/http"

	authmw "fonto/internal/middleware"
	"fonto/internal/version"

	"github.com/labstack/echo/v4"
)

// Routes registers the API, editor and public page routes on e.
func (h *Handler) Routes(e *echo.Echo) {
	api := e.Group("/api")

	// Public routes (no auth required)
	api.POST("/auth/login", h.Login)
	api.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, version.GetInfo())
	})
	api.GET("/fonts/:id/descriptor", h.GetDescriptor)
	api.GET("/typography/options", h.TypographyOptions)
	api.GET("/typography/fonts", h.TypographyFonts)

	// Admin routes
	admin := api.Group("")
	admin.Use(authmw.JWTAuth(h.auth.JWTSecret), authmw.AdminOnly())

	admin.GET("/auth/me", h.GetCurrentUser)
	admin.GET("/nonce", h.GetNonce)

	admin.GET("/fonts", h.ListFonts)
	admin.POST("/fonts", h.CreateFont)
	admin.GET("/fonts/:id", h.GetFont)
	admin.PUT("/fonts/:id", h.UpdateFont)
	admin.DELETE("/fonts/:id", h.DeleteFont)
	admin.POST("/fonts/:id/files", h.UploadFontFile)
	admin.DELETE("/fonts/:id/files/:name", h.DeleteFontFile)
	admin.POST("/fonts/:id/url-path", h.SampleURLPath, authmw.RequireNonce(h.auth.JWTSecret, ActionURLPath))

	admin.GET("/editor/head", h.EditorHeadCode)
	admin.GET("/editor/font-formats", h.EditorFontFormats)

	// Editor stylesheet is loaded by the editor iframe without credentials
	e.GET("/editor/fonts.css", h.EditorCSS)

	// Pages
	e.GET("/", h.Index)
	e.GET("/fonts/:id", h.FontPage)
}
