package handler

import (
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"fonto/internal/font"
	"fonto/internal/storage"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	maxFontFileSize = 30 * 1024 * 1024 // 30MB

	// adminAuthorID is the author recorded for fonts the administrator creates.
	adminAuthorID = 1
)

var allowedFontFormats = map[string]bool{
	".ttf":   true,
	".otf":   true,
	".woff":  true,
	".woff2": true,
}

// ListFonts returns font records of every status. Optional query values:
// author, status (comma separated) and limit.
func (h *Handler) ListFonts(c echo.Context) error {
	q := font.Query{
		Kind: font.KindFont,
		OrderBy: []font.Order{
			{Field: font.OrderMenuOrder, Desc: true},
			{Field: font.OrderDate, Desc: true},
		},
	}

	if v := c.QueryParam("author"); v != "" {
		author, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid author"})
		}
		q.AuthorID = author
	}
	if v := c.QueryParam("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			status := font.Status(strings.TrimSpace(s))
			if !status.Valid() {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Unknown status %q", s)})
			}
			q.Statuses = append(q.Statuses, status)
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid limit"})
		}
		q.Limit = limit
	}

	records, err := h.store.Find(c.Request().Context(), q)
	if err != nil {
		h.log.Error("Failed to list fonts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get fonts"})
	}
	if records == nil {
		records = []*font.Record{}
	}
	return c.JSON(http.StatusOK, records)
}

// CreateFont creates a font record from the JSON body
func (h *Handler) CreateFont(c echo.Context) error {
	var r font.Record
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := r.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	r.ID = 0
	r.Kind = font.KindFont
	if r.AuthorID == 0 {
		r.AuthorID = adminAuthorID
	}
	// Files are only attached through uploads.
	r.FontFiles = nil

	if err := h.store.Create(c.Request().Context(), &r); err != nil {
		h.log.Error("Failed to create font", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create font"})
	}

	h.log.Info("Font created", zap.Int("id", r.ID), zap.String("title", r.Title))
	return c.JSON(http.StatusCreated, &r)
}

// GetFont returns a single font record of any status
func (h *Handler) GetFont(c echo.Context) error {
	r, err := h.loadFont(c)
	if r == nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// UpdateFont applies the JSON body over an existing font record. Fields
// missing from the body keep their value.
func (h *Handler) UpdateFont(c echo.Context) error {
	r, err := h.loadFont(c)
	if r == nil {
		return err
	}
	id, kind, files, created, status := r.ID, r.Kind, r.FontFiles, r.CreatedAt, r.Status

	if err := c.Bind(r); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if r.Status == "" {
		r.Status = status
	}
	if err := r.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	r.ID, r.Kind, r.FontFiles, r.CreatedAt = id, kind, files, created

	if err := h.store.Update(c.Request().Context(), r); err != nil {
		h.log.Error("Failed to update font", zap.Int("id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update font"})
	}
	return c.JSON(http.StatusOK, r)
}

// DeleteFont deletes a font record together with its uploaded files
func (h *Handler) DeleteFont(c echo.Context) error {
	r, err := h.loadFont(c)
	if r == nil {
		return err
	}
	ctx := c.Request().Context()

	for _, key := range r.FontFiles {
		if err := h.files.Remove(ctx, key); err != nil {
			// The janitor picks up whatever is left behind.
			h.log.Warn("Failed to delete font file", zap.String("key", key), zap.Error(err))
		}
	}

	if err := h.store.Delete(ctx, r.ID); err != nil {
		h.log.Error("Failed to delete font", zap.Int("id", r.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete font"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Font deleted successfully"})
}

// UploadFontFile stores a font file in the record's upload directory and
// attaches it to the record. The record's url_path is set to that directory
// when empty.
func (h *Handler) UploadFontFile(c echo.Context) error {
	r, err := h.loadFont(c)
	if r == nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
	}

	if file.Size > maxFontFileSize {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("File size exceeds maximum limit of %d MB", maxFontFileSize/(1024*1024)),
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedFontFormats[ext] {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid font format. Allowed formats: .ttf, .otf, .woff, .woff2",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to open uploaded file"})
	}
	defer src.Close()

	ctx := c.Request().Context()
	key := path.Join(storage.FontDir(r.ID), uuid.New().String()+ext)
	if err := h.files.Save(ctx, key, src, file.Size, fontContentType(ext)); err != nil {
		h.log.Error("Failed to save font file", zap.String("key", key), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save file"})
	}

	r.FontFiles = append(r.FontFiles, key)
	if r.URLPath == "" {
		r.URLPath = storage.DirURL(h.files, r.ID)
	}
	if err := h.store.Update(ctx, r); err != nil {
		// Clean up file if the record cannot reference it
		if rmErr := h.files.Remove(ctx, key); rmErr != nil {
			h.log.Warn("Failed to remove unreferenced font file", zap.String("key", key), zap.Error(rmErr))
		}
		h.log.Error("Failed to attach font file", zap.Int("id", r.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update font"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"key":       key,
		"name":      path.Base(key),
		"url":       h.files.URL(key),
		"file_size": file.Size,
		"font":      r,
	})
}

// DeleteFontFile detaches and removes one uploaded file, named by its base
// name in the :name path parameter.
func (h *Handler) DeleteFontFile(c echo.Context) error {
	r, err := h.loadFont(c)
	if r == nil {
		return err
	}

	key := path.Join(storage.FontDir(r.ID), path.Base(c.Param("name")))
	i := slices.Index(r.FontFiles, key)
	if i < 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "File not found"})
	}

	ctx := c.Request().Context()
	if err := h.files.Remove(ctx, key); err != nil {
		h.log.Error("Failed to delete font file", zap.String("key", key), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete file"})
	}

	r.FontFiles = slices.Delete(r.FontFiles, i, i+1)
	if err := h.store.Update(ctx, r); err != nil {
		h.log.Error("Failed to detach font file", zap.Int("id", r.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update font"})
	}
	return c.JSON(http.StatusOK, r)
}

// SampleURLPath returns the URL of the record's upload directory, for
// building self-hosted embed code before any file is uploaded.
func (h *Handler) SampleURLPath(c echo.Context) error {
	r, err := h.loadFont(c)
	if r == nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"url_path": storage.DirURL(h.files, r.ID)})
}

// GetDescriptor returns the descriptor of a published font
func (h *Handler) GetDescriptor(c echo.Context) error {
	id, err := font.ParseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid font ID"})
	}
	d, ok := h.fonts.Resolve(c.Request().Context(), id)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Font not found"})
	}
	return c.JSON(http.StatusOK, d)
}

// fontContentType returns the MIME type for a font file extension
func fontContentType(ext string) string {
	switch ext {
	case ".ttf":
		return "font/ttf"
	case ".otf":
		return "font/otf"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
