package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fonto/internal/font"
	"fonto/internal/storage"
	"fonto/internal/store"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RecordStore is the read-write side of the record store.
type RecordStore interface {
	font.Store
	Create(ctx context.Context, r *font.Record) error
	Update(ctx context.Context, r *font.Record) error
	Delete(ctx context.Context, id int) error
}

// AuthSettings configures the single administrator account.
type AuthSettings struct {
	AdminUser         string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration
	NonceTTL          time.Duration
}

type Handler struct {
	store RecordStore
	fonts *font.Service
	files storage.Backend
	auth  AuthSettings
	log   *zap.Logger
}

func NewHandler(records RecordStore, fonts *font.Service, files storage.Backend, auth AuthSettings, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store: records,
		fonts: fonts,
		files: files,
		auth:  auth,
		log:   log,
	}
}

// loadFont fetches the record named by the :id path parameter. When it
// returns a nil record the error response has already been written and the
// caller should return the error as is.
func (h *Handler) loadFont(c echo.Context) (*font.Record, error) {
	id, err := font.ParseID(c.Param("id"))
	if err != nil {
		return nil, c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid font ID"})
	}
	r, err := h.store.Get(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, c.JSON(http.StatusNotFound, map[string]string{"error": "Font not found"})
	}
	if err != nil {
		h.log.Error("Failed to load font", zap.Int("id", id), zap.Error(err))
		return nil, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load font"})
	}
	return r, nil
}
