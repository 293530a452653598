package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"storefront/internal/assets"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AssetOpener reads stored images by filename
type AssetOpener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, *assets.Object, error)
}

// AssetHandler serves stored product images without access control
type AssetHandler struct {
	images     AssetOpener
	publicPath string
	logger     *zap.Logger
}

// NewAssetHandler creates a new AssetHandler mounted at publicPath
func NewAssetHandler(images AssetOpener, publicPath string, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{
		images:     images,
		publicPath: publicPath,
		logger:     logger,
	}
}

// RegisterRoutes registers the read-only asset route
func (h *AssetHandler) RegisterRoutes(r chi.Router) {
	r.Get(h.publicPath+"/{filename}", h.Serve)
}

// Serve streams one stored file
func (h *AssetHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	body, object, err := h.images.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, assets.ErrAssetNotFound) || errors.Is(err, assets.ErrInvalidName) {
			middleware.RespondWithError(w, http.StatusNotFound, "asset not found")
			return
		}
		h.logger.Error("Failed to open asset", zap.String("filename", name), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", object.ContentType)
	if object.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(object.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Debug("Asset transfer interrupted", zap.String("filename", name), zap.Error(err))
	}
}
