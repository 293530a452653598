package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryRequest is the payload for creating or replacing a category
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// CategoryHandler handles HTTP requests for categories
type CategoryHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalog service.CatalogService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers category routes. Reads are public.
func (h *CategoryHandler) RegisterRoutes(r chi.Router, auth, admin func(http.Handler) http.Handler) {
	r.Route("/cat", func(r chi.Router) {
		r.Get("/c", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth, admin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create handles adding a category
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	category, err := h.catalog.AddCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("name", category.Name),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// List returns all categories in insertion order
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// Get returns one category
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	category, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Update replaces a category's name and description
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), id, req.Name, req.Description)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// Delete removes a category no product references
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("Category deleted", zap.String("category_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "category deleted"})
}
