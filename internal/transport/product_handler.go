package transport

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/assets"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	imagesField = "images"
	imageField  = "image"

	// multipartMemory is how much of a multipart body is held in memory
	// before spilling to temporary files
	multipartMemory = 8 << 20
)

// productForm holds the text fields of a product creation form
type productForm struct {
	Name        string `form:"name" validate:"required"`
	Price       string `form:"price" validate:"required,numeric"`
	Category    string `form:"category" validate:"omitempty,uuid"`
	Description string `form:"description"`
	Stock       string `form:"stock" validate:"omitempty,numeric"`
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	catalog        service.CatalogService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, maxUploadBytes int64, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog:        catalog,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers product routes. Listing is public.
func (h *ProductHandler) RegisterRoutes(r chi.Router, auth, admin func(http.Handler) http.Handler) {
	r.Route("/product", func(r chi.Router) {
		r.Get("/", h.List)

		r.Group(func(r chi.Router) {
			r.Use(auth, admin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
		})
	})
}

// List returns products. Query parameters:
//
//	expand=false     skip category resolution (default true)
//	available=true   storefront view, available products only
//	category=<id>    limit to one category
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	verr := &service.ValidationError{}

	expand := true
	if raw := query.Get("expand"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "expand", Message: "must be true or false"})
		}
		expand = value
	}

	availableOnly := false
	if raw := query.Get("available"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "available", Message: "must be true or false"})
		}
		availableOnly = value
	}

	var categoryID *uuid.UUID
	if raw := query.Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "category", Message: "Must be a UUID"})
		}
		categoryID = &id
	}

	if len(verr.Fields) > 0 {
		middleware.RespondWithValidationErrors(w, verr.Fields)
		return
	}

	listings, err := h.catalog.ListProducts(r.Context(), expand)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	switch {
	case availableOnly:
		listings = service.Storefront(listings, categoryID)
	case categoryID != nil:
		listings = inCategory(listings, *categoryID)
	}

	middleware.RespondWithJSON(w, http.StatusOK, listings)
}

// Create handles a multipart product form with 1 to 5 "images" files
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := productForm{
		Name:        r.FormValue("name"),
		Price:       r.FormValue("price"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		Stock:       r.FormValue("stock"),
	}
	if err := middleware.ValidateRequest(&form); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	input, err := form.input()
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	uploads, closeAll, err := openUploads(r.MultipartForm.File[imagesField])
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "unreadable upload")
		return
	}
	defer closeAll()

	product, err := h.catalog.AddProduct(r.Context(), input, uploads)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update applies a partial product update. It accepts a JSON body, or a
// multipart form whose optional "image" file replaces all images.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var update service.ProductUpdate
	var image *assets.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !h.parseMultipart(w, r) {
			return
		}
		defer r.MultipartForm.RemoveAll()

		parsed, err := updateFromForm(r.MultipartForm.Value)
		if err != nil {
			middleware.RespondWithServiceError(w, err, h.logger)
			return
		}
		update = parsed

		files := r.MultipartForm.File[imageField]
		if len(files) > 1 {
			middleware.RespondWithValidationErrors(w, []service.FieldError{{
				Field:   imageField,
				Message: "at most one image may replace the current images",
			}})
			return
		}
		if len(files) == 1 {
			uploads, closeAll, err := openUploads(files)
			if err != nil {
				h.logger.Error("Failed to open uploaded file", zap.Error(err))
				middleware.RespondWithError(w, http.StatusBadRequest, "unreadable upload")
				return
			}
			defer closeAll()
			image = &uploads[0]
		}
	} else if err := middleware.DecodeAndValidate(r, &update); err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, update, image)
	if err != nil {
		middleware.RespondWithServiceError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return false
		}
		middleware.RespondWithValidationErrors(w, []service.FieldError{{
			Field:   "body",
			Message: "expected a multipart form",
		}})
		return false
	}
	return true
}

func (f productForm) input() (service.ProductInput, error) {
	verr := &service.ValidationError{}
	input := service.ProductInput{
		Name:        f.Name,
		Description: f.Description,
	}

	price, err := strconv.ParseFloat(f.Price, 64)
	if err != nil {
		verr.Fields = append(verr.Fields, service.FieldError{Field: "price", Message: "must be a number"})
	}
	input.Price = price

	if f.Stock != "" {
		stock, err := strconv.Atoi(f.Stock)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "stock", Message: "must be a whole number"})
		}
		input.Stock = stock
	}

	if f.Category != "" {
		categoryID, err := uuid.Parse(f.Category)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "category", Message: "Must be a UUID"})
		}
		input.CategoryID = &categoryID
	}

	if len(verr.Fields) > 0 {
		return input, verr
	}
	return input, nil
}

// updateFromForm sets only the fields present in the form
func updateFromForm(values map[string][]string) (service.ProductUpdate, error) {
	var update service.ProductUpdate
	verr := &service.ValidationError{}

	field := func(name string) (string, bool) {
		v, ok := values[name]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}

	if v, ok := field("name"); ok {
		update.Name = &v
	}
	if v, ok := field("description"); ok {
		update.Description = &v
	}
	if v, ok := field("price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "price", Message: "must be a number"})
		}
		update.Price = &price
	}
	if v, ok := field("stock"); ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "stock", Message: "must be a whole number"})
		}
		update.Stock = &stock
	}
	if v, ok := field("category"); ok {
		categoryID, err := uuid.Parse(v)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "category", Message: "Must be a UUID"})
		}
		update.CategoryID = &categoryID
	}
	if v, ok := field("isAvailable"); ok {
		available, err := domain.ParseLooseBool(v)
		if err != nil {
			verr.Fields = append(verr.Fields, service.FieldError{Field: "isAvailable", Message: "must be true or false"})
		}
		update.IsAvailable = &available
	}

	if len(verr.Fields) > 0 {
		return update, verr
	}
	return update, nil
}

func openUploads(headers []*multipart.FileHeader) ([]assets.Upload, func(), error) {
	uploads := make([]assets.Upload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, assets.Upload{
			Name:        header.Filename,
			Body:        f,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
		})
	}

	return uploads, closeAll, nil
}

func inCategory(listings []*domain.ProductListing, categoryID uuid.UUID) []*domain.ProductListing {
	out := make([]*domain.ProductListing, 0, len(listings))
	for _, listing := range listings {
		if listing.InCategory(categoryID) {
			out = append(out, listing)
		}
	}
	return out
}
