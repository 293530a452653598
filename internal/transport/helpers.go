package transport

import (
	"net/http"

	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// pathID parses the {id} URL parameter, writing a 400 response on failure
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// MessageResponse is a plain confirmation
type MessageResponse struct {
	Message string `json:"message"`
}
