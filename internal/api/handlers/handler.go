package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/chisomo-phiri/studyhub/internal/catalog"
	"github.com/chisomo-phiri/studyhub/internal/repositories"
	"github.com/chisomo-phiri/studyhub/internal/utils"
)

// Handler carries the dependencies shared by the HTTP handlers.
type Handler struct {
	DB           *gorm.DB
	Indexer      *catalog.Indexer
	Subs         *repositories.SubscriptionRepo
	AuthRequired bool
}

func New(db *gorm.DB, indexer *catalog.Indexer, subs *repositories.SubscriptionRepo, authRequired bool) *Handler {
	return &Handler{
		DB:           db,
		Indexer:      indexer,
		Subs:         subs,
		AuthRequired: authRequired,
	}
}

// writeError maps the catalog error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *catalog.ValidationError
		authErr       *catalog.AuthError
		notFoundErr   *catalog.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: validationErr.Reason,
		})
	case errors.As(err, &authErr):
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
	case errors.As(err, &notFoundErr):
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: notFoundErr.Reason,
		})
	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: err.Error(),
		})
	}
}
