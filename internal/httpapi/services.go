package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/AelaNieve/appsalon/internal/catalog"
)

type servicesHandler struct {
	catalog  *catalog.Usecase
	validate *validator.Validate
	log      zerolog.Logger
}

type servicePayload struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

func (h *servicesHandler) writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		writeMsg(w, h.log, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrInvalidID):
		writeMsg(w, h.log, http.StatusBadRequest, "invalid service id")
	case errors.Is(err, catalog.ErrNotFound):
		writeMsg(w, h.log, http.StatusNotFound, "service not found")
	default:
		h.log.Error().Err(err).Msg("catalog operation failed")
		writeMsg(w, h.log, http.StatusInternalServerError, msgInternal)
	}
}

func (h *servicesHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload servicePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "name and a positive price are required")
		return
	}

	svc, err := h.catalog.Create(r.Context(), payload.Name, payload.Price)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	writeJSON(w, h.log, http.StatusCreated, svc)
}

func (h *servicesHandler) list(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.List(r.Context())
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	if services == nil {
		services = []catalog.Service{}
	}
	writeJSON(w, h.log, http.StatusOK, services)
}

func (h *servicesHandler) get(w http.ResponseWriter, r *http.Request) {
	svc, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, svc)
}

func (h *servicesHandler) update(w http.ResponseWriter, r *http.Request) {
	var payload servicePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeMsg(w, h.log, http.StatusBadRequest, "name and a positive price are required")
		return
	}

	svc, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), payload.Name, payload.Price)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, svc)
}

func (h *servicesHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeCatalogError(w, err)
		return
	}
	writeMsg(w, h.log, http.StatusOK, "service deleted")
}
