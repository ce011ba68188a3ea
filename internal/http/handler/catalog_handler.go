package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/NicoGleichmann/shopWebsite/internal/http/response"
	"github.com/NicoGleichmann/shopWebsite/internal/repository"
	"github.com/NicoGleichmann/shopWebsite/internal/service"
)

type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := repository.PageRequest{}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "page must be a positive integer")
			return
		}
		page.Page = n
	}
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "page_size must be a positive integer")
			return
		}
		page.PageSize = n
	}

	result, err := h.catalog.List(r.Context(), q.Get("category"), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, product)
}
