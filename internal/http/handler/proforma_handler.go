package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/internal/repository"
	"github.com/facturaec/proforma-api/internal/service"
)

type ProformaHandler struct {
	proformaService *service.ProformaService
	pdfService      *service.ProformaPDFService
	logger          *zap.Logger
}

func NewProformaHandler(
	proformaService *service.ProformaService,
	pdfService *service.ProformaPDFService,
	logger *zap.Logger,
) *ProformaHandler {
	return &ProformaHandler{
		proformaService: proformaService,
		pdfService:      pdfService,
		logger:          logger,
	}
}

// List godoc
// @Summary List proformas
// @Description Get paginated list of the caller's proformas, newest first
// @Tags Proformas
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Exact proforma number or client name substring"
// @Param status query string false "Filter by status" Enums(draft, finalized)
// @Param sortBy query string false "Sort field" Enums(proformaNumber, date, total, status, createdAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProformaDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proformas [get]
func (h *ProformaHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	status := domain.ProformaStatus(r.URL.Query().Get("status"))

	// Highest number first unless the caller sorts explicitly
	sort := repository.SortConfig{Field: "proformaNumber", Order: repository.SortOrderDesc}
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	if sortOrder := r.URL.Query().Get("sortOrder"); sortOrder != "" {
		sort.Order = repository.ParseSortOrder(sortOrder)
	}

	result, err := h.proformaService.List(r.Context(), page, pageSize, r.URL.Query().Get("search"), status, sort)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to list proformas", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list proformas")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get proforma by ID
// @Description Get a proforma with its items, client and total in words
// @Tags Proformas
// @Accept json
// @Produce json
// @Param id path string true "Proforma ID" format(uuid)
// @Success 200 {object} domain.ProformaDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proformas/{id} [get]
func (h *ProformaHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proforma ID format")
		return
	}

	proforma, err := h.proformaService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProformaNotFound) {
			respondWithError(w, http.StatusNotFound, "Proforma not found")
			return
		}
		h.logger.Error("failed to get proforma", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get proforma")
		return
	}

	respondJSON(w, http.StatusOK, proforma)
}

// Create godoc
// @Summary Create proforma
// @Description Create a new draft proforma with its items. Totals are computed server-side and a sequential number is assigned.
// @Tags Proformas
// @Accept json
// @Produce json
// @Param request body domain.CreateProformaRequest true "Proforma data"
// @Success 201 {object} domain.ProformaDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Client not found"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proformas [post]
func (h *ProformaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProformaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	proforma, err := h.proformaService.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			respondWithError(w, http.StatusNotFound, "Client not found")
		case errors.Is(err, service.ErrInvalidDate):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoItems):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to create proforma", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to create proforma")
		}
		return
	}

	w.Header().Set("Location", "/api/v1/proformas/"+proforma.ID.String())
	respondJSON(w, http.StatusCreated, proforma)
}

// Update godoc
// @Summary Update proforma
// @Description Replace a draft proforma's fields and item set; totals are recomputed. Finalized proformas reject changes.
// @Tags Proformas
// @Accept json
// @Produce json
// @Param id path string true "Proforma ID" format(uuid)
// @Param request body domain.UpdateProformaRequest true "Proforma data"
// @Success 200 {object} domain.ProformaDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Proforma is finalized"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proformas/{id} [put]
func (h *ProformaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proforma ID format")
		return
	}

	var req domain.UpdateProformaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	proforma, err := h.proformaService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProformaNotFound):
			respondWithError(w, http.StatusNotFound, "Proforma not found")
		case errors.Is(err, service.ErrProformaFinalized):
			respondStateError(w, "Proforma is finalized and cannot be modified")
		case errors.Is(err, service.ErrClientNotFound):
			respondWithError(w, http.StatusNotFound, "Client not found")
		case errors.Is(err, service.ErrInvalidDate):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoItems):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update proforma", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update proforma")
		}
		return
	}

	respondJSON(w, http.StatusOK, proforma)
}

// Delete godoc
// @Summary Delete proforma
// @Description Delete a draft proforma and its items. Finalized proformas cannot be deleted.
// @Tags Proformas
// @Accept json
// @Produce json
// @Param id path string true "Proforma ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Proforma is finalized"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proformas/{id} [delete]
func (h *ProformaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proforma ID format")
		return
	}

	if err := h.proformaService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrProformaNotFound):
			respondWithError(w, http.StatusNotFound, "Proforma not found")
		case errors.Is(err, service.ErrProformaFinalized):
			respondStateError(w, "Proforma is finalized and cannot be deleted")
		default:
			h.logger.Error("failed to delete proforma", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to delete proforma")
		}
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
