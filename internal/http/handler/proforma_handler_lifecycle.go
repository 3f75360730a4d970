package handler

// Lifecycle endpoints for proformas: finalize, clone, number preview and
// PDF export.

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facturaec/proforma-api/internal/service"
)

// Finalize godoc
// @Summary Finalize proforma
// @Description Move a draft proforma to the finalized state. Finalizing an already finalized proforma is a no-op.
// @Tags Proformas
// @Accept json
// @Produce json
// @Param id path string true "Proforma ID" format(uuid)
// @Success 200 {object} domain.ProformaDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proformas/{id}/finalize [post]
func (h *ProformaHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proforma ID format")
		return
	}

	proforma, err := h.proformaService.Finalize(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProformaNotFound) {
			respondWithError(w, http.StatusNotFound, "Proforma not found")
			return
		}
		h.logger.Error("failed to finalize proforma", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to finalize proforma")
		return
	}

	respondJSON(w, http.StatusOK, proforma)
}

// Clone godoc
// @Summary Clone proforma
// @Description Create a new draft proforma from an existing one with a fresh number and today's date. Item prices are copied verbatim.
// @Tags Proformas
// @Accept json
// @Produce json
// @Param id path string true "Source proforma ID" format(uuid)
// @Success 201 {object} domain.ProformaDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proformas/{id}/clone [post]
func (h *ProformaHandler) Clone(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proforma ID format")
		return
	}

	proforma, err := h.proformaService.Clone(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProformaNotFound) {
			respondWithError(w, http.StatusNotFound, "Proforma not found")
			return
		}
		h.logger.Error("failed to clone proforma", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to clone proforma")
		return
	}

	w.Header().Set("Location", "/api/v1/proformas/"+proforma.ID.String())
	respondJSON(w, http.StatusCreated, proforma)
}

// NextNumber godoc
// @Summary Preview next proforma number
// @Description Get the number the next created proforma would receive. Advisory only; a concurrent create may claim it first.
// @Tags Proformas
// @Accept json
// @Produce json
// @Success 200 {object} domain.NextNumberResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proformas/next-number [get]
func (h *ProformaHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	result, err := h.proformaService.PeekNextNumber(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h.logger.Error("failed to peek next proforma number", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get next number")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ExportPDF godoc
// @Summary Export proforma as PDF
// @Description Render the proforma as a PDF document. Finalized proformas are also archived to storage.
// @Tags Proformas
// @Produce application/pdf
// @Param id path string true "Proforma ID" format(uuid)
// @Success 200 {file} binary
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /proformas/{id}/pdf [get]
func (h *ProformaHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid proforma ID format")
		return
	}

	data, filename, err := h.pdfService.Export(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProformaNotFound) {
			respondWithError(w, http.StatusNotFound, "Proforma not found")
			return
		}
		h.logger.Error("failed to export proforma pdf", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to export proforma")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
