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

type ClientHandler struct {
	clientService *service.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// List godoc
// @Summary List clients
// @Description Get paginated list of the caller's active clients
// @Tags Clients
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or cedula/RUC"
// @Param sortBy query string false "Sort field" Enums(firstName, lastName, cedulaRuc, createdAt, updatedAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ClientDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	sort := repository.DefaultSortConfig()
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	if sortOrder := r.URL.Query().Get("sortOrder"); sortOrder != "" {
		sort.Order = repository.ParseSortOrder(sortOrder)
	}

	result, err := h.clientService.List(r.Context(), page, pageSize, r.URL.Query().Get("search"), sort)
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get client by ID
// @Description Get a single client owned by the caller
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID" format(uuid)
// @Success 200 {object} domain.ClientDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	client, err := h.clientService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			respondWithError(w, http.StatusNotFound, "Client not found")
			return
		}
		h.logger.Error("failed to get client", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get client")
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// Create godoc
// @Summary Create client
// @Description Create a new client owned by the caller
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body domain.CreateClientRequest true "Client data"
// @Success 201 {object} domain.ClientDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Duplicate cedula/RUC"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateCedulaRUC) {
			respondWithError(w, http.StatusConflict, "A client with this cedula/RUC already exists")
			return
		}
		h.logger.Error("failed to create client", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create client")
		return
	}

	w.Header().Set("Location", "/api/v1/clients/"+client.ID.String())
	respondJSON(w, http.StatusCreated, client)
}

// Update godoc
// @Summary Update client
// @Description Update an existing client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID" format(uuid)
// @Param request body domain.UpdateClientRequest true "Client data"
// @Success 200 {object} domain.ClientDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Duplicate cedula/RUC"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var req domain.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			respondWithError(w, http.StatusNotFound, "Client not found")
		case errors.Is(err, service.ErrDuplicateCedulaRUC):
			respondWithError(w, http.StatusConflict, "A client with this cedula/RUC already exists")
		default:
			h.logger.Error("failed to update client", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update client")
		}
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// Delete godoc
// @Summary Delete client
// @Description Soft-delete a client. Proformas that reference it keep their data.
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	if err := h.clientService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			respondWithError(w, http.StatusNotFound, "Client not found")
			return
		}
		h.logger.Error("failed to delete client", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
