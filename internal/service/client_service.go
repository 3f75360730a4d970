package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/facturaec/proforma-api/internal/auth"
	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/internal/mapper"
	"github.com/facturaec/proforma-api/internal/repository"
)

type ClientService struct {
	clientRepo *repository.ClientRepository
	logger     *zap.Logger
}

func NewClientService(clientRepo *repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

// Create creates a new client owned by the calling user
func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	// Reject a second active client with the same identifier for this owner
	existing, err := s.clientRepo.FindByCedulaRUC(ctx, userCtx.UserID, req.CedulaRUC)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate cedula/RUC: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateCedulaRUC
	}

	client := &domain.Client{
		UserID:    userCtx.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CedulaRUC: req.CedulaRUC,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client created",
		zap.String("client_id", client.ID.String()),
		zap.String("user_id", userCtx.UserID),
	)

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// GetByID returns the client if it exists and belongs to the caller
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// Update replaces the client's editable fields
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	// The identifier may move to another value, but not to one already in use
	if req.CedulaRUC != client.CedulaRUC {
		existing, err := s.clientRepo.FindByCedulaRUC(ctx, client.UserID, req.CedulaRUC)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check for duplicate cedula/RUC: %w", err)
		}
		if existing != nil && existing.ID != client.ID {
			return nil, ErrDuplicateCedulaRUC
		}
	}

	client.FirstName = req.FirstName
	client.LastName = req.LastName
	client.CedulaRUC = req.CedulaRUC
	client.Email = req.Email
	client.Phone = req.Phone
	client.Address = req.Address

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// Delete soft-deletes the client. Proformas that reference it keep working;
// the client just stops appearing in listings and pickers.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to get client: %w", err)
	}

	if err := s.clientRepo.Delete(ctx, client.ID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	// Proformas keep referencing the tombstoned client; record how many
	referencing := 0
	if n, err := s.clientRepo.CountProformas(ctx, client.ID); err == nil {
		referencing = n
	}

	s.logger.Info("client deleted",
		zap.String("client_id", client.ID.String()),
		zap.String("user_id", client.UserID),
		zap.Int("referencing_proformas", referencing),
	)
	return nil
}

// List returns a page of the caller's active clients
func (s *ClientService) List(ctx context.Context, page, pageSize int, search string, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}

	clients, total, err := s.clientRepo.List(ctx, page, pageSize, search, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
