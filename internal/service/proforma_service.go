package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/facturaec/proforma-api/internal/auth"
	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/internal/mapper"
	"github.com/facturaec/proforma-api/internal/pricing"
	"github.com/facturaec/proforma-api/internal/repository"
)

type ProformaService struct {
	proformaRepo    *repository.ProformaRepository
	itemRepo        *repository.ItemRepository
	clientRepo      *repository.ClientRepository
	sequenceService *SequenceService
	logger          *zap.Logger
}

func NewProformaService(
	proformaRepo *repository.ProformaRepository,
	itemRepo *repository.ItemRepository,
	clientRepo *repository.ClientRepository,
	sequenceService *SequenceService,
	logger *zap.Logger,
) *ProformaService {
	return &ProformaService{
		proformaRepo:    proformaRepo,
		itemRepo:        itemRepo,
		clientRepo:      clientRepo,
		sequenceService: sequenceService,
		logger:          logger,
	}
}

// Create creates a new draft proforma with its items. The proforma number is
// allocated up front; if the item insert fails the header is removed again,
// leaving a gap in the sequence rather than a half-written document.
func (s *ProformaService) Create(ctx context.Context, req *domain.CreateProformaRequest) (*domain.ProformaDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	// The client must exist, be active, and belong to the caller
	if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to verify client: %w", err)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}

	ivaPercentage := domain.DefaultIVAPercentage
	if req.IVAPercentage != nil {
		ivaPercentage = *req.IVAPercentage
	}

	items, totals := buildItems(req.Items, ivaPercentage)

	number, err := s.sequenceService.AllocateNext(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate proforma number: %w", err)
	}

	proforma := &domain.Proforma{
		UserID:         userCtx.UserID,
		ProformaNumber: number,
		ClientID:       req.ClientID,
		Status:         domain.ProformaStatusDraft,
		Date:           date,
		DeliveryDays:   req.DeliveryDays,
		PaymentMethods: req.PaymentMethods,
		Observations:   req.Observations,
		IVAPercentage:  ivaPercentage,
		Subtotal:       totals.Subtotal,
		IVAAmount:      totals.IVAAmount,
		Total:          totals.Total,
	}

	if err := s.proformaRepo.Create(ctx, proforma); err != nil {
		return nil, fmt.Errorf("failed to create proforma: %w", err)
	}

	for i := range items {
		items[i].ProformaID = proforma.ID
	}
	if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
		// Compensate: a header without items must not survive
		if delErr := s.proformaRepo.Delete(ctx, proforma.ID); delErr != nil {
			s.logger.Error("failed to remove proforma header after item insert failure",
				zap.String("proforma_id", proforma.ID.String()),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to create proforma items: %w", err)
	}

	s.logger.Info("proforma created",
		zap.String("proforma_id", proforma.ID.String()),
		zap.Int("proforma_number", proforma.ProformaNumber),
		zap.String("user_id", userCtx.UserID),
	)

	return s.reload(ctx, proforma.ID)
}

// GetByID returns the proforma with items and client if it belongs to the caller
func (s *ProformaService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProformaDTO, error) {
	proforma, err := s.proformaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProformaNotFound
		}
		return nil, fmt.Errorf("failed to get proforma: %w", err)
	}

	dto := mapper.ToProformaDTO(proforma)
	return &dto, nil
}

// Update rewrites a draft proforma: header fields are replaced, the item set
// is swapped wholesale, and totals are recomputed from the new items.
// Finalized proformas reject every change.
func (s *ProformaService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProformaRequest) (*domain.ProformaDTO, error) {
	proforma, err := s.proformaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProformaNotFound
		}
		return nil, fmt.Errorf("failed to get proforma: %w", err)
	}

	if !proforma.IsEditable() {
		return nil, ErrProformaFinalized
	}

	if req.ClientID != proforma.ClientID {
		if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClientNotFound
			}
			return nil, fmt.Errorf("failed to verify client: %w", err)
		}
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}

	ivaPercentage := proforma.IVAPercentage
	if req.IVAPercentage != nil {
		ivaPercentage = *req.IVAPercentage
	}

	items, totals := buildItems(req.Items, ivaPercentage)

	if err := s.itemRepo.ReplaceForProforma(ctx, proforma.ID, items); err != nil {
		return nil, fmt.Errorf("failed to replace proforma items: %w", err)
	}

	proforma.ClientID = req.ClientID
	proforma.Date = date
	proforma.DeliveryDays = req.DeliveryDays
	proforma.PaymentMethods = req.PaymentMethods
	proforma.Observations = req.Observations
	proforma.IVAPercentage = ivaPercentage
	proforma.Subtotal = totals.Subtotal
	proforma.IVAAmount = totals.IVAAmount
	proforma.Total = totals.Total
	proforma.Items = nil

	if err := s.proformaRepo.Update(ctx, proforma); err != nil {
		return nil, fmt.Errorf("failed to update proforma: %w", err)
	}

	return s.reload(ctx, proforma.ID)
}

// Delete removes a draft proforma and its items. The allocated number is not
// reclaimed. Finalized proformas cannot be deleted.
func (s *ProformaService) Delete(ctx context.Context, id uuid.UUID) error {
	proforma, err := s.proformaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProformaNotFound
		}
		return fmt.Errorf("failed to get proforma: %w", err)
	}

	if !proforma.IsEditable() {
		return ErrProformaFinalized
	}

	if err := s.itemRepo.DeleteByProforma(ctx, proforma.ID); err != nil {
		return fmt.Errorf("failed to delete proforma items: %w", err)
	}
	if err := s.proformaRepo.Delete(ctx, proforma.ID); err != nil {
		return fmt.Errorf("failed to delete proforma: %w", err)
	}

	s.logger.Info("proforma deleted",
		zap.String("proforma_id", proforma.ID.String()),
		zap.Int("proforma_number", proforma.ProformaNumber),
	)
	return nil
}

// List returns a page of the caller's proformas, optionally filtered by
// status and a search term (exact number or client name substring)
func (s *ProformaService) List(ctx context.Context, page, pageSize int, search string, status domain.ProformaStatus, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}

	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	proformas, total, err := s.proformaRepo.List(ctx, page, pageSize, search, status, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list proformas: %w", err)
	}

	dtos := make([]domain.ProformaDTO, len(proformas))
	for i := range proformas {
		dtos[i] = mapper.ToProformaDTO(&proformas[i])
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

// PeekNextNumber previews the caller's next proforma number
func (s *ProformaService) PeekNextNumber(ctx context.Context) (*domain.NextNumberResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	next, err := s.sequenceService.PeekNext(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to peek next number: %w", err)
	}

	return &domain.NextNumberResponse{NextNumber: next}, nil
}

func (s *ProformaService) reload(ctx context.Context, id uuid.UUID) (*domain.ProformaDTO, error) {
	proforma, err := s.proformaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload proforma: %w", err)
	}
	dto := mapper.ToProformaDTO(proforma)
	return &dto, nil
}

// buildItems prices each requested item and aggregates the document totals
func buildItems(reqs []domain.ItemRequest, ivaPercentage float64) ([]domain.Item, pricing.Totals) {
	lines := make([]pricing.Line, len(reqs))
	for i, r := range reqs {
		lines[i] = pricing.Line{
			UnitCost:       r.UnitCost,
			PercentageGain: r.PercentageGain,
			Quantity:       r.Quantity,
		}
	}
	totals := pricing.Aggregate(lines, ivaPercentage)

	items := make([]domain.Item, len(reqs))
	for i, r := range reqs {
		items[i] = domain.Item{
			Description:    r.Description,
			Unit:           r.Unit,
			Quantity:       r.Quantity,
			UnitCost:       r.UnitCost,
			PercentageGain: r.PercentageGain,
			LineTotal:      totals.LineTotals[i],
			DisplayOrder:   i,
		}
	}

	return items, totals
}
