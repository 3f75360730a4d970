package service

// Lifecycle methods for proformas: finalization and cloning live here to
// keep proforma_service.go focused on CRUD.

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
)

// Finalize moves a draft proforma to the finalized state. Finalizing an
// already finalized proforma is a no-op and returns the current state, so
// retried requests stay safe.
func (s *ProformaService) Finalize(ctx context.Context, id uuid.UUID) (*domain.ProformaDTO, error) {
	proforma, err := s.proformaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProformaNotFound
		}
		return nil, fmt.Errorf("failed to get proforma: %w", err)
	}

	if proforma.Status == domain.ProformaStatusFinalized {
		dto := mapper.ToProformaDTO(proforma)
		return &dto, nil
	}

	proforma.Status = domain.ProformaStatusFinalized
	proforma.Items = nil

	if err := s.proformaRepo.Update(ctx, proforma); err != nil {
		return nil, fmt.Errorf("failed to finalize proforma: %w", err)
	}

	s.logger.Info("proforma finalized",
		zap.String("proforma_id", proforma.ID.String()),
		zap.Int("proforma_number", proforma.ProformaNumber),
	)

	return s.reload(ctx, id)
}

// Clone creates a new draft proforma from an existing one. The copy gets a
// freshly allocated number and today's date; items are copied with their
// stored line totals untouched, so the clone reproduces the source document
// even if pricing rules changed since.
func (s *ProformaService) Clone(ctx context.Context, id uuid.UUID) (*domain.ProformaDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	source, err := s.proformaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProformaNotFound
		}
		return nil, fmt.Errorf("failed to get proforma: %w", err)
	}

	number, err := s.sequenceService.AllocateNext(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate proforma number: %w", err)
	}

	clone := &domain.Proforma{
		UserID:         userCtx.UserID,
		ProformaNumber: number,
		ClientID:       source.ClientID,
		Status:         domain.ProformaStatusDraft,
		Date:           time.Now().UTC().Truncate(24 * time.Hour),
		DeliveryDays:   source.DeliveryDays,
		PaymentMethods: source.PaymentMethods,
		Observations:   source.Observations,
		IVAPercentage:  source.IVAPercentage,
		Subtotal:       source.Subtotal,
		IVAAmount:      source.IVAAmount,
		Total:          source.Total,
	}

	if err := s.proformaRepo.Create(ctx, clone); err != nil {
		return nil, fmt.Errorf("failed to create cloned proforma: %w", err)
	}

	items := make([]domain.Item, len(source.Items))
	for i, item := range source.Items {
		items[i] = domain.Item{
			ProformaID:     clone.ID,
			Description:    item.Description,
			Unit:           item.Unit,
			Quantity:       item.Quantity,
			UnitCost:       item.UnitCost,
			PercentageGain: item.PercentageGain,
			LineTotal:      item.LineTotal,
			DisplayOrder:   item.DisplayOrder,
		}
	}
	if err := s.itemRepo.CreateBatch(ctx, items); err != nil {
		if delErr := s.proformaRepo.Delete(ctx, clone.ID); delErr != nil {
			s.logger.Error("failed to remove cloned proforma header after item insert failure",
				zap.String("proforma_id", clone.ID.String()),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to copy proforma items: %w", err)
	}

	s.logger.Info("proforma cloned",
		zap.String("source_id", source.ID.String()),
		zap.String("clone_id", clone.ID.String()),
		zap.Int("clone_number", clone.ProformaNumber),
	)

	return s.reload(ctx, clone.ID)
}
