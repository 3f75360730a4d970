package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/internal/repository"
)

// DashboardService aggregates the headline counts shown on the start page
type DashboardService struct {
	clientRepo   *repository.ClientRepository
	proformaRepo *repository.ProformaRepository
	logger       *zap.Logger
}

func NewDashboardService(
	clientRepo *repository.ClientRepository,
	proformaRepo *repository.ProformaRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		clientRepo:   clientRepo,
		proformaRepo: proformaRepo,
		logger:       logger,
	}
}

// GetStats returns the caller's active client count, total proforma count and
// the number of proformas dated in the current calendar month (UTC).
func (s *DashboardService) GetStats(ctx context.Context) (*domain.DashboardStatsDTO, error) {
	totalClients, err := s.clientRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	totalProformas, err := s.proformaRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count proformas: %w", err)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	monthly, err := s.proformaRepo.CountInRange(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count proformas for current month: %w", err)
	}

	return &domain.DashboardStatsDTO{
		TotalClients:       totalClients,
		TotalProformas:     totalProformas,
		ProformasThisMonth: monthly,
	}, nil
}
