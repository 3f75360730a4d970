package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/facturaec/proforma-api/internal/repository"
)

// SequenceService issues per-owner proforma numbers
type SequenceService struct {
	sequenceRepo *repository.SequenceRepository
	logger       *zap.Logger
}

// NewSequenceService creates a new SequenceService
func NewSequenceService(sequenceRepo *repository.SequenceRepository, logger *zap.Logger) *SequenceService {
	return &SequenceService{
		sequenceRepo: sequenceRepo,
		logger:       logger,
	}
}

// AllocateNext claims the owner's next proforma number. The number is spent
// even if the caller's write fails afterwards; gaps are acceptable,
// duplicates are not.
func (s *SequenceService) AllocateNext(ctx context.Context, userID string) (int, error) {
	number, err := s.sequenceRepo.AllocateNext(ctx, userID)
	if err != nil {
		s.logger.Error("failed to allocate proforma number",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return 0, err
	}

	s.logger.Debug("allocated proforma number",
		zap.String("user_id", userID),
		zap.Int("number", number),
	)
	return number, nil
}

// PeekNext previews the next number without claiming it. Concurrent creates
// can take the previewed value first.
func (s *SequenceService) PeekNext(ctx context.Context, userID string) (int, error) {
	return s.sequenceRepo.Peek(ctx, userID)
}
