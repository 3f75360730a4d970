package jobs

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/internal/pricing"
	"github.com/facturaec/proforma-api/internal/repository"
)

// totalTolerance absorbs float round-trip noise through the decimal columns
const totalTolerance = 0.005

// ConsistencyAuditJob recomputes every proforma's totals from its stored
// items and compares them to the persisted header values, and verifies that
// no owner carries a duplicated proforma number. Those violations are logged,
// not repaired; they mean a write path has a bug. Sequence counters lagging
// behind an owner's highest issued number are the one thing the job repairs,
// since raising a counter is always safe and prevents the allocator from
// re-issuing a taken number.
type ConsistencyAuditJob struct {
	proformaRepo *repository.ProformaRepository
	sequenceRepo *repository.SequenceRepository
	logger       *zap.Logger
}

// NewConsistencyAuditJob creates the nightly consistency audit
func NewConsistencyAuditJob(
	proformaRepo *repository.ProformaRepository,
	sequenceRepo *repository.SequenceRepository,
	logger *zap.Logger,
) *ConsistencyAuditJob {
	return &ConsistencyAuditJob{
		proformaRepo: proformaRepo,
		sequenceRepo: sequenceRepo,
		logger:       logger,
	}
}

// Run executes one audit pass over all proformas
func (j *ConsistencyAuditJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	proformas, err := j.proformaRepo.ListAllWithItems(ctx)
	if err != nil {
		j.logger.Error("consistency audit: failed to load proformas", zap.Error(err))
		return
	}

	violations := 0
	seen := make(map[string]map[int]bool)

	for i := range proformas {
		p := &proformas[i]

		// Totals must match an aggregation of the stored line totals
		subtotal := 0.0
		for _, item := range p.Items {
			subtotal += item.LineTotal
		}
		ivaAmount := subtotal * p.IVAPercentage / 100
		total := subtotal + ivaAmount

		if math.Abs(subtotal-p.Subtotal) > totalTolerance ||
			math.Abs(ivaAmount-p.IVAAmount) > totalTolerance ||
			math.Abs(total-p.Total) > totalTolerance {
			violations++
			j.logger.Warn("consistency audit: stored totals diverge from items",
				zap.String("proforma_id", p.ID.String()),
				zap.Int("proforma_number", p.ProformaNumber),
				zap.Float64("stored_subtotal", p.Subtotal),
				zap.Float64("computed_subtotal", subtotal),
				zap.Float64("stored_total", p.Total),
				zap.Float64("computed_total", total),
			)
		}

		// Stored line totals must match the pricing of their inputs
		for _, item := range p.Items {
			expected := pricing.PriceLine(item.UnitCost, item.PercentageGain, item.Quantity)
			if math.Abs(expected.LineTotal-item.LineTotal) > totalTolerance {
				// Cloned items legitimately keep historical line totals, so
				// this is informational only
				j.logger.Debug("consistency audit: line total differs from current pricing",
					zap.String("proforma_id", p.ID.String()),
					zap.String("item_id", item.ID.String()),
					zap.Float64("stored", item.LineTotal),
					zap.Float64("computed", expected.LineTotal),
				)
			}
		}

		// No owner may hold the same number twice
		if seen[p.UserID] == nil {
			seen[p.UserID] = make(map[int]bool)
		}
		if seen[p.UserID][p.ProformaNumber] {
			violations++
			j.logger.Error("consistency audit: duplicate proforma number for owner",
				zap.String("user_id", p.UserID),
				zap.Int("proforma_number", p.ProformaNumber),
			)
		}
		seen[p.UserID][p.ProformaNumber] = true
	}

	repaired := j.auditSequences(ctx, proformas)

	j.logger.Info("consistency audit finished",
		zap.Int("proformas", len(proformas)),
		zap.Int("violations", violations),
		zap.Int("repaired_sequences", repaired),
		zap.Duration("duration", time.Since(start)),
	)
}

// auditSequences compares each owner's counter against their highest issued
// number and raises lagging counters. Returns how many were repaired.
func (j *ConsistencyAuditJob) auditSequences(ctx context.Context, proformas []domain.Proforma) int {
	maxIssued := make(map[string]int)
	for i := range proformas {
		p := &proformas[i]
		if p.ProformaNumber > maxIssued[p.UserID] {
			maxIssued[p.UserID] = p.ProformaNumber
		}
	}

	counters := make(map[string]int)
	sequences, err := j.sequenceRepo.ListAll(ctx)
	if err != nil {
		j.logger.Error("consistency audit: failed to load sequences", zap.Error(err))
		return 0
	}
	for _, seq := range sequences {
		counters[seq.UserID] = seq.LastNumber
	}

	repaired := 0
	for userID, max := range maxIssued {
		if counters[userID] >= max {
			continue
		}
		j.logger.Warn("consistency audit: sequence counter behind issued numbers",
			zap.String("user_id", userID),
			zap.Int("counter", counters[userID]),
			zap.Int("highest_issued", max),
		)
		if err := j.sequenceRepo.Bump(ctx, userID, max); err != nil {
			j.logger.Error("consistency audit: failed to raise sequence counter",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		repaired++
	}
	return repaired
}
