package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/facturaec/proforma-api/internal/domain"
)

// SequenceRepository handles the per-owner proforma number sequences.
// Numbers start at 1 per owner and never repeat; gaps may appear when a
// create fails after allocation.
type SequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// AllocateNext atomically increments and returns the owner's next number.
// The allocation is a single upsert: the first caller inserts the row at 1,
// every later caller's insert hits the user_id unique constraint and
// increments in place instead. Racing first-time callers both resolve inside
// the one statement, so no insert failure ever aborts the transaction; the
// loser blocks on the row lock and reads its own incremented value.
func (r *SequenceRepository) AllocateNext(ctx context.Context, userID string) (int, error) {
	var next int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq := domain.ProformaSequence{
			UserID:     userID,
			LastNumber: 1,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_number": gorm.Expr("proforma_sequences.last_number + 1"),
				"updated_at":  time.Now().UTC(),
			}),
		}).Create(&seq)
		if res.Error != nil {
			return fmt.Errorf("failed to allocate sequence number: %w", res.Error)
		}

		var row domain.ProformaSequence
		if err := tx.Where("user_id = ?", userID).First(&row).Error; err != nil {
			return fmt.Errorf("failed to read sequence: %w", err)
		}
		next = row.LastNumber
		return nil
	})

	if err != nil {
		return 0, err
	}

	return next, nil
}

// Peek returns the number the next allocation would yield without claiming it.
// The value is advisory: a concurrent create can take it first.
func (r *SequenceRepository) Peek(ctx context.Context, userID string) (int, error) {
	var seq domain.ProformaSequence
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 1, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", result.Error)
	}

	return seq.LastNumber + 1, nil
}

// Current returns the last allocated number, 0 when nothing was issued yet
func (r *SequenceRepository) Current(ctx context.Context, userID string) (int, error) {
	var seq domain.ProformaSequence
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", result.Error)
	}

	return seq.LastNumber, nil
}

// Bump raises the sequence to at least value. Used by data imports so the
// allocator never re-issues a number that already exists.
func (r *SequenceRepository) Bump(ctx context.Context, userID string, value int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.ProformaSequence{}).
			Where("user_id = ? AND last_number < ?", userID, value).
			Updates(map[string]interface{}{
				"last_number": value,
				"updated_at":  time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to bump sequence: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var seq domain.ProformaSequence
		err := tx.Where("user_id = ?", userID).First(&seq).Error
		if err == gorm.ErrRecordNotFound {
			seq = domain.ProformaSequence{
				UserID:     userID,
				LastNumber: value,
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create sequence: %w", err)
			}
			return nil
		}
		return err
	})
}

// ListAll returns every sequence row (admin/debugging)
func (r *SequenceRepository) ListAll(ctx context.Context) ([]domain.ProformaSequence, error) {
	var sequences []domain.ProformaSequence
	err := r.db.WithContext(ctx).
		Order("user_id ASC").
		Find(&sequences).Error
	return sequences, err
}
