package service_test

import (
	"testing"
	"time"

	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	created, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	})
	require.NoError(t, err)

	dto, err := svc.Finalize(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProformaStatusFinalized, dto.Status)
}

func TestFinalize_Idempotent(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	created, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	})
	require.NoError(t, err)

	first, err := svc.Finalize(ctx, created.ID)
	require.NoError(t, err)

	// A retried finalize succeeds and reports the same state
	second, err := svc.Finalize(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProformaStatusFinalized, second.Status)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ProformaNumber, second.ProformaNumber)
}

func TestFinalize_NotFound(t *testing.T) {
	svc, _ := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")

	_, err := svc.Finalize(ctx, uuid.New())
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	days := 15
	source, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID:     client.ID,
		Date:         "2025-01-10",
		DeliveryDays: &days,
		Observations: "Entrega parcial",
		Items: []domain.ItemRequest{
			{Description: "Puerta metálica", Unit: "u", Quantity: 2, UnitCost: 10, PercentageGain: 50},
			{Description: "Instalación", Unit: "h", Quantity: 3, UnitCost: 10},
		},
	})
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, source.ID)
	require.NoError(t, err)

	clone, err := svc.Clone(ctx, source.ID)
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, clone.ID)
	assert.Equal(t, source.ProformaNumber+1, clone.ProformaNumber)
	assert.Equal(t, domain.ProformaStatusDraft, clone.Status, "clones always start as drafts")
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), clone.Date, "clone is dated today, not the source date")

	// Header fields and totals carry over verbatim
	require.NotNil(t, clone.DeliveryDays)
	assert.Equal(t, 15, *clone.DeliveryDays)
	assert.Equal(t, "Entrega parcial", clone.Observations)
	assert.InDelta(t, source.Subtotal, clone.Subtotal, 0.001)
	assert.InDelta(t, source.IVAAmount, clone.IVAAmount, 0.001)
	assert.InDelta(t, source.Total, clone.Total, 0.001)

	require.Len(t, clone.Items, 2)
	for i := range clone.Items {
		assert.NotEqual(t, source.Items[i].ID, clone.Items[i].ID)
		assert.Equal(t, source.Items[i].Description, clone.Items[i].Description)
		assert.InDelta(t, source.Items[i].LineTotal, clone.Items[i].LineTotal, 0.001)
	}
}

func TestClone_SourceUntouched(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	source, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	})
	require.NoError(t, err)

	_, err = svc.Clone(ctx, source.ID)
	require.NoError(t, err)

	reloaded, err := svc.GetByID(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, source.ProformaNumber, reloaded.ProformaNumber)
	assert.Len(t, reloaded.Items, 1)
}

func TestClone_PreservesHistoricalLineTotals(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	source, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 2, UnitCost: 10, PercentageGain: 50}},
	})
	require.NoError(t, err)

	// Tamper with the stored total to simulate a document priced under old rules
	require.NoError(t, db.Model(&domain.Item{}).
		Where("proforma_id = ?", source.ID).
		Update("line_total", 99.0).Error)

	clone, err := svc.Clone(ctx, source.ID)
	require.NoError(t, err)

	// The stored value is copied, never recomputed from cost and gain
	require.Len(t, clone.Items, 1)
	assert.InDelta(t, 99.0, clone.Items[0].LineTotal, 0.001)
}
