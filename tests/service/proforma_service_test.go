package service_test

import (
	"context"
	"testing"

	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/internal/repository"
	"github.com/facturaec/proforma-api/internal/service"
	"github.com/facturaec/proforma-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProformaService(t *testing.T) (*service.ProformaService, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	proformaRepo := repository.NewProformaRepository(db)
	itemRepo := repository.NewItemRepository(db)
	clientRepo := repository.NewClientRepository(db)
	sequenceService := service.NewSequenceService(repository.NewSequenceRepository(db), testutil.NewTestLogger())
	svc := service.NewProformaService(proformaRepo, itemRepo, clientRepo, sequenceService, testutil.NewTestLogger())
	return svc, db
}

func float64Ptr(v float64) *float64 { return &v }

func TestProformaCreate_ComputesTotals(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	dto, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items: []domain.ItemRequest{
			{
				Description:    "Puerta metálica",
				Unit:           "u",
				Quantity:       2,
				UnitCost:       10,
				PercentageGain: 50,
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, dto.ProformaNumber)
	assert.Equal(t, domain.ProformaStatusDraft, dto.Status)
	assert.Equal(t, "2026-08-15", dto.Date)

	// unit price = 10 * 1.5 = 15, line total = 30, IVA defaults to 15%
	assert.InDelta(t, 30.0, dto.Subtotal, 0.001)
	assert.InDelta(t, 4.5, dto.IVAAmount, 0.001)
	assert.InDelta(t, 34.5, dto.Total, 0.001)
	assert.Equal(t, "TREINTA Y CUATRO DÓLARES AMERICANOS CON 50/100 CENTAVOS", dto.TotalInWords)

	require.Len(t, dto.Items, 1)
	assert.InDelta(t, 15.0, dto.Items[0].UnitPrice, 0.001)
	assert.InDelta(t, 30.0, dto.Items[0].LineTotal, 0.001)
}

func TestProformaCreate_ExplicitIVAPercentage(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	dto, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID:      client.ID,
		Date:          "2026-08-15",
		IVAPercentage: float64Ptr(0),
		Items: []domain.ItemRequest{
			{Description: "Servicio exento", Unit: "u", Quantity: 1, UnitCost: 100, PercentageGain: 0},
		},
	})
	require.NoError(t, err)

	// Zero percent is a legitimate rate, not "use the default"
	assert.InDelta(t, 100.0, dto.Subtotal, 0.001)
	assert.InDelta(t, 0.0, dto.IVAAmount, 0.001)
	assert.InDelta(t, 100.0, dto.Total, 0.001)
}

func TestProformaCreate_UnknownClient(t *testing.T) {
	svc, _ := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")

	_, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: uuid.New(),
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrClientNotFound)
}

func TestProformaCreate_OtherOwnersClient(t *testing.T) {
	svc, db := setupProformaService(t)
	client := testutil.CreateTestClient(t, db, "user-2", "1712345678")

	// user-1 cannot issue against a client owned by user-2
	_, err := svc.Create(testutil.ContextForUser("user-1"), &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrClientNotFound)
}

func TestProformaCreate_InvalidDate(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	_, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "15/08/2026",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrInvalidDate)
}

func TestProformaCreate_NoItems(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	_, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{},
	})
	assert.ErrorIs(t, err, service.ErrNoItems)
}

func TestProformaCreate_NumbersAdvance(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	req := &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 5}},
	}

	first, err := svc.Create(ctx, req)
	require.NoError(t, err)
	second, err := svc.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, first.ProformaNumber)
	assert.Equal(t, 2, second.ProformaNumber)
}

func TestProformaUpdate_RecomputesTotals(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	created, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 2, UnitCost: 10, PercentageGain: 50}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &domain.UpdateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-20",
		Items: []domain.ItemRequest{
			{Description: "Ventana", Unit: "u", Quantity: 1, UnitCost: 40, PercentageGain: 25},
			{Description: "Instalación", Unit: "h", Quantity: 3, UnitCost: 10, PercentageGain: 0},
		},
	})
	require.NoError(t, err)

	// 40*1.25 + 3*10 = 80; IVA keeps the stored 15%
	assert.InDelta(t, 80.0, updated.Subtotal, 0.001)
	assert.InDelta(t, 12.0, updated.IVAAmount, 0.001)
	assert.InDelta(t, 92.0, updated.Total, 0.001)
	assert.Equal(t, "2026-08-20", updated.Date)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, "Ventana", updated.Items[0].Description)
	assert.Equal(t, "Instalación", updated.Items[1].Description)

	// The old item set is fully replaced, not appended to
	var count int64
	require.NoError(t, db.Model(&domain.Item{}).Where("proforma_id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestProformaUpdate_FinalizedRejected(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	created, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	})
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, &domain.UpdateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "y", Unit: "u", Quantity: 1, UnitCost: 10}},
	})
	assert.ErrorIs(t, err, service.ErrProformaFinalized)
}

func TestProformaDelete_DraftOnly(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	draft, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, draft.ID))
	_, err = svc.GetByID(ctx, draft.ID)
	assert.ErrorIs(t, err, service.ErrProformaNotFound)

	// Items go with the header
	var count int64
	require.NoError(t, db.Model(&domain.Item{}).Where("proforma_id = ?", draft.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	finalized, err := svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, finalized.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, finalized.ID), service.ErrProformaFinalized)
}

func TestProformaList_StatusFilter(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	req := &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	}

	first, err := svc.Create(ctx, req)
	require.NoError(t, err)
	_, err = svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, first.ID)
	require.NoError(t, err)

	page, err := svc.List(ctx, 1, 20, "", domain.ProformaStatusDraft, repository.SortConfig{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = svc.List(ctx, 1, 20, "", "", repository.SortConfig{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = svc.List(ctx, 1, 20, "", domain.ProformaStatus("bogus"), repository.SortConfig{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestProformaList_SearchByNumberAndClientName(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	req := &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)
	_, err = svc.Create(ctx, req)
	require.NoError(t, err)

	// Numeric search is an exact proforma number match
	page, err := svc.List(ctx, 1, 20, "2", "", repository.SortConfig{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	proformas := page.Data.([]domain.ProformaDTO)
	assert.Equal(t, 2, proformas[0].ProformaNumber)

	// Text search matches the client's full name
	page, err = svc.List(ctx, 1, 20, "maria", "", repository.SortConfig{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = svc.List(ctx, 1, 20, "nadie", "", repository.SortConfig{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
}

func TestProformaList_OrderedByNumberDescending(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	req := &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	}
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 1, 20, "", "", repository.SortConfig{})
	require.NoError(t, err)
	proformas := page.Data.([]domain.ProformaDTO)
	require.Len(t, proformas, 3)
	assert.Equal(t, 3, proformas[0].ProformaNumber)
	assert.Equal(t, 2, proformas[1].ProformaNumber)
	assert.Equal(t, 1, proformas[2].ProformaNumber)
}

func TestProformaList_SortedByTotalAscending(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	for _, cost := range []float64{30, 10, 20} {
		_, err := svc.Create(ctx, &domain.CreateProformaRequest{
			ClientID: client.ID,
			Date:     "2026-08-15",
			Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: cost}},
		})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 1, 20, "", "", repository.SortConfig{Field: "total", Order: repository.SortOrderAsc})
	require.NoError(t, err)
	proformas := page.Data.([]domain.ProformaDTO)
	require.Len(t, proformas, 3)
	assert.Less(t, proformas[0].Total, proformas[1].Total)
	assert.Less(t, proformas[1].Total, proformas[2].Total)
}

func TestPeekNextNumber(t *testing.T) {
	svc, db := setupProformaService(t)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	resp, err := svc.PeekNextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.NextNumber)

	_, err = svc.Create(ctx, &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	})
	require.NoError(t, err)

	resp, err = svc.PeekNextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.NextNumber)
}

func TestProformaCreate_RequiresAuthContext(t *testing.T) {
	svc, db := setupProformaService(t)
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	_, err := svc.Create(context.Background(), &domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
		Items:    []domain.ItemRequest{{Description: "x", Unit: "u", Quantity: 1, UnitCost: 10}},
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
