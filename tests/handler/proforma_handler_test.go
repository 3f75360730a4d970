package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/internal/http/handler"
	"github.com/facturaec/proforma-api/internal/pdf"
	"github.com/facturaec/proforma-api/internal/repository"
	"github.com/facturaec/proforma-api/internal/service"
	"github.com/facturaec/proforma-api/internal/storage"
	"github.com/facturaec/proforma-api/tests/testutil"
)

func createProformaHandler(t *testing.T, db *gorm.DB) *handler.ProformaHandler {
	logger := testutil.NewTestLogger()
	proformaRepo := repository.NewProformaRepository(db)
	itemRepo := repository.NewItemRepository(db)
	clientRepo := repository.NewClientRepository(db)
	sequenceService := service.NewSequenceService(repository.NewSequenceRepository(db), logger)
	proformaService := service.NewProformaService(proformaRepo, itemRepo, clientRepo, sequenceService, logger)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	pdfService := service.NewProformaPDFService(proformaRepo, clientRepo, pdf.NewGenerator("Proforma"), store, logger)

	return handler.NewProformaHandler(proformaService, pdfService, logger)
}

func proformaCreateBody(t *testing.T, clientID uuid.UUID) []byte {
	body, err := json.Marshal(domain.CreateProformaRequest{
		ClientID: clientID,
		Date:     "2026-08-15",
		Items: []domain.ItemRequest{
			{Description: "Soporte metálico", Unit: "u", Quantity: 2, UnitCost: 10, PercentageGain: 50},
		},
	})
	require.NoError(t, err)
	return body
}

func TestProformaHandler_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	req := httptest.NewRequest(http.MethodPost, "/proformas", bytes.NewReader(proformaCreateBody(t, client.ID))).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var dto domain.ProformaDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.Equal(t, 1, dto.ProformaNumber)
	assert.Equal(t, domain.ProformaStatusDraft, dto.Status)
	assert.InDelta(t, 34.5, dto.Total, 0.001)
	assert.Equal(t, "/api/v1/proformas/"+dto.ID.String(), rr.Header().Get("Location"))
}

func TestProformaHandler_Create_UnknownClient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")

	req := httptest.NewRequest(http.MethodPost, "/proformas", bytes.NewReader(proformaCreateBody(t, uuid.New()))).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProformaHandler_Create_InvalidDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	body, _ := json.Marshal(domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "15/08/2026",
		Items: []domain.ItemRequest{
			{Description: "Soporte", Unit: "u", Quantity: 1, UnitCost: 10},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/proformas", bytes.NewReader(body)).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProformaHandler_Create_NoItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	body, _ := json.Marshal(domain.CreateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-15",
	})
	req := httptest.NewRequest(http.MethodPost, "/proformas", bytes.NewReader(body)).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	// Rejected by request validation before reaching the service
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "items")
}

func TestProformaHandler_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")
	proforma := testutil.CreateTestProforma(t, db, "user-1", client.ID, 1, domain.ProformaStatusDraft)

	req := requestWithID(httptest.NewRequest(http.MethodGet, "/proformas/"+proforma.ID.String(), nil), ctx, proforma.ID.String())
	rr := httptest.NewRecorder()
	h.GetByID(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var dto domain.ProformaDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.Equal(t, proforma.ID, dto.ID)
	assert.Equal(t, "Maria Paredes", dto.ClientName)
	assert.Len(t, dto.Items, 1)
}

func TestProformaHandler_GetByID_OtherOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")
	proforma := testutil.CreateTestProforma(t, db, "user-1", client.ID, 1, domain.ProformaStatusDraft)

	ctx := testutil.ContextForUser("user-2")
	req := requestWithID(httptest.NewRequest(http.MethodGet, "/proformas/"+proforma.ID.String(), nil), ctx, proforma.ID.String())
	rr := httptest.NewRecorder()
	h.GetByID(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestProformaHandler_List_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")

	req := httptest.NewRequest(http.MethodGet, "/proformas?status=archived", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProformaHandler_List_StatusFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")
	testutil.CreateTestProforma(t, db, "user-1", client.ID, 1, domain.ProformaStatusDraft)
	testutil.CreateTestProforma(t, db, "user-1", client.ID, 2, domain.ProformaStatusFinalized)

	req := httptest.NewRequest(http.MethodGet, "/proformas?status=finalized", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result domain.PaginatedResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, int64(1), result.Total)
}

func TestProformaHandler_Update_Finalized(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")
	proforma := testutil.CreateTestProforma(t, db, "user-1", client.ID, 1, domain.ProformaStatusFinalized)

	body, _ := json.Marshal(domain.UpdateProformaRequest{
		ClientID: client.ID,
		Date:     "2026-08-20",
		Items: []domain.ItemRequest{
			{Description: "Soporte", Unit: "u", Quantity: 1, UnitCost: 10},
		},
	})
	req := requestWithID(httptest.NewRequest(http.MethodPut, "/proformas/"+proforma.ID.String(), bytes.NewReader(body)), ctx, proforma.ID.String())
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrorTypeStateGuard, apiErr.Type)
}

func TestProformaHandler_Delete_Finalized(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")
	proforma := testutil.CreateTestProforma(t, db, "user-1", client.ID, 1, domain.ProformaStatusFinalized)

	req := requestWithID(httptest.NewRequest(http.MethodDelete, "/proformas/"+proforma.ID.String(), nil), ctx, proforma.ID.String())
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestProformaHandler_Delete_Draft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")
	proforma := testutil.CreateTestProforma(t, db, "user-1", client.ID, 1, domain.ProformaStatusDraft)

	req := requestWithID(httptest.NewRequest(http.MethodDelete, "/proformas/"+proforma.ID.String(), nil), ctx, proforma.ID.String())
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestProformaHandler_Finalize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")
	proforma := testutil.CreateTestProforma(t, db, "user-1", client.ID, 1, domain.ProformaStatusDraft)

	req := requestWithID(httptest.NewRequest(http.MethodPost, "/proformas/"+proforma.ID.String()+"/finalize", nil), ctx, proforma.ID.String())
	rr := httptest.NewRecorder()
	h.Finalize(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var dto domain.ProformaDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.Equal(t, domain.ProformaStatusFinalized, dto.Status)
}

func TestProformaHandler_Clone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	createReq := httptest.NewRequest(http.MethodPost, "/proformas", bytes.NewReader(proformaCreateBody(t, client.ID))).WithContext(ctx)
	createRR := httptest.NewRecorder()
	h.Create(createRR, createReq)
	require.Equal(t, http.StatusCreated, createRR.Code)

	var source domain.ProformaDTO
	require.NoError(t, json.Unmarshal(createRR.Body.Bytes(), &source))

	req := requestWithID(httptest.NewRequest(http.MethodPost, "/proformas/"+source.ID.String()+"/clone", nil), ctx, source.ID.String())
	rr := httptest.NewRecorder()
	h.Clone(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var dto domain.ProformaDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
	assert.NotEqual(t, source.ID, dto.ID)
	assert.Equal(t, 2, dto.ProformaNumber)
	assert.Equal(t, domain.ProformaStatusDraft, dto.Status)
	assert.Equal(t, "/api/v1/proformas/"+dto.ID.String(), rr.Header().Get("Location"))
}

func TestProformaHandler_NextNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")

	req := httptest.NewRequest(http.MethodGet, "/proformas/next-number", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.NextNumber(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var result domain.NextNumberResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 1, result.NextNumber)

	// Creating a proforma consumes the previewed number
	createReq := httptest.NewRequest(http.MethodPost, "/proformas", bytes.NewReader(proformaCreateBody(t, client.ID))).WithContext(ctx)
	createRR := httptest.NewRecorder()
	h.Create(createRR, createReq)
	require.Equal(t, http.StatusCreated, createRR.Code)

	rr = httptest.NewRecorder()
	h.NextNumber(rr, httptest.NewRequest(http.MethodGet, "/proformas/next-number", nil).WithContext(ctx))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 2, result.NextNumber)
}

func TestProformaHandler_ExportPDF(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	client := testutil.CreateTestClient(t, db, "user-1", "1712345678")
	proforma := testutil.CreateTestProforma(t, db, "user-1", client.ID, 7, domain.ProformaStatusDraft)

	req := requestWithID(httptest.NewRequest(http.MethodGet, "/proformas/"+proforma.ID.String()+"/pdf", nil), ctx, proforma.ID.String())
	rr := httptest.NewRecorder()
	h.ExportPDF(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="proforma-7.pdf"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", rr.Body.String()[:4])
}

func TestProformaHandler_ExportPDF_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createProformaHandler(t, db)
	ctx := testutil.ContextForUser("user-1")
	id := uuid.NewString()

	req := requestWithID(httptest.NewRequest(http.MethodGet, "/proformas/"+id+"/pdf", nil), ctx, id)
	rr := httptest.NewRecorder()
	h.ExportPDF(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
