package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/internal/mapper"
	"github.com/facturaec/proforma-api/internal/pdf"
	"github.com/facturaec/proforma-api/internal/repository"
	"github.com/facturaec/proforma-api/internal/storage"
)

// ProformaPDFService renders proformas to PDF and archives finalized copies
type ProformaPDFService struct {
	proformaRepo *repository.ProformaRepository
	clientRepo   *repository.ClientRepository
	generator    *pdf.Generator
	store        storage.Storage
	logger       *zap.Logger
}

func NewProformaPDFService(
	proformaRepo *repository.ProformaRepository,
	clientRepo *repository.ClientRepository,
	generator *pdf.Generator,
	store storage.Storage,
	logger *zap.Logger,
) *ProformaPDFService {
	return &ProformaPDFService{
		proformaRepo: proformaRepo,
		clientRepo:   clientRepo,
		generator:    generator,
		store:        store,
		logger:       logger,
	}
}

// Export renders the proforma as a PDF and returns the bytes with a
// suggested filename. Finalized proformas are additionally archived to
// storage; an archive failure does not fail the export.
func (s *ProformaPDFService) Export(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	proforma, err := s.proformaRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrProformaNotFound
		}
		return nil, "", fmt.Errorf("failed to get proforma: %w", err)
	}

	dto := mapper.ToProformaDTO(proforma)

	var clientDTO *domain.ClientDTO
	if proforma.Client != nil {
		c := mapper.ToClientDTO(proforma.Client)
		clientDTO = &c
	} else {
		// The preload can miss when the association was loaded elsewhere;
		// fall back to a direct lookup that includes soft-deleted clients
		client, err := s.clientRepo.GetByIDIncludingDeleted(ctx, proforma.ClientID)
		if err == nil {
			c := mapper.ToClientDTO(client)
			clientDTO = &c
		}
	}

	data, err := s.generator.Render(&dto, clientDTO)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render proforma pdf: %w", err)
	}

	filename := fmt.Sprintf("proforma-%d.pdf", proforma.ProformaNumber)

	if proforma.Status == domain.ProformaStatusFinalized && s.store != nil {
		key := fmt.Sprintf("%s/%s", proforma.UserID, filename)
		if _, err := s.store.Put(ctx, key, "application/pdf", bytes.NewReader(data)); err != nil {
			s.logger.Warn("failed to archive finalized proforma pdf",
				zap.String("proforma_id", proforma.ID.String()),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	return data, filename, nil
}
