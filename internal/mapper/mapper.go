package mapper

import (
	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/internal/pricing"
	"github.com/facturaec/proforma-api/internal/words"
)

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:        client.ID,
		FirstName: client.FirstName,
		LastName:  client.LastName,
		FullName:  client.FullName(),
		CedulaRUC: client.CedulaRUC,
		Email:     client.Email,
		Phone:     client.Phone,
		Address:   client.Address,
		CreatedAt: client.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: client.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToItemDTO converts Item to ItemDTO. The unit price is derived from the
// stored cost and gain; the stored line total is reported as-is.
func ToItemDTO(item *domain.Item) domain.ItemDTO {
	priced := pricing.PriceLine(item.UnitCost, item.PercentageGain, item.Quantity)
	return domain.ItemDTO{
		ID:             item.ID,
		Description:    item.Description,
		Unit:           item.Unit,
		Quantity:       item.Quantity,
		UnitCost:       item.UnitCost,
		PercentageGain: item.PercentageGain,
		UnitPrice:      priced.UnitPrice,
		LineTotal:      item.LineTotal,
	}
}

// ToProformaDTO converts Proforma to ProformaDTO including items, client
// name and the total spelled out in words
func ToProformaDTO(proforma *domain.Proforma) domain.ProformaDTO {
	dto := domain.ProformaDTO{
		ID:             proforma.ID,
		ProformaNumber: proforma.ProformaNumber,
		ClientID:       proforma.ClientID,
		Status:         proforma.Status,
		Date:           proforma.Date.Format("2006-01-02"),
		DeliveryDays:   proforma.DeliveryDays,
		PaymentMethods: proforma.PaymentMethods,
		Observations:   proforma.Observations,
		IVAPercentage:  proforma.IVAPercentage,
		Subtotal:       proforma.Subtotal,
		IVAAmount:      proforma.IVAAmount,
		Total:          proforma.Total,
		TotalInWords:   words.AmountInWords(proforma.Total),
		CreatedAt:      proforma.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      proforma.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}

	if proforma.Client != nil {
		dto.ClientName = proforma.Client.FullName()
	}

	if len(proforma.Items) > 0 {
		dto.Items = make([]domain.ItemDTO, len(proforma.Items))
		for i := range proforma.Items {
			dto.Items[i] = ToItemDTO(&proforma.Items[i])
		}
	}

	return dto
}

// ToUserDTO converts User to a response shape safe for the /auth/me endpoint
func ToUserDTO(user *domain.User) map[string]interface{} {
	return map[string]interface{}{
		"id":          user.ID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"roles":       []string(user.Roles),
		"isActive":    user.IsActive,
	}
}
