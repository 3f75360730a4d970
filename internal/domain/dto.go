package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses

type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	FullName  string    `json:"fullName"`
	CedulaRUC string    `json:"cedulaRuc"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type ItemDTO struct {
	ID             uuid.UUID `json:"id"`
	Description    string    `json:"description"`
	Unit           string    `json:"unit"`
	Quantity       float64   `json:"quantity"`
	UnitCost       float64   `json:"unitCost"`
	PercentageGain float64   `json:"percentageGain"`
	UnitPrice      float64   `json:"unitPrice"`
	LineTotal      float64   `json:"lineTotal"`
}

type ProformaDTO struct {
	ID             uuid.UUID      `json:"id"`
	ProformaNumber int            `json:"proformaNumber"`
	ClientID       uuid.UUID      `json:"clientId"`
	ClientName     string         `json:"clientName,omitempty"`
	Status         ProformaStatus `json:"status"`
	Date           string         `json:"date"` // ISO 8601 date
	DeliveryDays   *int           `json:"deliveryDays,omitempty"`
	PaymentMethods string         `json:"paymentMethods,omitempty"`
	Observations   string         `json:"observations,omitempty"`
	IVAPercentage  float64        `json:"ivaPercentage"`
	Subtotal       float64        `json:"subtotal"`
	IVAAmount      float64        `json:"ivaAmount"`
	Total          float64        `json:"total"`
	TotalInWords   string         `json:"totalInWords,omitempty"`
	Items          []ItemDTO      `json:"items,omitempty"`
	CreatedAt      string         `json:"createdAt"` // ISO 8601
	UpdatedAt      string         `json:"updatedAt"` // ISO 8601
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps a page of results with pagination metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// NextNumberResponse carries the advisory preview of the next proforma number.
// The value is racy by design; the authoritative number is only fixed when a
// proforma is actually created.
type NextNumberResponse struct {
	NextNumber int `json:"nextNumber"`
}

// DashboardStatsDTO carries the headline counts for the dashboard cards
type DashboardStatsDTO struct {
	TotalClients       int `json:"totalClients"`
	TotalProformas     int `json:"totalProformas"`
	ProformasThisMonth int `json:"proformasThisMonth"`
}

// Request DTOs

type CreateClientRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	CedulaRUC string `json:"cedulaRuc" validate:"required,cedula_ruc"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Address   string `json:"address" validate:"omitempty,max=500"`
}

type UpdateClientRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	CedulaRUC string `json:"cedulaRuc" validate:"required,cedula_ruc"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Address   string `json:"address" validate:"omitempty,max=500"`
}

type ItemRequest struct {
	Description    string  `json:"description" validate:"required,max=500"`
	Unit           string  `json:"unit" validate:"required,max=50"`
	Quantity       float64 `json:"quantity" validate:"required,gt=0"`
	UnitCost       float64 `json:"unitCost" validate:"gte=0"`
	PercentageGain float64 `json:"percentageGain" validate:"gte=0"`
}

type CreateProformaRequest struct {
	ClientID       uuid.UUID     `json:"clientId" validate:"required"`
	Date           string        `json:"date" validate:"required"`
	DeliveryDays   *int          `json:"deliveryDays" validate:"omitempty,gte=0"`
	PaymentMethods string        `json:"paymentMethods" validate:"omitempty,max=500"`
	Observations   string        `json:"observations"`
	IVAPercentage  *float64      `json:"ivaPercentage" validate:"omitempty,gte=0"`
	Items          []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateProformaRequest struct {
	ClientID       uuid.UUID     `json:"clientId" validate:"required"`
	Date           string        `json:"date" validate:"required"`
	DeliveryDays   *int          `json:"deliveryDays" validate:"omitempty,gte=0"`
	PaymentMethods string        `json:"paymentMethods" validate:"omitempty,max=500"`
	Observations   string        `json:"observations"`
	IVAPercentage  *float64      `json:"ivaPercentage" validate:"omitempty,gte=0"`
	Items          []ItemRequest `json:"items" validate:"required,min=1,dive"`
}
