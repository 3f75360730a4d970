package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the caller did not provide one
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Client represents a billing client owned by a single user.
// Clients are soft-deleted so historical proformas keep a valid reference.
type Client struct {
	BaseModel
	UserID    string         `gorm:"type:varchar(100);not null;index;column:user_id"`
	FirstName string         `gorm:"type:varchar(100);not null;column:first_name"`
	LastName  string         `gorm:"type:varchar(100);not null;column:last_name"`
	CedulaRUC string         `gorm:"type:varchar(13);not null;column:cedula_ruc;index"`
	Email     string         `gorm:"type:varchar(255)"`
	Phone     string         `gorm:"type:varchar(50)"`
	Address   string         `gorm:"type:varchar(500)"`
	DeletedAt gorm.DeletedAt `gorm:"index;column:deleted_at"`
	Proformas []Proforma     `gorm:"foreignKey:ClientID"`
}

// FullName returns the client's full name
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ProformaStatus represents the lifecycle state of a proforma
type ProformaStatus string

const (
	ProformaStatusDraft     ProformaStatus = "draft"
	ProformaStatusFinalized ProformaStatus = "finalized"
)

// IsValid checks if the ProformaStatus is a valid enum value
func (ps ProformaStatus) IsValid() bool {
	switch ps {
	case ProformaStatusDraft, ProformaStatusFinalized:
		return true
	}
	return false
}

// DefaultIVAPercentage is the tax rate applied when none is supplied
const DefaultIVAPercentage = 15.0

// Proforma represents a quotation document with computed monetary totals.
// Subtotal, IVAAmount and Total are computed and stored at write time; they
// must always equal the aggregation of the items at the moment of last write.
type Proforma struct {
	BaseModel
	UserID         string         `gorm:"type:varchar(100);not null;column:user_id;uniqueIndex:idx_proformas_user_number"`
	ProformaNumber int            `gorm:"not null;column:proforma_number;uniqueIndex:idx_proformas_user_number"`
	ClientID       uuid.UUID      `gorm:"type:uuid;not null;index;column:client_id"`
	Client         *Client        `gorm:"foreignKey:ClientID"`
	Status         ProformaStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	Date           time.Time      `gorm:"type:date;not null"`
	DeliveryDays   *int           `gorm:"column:delivery_days"`
	PaymentMethods string         `gorm:"type:varchar(500);column:payment_methods"`
	Observations   string         `gorm:"type:text"`
	IVAPercentage  float64        `gorm:"type:decimal(5,2);not null;default:15;column:iva_percentage"`
	Subtotal       float64        `gorm:"type:decimal(15,2);not null;default:0"`
	IVAAmount      float64        `gorm:"type:decimal(15,2);not null;default:0;column:iva_amount"`
	Total          float64        `gorm:"type:decimal(15,2);not null;default:0"`
	Items          []Item         `gorm:"foreignKey:ProformaID;constraint:OnDelete:CASCADE"`
}

// IsEditable reports whether the proforma still accepts mutations
func (p *Proforma) IsEditable() bool {
	return p.Status == ProformaStatusDraft
}

// Item represents a priced line within a proforma. Line totals are computed
// at write time and replaced wholesale on every update of the parent.
type Item struct {
	BaseModel
	ProformaID     uuid.UUID `gorm:"type:uuid;not null;index;column:proforma_id"`
	Proforma       *Proforma `gorm:"foreignKey:ProformaID"`
	Description    string    `gorm:"type:varchar(500);not null"`
	Unit           string    `gorm:"type:varchar(50);not null"`
	Quantity       float64   `gorm:"type:decimal(10,2);not null"`
	UnitCost       float64   `gorm:"type:decimal(15,2);not null;column:unit_cost"`
	PercentageGain float64   `gorm:"type:decimal(5,2);not null;default:0;column:percentage_gain"`
	LineTotal      float64   `gorm:"type:decimal(15,2);not null;column:line_total"`
	DisplayOrder   int       `gorm:"not null;default:0;column:display_order"`
}

// ProformaSequence holds the highest proforma number issued per owner.
// Mutated only through the sequence repository's atomic increment; a missing
// row is equivalent to last_number = 0.
type ProformaSequence struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     string    `gorm:"type:varchar(100);not null;uniqueIndex;column:user_id"`
	LastNumber int       `gorm:"not null;default:0;column:last_number"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name to match the migration
func (ProformaSequence) TableName() string {
	return "proforma_sequences"
}

// BeforeCreate assigns an ID when the caller did not provide one
func (s *ProformaSequence) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// UserRoleType represents a role a user can have
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "admin"
	RoleUser       UserRoleType = "user"
	RoleAPIService UserRoleType = "api_service"
)

// User represents an authenticated account owning clients and proformas
type User struct {
	ID          string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:name" json:"displayName"`
	Roles       pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}
