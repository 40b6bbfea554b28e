package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice bills a client. Amounts are fixed at creation: Total = Subtotal + TaxAmount.
type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNumber string             `gorm:"size:50;uniqueIndex;not null" json:"invoiceNumber"`
	ClientID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"clientId"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"userId"`
	Subtotal      decimal.Decimal    `gorm:"type:numeric(14,4);not null" json:"subtotal"`
	TaxRate       decimal.Decimal    `gorm:"type:numeric(7,4);not null" json:"taxRate"`
	TaxAmount     decimal.Decimal    `gorm:"type:numeric(14,4);not null" json:"taxAmount"`
	Total         decimal.Decimal    `gorm:"type:numeric(14,4);not null" json:"total"`
	Status        enum.InvoiceStatus `gorm:"size:20;not null;index" json:"status"`
	Notes         *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time          `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	ValidatedAt   *time.Time         `json:"validatedAt"`

	Client *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	User   *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Lines  []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) IsDraft() bool {
	return i.Status == enum.InvoiceStatusDraft
}

// InvoiceLine is an immutable priced line. Exactly one of ProductID and ServiceID is set.
// Name and UnitPrice are snapshots taken when the invoice was created.
type InvoiceLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoiceId"`
	Position  int             `gorm:"not null" json:"position"`
	Type      enum.LineType   `gorm:"size:20;not null" json:"type"`
	ProductID *uuid.UUID      `gorm:"type:uuid;index" json:"productId,omitempty"`
	ServiceID *uuid.UUID      `gorm:"type:uuid;index" json:"serviceId,omitempty"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Duration  *int            `json:"duration"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unitPrice"`
	Total     decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"total"`
}

// BeforeCreate generates a UUID before creating a new line
func (l *InvoiceLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceLine model
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}
