package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// TransactionRecord is one imported bank transaction. ExternalID is the
// upstream identifier and the idempotency key: re-importing the same id
// updates the sourced fields in place instead of creating a new row.
type TransactionRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"-"`
	AccountID   string          `gorm:"index" json:"account_id"`
	ExternalID  string          `gorm:"uniqueIndex" json:"external_id"`
	Date        time.Time       `gorm:"column:transaction_date" json:"date"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2)" json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Category    string          `gorm:"index" json:"category"`
	Type        string          `json:"type"`

	// User-owned fields. Set through the app, never by an import.
	CategoryOverride *string `json:"category_override,omitempty"`
	Notes            string  `json:"notes,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TypeForAmount returns the transaction type implied by the sign of amount.
func TypeForAmount(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return TypeIncome
	}
	return TypeExpense
}

// SourcedEqual reports whether all provider-sourced fields of t and o match.
// User-owned fields are ignored.
func (t *TransactionRecord) SourcedEqual(o *TransactionRecord) bool {
	return t.Date.Equal(o.Date) &&
		t.Amount.Equal(o.Amount) &&
		t.Currency == o.Currency &&
		t.Description == o.Description &&
		t.Category == o.Category &&
		t.Type == o.Type
}

// ApplySourced copies the provider-sourced fields of src onto t, leaving
// user-owned fields untouched.
func (t *TransactionRecord) ApplySourced(src *TransactionRecord) {
	t.Date = src.Date
	t.Amount = src.Amount
	t.Currency = src.Currency
	t.Description = src.Description
	t.Category = src.Category
	t.Type = src.Type
}
