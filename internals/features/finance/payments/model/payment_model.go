// file: internals/features/finance/payments/model/payment_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MethodCash   = "CASH"
	MethodMpesa  = "MPESA"
	MethodBank   = "BANK"
	MethodCheque = "CHEQUE"
	MethodOther  = "OTHER"
)

// NormalizeMethod uppercases and validates a payment method. Unknown values
// are rejected rather than coerced to OTHER so typos surface at the edge.
func NormalizeMethod(raw string) (string, bool) {
	m := strings.ToUpper(strings.TrimSpace(raw))
	switch m {
	case MethodCash, MethodMpesa, MethodBank, MethodCheque, MethodOther:
		return m, true
	}
	return "", false
}

// Payment is an append-only ledger row. A posted payment is never edited or
// deleted; the only mutation is the one-shot reversal stamp.
type Payment struct {
	PaymentID       uuid.UUID `gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_id"`
	PaymentSchoolID uuid.UUID `gorm:"column:payment_school_id;type:uuid;not null;index:ix_payments_school;uniqueIndex:uq_payments_client_txn,priority:1;uniqueIndex:uq_payments_receipt,priority:1" json:"payment_school_id"`

	PaymentInvoiceID uuid.UUID `gorm:"column:payment_invoice_id;type:uuid;not null;index:ix_payments_invoice" json:"payment_invoice_id"`

	PaymentAmountKES int64   `gorm:"column:payment_amount_kes;not null" json:"payment_amount_kes"`
	PaymentMethod    string  `gorm:"column:payment_method;type:varchar(10);not null" json:"payment_method"`
	PaymentReference *string `gorm:"column:payment_reference;type:varchar(80)" json:"payment_reference,omitempty"`

	// Optional client-chosen idempotency key. NULLs never collide, so only
	// supplied keys are deduplicated; the unique index on (school, key) is
	// what makes a retried POST return the original row instead of a double
	// posting.
	PaymentClientTxnID *string `gorm:"column:payment_client_txn_id;type:varchar(64);uniqueIndex:uq_payments_client_txn,priority:2" json:"payment_client_txn_id,omitempty"`

	// Receipt number, sequential per school, never reused even after reversal.
	PaymentReceiptSeq int64  `gorm:"column:payment_receipt_seq;not null;uniqueIndex:uq_payments_receipt,priority:2" json:"payment_receipt_seq"`
	PaymentReceiptNo  string `gorm:"column:payment_receipt_no;type:varchar(30);not null" json:"payment_receipt_no"`

	PaymentReceivedByUser *uuid.UUID `gorm:"column:payment_received_by_user;type:uuid" json:"payment_received_by_user,omitempty"`
	PaymentReceivedAt     time.Time  `gorm:"column:payment_received_at;not null" json:"payment_received_at"`

	// One-way transition: is_reversed flips to true exactly once, together
	// with the stamp fields below.
	PaymentIsReversed     bool       `gorm:"column:payment_is_reversed;not null;default:false" json:"payment_is_reversed"`
	PaymentReversedAt     *time.Time `gorm:"column:payment_reversed_at" json:"payment_reversed_at,omitempty"`
	PaymentReversalReason *string    `gorm:"column:payment_reversal_reason;type:text" json:"payment_reversal_reason,omitempty"`
	PaymentReversedByUser *uuid.UUID `gorm:"column:payment_reversed_by_user;type:uuid" json:"payment_reversed_by_user,omitempty"`

	PaymentMeta datatypes.JSONMap `gorm:"column:payment_meta;type:jsonb" json:"payment_meta,omitempty"`

	PaymentCreatedAt time.Time      `gorm:"column:payment_created_at;autoCreateTime" json:"payment_created_at"`
	PaymentUpdatedAt time.Time      `gorm:"column:payment_updated_at;autoUpdateTime" json:"payment_updated_at"`
	PaymentDeletedAt gorm.DeletedAt `gorm:"column:payment_deleted_at;index" json:"-"`
}

func (Payment) TableName() string { return "payments" }
