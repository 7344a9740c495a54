// file: internals/features/finance/invoices/model/invoice_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus is always derived from (total, paid) by the status engine,
// except VOID which is a lifecycle terminal set only by the void operation.
type InvoiceStatus string

const (
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
)

// ParseInvoiceStatus validates a status filter value.
func ParseInvoiceStatus(raw string) (InvoiceStatus, bool) {
	s := InvoiceStatus(raw)
	switch s {
	case InvoiceStatusIssued, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusVoid:
		return s, true
	}
	return "", false
}

// Invoice is one student's bill for one (year, term). Lines are snapshots
// taken from the plan at generation time; later catalog or plan edits never
// reach a generated invoice.
//
// paid, balance and status are denormalized for reporting but are written
// through the status engine's ApplyPaid gateway only (balance=0 on void is
// the one lifecycle exception).
type Invoice struct {
	InvoiceID       uuid.UUID `gorm:"column:invoice_id;type:uuid;default:gen_random_uuid();primaryKey" json:"invoice_id"`
	InvoiceSchoolID uuid.UUID `gorm:"column:invoice_school_id;type:uuid;not null;index:ix_invoices_school;uniqueIndex:uq_invoices_scope,priority:1;uniqueIndex:uq_invoices_no,priority:1" json:"invoice_school_id"`

	InvoiceStudentID    uuid.UUID `gorm:"column:invoice_student_id;type:uuid;not null;index:ix_invoices_student;uniqueIndex:uq_invoices_scope,priority:2" json:"invoice_student_id"`
	InvoiceClassID      uuid.UUID `gorm:"column:invoice_class_id;type:uuid;not null;index:ix_invoices_class" json:"invoice_class_id"`
	InvoicePlanID       uuid.UUID `gorm:"column:invoice_plan_id;type:uuid;not null" json:"invoice_plan_id"`
	InvoiceAcademicYear string    `gorm:"column:invoice_academic_year;type:varchar(9);not null;uniqueIndex:uq_invoices_scope,priority:3" json:"invoice_academic_year"`
	InvoiceTerm         int       `gorm:"column:invoice_term;not null;uniqueIndex:uq_invoices_scope,priority:4" json:"invoice_term"`

	// Human-facing number, sequential per school. The unique index is the
	// backstop for the MAX+1 allocation inside the generation transaction.
	InvoiceSeq int64  `gorm:"column:invoice_seq;not null;uniqueIndex:uq_invoices_no,priority:2" json:"invoice_seq"`
	InvoiceNo  string `gorm:"column:invoice_no;type:varchar(30);not null" json:"invoice_no"`

	InvoiceTotalKES   int64         `gorm:"column:invoice_total_kes;not null;default:0" json:"invoice_total_kes"`
	InvoicePaidKES    int64         `gorm:"column:invoice_paid_kes;not null;default:0" json:"invoice_paid_kes"`
	InvoiceBalanceKES int64         `gorm:"column:invoice_balance_kes;not null;default:0" json:"invoice_balance_kes"`
	InvoiceStatus     InvoiceStatus `gorm:"column:invoice_status;type:varchar(16);not null;default:'ISSUED';index:ix_invoices_status" json:"invoice_status"`

	InvoiceDueDate *time.Time `gorm:"column:invoice_due_date" json:"invoice_due_date,omitempty"`

	InvoiceVoidedAt     *time.Time `gorm:"column:invoice_voided_at" json:"invoice_voided_at,omitempty"`
	InvoiceVoidReason   *string    `gorm:"column:invoice_void_reason;type:text" json:"invoice_void_reason,omitempty"`
	InvoiceVoidedByUser *uuid.UUID `gorm:"column:invoice_voided_by_user;type:uuid" json:"invoice_voided_by_user,omitempty"`

	InvoiceCreatedAt time.Time      `gorm:"column:invoice_created_at;autoCreateTime" json:"invoice_created_at"`
	InvoiceUpdatedAt time.Time      `gorm:"column:invoice_updated_at;autoUpdateTime" json:"invoice_updated_at"`
	InvoiceDeletedAt gorm.DeletedAt `gorm:"column:invoice_deleted_at;index" json:"-"`

	InvoiceLines []InvoiceLine `gorm:"foreignKey:InvoiceLineInvoiceID;references:InvoiceID" json:"invoice_lines,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceLine snapshots one plan item: name and amount copied at generation.
type InvoiceLine struct {
	InvoiceLineID        uuid.UUID `gorm:"column:invoice_line_id;type:uuid;default:gen_random_uuid();primaryKey" json:"invoice_line_id"`
	InvoiceLineInvoiceID uuid.UUID `gorm:"column:invoice_line_invoice_id;type:uuid;not null;index:ix_invoice_lines_invoice" json:"invoice_line_invoice_id"`

	InvoiceLineFeeItemID uuid.UUID `gorm:"column:invoice_line_fee_item_id;type:uuid;not null" json:"invoice_line_fee_item_id"`
	InvoiceLineName      string    `gorm:"column:invoice_line_name;type:varchar(80);not null" json:"invoice_line_name"`
	InvoiceLineAmountKES int64     `gorm:"column:invoice_line_amount_kes;not null" json:"invoice_line_amount_kes"`

	InvoiceLineCreatedAt time.Time `gorm:"column:invoice_line_created_at;autoCreateTime" json:"invoice_line_created_at"`
}

func (InvoiceLine) TableName() string { return "invoice_lines" }
