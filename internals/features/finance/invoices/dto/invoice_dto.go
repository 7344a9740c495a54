// file: internals/features/finance/invoices/dto/invoice_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
)

// GenerateInvoiceRequest bills one student from one plan. Every reference is
// required; the plan must target the requested class, year and term.
type GenerateInvoiceRequest struct {
	StudentID    uuid.UUID  `json:"student_id" validate:"required"`
	ClassID      uuid.UUID  `json:"class_id" validate:"required"`
	FeePlanID    uuid.UUID  `json:"fee_plan_id" validate:"required"`
	AcademicYear string     `json:"academic_year" validate:"required,min=4,max=9"`
	Term         int        `json:"term" validate:"required,min=1,max=3"`
	DueDate      *time.Time `json:"due_date"`
}

func (r *GenerateInvoiceRequest) Normalize() {
	r.AcademicYear = strings.TrimSpace(r.AcademicYear)
}

// GenerateBatchRequest bills a whole class roster in one run; students who
// already hold an invoice for the (year, term) are skipped, not duplicated.
type GenerateBatchRequest struct {
	ClassID      uuid.UUID  `json:"class_id" validate:"required"`
	AcademicYear string     `json:"academic_year" validate:"required,min=4,max=9"`
	Term         int        `json:"term" validate:"required,min=1,max=3"`
	DueDate      *time.Time `json:"due_date"`
}

func (r *GenerateBatchRequest) Normalize() {
	r.AcademicYear = strings.TrimSpace(r.AcademicYear)
}

type VoidInvoiceRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type InvoiceLineResponse struct {
	InvoiceLineID uuid.UUID `json:"invoice_line_id"`
	FeeItemID     uuid.UUID `json:"fee_item_id"`
	Name          string    `json:"name"`
	AmountKES     int64     `json:"amount_kes"`
}

type InvoiceResponse struct {
	InvoiceID    uuid.UUID              `json:"invoice_id"`
	InvoiceNo    string                 `json:"invoice_no"`
	StudentID    uuid.UUID              `json:"student_id"`
	ClassID      uuid.UUID              `json:"class_id"`
	PlanID       uuid.UUID              `json:"plan_id"`
	AcademicYear string                 `json:"academic_year"`
	Term         int                    `json:"term"`
	TotalKES     int64                  `json:"total_kes"`
	PaidKES      int64                  `json:"paid_kes"`
	BalanceKES   int64                  `json:"balance_kes"`
	Status       invModel.InvoiceStatus `json:"status"`
	DueDate      *time.Time             `json:"due_date,omitempty"`
	VoidedAt     *time.Time             `json:"voided_at,omitempty"`
	VoidReason   *string                `json:"void_reason,omitempty"`
	Lines        []InvoiceLineResponse  `json:"lines,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

func NewInvoiceResponse(m *invModel.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		InvoiceID:    m.InvoiceID,
		InvoiceNo:    m.InvoiceNo,
		StudentID:    m.InvoiceStudentID,
		ClassID:      m.InvoiceClassID,
		PlanID:       m.InvoicePlanID,
		AcademicYear: m.InvoiceAcademicYear,
		Term:         m.InvoiceTerm,
		TotalKES:     m.InvoiceTotalKES,
		PaidKES:      m.InvoicePaidKES,
		BalanceKES:   m.InvoiceBalanceKES,
		Status:       m.InvoiceStatus,
		DueDate:      m.InvoiceDueDate,
		VoidedAt:     m.InvoiceVoidedAt,
		VoidReason:   m.InvoiceVoidReason,
		CreatedAt:    m.InvoiceCreatedAt,
	}
	for i := range m.InvoiceLines {
		l := &m.InvoiceLines[i]
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			InvoiceLineID: l.InvoiceLineID,
			FeeItemID:     l.InvoiceLineFeeItemID,
			Name:          l.InvoiceLineName,
			AmountKES:     l.InvoiceLineAmountKES,
		})
	}
	return resp
}
