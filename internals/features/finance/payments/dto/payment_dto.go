// file: internals/features/finance/payments/dto/payment_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	invDTO "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/dto"
	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
	payModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/model"
)

type PostPaymentRequest struct {
	InvoiceID   uuid.UUID `json:"invoice_id" validate:"required"`
	AmountKES   int64     `json:"amount_kes" validate:"required,gt=0"`
	Method      string    `json:"method" validate:"required"`
	Reference   *string   `json:"reference" validate:"omitempty,max=80"`
	ClientTxnID *string   `json:"client_txn_id" validate:"omitempty,min=8,max=64"`
}

func (r *PostPaymentRequest) Normalize() {
	r.Method = strings.TrimSpace(r.Method)
	if r.ClientTxnID != nil {
		k := strings.TrimSpace(*r.ClientTxnID)
		if k == "" {
			r.ClientTxnID = nil
		} else {
			r.ClientTxnID = &k
		}
	}
	if r.Reference != nil {
		ref := strings.TrimSpace(*r.Reference)
		if ref == "" {
			r.Reference = nil
		} else {
			r.Reference = &ref
		}
	}
}

type ReversePaymentRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type PaymentResponse struct {
	PaymentID      uuid.UUID  `json:"payment_id"`
	InvoiceID      uuid.UUID  `json:"invoice_id"`
	AmountKES      int64      `json:"amount_kes"`
	Method         string     `json:"method"`
	Reference      *string    `json:"reference,omitempty"`
	ClientTxnID    *string    `json:"client_txn_id,omitempty"`
	ReceiptNo      string     `json:"receipt_no"`
	ReceivedAt     time.Time  `json:"received_at"`
	IsReversed     bool       `json:"is_reversed"`
	ReversedAt     *time.Time `json:"reversed_at,omitempty"`
	ReversalReason *string    `json:"reversal_reason,omitempty"`
}

func NewPaymentResponse(p *payModel.Payment) *PaymentResponse {
	return &PaymentResponse{
		PaymentID:      p.PaymentID,
		InvoiceID:      p.PaymentInvoiceID,
		AmountKES:      p.PaymentAmountKES,
		Method:         p.PaymentMethod,
		Reference:      p.PaymentReference,
		ClientTxnID:    p.PaymentClientTxnID,
		ReceiptNo:      p.PaymentReceiptNo,
		ReceivedAt:     p.PaymentReceivedAt,
		IsReversed:     p.PaymentIsReversed,
		ReversedAt:     p.PaymentReversedAt,
		ReversalReason: p.PaymentReversalReason,
	}
}

// PostPaymentResponse is the posting contract: the payment, the invoice
// state after it, and whether the call was an idempotent replay.
type PostPaymentResponse struct {
	Payment    *PaymentResponse        `json:"payment"`
	Invoice    *invDTO.InvoiceResponse `json:"invoice"`
	Idempotent bool                    `json:"idempotent"`
}

func NewPostPaymentResponse(p *payModel.Payment, inv *invModel.Invoice, idempotent bool) *PostPaymentResponse {
	return &PostPaymentResponse{
		Payment:    NewPaymentResponse(p),
		Invoice:    invDTO.NewInvoiceResponse(inv),
		Idempotent: idempotent,
	}
}

// ReceiptResponse is the printable view: payment plus the invoice and
// student context resolved by the controller. Reversal state rides along so
// a reversed receipt can never print as a clean one.
type ReceiptResponse struct {
	ReceiptNo      string     `json:"receipt_no"`
	SchoolName     string     `json:"school_name"`
	StudentName    string     `json:"student_name"`
	AdmissionNo    *string    `json:"admission_no,omitempty"`
	InvoiceNo      string     `json:"invoice_no"`
	AcademicYear   string     `json:"academic_year"`
	Term           int        `json:"term"`
	AmountKES      int64      `json:"amount_kes"`
	Method         string     `json:"method"`
	Reference      *string    `json:"reference,omitempty"`
	ReceivedAt     time.Time  `json:"received_at"`
	IsReversed     bool       `json:"is_reversed"`
	ReversedAt     *time.Time `json:"reversed_at,omitempty"`
	ReversalReason *string    `json:"reversal_reason,omitempty"`
	BalanceKES     int64      `json:"balance_after_kes"`
}
