// file: internals/features/finance/payments/service/payment_ledger_service.go
package service

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
	invService "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/service"
	payModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/model"
	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
)

// PostInput is one posting attempt. ClientTxnID, when supplied, is the
// caller's idempotency key: two attempts with the same key are the same
// payment. Without a key every attempt is a distinct posting.
type PostInput struct {
	SchoolID    uuid.UUID
	InvoiceID   uuid.UUID
	AmountKES   int64
	Method      string // already normalized
	Reference   *string
	ClientTxnID *string
	ActorID     uuid.UUID
}

// PostResult pairs the payment with the invoice state after the posting.
// Idempotent is true when the call was a replay and nothing was written.
type PostResult struct {
	Payment    *payModel.Payment
	Invoice    *invModel.Invoice
	Idempotent bool
}

// NextReceiptSeq allocates the next per-school receipt number inside the
// caller's transaction. Same MAX+1 + unique-index-backstop shape as invoice
// numbering.
func NextReceiptSeq(tx *gorm.DB, schoolID uuid.UUID) (int64, error) {
	var maxSeq int64
	err := tx.Model(&payModel.Payment{}).
		Where("payment_school_id = ?", schoolID).
		Select("COALESCE(MAX(payment_receipt_seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

func FormatReceiptNo(seq int64) string {
	return fmt.Sprintf("RCT-%06d", seq)
}

// findByClientTxn returns the existing payment for an idempotency key, or nil.
func findByClientTxn(tx *gorm.DB, schoolID uuid.UUID, clientTxnID string) (*payModel.Payment, error) {
	var p payModel.Payment
	err := tx.Where("payment_school_id = ? AND payment_client_txn_id = ?", schoolID, clientTxnID).
		First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// sameAttempt reports whether an existing row matches a replayed request. A
// replay targeting a different invoice or amount is a key collision, not a
// retry.
func sameAttempt(p *payModel.Payment, in PostInput) bool {
	return p.PaymentInvoiceID == in.InvoiceID && p.PaymentAmountKES == in.AmountKES
}

func loadInvoice(tx *gorm.DB, schoolID, invoiceID uuid.UUID) (*invModel.Invoice, error) {
	var inv invModel.Invoice
	err := tx.Where("invoice_id = ? AND invoice_school_id = ?", invoiceID, schoolID).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// PostPayment records a payment against an invoice, exactly once per
// supplied (school, client_txn_id).
//
// The invoice row is locked FOR UPDATE for the whole transaction, so the
// read-check-apply on the balance is serialized across concurrent postings:
// two posts racing for the last shilling of balance cannot both pass the
// overpayment check.
func PostPayment(db *gorm.DB, in PostInput) (*PostResult, error) {
	if in.AmountKES <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "payment amount must be positive")
	}

	res := &PostResult{}

	run := func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			// Replay check before touching the invoice.
			if in.ClientTxnID != nil {
				existing, err := findByClientTxn(tx, in.SchoolID, *in.ClientTxnID)
				if err != nil {
					return err
				}
				if existing != nil {
					if !sameAttempt(existing, in) {
						return fiber.NewError(fiber.StatusConflict,
							"client_txn_id already used for a different payment")
					}
					inv, err := loadInvoice(tx, in.SchoolID, existing.PaymentInvoiceID)
					if err != nil {
						return err
					}
					res.Payment, res.Invoice, res.Idempotent = existing, inv, true
					return nil
				}
			}

			var inv invModel.Invoice
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("invoice_id = ? AND invoice_school_id = ?", in.InvoiceID, in.SchoolID).
				First(&inv).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return fiber.NewError(fiber.StatusNotFound, "invoice not found")
				}
				return err
			}

			if err := invService.ApplyPaid(&inv, in.AmountKES); err != nil {
				return err
			}

			seq, err := NextReceiptSeq(tx, in.SchoolID)
			if err != nil {
				return err
			}

			p := payModel.Payment{
				PaymentSchoolID:    in.SchoolID,
				PaymentInvoiceID:   in.InvoiceID,
				PaymentAmountKES:   in.AmountKES,
				PaymentMethod:      in.Method,
				PaymentReference:   in.Reference,
				PaymentClientTxnID: in.ClientTxnID,
				PaymentReceiptSeq:  seq,
				PaymentReceiptNo:   FormatReceiptNo(seq),
				PaymentReceivedAt:  time.Now().UTC(),
			}
			if in.ActorID != uuid.Nil {
				p.PaymentReceivedByUser = &in.ActorID
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}

			// Both sides land together or not at all.
			if err := tx.Model(&invModel.Invoice{}).
				Where("invoice_id = ?", inv.InvoiceID).
				Updates(map[string]any{
					"invoice_paid_kes":    inv.InvoicePaidKES,
					"invoice_balance_kes": inv.InvoiceBalanceKES,
					"invoice_status":      inv.InvoiceStatus,
				}).Error; err != nil {
				return err
			}

			res.Payment, res.Invoice = &p, &inv
			return nil
		})
	}

	err := run()
	if err != nil && helper.IsUniqueViolation(err) && in.ClientTxnID != nil {
		// Lost a race on the idempotency key: the winner's row is the payment.
		existing, ferr := findByClientTxn(db, in.SchoolID, *in.ClientTxnID)
		if ferr == nil && existing != nil && sameAttempt(existing, in) {
			inv, lerr := loadInvoice(db, in.SchoolID, existing.PaymentInvoiceID)
			if lerr != nil {
				return nil, lerr
			}
			return &PostResult{Payment: existing, Invoice: inv, Idempotent: true}, nil
		}
		return nil, fiber.NewError(fiber.StatusConflict, "duplicate payment submission")
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ReverseResult pairs the reversed payment with the invoice state after the
// rollback.
type ReverseResult struct {
	Payment *payModel.Payment
	Invoice *invModel.Invoice
}

// ReversePayment undoes one payment exactly once. The payment row is locked
// first so two concurrent reversals cannot both pass the is_reversed check,
// then the invoice is locked and the paid amount rolled back through the
// same gateway that applied it (clamped at zero). Nothing else on the
// payment changes.
func ReversePayment(db *gorm.DB, schoolID, paymentID, actorID uuid.UUID, reason string) (*ReverseResult, error) {
	res := &ReverseResult{}

	err := db.Transaction(func(tx *gorm.DB) error {
		var pay payModel.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_id = ? AND payment_school_id = ?", paymentID, schoolID).
			First(&pay).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "payment not found")
			}
			return err
		}
		if pay.PaymentIsReversed {
			return fiber.NewError(fiber.StatusConflict, "payment is already reversed")
		}

		var inv invModel.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("invoice_id = ? AND invoice_school_id = ?", pay.PaymentInvoiceID, schoolID).
			First(&inv).Error; err != nil {
			return err
		}

		if err := invService.ApplyPaid(&inv, -pay.PaymentAmountKES); err != nil {
			return err
		}

		now := time.Now().UTC()
		pay.PaymentIsReversed = true
		pay.PaymentReversedAt = &now
		if reason != "" {
			pay.PaymentReversalReason = &reason
		}
		if actorID != uuid.Nil {
			pay.PaymentReversedByUser = &actorID
		}
		if err := tx.Model(&payModel.Payment{}).
			Where("payment_id = ?", pay.PaymentID).
			Updates(map[string]any{
				"payment_is_reversed":      true,
				"payment_reversed_at":      pay.PaymentReversedAt,
				"payment_reversal_reason":  pay.PaymentReversalReason,
				"payment_reversed_by_user": pay.PaymentReversedByUser,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&invModel.Invoice{}).
			Where("invoice_id = ?", inv.InvoiceID).
			Updates(map[string]any{
				"invoice_paid_kes":    inv.InvoicePaidKES,
				"invoice_balance_kes": inv.InvoiceBalanceKES,
				"invoice_status":      inv.InvoiceStatus,
			}).Error; err != nil {
			return err
		}

		res.Payment, res.Invoice = &pay, &inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
