// file: internals/features/finance/invoices/service/invoice_void.go
package service

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
	payModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/model"
	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
)

// VoidInvoice marks an invoice VOID. Only an invoice with no active payments
// can be voided: money already taken must be reversed first so the trail
// stays intact. Voiding is terminal and idempotent-by-conflict (a second
// void gets a 409).
func VoidInvoice(db *gorm.DB, schoolID, invoiceID, actorID uuid.UUID, reason string) (*invModel.Invoice, error) {
	var inv invModel.Invoice

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("invoice_id = ? AND invoice_school_id = ?", invoiceID, schoolID).
			First(&inv).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "invoice not found")
			}
			return err
		}
		if inv.InvoiceStatus == invModel.InvoiceStatusVoid {
			return fiber.NewError(fiber.StatusConflict, "invoice is already void")
		}

		var activePayments int64
		if err := tx.Model(&payModel.Payment{}).
			Where(`payment_invoice_id = ? AND payment_school_id = ?
			       AND payment_is_reversed = FALSE`, invoiceID, schoolID).
			Count(&activePayments).Error; err != nil {
			return err
		}
		if activePayments > 0 {
			return helper.NewPolicyError(
				"invoice has active payments; reverse them before voiding",
				fiber.Map{
					"invoice_id":      inv.InvoiceID.String(),
					"active_payments": activePayments,
					"paid_kes":        inv.InvoicePaidKES,
				},
			)
		}

		now := time.Now().UTC()
		inv.InvoiceStatus = invModel.InvoiceStatusVoid
		inv.InvoiceBalanceKES = 0 // paid and lines stay as historical record
		inv.InvoiceVoidedAt = &now
		if reason != "" {
			inv.InvoiceVoidReason = &reason
		}
		if actorID != uuid.Nil {
			inv.InvoiceVoidedByUser = &actorID
		}
		return tx.Model(&invModel.Invoice{}).
			Where("invoice_id = ?", inv.InvoiceID).
			Updates(map[string]any{
				"invoice_status":         inv.InvoiceStatus,
				"invoice_balance_kes":    inv.InvoiceBalanceKES,
				"invoice_voided_at":      inv.InvoiceVoidedAt,
				"invoice_void_reason":    inv.InvoiceVoidReason,
				"invoice_voided_by_user": inv.InvoiceVoidedByUser,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
