// file: internals/features/finance/invoices/service/status_engine.go
package service

import (
	"github.com/gofiber/fiber/v2"

	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
)

// Derive computes balance and status of a non-void invoice from its two
// stored amounts. This is the only place status is decided; no handler
// assigns ISSUED/PARTIALLY_PAID/PAID by hand, and VOID is never produced
// here.
//
//	balance = max(total - paid, 0)
//	status  = PAID            when balance == 0
//	          PARTIALLY_PAID  when paid > 0
//	          ISSUED          otherwise
//
// Deterministic and side-effect free.
func Derive(totalKES, paidKES int64) (balanceKES int64, status invModel.InvoiceStatus) {
	balanceKES = totalKES - paidKES
	if balanceKES < 0 {
		balanceKES = 0
	}
	switch {
	case balanceKES == 0:
		status = invModel.InvoiceStatusPaid
	case paidKES > 0:
		status = invModel.InvoiceStatusPartiallyPaid
	default:
		status = invModel.InvoiceStatusIssued
	}
	return balanceKES, status
}

// ApplyPaid is the single mutation gateway for an invoice's denormalized
// paid/balance/status triple. Every ledger mutator (posting, reversal) goes
// through it; nothing else writes those columns.
//
//   - a VOID invoice accepts no ledger movement at all
//   - a posting may never exceed the outstanding balance (no credit)
//   - a reversal clamps paid at zero
//
// deltaKES is positive for a posting, negative for a reversal. On success the
// invoice struct is updated in place; the caller still owns persistence.
func ApplyPaid(inv *invModel.Invoice, deltaKES int64) error {
	if inv.InvoiceStatus == invModel.InvoiceStatusVoid {
		return fiber.NewError(fiber.StatusConflict, "invoice is void and accepts no ledger movement")
	}

	next := inv.InvoicePaidKES + deltaKES
	if deltaKES > 0 && next > inv.InvoiceTotalKES {
		return helper.NewPolicyError(
			"payment exceeds the outstanding balance",
			fiber.Map{
				"invoice_id":          inv.InvoiceID.String(),
				"total_kes":           inv.InvoiceTotalKES,
				"paid_kes":            inv.InvoicePaidKES,
				"current_balance_kes": inv.InvoiceBalanceKES,
				"amount_kes":          deltaKES,
			},
		)
	}
	if next < 0 {
		next = 0
	}

	inv.InvoicePaidKES = next
	inv.InvoiceBalanceKES, inv.InvoiceStatus = Derive(inv.InvoiceTotalKES, next)
	return nil
}
