// file: internals/features/finance/payments/controller/payment_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
	payDTO "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/dto"
	payModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/model"
	payService "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/service"
	schoolModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/school/model"
	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
	helperAuth "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers/auth"
)

type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

var validatePayments = validator.New()

// POST /api/a/fees/payments
// Retrying the same client_txn_id returns the original payment with 200
// instead of 201; the ledger never records it twice.
func (ctrl *PaymentController) Post(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolAdmin(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	actorID, _ := helperAuth.GetUserIDFromToken(c)

	var req payDTO.PostPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validatePayments.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationMap(err))
	}

	method, ok := payModel.NormalizeMethod(req.Method)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest,
			"unknown payment method (expected CASH, MPESA, BANK, CHEQUE or OTHER)")
	}

	res, err := payService.PostPayment(ctrl.DB.WithContext(c.Context()), payService.PostInput{
		SchoolID:    schoolID,
		InvoiceID:   req.InvoiceID,
		AmountKES:   req.AmountKES,
		Method:      method,
		Reference:   req.Reference,
		ClientTxnID: req.ClientTxnID,
		ActorID:     actorID,
	})
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	body := payDTO.NewPostPaymentResponse(res.Payment, res.Invoice, res.Idempotent)
	if res.Idempotent {
		return helper.JsonOK(c, "Payment already recorded", body)
	}

	helper.Audit(helper.AuditEvent{
		SchoolID: schoolID,
		ActorID:  actorID,
		Action:   "payment.post",
		Entity:   "payment",
		EntityID: res.Payment.PaymentID,
		Payload: datatypes.JSONMap{
			"invoice_id": res.Payment.PaymentInvoiceID.String(),
			"amount_kes": res.Payment.PaymentAmountKES,
			"method":     res.Payment.PaymentMethod,
			"receipt_no": res.Payment.PaymentReceiptNo,
		},
	})
	return helper.JsonCreated(c, "Payment recorded", body)
}

// GET /api/a/fees/payments?invoice_id=&reversed=
func (ctrl *PaymentController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolStaff(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	p := helper.ParseFiber(c, "received_at", "desc", helper.AdminOpts)
	allowed := map[string]string{
		"received_at": "payment_received_at",
		"amount":      "payment_amount_kes",
		"receipt":     "payment_receipt_seq",
	}
	order, err := p.SafeOrderClause(allowed, "received_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid sort")
	}

	q := ctrl.DB.WithContext(c.Context()).
		Model(&payModel.Payment{}).
		Where("payment_school_id = ?", schoolID)
	if iid := c.Query("invoice_id"); iid != "" {
		id, err := uuid.Parse(iid)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid invoice_id")
		}
		q = q.Where("payment_invoice_id = ?", id)
	}
	switch c.Query("reversed") {
	case "true":
		q = q.Where("payment_is_reversed = TRUE")
	case "false":
		q = q.Where("payment_is_reversed = FALSE")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count payments")
	}

	var rows []payModel.Payment
	if err := q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list payments")
	}

	out := make([]*payDTO.PaymentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, payDTO.NewPaymentResponse(&rows[i]))
	}
	return helper.JsonList(c, "Payments fetched", out, helper.BuildMeta(total, p))
}

// POST /api/a/fees/payments/:id/reverse
func (ctrl *PaymentController) Reverse(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolAdmin(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	actorID, _ := helperAuth.GetUserIDFromToken(c)

	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payment id")
	}

	var req payDTO.ReversePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validatePayments.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationMap(err))
	}

	res, err := payService.ReversePayment(ctrl.DB.WithContext(c.Context()), schoolID, paymentID, actorID, req.Reason)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	helper.Audit(helper.AuditEvent{
		SchoolID: schoolID,
		ActorID:  actorID,
		Action:   "payment.reverse",
		Entity:   "payment",
		EntityID: res.Payment.PaymentID,
		Payload: datatypes.JSONMap{
			"invoice_id": res.Payment.PaymentInvoiceID.String(),
			"amount_kes": res.Payment.PaymentAmountKES,
			"reason":     req.Reason,
		},
	})
	return helper.JsonUpdated(c, "Payment reversed",
		payDTO.NewPostPaymentResponse(res.Payment, res.Invoice, false))
}

// GET /api/a/fees/payments/:id/receipt
func (ctrl *PaymentController) Receipt(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolStaff(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payment id")
	}

	var pay payModel.Payment
	if err := ctrl.DB.WithContext(c.Context()).
		Where("payment_id = ? AND payment_school_id = ?", paymentID, schoolID).
		First(&pay).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Payment not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load payment")
	}

	var inv invModel.Invoice
	if err := ctrl.DB.WithContext(c.Context()).
		Where("invoice_id = ?", pay.PaymentInvoiceID).
		First(&inv).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load invoice")
	}
	var student schoolModel.Student
	if err := ctrl.DB.WithContext(c.Context()).
		Where("student_id = ?", inv.InvoiceStudentID).
		First(&student).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load student")
	}
	var school schoolModel.School
	if err := ctrl.DB.WithContext(c.Context()).
		Where("school_id = ?", schoolID).
		First(&school).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load school")
	}

	receipt := payDTO.ReceiptResponse{
		ReceiptNo:      pay.PaymentReceiptNo,
		SchoolName:     school.SchoolName,
		StudentName:    student.StudentFullName,
		AdmissionNo:    student.StudentAdmissionNo,
		InvoiceNo:      inv.InvoiceNo,
		AcademicYear:   inv.InvoiceAcademicYear,
		Term:           inv.InvoiceTerm,
		AmountKES:      pay.PaymentAmountKES,
		Method:         pay.PaymentMethod,
		Reference:      pay.PaymentReference,
		ReceivedAt:     pay.PaymentReceivedAt,
		IsReversed:     pay.PaymentIsReversed,
		ReversedAt:     pay.PaymentReversedAt,
		ReversalReason: pay.PaymentReversalReason,
		BalanceKES:     inv.InvoiceBalanceKES,
	}
	return helper.JsonOK(c, "Receipt fetched", receipt)
}
