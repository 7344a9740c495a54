// file: internals/features/finance/invoices/controller/invoice_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	invDTO "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/dto"
	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
	invService "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/service"
	payDTO "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/dto"
	payModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/payments/model"
	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
	helperAuth "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers/auth"
)

type InvoiceController struct {
	DB *gorm.DB
}

func NewInvoiceController(db *gorm.DB) *InvoiceController {
	return &InvoiceController{DB: db}
}

var validateInvoices = validator.New()

// POST /api/a/fees/invoices/generate
// One student, one plan, one invoice. A repeat for the same (student, year,
// term) is a 409, never a silent overwrite.
func (ctrl *InvoiceController) Generate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolAdmin(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	actorID, _ := helperAuth.GetUserIDFromToken(c)

	var req invDTO.GenerateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validateInvoices.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationMap(err))
	}

	inv, err := invService.GenerateInvoice(ctrl.DB.WithContext(c.Context()), invService.GenerateInvoiceInput{
		SchoolID:     schoolID,
		StudentID:    req.StudentID,
		ClassID:      req.ClassID,
		FeePlanID:    req.FeePlanID,
		AcademicYear: req.AcademicYear,
		Term:         req.Term,
		DueDate:      req.DueDate,
	})
	if err != nil {
		if helper.IsUniqueViolation(err) {
			// Lost a race with a concurrent generation; the row that won is
			// the invoice.
			return helper.JsonError(c, fiber.StatusConflict, "student already has an invoice for this academic year and term")
		}
		return helper.WriteServiceError(c, err)
	}

	helper.Audit(helper.AuditEvent{
		SchoolID: schoolID,
		ActorID:  actorID,
		Action:   "invoice.generate",
		Entity:   "invoice",
		EntityID: inv.InvoiceID,
		Payload: datatypes.JSONMap{
			"student_id":    req.StudentID.String(),
			"class_id":      req.ClassID.String(),
			"academic_year": req.AcademicYear,
			"term":          req.Term,
			"total_kes":     inv.InvoiceTotalKES,
		},
	})
	return helper.JsonCreated(c, "Invoice generated", invDTO.NewInvoiceResponse(inv))
}

// POST /api/a/fees/invoices/generate-batch
// Safe to re-run: already-invoiced students are skipped, not duplicated.
func (ctrl *InvoiceController) GenerateBatch(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolAdmin(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	actorID, _ := helperAuth.GetUserIDFromToken(c)

	var req invDTO.GenerateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validateInvoices.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationMap(err))
	}

	res, err := invService.GenerateBatch(ctrl.DB.WithContext(c.Context()), invService.GenerateBatchInput{
		SchoolID:     schoolID,
		ClassID:      req.ClassID,
		AcademicYear: req.AcademicYear,
		Term:         req.Term,
		DueDate:      req.DueDate,
	})
	if err != nil {
		if helper.IsUniqueViolation(err) {
			// Lost a race with a concurrent run; the caller just retries.
			return helper.JsonError(c, fiber.StatusConflict, "a concurrent generation run finished first, retry")
		}
		return helper.WriteServiceError(c, err)
	}

	helper.Audit(helper.AuditEvent{
		SchoolID: schoolID,
		ActorID:  actorID,
		Action:   "invoice.generate_batch",
		Entity:   "fee_plan",
		EntityID: res.PlanID,
		Payload: datatypes.JSONMap{
			"class_id":      req.ClassID.String(),
			"academic_year": req.AcademicYear,
			"term":          req.Term,
			"created":       res.Created,
			"skipped":       res.Skipped,
		},
	})
	return helper.JsonCreated(c, "Invoices generated", res)
}

// GET /api/a/fees/invoices
func (ctrl *InvoiceController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolStaff(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	allowed := map[string]string{
		"created_at": "invoice_created_at",
		"no":         "invoice_seq",
		"total":      "invoice_total_kes",
		"status":     "invoice_status",
	}
	order, err := p.SafeOrderClause(allowed, "created_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid sort")
	}

	q := ctrl.DB.WithContext(c.Context()).
		Model(&invModel.Invoice{}).
		Where("invoice_school_id = ?", schoolID)
	if sid := c.Query("student_id"); sid != "" {
		id, err := uuid.Parse(sid)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid student_id")
		}
		q = q.Where("invoice_student_id = ?", id)
	}
	if cid := c.Query("class_id"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid class_id")
		}
		q = q.Where("invoice_class_id = ?", id)
	}
	if y := c.Query("academic_year"); y != "" {
		q = q.Where("invoice_academic_year = ?", y)
	}
	if t := c.QueryInt("term"); t > 0 {
		q = q.Where("invoice_term = ?", t)
	}
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		st, ok := invModel.ParseInvoiceStatus(raw)
		if !ok {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid status filter")
		}
		q = q.Where("invoice_status = ?", st)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count invoices")
	}

	var rows []invModel.Invoice
	if err := q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list invoices")
	}

	out := make([]*invDTO.InvoiceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, invDTO.NewInvoiceResponse(&rows[i]))
	}
	return helper.JsonList(c, "Invoices fetched", out, helper.BuildMeta(total, p))
}

// GET /api/a/fees/invoices/:id — detail with snapshot lines and the payment
// trail (including reversed rows, which stay visible as history).
func (ctrl *InvoiceController) GetByID(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolStaff(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid invoice id")
	}

	var inv invModel.Invoice
	if err := ctrl.DB.WithContext(c.Context()).
		Preload("InvoiceLines").
		Where("invoice_id = ? AND invoice_school_id = ?", invoiceID, schoolID).
		First(&inv).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Invoice not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load invoice")
	}

	var pays []payModel.Payment
	if err := ctrl.DB.WithContext(c.Context()).
		Where("payment_invoice_id = ? AND payment_school_id = ?", invoiceID, schoolID).
		Order("payment_received_at ASC").
		Find(&pays).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load payments")
	}
	payOut := make([]*payDTO.PaymentResponse, 0, len(pays))
	for i := range pays {
		payOut = append(payOut, payDTO.NewPaymentResponse(&pays[i]))
	}

	return helper.JsonOK(c, "Invoice fetched", fiber.Map{
		"invoice":  invDTO.NewInvoiceResponse(&inv),
		"payments": payOut,
	})
}

// POST /api/a/fees/invoices/:id/void
func (ctrl *InvoiceController) Void(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolAdmin(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	actorID, _ := helperAuth.GetUserIDFromToken(c)

	invoiceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid invoice id")
	}

	var req invDTO.VoidInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateInvoices.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationMap(err))
	}

	inv, err := invService.VoidInvoice(ctrl.DB.WithContext(c.Context()), schoolID, invoiceID, actorID, req.Reason)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	helper.Audit(helper.AuditEvent{
		SchoolID: schoolID,
		ActorID:  actorID,
		Action:   "invoice.void",
		Entity:   "invoice",
		EntityID: inv.InvoiceID,
		Payload: datatypes.JSONMap{
			"invoice_no": inv.InvoiceNo,
			"reason":     req.Reason,
		},
	})
	return helper.JsonUpdated(c, "Invoice voided", invDTO.NewInvoiceResponse(inv))
}
