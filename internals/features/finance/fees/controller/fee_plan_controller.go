// file: internals/features/finance/fees/controller/fee_plan_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	schoolModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/school/model"
	feeDTO "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/fees/dto"
	feeModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/fees/model"
	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
	helperAuth "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers/auth"
)

type FeePlanController struct {
	DB *gorm.DB
}

func NewFeePlanController(db *gorm.DB) *FeePlanController {
	return &FeePlanController{DB: db}
}

// POST /api/a/fees/fee-plans
// The plan and its items land in one transaction. Items must reference active
// catalog entries of the same school; amounts are plan-level overrides.
func (ctrl *FeePlanController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolAdmin(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	var req feeDTO.CreateFeePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validateFees.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationMap(err))
	}

	// Reject duplicate items inside one request before touching the DB.
	seen := make(map[uuid.UUID]struct{}, len(req.FeePlanItems))
	for _, it := range req.FeePlanItems {
		if _, dup := seen[it.FeeItemID]; dup {
			return helper.JsonError(c, fiber.StatusBadRequest, "duplicate fee item in plan")
		}
		seen[it.FeeItemID] = struct{}{}
	}

	plan := &feeModel.FeePlan{
		FeePlanSchoolID:     schoolID,
		FeePlanClassID:      req.FeePlanClassID,
		FeePlanAcademicYear: req.FeePlanAcademicYear,
		FeePlanTerm:         req.FeePlanTerm,
		FeePlanName:         req.FeePlanName,
		FeePlanIsActive:     true,
	}

	txErr := ctrl.DB.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		// Class must belong to this school.
		var classCount int64
		if err := tx.Model(&schoolModel.Class{}).
			Where("class_id = ? AND class_school_id = ?", req.FeePlanClassID, schoolID).
			Count(&classCount).Error; err != nil {
			return err
		}
		if classCount == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "class not found in this school")
		}

		// Every referenced item must be an active catalog entry of this school.
		itemIDs := make([]uuid.UUID, 0, len(req.FeePlanItems))
		for _, it := range req.FeePlanItems {
			itemIDs = append(itemIDs, it.FeeItemID)
		}
		var activeCount int64
		if err := tx.Model(&feeModel.FeeItem{}).
			Where("fee_item_id IN ? AND fee_item_school_id = ? AND fee_item_is_active = TRUE", itemIDs, schoolID).
			Count(&activeCount).Error; err != nil {
			return err
		}
		if activeCount != int64(len(itemIDs)) {
			return fiber.NewError(fiber.StatusBadRequest, "one or more fee items are unknown or inactive")
		}

		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		rows := make([]feeModel.FeePlanItem, 0, len(req.FeePlanItems))
		for _, it := range req.FeePlanItems {
			rows = append(rows, feeModel.FeePlanItem{
				FeePlanItemPlanID:    plan.FeePlanID,
				FeePlanItemItemID:    it.FeeItemID,
				FeePlanItemAmountKES: it.AmountKES,
			})
		}
		return tx.Create(&rows).Error
	})
	if txErr != nil {
		if helper.IsUniqueViolation(txErr) {
			return helper.JsonError(c, fiber.StatusConflict, "A plan for that class, year and term already exists")
		}
		return helper.WriteServiceError(c, txErr)
	}

	// Reload with items for the response.
	var full feeModel.FeePlan
	if err := ctrl.DB.WithContext(c.Context()).
		Preload("FeePlanItems.FeeItem").
		Where("fee_plan_id = ?", plan.FeePlanID).
		First(&full).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to reload fee plan")
	}

	helper.Audit(helper.AuditEvent{
		SchoolID: schoolID,
		Action:   "fee_plan.create",
		Entity:   "fee_plan",
		EntityID: plan.FeePlanID,
	})
	return helper.JsonCreated(c, "Fee plan created", feeDTO.NewFeePlanResponse(&full))
}

// GET /api/a/fees/fee-plans
func (ctrl *FeePlanController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolStaff(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	allowed := map[string]string{
		"created_at": "fee_plan_created_at",
		"year":       "fee_plan_academic_year",
		"term":       "fee_plan_term",
	}
	order, err := p.SafeOrderClause(allowed, "created_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid sort")
	}

	q := ctrl.DB.WithContext(c.Context()).
		Model(&feeModel.FeePlan{}).
		Where("fee_plan_school_id = ?", schoolID)
	if y := c.Query("academic_year"); y != "" {
		q = q.Where("fee_plan_academic_year = ?", y)
	}
	if t := c.QueryInt("term"); t > 0 {
		q = q.Where("fee_plan_term = ?", t)
	}
	if cid := c.Query("class_id"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid class_id")
		}
		q = q.Where("fee_plan_class_id = ?", id)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count fee plans")
	}

	var rows []feeModel.FeePlan
	if err := q.Preload("FeePlanItems.FeeItem").
		Order(order).Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list fee plans")
	}

	out := make([]*feeDTO.FeePlanResponse, 0, len(rows))
	for i := range rows {
		out = append(out, feeDTO.NewFeePlanResponse(&rows[i]))
	}
	return helper.JsonList(c, "Fee plans fetched", out, helper.BuildMeta(total, p))
}

// GET /api/a/fees/fee-plans/:id
func (ctrl *FeePlanController) GetByID(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolStaff(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid fee plan id")
	}

	var plan feeModel.FeePlan
	if err := ctrl.DB.WithContext(c.Context()).
		Preload("FeePlanItems.FeeItem").
		Where("fee_plan_id = ? AND fee_plan_school_id = ?", planID, schoolID).
		First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Fee plan not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load fee plan")
	}
	return helper.JsonOK(c, "Fee plan fetched", feeDTO.NewFeePlanResponse(&plan))
}

// POST /api/a/fees/fee-plans/:id/deactivate — stops generation from finding
// the plan; invoices already generated from it are untouched snapshots.
func (ctrl *FeePlanController) Deactivate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolAdmin(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid fee plan id")
	}

	res := ctrl.DB.WithContext(c.Context()).
		Model(&feeModel.FeePlan{}).
		Where("fee_plan_id = ? AND fee_plan_school_id = ?", planID, schoolID).
		Update("fee_plan_is_active", false)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to deactivate fee plan")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Fee plan not found")
	}

	helper.Audit(helper.AuditEvent{
		SchoolID: schoolID,
		Action:   "fee_plan.deactivate",
		Entity:   "fee_plan",
		EntityID: planID,
	})
	return helper.JsonUpdated(c, "Fee plan deactivated", fiber.Map{"fee_plan_id": planID})
}
