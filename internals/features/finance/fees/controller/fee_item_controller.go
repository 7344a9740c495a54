// file: internals/features/finance/fees/controller/fee_item_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	feeDTO "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/fees/dto"
	feeModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/fees/model"
	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
	helperAuth "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers/auth"
)

type FeeItemController struct {
	DB *gorm.DB
}

func NewFeeItemController(db *gorm.DB) *FeeItemController {
	return &FeeItemController{DB: db}
}

var validateFees = validator.New()

// POST /api/a/fees/fee-items
func (ctrl *FeeItemController) Create(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolAdmin(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	var req feeDTO.CreateFeeItemRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validateFees.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationMap(err))
	}

	item := req.ToModel(schoolID)
	if err := ctrl.DB.WithContext(c.Context()).Create(item).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "A fee item with that name already exists")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create fee item")
	}

	helper.Audit(helper.AuditEvent{
		SchoolID: schoolID,
		Action:   "fee_item.create",
		Entity:   "fee_item",
		EntityID: item.FeeItemID,
	})
	return helper.JsonCreated(c, "Fee item created", feeDTO.NewFeeItemResponse(item))
}

// GET /api/a/fees/fee-items
func (ctrl *FeeItemController) List(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolStaff(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}

	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	allowed := map[string]string{
		"created_at": "fee_item_created_at",
		"name":       "fee_item_name",
		"amount":     "fee_item_default_amount_kes",
	}
	order, err := p.SafeOrderClause(allowed, "created_at")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid sort")
	}

	q := ctrl.DB.WithContext(c.Context()).
		Model(&feeModel.FeeItem{}).
		Where("fee_item_school_id = ?", schoolID)
	if c.Query("active") == "true" {
		q = q.Where("fee_item_is_active = TRUE")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count fee items")
	}

	var rows []feeModel.FeeItem
	if err := q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to list fee items")
	}

	out := make([]*feeDTO.FeeItemResponse, 0, len(rows))
	for i := range rows {
		out = append(out, feeDTO.NewFeeItemResponse(&rows[i]))
	}
	return helper.JsonList(c, "Fee items fetched", out, helper.BuildMeta(total, p))
}

// PATCH /api/a/fees/fee-items/:id
func (ctrl *FeeItemController) Update(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolAdmin(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid fee item id")
	}

	var req feeDTO.UpdateFeeItemRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validateFees.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationMap(err))
	}

	var item feeModel.FeeItem
	if err := ctrl.DB.WithContext(c.Context()).
		Where("fee_item_id = ? AND fee_item_school_id = ?", itemID, schoolID).
		First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return helper.JsonError(c, fiber.StatusNotFound, "Fee item not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load fee item")
	}

	req.Apply(&item)
	if err := ctrl.DB.WithContext(c.Context()).Save(&item).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "A fee item with that name already exists")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update fee item")
	}

	helper.Audit(helper.AuditEvent{
		SchoolID: schoolID,
		Action:   "fee_item.update",
		Entity:   "fee_item",
		EntityID: item.FeeItemID,
	})
	return helper.JsonUpdated(c, "Fee item updated", feeDTO.NewFeeItemResponse(&item))
}

// DELETE /api/a/fees/fee-items/:id — deactivates; existing invoice lines are
// snapshots and never change.
func (ctrl *FeeItemController) Deactivate(c *fiber.Ctx) error {
	schoolID, err := helperAuth.EnsureSchoolAdmin(c)
	if err != nil {
		return helper.WriteServiceError(c, err)
	}
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid fee item id")
	}

	res := ctrl.DB.WithContext(c.Context()).
		Model(&feeModel.FeeItem{}).
		Where("fee_item_id = ? AND fee_item_school_id = ?", itemID, schoolID).
		Update("fee_item_is_active", false)
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to deactivate fee item")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Fee item not found")
	}

	helper.Audit(helper.AuditEvent{
		SchoolID: schoolID,
		Action:   "fee_item.deactivate",
		Entity:   "fee_item",
		EntityID: itemID,
	})
	return helper.JsonUpdated(c, "Fee item deactivated", fiber.Map{"fee_item_id": itemID})
}
