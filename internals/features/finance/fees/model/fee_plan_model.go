// file: internals/features/finance/fees/model/fee_plan_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeePlan binds a set of fee items (with plan-level amount overrides) to a
// class for one academic year + term. Generation looks the plan up by the
// exact (school, class, year, term) tuple.
type FeePlan struct {
	FeePlanID       uuid.UUID `gorm:"column:fee_plan_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_plan_id"`
	FeePlanSchoolID uuid.UUID `gorm:"column:fee_plan_school_id;type:uuid;not null;index:ix_fee_plans_school;uniqueIndex:uq_fee_plans_scope,priority:1" json:"fee_plan_school_id"`

	FeePlanClassID      uuid.UUID `gorm:"column:fee_plan_class_id;type:uuid;not null;uniqueIndex:uq_fee_plans_scope,priority:2" json:"fee_plan_class_id"`
	FeePlanAcademicYear string    `gorm:"column:fee_plan_academic_year;type:varchar(9);not null;uniqueIndex:uq_fee_plans_scope,priority:3" json:"fee_plan_academic_year"`
	FeePlanTerm         int       `gorm:"column:fee_plan_term;not null;uniqueIndex:uq_fee_plans_scope,priority:4" json:"fee_plan_term"`

	FeePlanName     string `gorm:"column:fee_plan_name;type:varchar(120);not null" json:"fee_plan_name"`
	FeePlanIsActive bool   `gorm:"column:fee_plan_is_active;not null;default:true" json:"fee_plan_is_active"`

	FeePlanCreatedAt time.Time      `gorm:"column:fee_plan_created_at;autoCreateTime" json:"fee_plan_created_at"`
	FeePlanUpdatedAt time.Time      `gorm:"column:fee_plan_updated_at;autoUpdateTime" json:"fee_plan_updated_at"`
	FeePlanDeletedAt gorm.DeletedAt `gorm:"column:fee_plan_deleted_at;index" json:"-"`

	FeePlanItems []FeePlanItem `gorm:"foreignKey:FeePlanItemPlanID;references:FeePlanID" json:"fee_plan_items,omitempty"`
}

func (FeePlan) TableName() string { return "fee_plans" }

// FeePlanItem joins a plan to a catalog item with the amount the plan charges
// for it. The amount here, not the catalog default, is what invoices snapshot.
type FeePlanItem struct {
	FeePlanItemID     uuid.UUID `gorm:"column:fee_plan_item_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_plan_item_id"`
	FeePlanItemPlanID uuid.UUID `gorm:"column:fee_plan_item_plan_id;type:uuid;not null;index:ix_fee_plan_items_plan;uniqueIndex:uq_fee_plan_items,priority:1" json:"fee_plan_item_plan_id"`
	FeePlanItemItemID uuid.UUID `gorm:"column:fee_plan_item_item_id;type:uuid;not null;uniqueIndex:uq_fee_plan_items,priority:2" json:"fee_plan_item_item_id"`

	FeePlanItemAmountKES int64 `gorm:"column:fee_plan_item_amount_kes;not null" json:"fee_plan_item_amount_kes"`

	FeePlanItemCreatedAt time.Time `gorm:"column:fee_plan_item_created_at;autoCreateTime" json:"fee_plan_item_created_at"`

	FeeItem *FeeItem `gorm:"foreignKey:FeePlanItemItemID;references:FeeItemID" json:"fee_item,omitempty"`
}

func (FeePlanItem) TableName() string { return "fee_plan_items" }
