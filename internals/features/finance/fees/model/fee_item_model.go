// file: internals/features/finance/fees/model/fee_item_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeeItem is a catalog entry (tuition, transport, boarding). Deactivating an
// item stops it from entering new plans; invoices that already snapshot it
// keep their lines untouched.
type FeeItem struct {
	FeeItemID       uuid.UUID `gorm:"column:fee_item_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_item_id"`
	FeeItemSchoolID uuid.UUID `gorm:"column:fee_item_school_id;type:uuid;not null;index:ix_fee_items_school;uniqueIndex:uq_fee_items_name,priority:1" json:"fee_item_school_id"`

	FeeItemName        string  `gorm:"column:fee_item_name;type:varchar(80);not null;uniqueIndex:uq_fee_items_name,priority:2" json:"fee_item_name"`
	FeeItemDescription *string `gorm:"column:fee_item_description;type:text" json:"fee_item_description,omitempty"`

	// Whole currency units (KES). No fractional amounts anywhere in the ledger.
	FeeItemDefaultAmountKES int64 `gorm:"column:fee_item_default_amount_kes;not null;default:0" json:"fee_item_default_amount_kes"`

	FeeItemIsActive bool `gorm:"column:fee_item_is_active;not null;default:true" json:"fee_item_is_active"`

	FeeItemCreatedAt time.Time      `gorm:"column:fee_item_created_at;autoCreateTime" json:"fee_item_created_at"`
	FeeItemUpdatedAt time.Time      `gorm:"column:fee_item_updated_at;autoUpdateTime" json:"fee_item_updated_at"`
	FeeItemDeletedAt gorm.DeletedAt `gorm:"column:fee_item_deleted_at;index" json:"-"`
}

func (FeeItem) TableName() string { return "fee_items" }
