// file: internals/features/finance/fees/dto/fee_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	feeModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/fees/model"
)

/* ================= Requests ================= */

type CreateFeeItemRequest struct {
	FeeItemName             string  `json:"fee_item_name" validate:"required,min=2,max=80"`
	FeeItemDescription      *string `json:"fee_item_description" validate:"omitempty,max=2000"`
	FeeItemDefaultAmountKES int64   `json:"fee_item_default_amount_kes" validate:"gte=0"`
}

func (r *CreateFeeItemRequest) Normalize() {
	r.FeeItemName = strings.TrimSpace(r.FeeItemName)
	if r.FeeItemDescription != nil {
		d := strings.TrimSpace(*r.FeeItemDescription)
		if d == "" {
			r.FeeItemDescription = nil
		} else {
			r.FeeItemDescription = &d
		}
	}
}

func (r *CreateFeeItemRequest) ToModel(schoolID uuid.UUID) *feeModel.FeeItem {
	return &feeModel.FeeItem{
		FeeItemSchoolID:         schoolID,
		FeeItemName:             r.FeeItemName,
		FeeItemDescription:      r.FeeItemDescription,
		FeeItemDefaultAmountKES: r.FeeItemDefaultAmountKES,
		FeeItemIsActive:         true,
	}
}

type UpdateFeeItemRequest struct {
	FeeItemName             *string `json:"fee_item_name" validate:"omitempty,min=2,max=80"`
	FeeItemDescription      *string `json:"fee_item_description" validate:"omitempty,max=2000"`
	FeeItemDefaultAmountKES *int64  `json:"fee_item_default_amount_kes" validate:"omitempty,gte=0"`
	FeeItemIsActive         *bool   `json:"fee_item_is_active"`
}

func (r *UpdateFeeItemRequest) Apply(m *feeModel.FeeItem) {
	if r.FeeItemName != nil {
		m.FeeItemName = strings.TrimSpace(*r.FeeItemName)
	}
	if r.FeeItemDescription != nil {
		d := strings.TrimSpace(*r.FeeItemDescription)
		if d == "" {
			m.FeeItemDescription = nil
		} else {
			m.FeeItemDescription = &d
		}
	}
	if r.FeeItemDefaultAmountKES != nil {
		m.FeeItemDefaultAmountKES = *r.FeeItemDefaultAmountKES
	}
	if r.FeeItemIsActive != nil {
		m.FeeItemIsActive = *r.FeeItemIsActive
	}
}

type CreateFeePlanItemRequest struct {
	FeeItemID uuid.UUID `json:"fee_item_id" validate:"required"`
	AmountKES int64     `json:"amount_kes" validate:"gte=0"`
}

type CreateFeePlanRequest struct {
	FeePlanName         string                     `json:"fee_plan_name" validate:"required,min=2,max=120"`
	FeePlanClassID      uuid.UUID                  `json:"fee_plan_class_id" validate:"required"`
	FeePlanAcademicYear string                     `json:"fee_plan_academic_year" validate:"required,min=4,max=9"`
	FeePlanTerm         int                        `json:"fee_plan_term" validate:"required,min=1,max=3"`
	FeePlanItems        []CreateFeePlanItemRequest `json:"fee_plan_items" validate:"required,min=1,dive"`
}

func (r *CreateFeePlanRequest) Normalize() {
	r.FeePlanName = strings.TrimSpace(r.FeePlanName)
	r.FeePlanAcademicYear = strings.TrimSpace(r.FeePlanAcademicYear)
}

/* ================= Responses ================= */

type FeeItemResponse struct {
	FeeItemID               uuid.UUID `json:"fee_item_id"`
	FeeItemName             string    `json:"fee_item_name"`
	FeeItemDescription      *string   `json:"fee_item_description,omitempty"`
	FeeItemDefaultAmountKES int64     `json:"fee_item_default_amount_kes"`
	FeeItemIsActive         bool      `json:"fee_item_is_active"`
	FeeItemCreatedAt        time.Time `json:"fee_item_created_at"`
}

func NewFeeItemResponse(m *feeModel.FeeItem) *FeeItemResponse {
	return &FeeItemResponse{
		FeeItemID:               m.FeeItemID,
		FeeItemName:             m.FeeItemName,
		FeeItemDescription:      m.FeeItemDescription,
		FeeItemDefaultAmountKES: m.FeeItemDefaultAmountKES,
		FeeItemIsActive:         m.FeeItemIsActive,
		FeeItemCreatedAt:        m.FeeItemCreatedAt,
	}
}

type FeePlanItemResponse struct {
	FeePlanItemID uuid.UUID `json:"fee_plan_item_id"`
	FeeItemID     uuid.UUID `json:"fee_item_id"`
	FeeItemName   string    `json:"fee_item_name,omitempty"`
	AmountKES     int64     `json:"amount_kes"`
}

type FeePlanResponse struct {
	FeePlanID           uuid.UUID             `json:"fee_plan_id"`
	FeePlanName         string                `json:"fee_plan_name"`
	FeePlanClassID      uuid.UUID             `json:"fee_plan_class_id"`
	FeePlanAcademicYear string                `json:"fee_plan_academic_year"`
	FeePlanTerm         int                   `json:"fee_plan_term"`
	FeePlanIsActive     bool                  `json:"fee_plan_is_active"`
	FeePlanTotalKES     int64                 `json:"fee_plan_total_kes"`
	FeePlanItems        []FeePlanItemResponse `json:"fee_plan_items,omitempty"`
	FeePlanCreatedAt    time.Time             `json:"fee_plan_created_at"`
}

func NewFeePlanResponse(m *feeModel.FeePlan) *FeePlanResponse {
	resp := &FeePlanResponse{
		FeePlanID:           m.FeePlanID,
		FeePlanName:         m.FeePlanName,
		FeePlanClassID:      m.FeePlanClassID,
		FeePlanAcademicYear: m.FeePlanAcademicYear,
		FeePlanTerm:         m.FeePlanTerm,
		FeePlanIsActive:     m.FeePlanIsActive,
		FeePlanCreatedAt:    m.FeePlanCreatedAt,
	}
	for i := range m.FeePlanItems {
		it := &m.FeePlanItems[i]
		r := FeePlanItemResponse{
			FeePlanItemID: it.FeePlanItemID,
			FeeItemID:     it.FeePlanItemItemID,
			AmountKES:     it.FeePlanItemAmountKES,
		}
		if it.FeeItem != nil {
			r.FeeItemName = it.FeeItem.FeeItemName
		}
		resp.FeePlanItems = append(resp.FeePlanItems, r)
		resp.FeePlanTotalKES += it.FeePlanItemAmountKES
	}
	return resp
}
