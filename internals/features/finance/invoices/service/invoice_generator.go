// file: internals/features/finance/invoices/service/invoice_generator.go
package service

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	feeModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/fees/model"
	invModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/finance/invoices/model"
	schoolModel "github.com/Ehud-Guzman/granite-sms-sub001/internals/features/school/model"
)

// GenerateInvoiceInput bills one student from one plan. The plan is validated
// against the requested (class, year, term); there is no cross-period reuse.
type GenerateInvoiceInput struct {
	SchoolID     uuid.UUID
	StudentID    uuid.UUID
	ClassID      uuid.UUID
	FeePlanID    uuid.UUID
	AcademicYear string
	Term         int
	DueDate      *time.Time
}

// GenerateBatchInput scopes one roster run: a whole class for one year + term.
// The plan is looked up by that exact tuple.
type GenerateBatchInput struct {
	SchoolID     uuid.UUID
	ClassID      uuid.UUID
	AcademicYear string
	Term         int
	DueDate      *time.Time
}

// GenerateBatchResult reports what one roster run did. Re-running the same
// input is safe: students already invoiced for the (year, term) are counted
// as skipped.
type GenerateBatchResult struct {
	PlanID     uuid.UUID   `json:"plan_id"`
	Created    int         `json:"created"`
	Skipped    int         `json:"skipped"`
	InvoiceIDs []uuid.UUID `json:"invoice_ids"`
}

// NextInvoiceSeq allocates the next per-school sequence inside the caller's
// transaction. The unique index on (school, seq) is the backstop if two runs
// race; the loser surfaces as a 23505 and retries.
func NextInvoiceSeq(tx *gorm.DB, schoolID uuid.UUID) (int64, error) {
	var maxSeq int64
	err := tx.Model(&invModel.Invoice{}).
		Where("invoice_school_id = ?", schoolID).
		Select("COALESCE(MAX(invoice_seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

func FormatInvoiceNo(seq int64) string {
	return fmt.Sprintf("INV-%06d", seq)
}

func planTotalKES(plan *feeModel.FeePlan) int64 {
	var total int64
	for _, it := range plan.FeePlanItems {
		total += it.FeePlanItemAmountKES
	}
	return total
}

// snapshotLines copies the plan's item names and amounts onto an invoice.
// Later catalog or plan edits never reach these rows.
func snapshotLines(plan *feeModel.FeePlan, invoiceID uuid.UUID) []invModel.InvoiceLine {
	lines := make([]invModel.InvoiceLine, 0, len(plan.FeePlanItems))
	for _, it := range plan.FeePlanItems {
		name := ""
		if it.FeeItem != nil {
			name = it.FeeItem.FeeItemName
		}
		lines = append(lines, invModel.InvoiceLine{
			InvoiceLineInvoiceID: invoiceID,
			InvoiceLineFeeItemID: it.FeePlanItemItemID,
			InvoiceLineName:      name,
			InvoiceLineAmountKES: it.FeePlanItemAmountKES,
		})
	}
	return lines
}

// GenerateInvoice creates the invoice for one student. A second generation
// for the same (student, year, term) is a conflict, never a silent overwrite;
// the unique scope index backs the in-transaction check against races.
func GenerateInvoice(db *gorm.DB, in GenerateInvoiceInput) (*invModel.Invoice, error) {
	var inv invModel.Invoice

	err := db.Transaction(func(tx *gorm.DB) error {
		var dup int64
		if err := tx.Model(&invModel.Invoice{}).
			Where(`invoice_school_id = ? AND invoice_student_id = ?
			       AND invoice_academic_year = ? AND invoice_term = ?`,
				in.SchoolID, in.StudentID, in.AcademicYear, in.Term).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return fiber.NewError(fiber.StatusConflict,
				"student already has an invoice for this academic year and term")
		}

		var plan feeModel.FeePlan
		if err := tx.Preload("FeePlanItems.FeeItem").
			Where(`fee_plan_id = ? AND fee_plan_school_id = ?
			       AND fee_plan_is_active = TRUE`,
				in.FeePlanID, in.SchoolID).
			First(&plan).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "fee plan not found")
			}
			return err
		}
		if plan.FeePlanClassID != in.ClassID ||
			plan.FeePlanAcademicYear != in.AcademicYear ||
			plan.FeePlanTerm != in.Term {
			return fiber.NewError(fiber.StatusBadRequest,
				"fee plan does not target the requested class, academic year and term")
		}
		if len(plan.FeePlanItems) == 0 {
			return fiber.NewError(fiber.StatusConflict, "fee plan has no items")
		}

		var student schoolModel.Student
		if err := tx.Where(`student_id = ? AND student_school_id = ?
		                    AND student_is_active = TRUE`,
			in.StudentID, in.SchoolID).
			First(&student).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusBadRequest, "student not found in this school")
			}
			return err
		}
		if student.StudentClassID == nil || *student.StudentClassID != in.ClassID {
			return fiber.NewError(fiber.StatusBadRequest, "student is not in the requested class")
		}

		seq, err := NextInvoiceSeq(tx, in.SchoolID)
		if err != nil {
			return err
		}

		total := planTotalKES(&plan)
		balance, status := Derive(total, 0)
		inv = invModel.Invoice{
			InvoiceSchoolID:     in.SchoolID,
			InvoiceStudentID:    in.StudentID,
			InvoiceClassID:      in.ClassID,
			InvoicePlanID:       plan.FeePlanID,
			InvoiceAcademicYear: in.AcademicYear,
			InvoiceTerm:         in.Term,
			InvoiceSeq:          seq,
			InvoiceNo:           FormatInvoiceNo(seq),
			InvoiceTotalKES:     total,
			InvoicePaidKES:      0,
			InvoiceBalanceKES:   balance,
			InvoiceStatus:       status,
			InvoiceDueDate:      in.DueDate,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}

		lines := snapshotLines(&plan, inv.InvoiceID)
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		inv.InvoiceLines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GenerateBatch creates one invoice per active student of the class who does
// not already hold one for the (year, term). Lines snapshot the plan's item
// names and amounts; the invoice total is the sum of its lines.
func GenerateBatch(db *gorm.DB, in GenerateBatchInput) (*GenerateBatchResult, error) {
	res := &GenerateBatchResult{}

	err := db.Transaction(func(tx *gorm.DB) error {
		// Strict plan match: exact (school, class, year, term), active.
		var plan feeModel.FeePlan
		if err := tx.Preload("FeePlanItems.FeeItem").
			Where(`fee_plan_school_id = ? AND fee_plan_class_id = ?
			       AND fee_plan_academic_year = ? AND fee_plan_term = ?
			       AND fee_plan_is_active = TRUE`,
				in.SchoolID, in.ClassID, in.AcademicYear, in.Term).
			First(&plan).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound,
					"no active fee plan for this class, academic year and term")
			}
			return err
		}
		if len(plan.FeePlanItems) == 0 {
			return fiber.NewError(fiber.StatusConflict, "fee plan has no items")
		}
		res.PlanID = plan.FeePlanID

		total := planTotalKES(&plan)

		// Active roster of the class.
		var students []schoolModel.Student
		if err := tx.Where(`student_school_id = ? AND student_class_id = ?
		                    AND student_is_active = TRUE`,
			in.SchoolID, in.ClassID).
			Order("student_full_name ASC").
			Find(&students).Error; err != nil {
			return err
		}
		if len(students) == 0 {
			return fiber.NewError(fiber.StatusConflict, "class has no active students")
		}

		// One invoice per student per (year, term), class-independent: a
		// student moved between classes mid-term still holds a single bill.
		studentIDs := make([]uuid.UUID, 0, len(students))
		for _, s := range students {
			studentIDs = append(studentIDs, s.StudentID)
		}
		var existing []uuid.UUID
		if err := tx.Model(&invModel.Invoice{}).
			Where(`invoice_school_id = ? AND invoice_student_id IN ?
			       AND invoice_academic_year = ? AND invoice_term = ?`,
				in.SchoolID, studentIDs, in.AcademicYear, in.Term).
			Pluck("invoice_student_id", &existing).Error; err != nil {
			return err
		}
		already := make(map[uuid.UUID]struct{}, len(existing))
		for _, id := range existing {
			already[id] = struct{}{}
		}

		seq, err := NextInvoiceSeq(tx, in.SchoolID)
		if err != nil {
			return err
		}

		for _, s := range students {
			if _, ok := already[s.StudentID]; ok {
				res.Skipped++
				continue
			}

			balance, status := Derive(total, 0)
			inv := invModel.Invoice{
				InvoiceSchoolID:     in.SchoolID,
				InvoiceStudentID:    s.StudentID,
				InvoiceClassID:      in.ClassID,
				InvoicePlanID:       plan.FeePlanID,
				InvoiceAcademicYear: in.AcademicYear,
				InvoiceTerm:         in.Term,
				InvoiceSeq:          seq,
				InvoiceNo:           FormatInvoiceNo(seq),
				InvoiceTotalKES:     total,
				InvoicePaidKES:      0,
				InvoiceBalanceKES:   balance,
				InvoiceStatus:       status,
				InvoiceDueDate:      in.DueDate,
			}
			if err := tx.Create(&inv).Error; err != nil {
				return err
			}
			seq++

			lines := snapshotLines(&plan, inv.InvoiceID)
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}

			res.Created++
			res.InvoiceIDs = append(res.InvoiceIDs, inv.InvoiceID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
