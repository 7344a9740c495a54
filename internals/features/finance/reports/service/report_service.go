// file: internals/features/finance/reports/service/report_service.go
package service

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
)

// Reports are read-only aggregations over invoices and payments. VOID
// invoices never count toward billed totals; reversed payments never count
// toward collections.

type ClassSummaryRow struct {
	ClassID      uuid.UUID `json:"class_id"`
	ClassName    string    `json:"class_name"`
	Students     int64     `json:"students"`
	BilledKES    int64     `json:"billed_kes"`
	CollectedKES int64     `json:"collected_kes"`
	BalanceKES   int64     `json:"balance_kes"`
	PaidCount    int64     `json:"paid_count"`
	PartialCount int64     `json:"partially_paid_count"`
	UnpaidCount  int64     `json:"issued_count"`
}

type DefaulterRow struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	AdmissionNo *string   `json:"admission_no,omitempty"`
	ClassName   string    `json:"class_name"`
	InvoiceNo   string    `json:"invoice_no"`
	TotalKES    int64     `json:"total_kes"`
	PaidKES     int64     `json:"paid_kes"`
	BalanceKES  int64     `json:"balance_kes"`
}

type CollectionRow struct {
	Day      string `json:"day"` // YYYY-MM-DD
	Method   string `json:"method"`
	Count    int64  `json:"count"`
	TotalKES int64  `json:"total_kes"`
}

type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

// ClassSummary aggregates the term's billing position per class. A nil
// classID covers the whole school; otherwise only that class is summarized.
func (s *ReportService) ClassSummary(schoolID uuid.UUID, academicYear string, term int, classID *uuid.UUID) ([]ClassSummaryRow, error) {
	q := `
		SELECT
			c.class_id                                           AS class_id,
			c.class_name                                         AS class_name,
			COUNT(i.invoice_id)                                  AS students,
			COALESCE(SUM(i.invoice_total_kes), 0)                       AS billed_kes,
			COALESCE(SUM(i.invoice_paid_kes), 0)                        AS collected_kes,
			COALESCE(SUM(i.invoice_balance_kes), 0)                     AS balance_kes,
			COUNT(*) FILTER (WHERE i.invoice_status = 'PAID')           AS paid_count,
			COUNT(*) FILTER (WHERE i.invoice_status = 'PARTIALLY_PAID') AS partial_count,
			COUNT(*) FILTER (WHERE i.invoice_status = 'ISSUED')         AS unpaid_count
		FROM invoices i
		JOIN classes c ON c.class_id = i.invoice_class_id
		WHERE i.invoice_school_id = ?
		  AND i.invoice_academic_year = ?
		  AND i.invoice_term = ?
		  AND i.invoice_status <> 'VOID'
		  AND i.invoice_deleted_at IS NULL`
	args := []any{schoolID, academicYear, term}
	if classID != nil {
		q += `
		  AND i.invoice_class_id = ?`
		args = append(args, *classID)
	}
	q += `
		GROUP BY c.class_id, c.class_name
		ORDER BY c.class_name ASC
	`

	var rows []ClassSummaryRow
	err := s.DB.Raw(q, args...).Scan(&rows).Error
	return rows, err
}

// DefaulterFilter bounds a defaulters query. Limit defaults to 50, capped at
// 500; MinBalanceKES defaults to 1 (any outstanding shilling).
type DefaulterFilter struct {
	AcademicYear  string
	Term          int
	ClassID       *uuid.UUID
	MinBalanceKES int64
	Limit         int
}

func (f *DefaulterFilter) normalize() {
	if f.MinBalanceKES < 1 {
		f.MinBalanceKES = 1
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
}

// Defaulters lists non-void invoices with an outstanding balance at or above
// the threshold, largest debt first.
func (s *ReportService) Defaulters(schoolID uuid.UUID, f DefaulterFilter) ([]DefaulterRow, error) {
	f.normalize()

	q := `
		SELECT
			st.student_id           AS student_id,
			st.student_full_name    AS student_name,
			st.student_admission_no AS admission_no,
			c.class_name            AS class_name,
			i.invoice_no            AS invoice_no,
			i.invoice_total_kes     AS total_kes,
			i.invoice_paid_kes      AS paid_kes,
			i.invoice_balance_kes   AS balance_kes
		FROM invoices i
		JOIN students st ON st.student_id = i.invoice_student_id
		JOIN classes c  ON c.class_id = i.invoice_class_id
		WHERE i.invoice_school_id = ?
		  AND i.invoice_academic_year = ?
		  AND i.invoice_term = ?
		  AND i.invoice_status <> 'VOID'
		  AND i.invoice_deleted_at IS NULL
		  AND i.invoice_balance_kes >= ?`
	args := []any{schoolID, f.AcademicYear, f.Term, f.MinBalanceKES}
	if f.ClassID != nil {
		q += `
		  AND i.invoice_class_id = ?`
		args = append(args, *f.ClassID)
	}
	q += `
		ORDER BY balance_kes DESC, student_name ASC
		LIMIT ?`
	args = append(args, f.Limit)

	var rows []DefaulterRow
	err := s.DB.Raw(q, args...).Scan(&rows).Error
	return rows, err
}

// Collections totals active (non-reversed) payments per day and method over
// [from, to). Reversals drop the original out of the report entirely.
func (s *ReportService) Collections(schoolID uuid.UUID, from, to time.Time) ([]CollectionRow, error) {
	var rows []CollectionRow
	err := s.DB.Raw(`
		SELECT
			TO_CHAR(p.payment_received_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
			p.payment_method                                              AS method,
			COUNT(*)                                                      AS count,
			COALESCE(SUM(p.payment_amount_kes), 0)                        AS total_kes
		FROM payments p
		WHERE p.payment_school_id = ?
		  AND p.payment_received_at >= ?
		  AND p.payment_received_at < ?
		  AND p.payment_is_reversed = FALSE
		  AND p.payment_deleted_at IS NULL
		GROUP BY day, p.payment_method
		ORDER BY day ASC, p.payment_method ASC
	`, schoolID, from, to).Scan(&rows).Error
	return rows, err
}

/* ============ Export tables ============ */

func kes(v int64) string { return strconv.FormatInt(v, 10) }

func ClassSummaryTable(rows []ClassSummaryRow) helper.Table {
	t := helper.Table{
		Sheet:   "Class Summary",
		Headers: []string{"Class", "Invoices", "Billed (KES)", "Collected (KES)", "Balance (KES)", "Paid", "Partially Paid", "Issued"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.ClassName,
			strconv.FormatInt(r.Students, 10),
			kes(r.BilledKES),
			kes(r.CollectedKES),
			kes(r.BalanceKES),
			strconv.FormatInt(r.PaidCount, 10),
			strconv.FormatInt(r.PartialCount, 10),
			strconv.FormatInt(r.UnpaidCount, 10),
		})
	}
	return t
}

func DefaultersTable(rows []DefaulterRow) helper.Table {
	t := helper.Table{
		Sheet:   "Defaulters",
		Headers: []string{"Student", "Admission No", "Class", "Invoice No", "Total (KES)", "Paid (KES)", "Balance (KES)"},
	}
	for _, r := range rows {
		adm := ""
		if r.AdmissionNo != nil {
			adm = *r.AdmissionNo
		}
		t.Rows = append(t.Rows, []string{
			r.StudentName, adm, r.ClassName, r.InvoiceNo,
			kes(r.TotalKES), kes(r.PaidKES), kes(r.BalanceKES),
		})
	}
	return t
}

func CollectionsTable(rows []CollectionRow) helper.Table {
	t := helper.Table{
		Sheet:   "Collections",
		Headers: []string{"Day", "Method", "Payments", "Total (KES)"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Day, r.Method, strconv.FormatInt(r.Count, 10), kes(r.TotalKES),
		})
	}
	return t
}
