// file: internals/features/finance/reports/service/report_service_test.go
package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaulterFilterNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        DefaulterFilter
		wantMin   int64
		wantLimit int
	}{
		{"zeroes get defaults", DefaulterFilter{}, 1, 50},
		{"negative min clamps", DefaulterFilter{MinBalanceKES: -5, Limit: 10}, 1, 10},
		{"limit capped at 500", DefaulterFilter{MinBalanceKES: 100, Limit: 9000}, 100, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.normalize()
			assert.Equal(t, tc.wantMin, tc.in.MinBalanceKES)
			assert.Equal(t, tc.wantLimit, tc.in.Limit)
		})
	}
}

// The export table must carry exactly the rows the JSON response carries,
// in the same order, one table row per report row.
func TestClassSummaryTable(t *testing.T) {
	rows := []ClassSummaryRow{
		{ClassID: uuid.New(), ClassName: "Grade 6", Students: 30, BilledKES: 150000, CollectedKES: 90000, BalanceKES: 60000, PaidCount: 10, PartialCount: 15, UnpaidCount: 5},
		{ClassID: uuid.New(), ClassName: "Grade 7", Students: 28, BilledKES: 140000, CollectedKES: 140000, BalanceKES: 0, PaidCount: 28},
	}
	tbl := ClassSummaryTable(rows)

	require.Len(t, tbl.Rows, len(rows))
	assert.Equal(t, "Class Summary", tbl.Sheet)
	assert.Equal(t,
		[]string{"Grade 6", "30", "150000", "90000", "60000", "10", "15", "5"},
		tbl.Rows[0])
	assert.Equal(t,
		[]string{"Grade 7", "28", "140000", "140000", "0", "28", "0", "0"},
		tbl.Rows[1])
}

func TestDefaultersTable(t *testing.T) {
	adm := "ADM-0042"
	rows := []DefaulterRow{
		{StudentID: uuid.New(), StudentName: "Achieng Otieno", AdmissionNo: &adm, ClassName: "Grade 6", InvoiceNo: "INV-000007", TotalKES: 5000, PaidKES: 500, BalanceKES: 4500},
		{StudentID: uuid.New(), StudentName: "Brian Kipchoge", ClassName: "Grade 6", InvoiceNo: "INV-000008", TotalKES: 5000, PaidKES: 3800, BalanceKES: 1200},
	}
	tbl := DefaultersTable(rows)

	require.Len(t, tbl.Rows, 2)
	assert.Equal(t,
		[]string{"Achieng Otieno", "ADM-0042", "Grade 6", "INV-000007", "5000", "500", "4500"},
		tbl.Rows[0])
	// missing admission number renders empty, not "<nil>"
	assert.Equal(t, "", tbl.Rows[1][1])
}

func TestCollectionsTable(t *testing.T) {
	rows := []CollectionRow{
		{Day: "2026-08-20", Method: "CASH", Count: 3, TotalKES: 7000},
		{Day: "2026-08-20", Method: "MPESA", Count: 11, TotalKES: 43500},
	}
	tbl := CollectionsTable(rows)

	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Day", "Method", "Payments", "Total (KES)"}, tbl.Headers)
	assert.Equal(t, []string{"2026-08-20", "MPESA", "11", "43500"}, tbl.Rows[1])
}
