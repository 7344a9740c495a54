// file: internals/features/finance/reports/service/report_service_db_test.go
package service

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var classSummaryCols = []string{
	"class_id", "class_name", "students",
	"billed_kes", "collected_kes", "balance_kes",
	"paid_count", "partial_count", "unpaid_count",
}

// With a class filter the query binds the class id as a fourth argument and
// only that class's aggregate comes back.
func TestClassSummaryFiltersByClass(t *testing.T) {
	db, mock := newMockDB(t)
	schoolID, classID := uuid.New(), uuid.New()

	mock.ExpectQuery(`i\.invoice_class_id = \$4`).
		WithArgs(schoolID.String(), "2026", 1, classID.String()).
		WillReturnRows(sqlmock.NewRows(classSummaryCols).
			AddRow(classID.String(), "Grade 6", 30, 150000, 90000, 60000, 10, 15, 5))

	rows, err := NewReportService(db).ClassSummary(schoolID, "2026", 1, &classID)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, classID, rows[0].ClassID)
	assert.Equal(t, "Grade 6", rows[0].ClassName)
	assert.EqualValues(t, 60000, rows[0].BalanceKES)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Without a filter the query binds exactly the school/year/term triple and
// sweeps every class.
func TestClassSummaryWholeSchool(t *testing.T) {
	db, mock := newMockDB(t)
	schoolID := uuid.New()

	mock.ExpectQuery(`FROM invoices i`).
		WithArgs(schoolID.String(), "2026", 2).
		WillReturnRows(sqlmock.NewRows(classSummaryCols).
			AddRow(uuid.NewString(), "Grade 6", 30, 150000, 90000, 60000, 10, 15, 5).
			AddRow(uuid.NewString(), "Grade 7", 28, 140000, 140000, 0, 28, 0, 0))

	rows, err := NewReportService(db).ClassSummary(schoolID, "2026", 2, nil)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Grade 7", rows[1].ClassName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
