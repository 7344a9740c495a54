// file: internals/features/finance/invoices/dto/invoice_dto_test.go
package dto

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validate = validator.New()

func validGenerateRequest() GenerateInvoiceRequest {
	return GenerateInvoiceRequest{
		StudentID:    uuid.New(),
		ClassID:      uuid.New(),
		FeePlanID:    uuid.New(),
		AcademicYear: "2026",
		Term:         1,
	}
}

// Every reference on the generate request is mandatory: a zeroed student,
// class or plan id must fail validation before the service is reached.
func TestGenerateInvoiceRequestRequiredFields(t *testing.T) {
	ok := validGenerateRequest()
	require.NoError(t, validate.Struct(&ok))

	cases := []struct {
		name   string
		mutate func(*GenerateInvoiceRequest)
	}{
		{"missing student_id", func(r *GenerateInvoiceRequest) { r.StudentID = uuid.Nil }},
		{"missing class_id", func(r *GenerateInvoiceRequest) { r.ClassID = uuid.Nil }},
		{"missing fee_plan_id", func(r *GenerateInvoiceRequest) { r.FeePlanID = uuid.Nil }},
		{"missing academic_year", func(r *GenerateInvoiceRequest) { r.AcademicYear = "" }},
		{"missing term", func(r *GenerateInvoiceRequest) { r.Term = 0 }},
		{"term out of range", func(r *GenerateInvoiceRequest) { r.Term = 4 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validGenerateRequest()
			tc.mutate(&req)
			assert.Error(t, validate.Struct(&req))
		})
	}
}

func TestGenerateInvoiceRequestWireNames(t *testing.T) {
	studentID, classID, planID := uuid.New(), uuid.New(), uuid.New()
	body := `{
		"student_id": "` + studentID.String() + `",
		"class_id": "` + classID.String() + `",
		"fee_plan_id": "` + planID.String() + `",
		"academic_year": "2026",
		"term": 2
	}`

	var req GenerateInvoiceRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, studentID, req.StudentID)
	assert.Equal(t, classID, req.ClassID)
	assert.Equal(t, planID, req.FeePlanID)
	assert.Equal(t, "2026", req.AcademicYear)
	assert.Equal(t, 2, req.Term)
}
