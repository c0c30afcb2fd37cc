package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
	"github.com/magnusoverli/sushe-online-sub003/internal/validation"
)

type scanRequest struct {
	Year  string `json:"year" validate:"required,year"`
	Actor string `json:"actor" validate:"required"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := scanRequest{
		Year:  "2024",
		Actor: "user-admin",
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name       string
		req        scanRequest
		wantErrMsg string
	}{
		{
			name:       "missing actor",
			req:        scanRequest{Year: "2024"},
			wantErrMsg: "actor",
		},
		{
			name:       "missing year",
			req:        scanRequest{Actor: "user-admin"},
			wantErrMsg: "year",
		},
		{
			name:       "year too short",
			req:        scanRequest{Year: "202", Actor: "user-admin"},
			wantErrMsg: "year",
		},
		{
			name:       "year not numeric",
			req:        scanRequest{Year: "20x4", Actor: "user-admin"},
			wantErrMsg: "year",
		},
		{
			name:       "year with whitespace",
			req:        scanRequest{Year: "2024 ", Actor: "user-admin"},
			wantErrMsg: "year",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *domainerrors.Error
			if assert.True(t, domainerrors.As(err, &domainErr)) {
				assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
				details, ok := domainErr.Details.(map[string]string)
				if assert.True(t, ok, "details should carry field errors") {
					assert.Contains(t, details, tt.wantErrMsg)
				}
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := scanRequest{Year: "2024"}

	err := v.Validate(req)
	assert.Error(t, err)

	var domainErr *domainerrors.Error
	if assert.True(t, domainerrors.As(err, &domainErr)) {
		details, ok := domainErr.Details.(map[string]string)
		if assert.True(t, ok) {
			// Should use JSON tag name "actor", not struct field name "Actor"
			assert.Contains(t, details, "actor")
			assert.NotContains(t, details, "Actor")
		}
	}
}
