// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	Username string `validate:"required,username"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,strong_password"`
}

func TestValidateStructAcceptsWellFormedRegistration(t *testing.T) {
	err := ValidateStruct(&registration{
		Username: "marie_c",
		Email:    "marie@example.com",
		Password: "S3cure!pass",
	})
	assert.NoError(t, err)
}

func TestValidateStructRejectsBadFields(t *testing.T) {
	tests := []struct {
		name  string
		input registration
		field string
		tag   string
	}{
		{
			name:  "username too short",
			input: registration{Username: "ab", Email: "a@b.fr", Password: "S3cure!pass"},
			field: "username",
			tag:   "username",
		},
		{
			name:  "username with spaces",
			input: registration{Username: "marie c", Email: "a@b.fr", Password: "S3cure!pass"},
			field: "username",
			tag:   "username",
		},
		{
			name:  "invalid email",
			input: registration{Username: "marie_c", Email: "not-an-email", Password: "S3cure!pass"},
			field: "email",
			tag:   "email",
		},
		{
			name:  "password without special character",
			input: registration{Username: "marie_c", Email: "a@b.fr", Password: "S3curepass"},
			field: "password",
			tag:   "strong_password",
		},
		{
			name:  "missing password",
			input: registration{Username: "marie_c", Email: "a@b.fr"},
			field: "password",
			tag:   "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := GetValidationErrors(ValidateStruct(&tt.input))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.tag, errs[0].Tag)
			assert.NotEmpty(t, errs[0].Message)
		})
	}
}
