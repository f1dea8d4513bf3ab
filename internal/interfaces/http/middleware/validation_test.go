package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type periodPayload struct {
	Period int `json:"period" binding:"required,period"`
}

func TestSetupValidator_PeriodRule(t *testing.T) {
	SetupValidator()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	tests := []struct {
		name    string
		period  int
		wantErr bool
	}{
		{"valid period", 202403, false},
		{"december", 202412, false},
		{"month zero", 202400, true},
		{"month thirteen", 202413, true},
		{"bare year", 2024, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(periodPayload{Period: tt.period})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetupValidator_UsesJSONFieldNames(t *testing.T) {
	SetupValidator()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(periodPayload{})
	require.Error(t, err)

	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Equal(t, "period", verrs[0].Field())
}
