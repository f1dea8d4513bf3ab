package middleware

import (
	"reflect"
	"strings"

	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator configures the binding validator with custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	// period validates a YYYYMM reporting period
	_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if !field.CanInt() {
			return false
		}
		return valueobject.Period(field.Int()).IsValid()
	})
}
