package middleware

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// folioPattern accepts the folio formats issued by the capture screens:
// uppercase letters, digits and hyphens, e.g. REQ-2026-0042.
var folioPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]*$`)

// SetupValidator configures gin's validator engine: error messages use
// the json/form field names the client actually sent, and the custom
// folio tag becomes available to request bindings.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

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

	_ = v.RegisterValidation("folio", func(fl validator.FieldLevel) bool {
		return folioPattern.MatchString(fl.Field().String())
	})
}
