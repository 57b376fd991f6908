package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// paymentRefPattern is the character set permitted in scheme payment
// references (SWIFT x-character set, no leading/trailing slash).
var paymentRefPattern = regexp.MustCompile(`^[A-Za-z0-9/\-?:().,'+ ]+$`)

// RegisterCustomValidators installs domain-specific binding validators on
// the gin validator engine. Call once at startup before serving.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("paymentref", func(fl validator.FieldLevel) bool {
		return paymentRefPattern.MatchString(fl.Field().String())
	})
}
