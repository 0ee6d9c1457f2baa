package server

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var planCodeRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// registerValidators adds custom binding rules to gin's validator engine.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// plan_code: lowercase snake_case identifiers, safe to embed in provider
	// metadata and URLs.
	v.RegisterValidation("plan_code", func(fl validator.FieldLevel) bool {
		return planCodeRe.MatchString(fl.Field().String())
	})
}
