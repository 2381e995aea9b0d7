package accountdelivery

import (
	"github.com/go-playground/validator/v10"

	"github.com/deskbank/deskbank/internal/domain"
)

// ValidAccountType validates whether the account type token is supported.
var ValidAccountType validator.Func = func(fl validator.FieldLevel) bool {
	if t, ok := fl.Field().Interface().(string); ok {
		_, err := domain.ParseAccountType(t)
		return err == nil
	}

	return false
}
