package session

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"socialclient/utils"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return strings.ReplaceAll(name, "_", " ")
	})
	return v
}

// validationError turns the first failed rule into an inline message.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return utils.Validation(err.Error())
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return utils.Validation(fmt.Sprintf("%s is required", field))
	case "email":
		return utils.Validation(fmt.Sprintf("%s must be a valid email address", field))
	case "min":
		return utils.Validation(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return utils.Validation(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "url":
		return utils.Validation(fmt.Sprintf("%s must be a valid URL", field))
	}
	return utils.Validation(fmt.Sprintf("%s is invalid", field))
}
