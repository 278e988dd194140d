package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	// "notblank" rejects whitespace-only strings.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ValidateRequest checks req's validate tags and turns the first failure into
// a 400 *fiber.Error naming the JSON field.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
