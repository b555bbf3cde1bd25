package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

// requestValidator plugs go-playground/validator into echo's c.Validate.
// Besides the built-in tags it knows "role" and "place_status", which accept
// exactly the values the domain accepts.
type requestValidator struct {
	v *validator.Validate
}

func NewValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("place_status", func(fl validator.FieldLevel) bool {
		return domain.PlaceStatus(fl.Field().String()).Valid()
	})
	return &requestValidator{v: v}
}

// jsonFieldName makes messages name fields the way the client spelled them.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	problems := make([]string, len(fields))
	for i, fe := range fields {
		problems[i] = describe(fe)
	}
	return errors.New(strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte", "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		case reflect.Slice:
			return fmt.Sprintf("%s must have at least %s elements", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "role":
		return fmt.Sprintf("%s must be one of %s %s %s %s", field,
			domain.RoleUser, domain.RoleAdmin, domain.RoleManager, domain.RoleSuperAdmin)
	case "place_status":
		return fmt.Sprintf("%s must be one of %s %s %s", field,
			domain.PlaceAvailable, domain.PlaceOccupied, domain.PlaceMaintenance)
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, param)
	}
	return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
}
