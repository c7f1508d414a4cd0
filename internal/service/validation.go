package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/parking-service/internal/domain"
	apperrors "github.com/spec-kit/parking-service/pkg/util/errorutil"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string       `validate:"required"`
	Email    string       `validate:"required,email"`
	Password string       `validate:"min=4"`
	Phone    *string
	Role     *domain.Role `validate:"omitnil,oneof=user owner"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// fieldMessages maps a struct field to the message reported when it fails.
type fieldMessages map[string]string

var registerMessages = fieldMessages{
	"Name":     "Name is required",
	"Email":    "Invalid email format",
	"Password": "Password must be at least 4 characters",
	"Role":     "Role must be one of: user, owner",
}

var loginMessages = fieldMessages{
	"Email":    "Invalid email format",
	"Password": "Password is required",
}

func (in RegisterInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	return checkFields(in, registerMessages)
}

func (in LoginInput) validate() error {
	in.Email = strings.TrimSpace(in.Email)
	return checkFields(in, loginMessages)
}

// checkFields runs the struct's validate tags and joins one message per
// failing field, in declaration order.
func checkFields(in any, messages fieldMessages) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return apperrors.NewInternalError(err)
	}

	fields := make([]apperrors.FieldError, 0, len(invalid))
	for _, fe := range invalid {
		fields = append(fields, apperrors.FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: messages[fe.StructField()],
		})
	}
	return apperrors.NewFieldValidationError(fields)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
