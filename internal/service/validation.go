package service

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

func checkLength(details map[string]any, field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		details[field] = fmt.Sprintf("max=%d", limit)
	}
}

// validateAccountFields rejects nombre and correo values longer than their columns.
func validateAccountFields(name, email string) error {
	details := map[string]any{}
	checkLength(details, "nombre", name, domain.MaxUserNameLength)
	checkLength(details, "correo", email, domain.MaxEmailLength)
	if len(details) > 0 {
		return apperrors.NewValidationError("value too long", details)
	}
	return nil
}

// hashPassword reports passwords bcrypt cannot hash as invalid input.
func hashPassword(field, password string, cost int) (string, error) {
	hash, err := auth.HashPassword(password, cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("password too long", map[string]any{field: "max=72 bytes"})
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}
