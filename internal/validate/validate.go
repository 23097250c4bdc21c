// Package validate holds the per-field checks the screens run as the user
// types. Every function returns nil or a validation error whose message is
// written for display next to the field.
package validate

import (
	"strconv"
	"strings"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/domain"
	apperrors "github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/errors"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/validator"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// Email checks an email address.
func Email(value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.Validation("email is required")
	}
	if err := validator.Var(value, "email"); err != nil {
		return apperrors.Validation("enter a valid email address")
	}
	return nil
}

// Password checks a new password's length. Strength beyond length is
// advisory and reported separately.
func Password(value string) error {
	if value == "" {
		return apperrors.Validation("password is required")
	}
	if len(value) < MinPasswordLength {
		return apperrors.Validation("password must be at least 8 characters")
	}
	return nil
}

// Required checks that a field has a non-blank value. The label names the
// field in the message, lower-cased to match the surrounding copy.
func Required(label, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.Validation(label + " is required")
	}
	return nil
}

// Amount parses and checks a money amount entered as text.
func Amount(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, apperrors.Validation("amount is required")
	}

	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, apperrors.Validation("enter a valid amount")
	}
	if amount <= 0 {
		return 0, apperrors.Validation("amount must be greater than zero")
	}
	return amount, nil
}

// Currency checks a currency code against the supported set.
func Currency(code string) error {
	if !domain.IsSupportedCurrency(code) {
		return apperrors.Validation("select a supported currency")
	}
	return nil
}

// Phone checks a phone number loosely: optional leading plus, then digits,
// spaces, and dashes, at least seven digits total. Exact numbering-plan rules
// stay on the server.
func Phone(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return apperrors.Validation("phone number is required")
	}

	digits := 0
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-':
		default:
			return apperrors.Validation("enter a valid phone number")
		}
	}
	if digits < 7 {
		return apperrors.Validation("enter a valid phone number")
	}
	return nil
}
