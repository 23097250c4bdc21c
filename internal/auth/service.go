// Package auth orchestrates the sign-in surfaces: login, registration,
// password reset, and email verification. Input is validated locally before
// any network call; a successful login or registration establishes the
// session in one step.
package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/gateway"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/validate"
	apperrors "github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/errors"
)

// Gateway is the slice of the API client the auth flows need.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*gateway.AuthResponse, error)
	Register(ctx context.Context, input gateway.RegisterInput) (*gateway.AuthResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	VerifyEmailToken(ctx context.Context, token string) error
	VerifyEmailCode(ctx context.Context, email, code string) error
}

// SessionWriter installs a fresh session after a successful login or
// registration.
type SessionWriter interface {
	Establish(token string, rawUser json.RawMessage) error
}

// Service runs the auth flows.
type Service struct {
	gateway Gateway
	session SessionWriter
	logger  *slog.Logger
}

// NewService creates an auth service.
func NewService(gw Gateway, session SessionWriter, logger *slog.Logger) *Service {
	return &Service{
		gateway: gw,
		session: session,
		logger:  logger,
	}
}

// RegisterInput is the registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Country   string
	UserType  string
}

// Login signs the user in and establishes the session.
func (s *Service) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := validate.Email(email); err != nil {
		return err
	}
	if password == "" {
		return apperrors.Validation("password is required")
	}

	resp, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if err := s.session.Establish(resp.Token, resp.User); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "user signed in")
	return nil
}

// Register creates an account and establishes the initial session.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)

	if err := validate.Required("first name", input.FirstName); err != nil {
		return err
	}
	if err := validate.Required("last name", input.LastName); err != nil {
		return err
	}
	if err := validate.Email(input.Email); err != nil {
		return err
	}
	if err := validate.Phone(input.Phone); err != nil {
		return err
	}
	if err := validate.Password(input.Password); err != nil {
		return err
	}

	resp, err := s.gateway.Register(ctx, gateway.RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		Password:  input.Password,
		Country:   input.Country,
		UserType:  input.UserType,
	})
	if err != nil {
		return err
	}

	if err := s.session.Establish(resp.Token, resp.User); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "account created")
	return nil
}

// RequestPasswordReset starts a reset for the given email. The gateway
// answers the same way whether or not the account exists.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validate.Email(email); err != nil {
		return err
	}
	return s.gateway.RequestPasswordReset(ctx, email)
}

// ConfirmPasswordReset completes a reset with the emailed token and the new
// password. It does not sign the user in; they log in with the new password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.Validation("reset token is required")
	}
	if err := validate.Password(newPassword); err != nil {
		return err
	}
	return s.gateway.ConfirmPasswordReset(ctx, token, newPassword)
}

// VerifyEmailToken verifies via the emailed link token.
func (s *Service) VerifyEmailToken(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.Validation("verification token is required")
	}
	return s.gateway.VerifyEmailToken(ctx, token)
}

// VerifyEmailCode verifies via the short code shown in the email.
func (s *Service) VerifyEmailCode(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if err := validate.Email(email); err != nil {
		return err
	}
	if code == "" {
		return apperrors.Validation("verification code is required")
	}
	return s.gateway.VerifyEmailCode(ctx, email, code)
}
