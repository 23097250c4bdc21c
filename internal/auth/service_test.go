package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/auth"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/gateway"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/gateway/gatewaytest"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/session"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/storage"
	apperrors "github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) (*auth.Service, *session.Session, *storage.Store, *gatewaytest.Server) {
	t.Helper()

	server := gatewaytest.New()
	t.Cleanup(server.Close)

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	client := gateway.New(gateway.DefaultConfig(server.URL), store, newTestLogger())
	sess := session.New(client, store, newTestLogger())
	client.OnUnauthorized(sess.Drop)

	return auth.NewService(client, sess, newTestLogger()), sess, store, server
}

func validRegistration() auth.RegisterInput {
	return auth.RegisterInput{
		FirstName: "Chikondi",
		LastName:  "Banda",
		Email:     "chikondi@example.mw",
		Phone:     "+265 991 234 567",
		Password:  "correct-horse",
	}
}

func TestLogin_EstablishesSession(t *testing.T) {
	svc, sess, store, _ := newTestService(t)

	require.NoError(t, svc.Login(context.Background(), "chikondi@example.mw", "secret"))

	require.True(t, sess.Authenticated())
	assert.Equal(t, "Chikondi Banda", sess.Current().Name)
	assert.Equal(t, "test-token", store.Token())
	assert.NotNil(t, store.RawUser())
}

func TestLogin_ValidatesBeforeNetwork(t *testing.T) {
	svc, sess, _, server := newTestService(t)
	server.Close()

	cases := []struct {
		name      string
		email     string
		password  string
		wantField string
	}{
		{"bad email", "not-an-email", "secret", "enter a valid email address"},
		{"empty email", "", "secret", "email is required"},
		{"empty password", "chikondi@example.mw", "", "password is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Login(context.Background(), tc.email, tc.password)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err), "must fail locally, the gateway is down")
			assert.Equal(t, tc.wantField, apperrors.UserMessage(err))
		})
	}
	assert.False(t, sess.Authenticated())
}

func TestLogin_RejectedCredentials(t *testing.T) {
	svc, sess, store, _ := newTestService(t)

	err := svc.Login(context.Background(), "chikondi@example.mw", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, "invalid email or password", apperrors.UserMessage(err))
	assert.False(t, sess.Authenticated())
	assert.Empty(t, store.Token())
}

func TestRegister_EstablishesSession(t *testing.T) {
	svc, sess, _, _ := newTestService(t)

	require.NoError(t, svc.Register(context.Background(), validRegistration()))
	assert.True(t, sess.Authenticated())
}

func TestRegister_FieldValidation(t *testing.T) {
	svc, _, _, server := newTestService(t)
	server.Close()

	cases := []struct {
		name   string
		mutate func(*auth.RegisterInput)
		want   string
	}{
		{"missing first name", func(i *auth.RegisterInput) { i.FirstName = " " }, "first name is required"},
		{"missing last name", func(i *auth.RegisterInput) { i.LastName = "" }, "last name is required"},
		{"bad email", func(i *auth.RegisterInput) { i.Email = "nope" }, "enter a valid email address"},
		{"bad phone", func(i *auth.RegisterInput) { i.Phone = "abc" }, "enter a valid phone number"},
		{"short password", func(i *auth.RegisterInput) { i.Password = "short" }, "password must be at least 8 characters"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validRegistration()
			tc.mutate(&input)

			err := svc.Register(context.Background(), input)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tc.want, apperrors.UserMessage(err))
		})
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "chikondi@example.mw"))
	require.NoError(t, svc.ConfirmPasswordReset(context.Background(), "emailed-token", "new-password"))

	err := svc.ConfirmPasswordReset(context.Background(), "", "new-password")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	err = svc.ConfirmPasswordReset(context.Background(), "emailed-token", "short")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestEmailVerification(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	require.NoError(t, svc.VerifyEmailToken(context.Background(), "link-token"))
	require.NoError(t, svc.VerifyEmailCode(context.Background(), "chikondi@example.mw", "482913"))

	err := svc.VerifyEmailToken(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	err = svc.VerifyEmailCode(context.Background(), "chikondi@example.mw", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
