package gateway_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/domain"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/gateway"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/gateway/gatewaytest"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/storage"
	apperrors "github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/errors"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/logger"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/pagination"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T) (*gateway.Client, *storage.Store, *gatewaytest.Server) {
	t.Helper()

	server := gatewaytest.New()
	t.Cleanup(server.Close)

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.SetToken("test-token"))

	client := gateway.New(gateway.DefaultConfig(server.URL), store, newTestLogger())
	return client, store, server
}

func TestClient_AttachesAuthAndDeviceHeaders(t *testing.T) {
	client, store, server := newTestClient(t)

	wallets, err := client.Wallets(context.Background())
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, domain.CurrencyMWK, wallets[0].Currency)

	assert.Equal(t, "Bearer test-token", server.LastAuthHeader())

	deviceID, err := store.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, deviceID, server.LastDeviceHeader())
}

func TestClient_DeviceIDStableAcrossRequests(t *testing.T) {
	client, _, server := newTestClient(t)

	for i := 0; i < 3; i++ {
		_, err := client.Wallets(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 1, server.DeviceIDCount())
}

func TestClient_NoAuthHeaderWithoutToken(t *testing.T) {
	server := gatewaytest.New()
	t.Cleanup(server.Close)

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	client := gateway.New(gateway.DefaultConfig(server.URL), store, newTestLogger())

	err = client.RequestPasswordReset(context.Background(), "someone@example.mw")
	require.NoError(t, err)
	assert.Empty(t, server.LastAuthHeader())
}

func TestClient_UnauthorizedClearsTokenAndInvokesHook(t *testing.T) {
	client, store, server := newTestClient(t)
	server.SetToken("rotated-elsewhere")

	var hookCalls int
	client.OnUnauthorized(func() { hookCalls++ })

	_, err := client.CurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, "session expired", apperrors.UserMessage(err))

	assert.Empty(t, store.Token(), "token must be cleared before the error surfaces")
	assert.Equal(t, 1, hookCalls)
}

func TestClient_APIErrorPreservesServerMessage(t *testing.T) {
	client, store, server := newTestClient(t)
	server.FailSubmit(http.StatusUnprocessableEntity, "insufficient balance")

	_, err := client.SubmitTransfer(context.Background(), validTransferRequest())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
	assert.Equal(t, "insufficient balance", appErr.Message)
	assert.False(t, apperrors.IsUnauthorized(err))
	assert.False(t, apperrors.IsNetwork(err))

	assert.Equal(t, "test-token", store.Token(), "non-auth failures must not touch the session")
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	server := gatewaytest.New()
	baseURL := server.URL
	server.Close()

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.SetToken("test-token"))

	client := gateway.New(gateway.DefaultConfig(baseURL), store, newTestLogger())

	_, err = client.Wallets(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err))
	assert.Equal(t, "could not reach the server, check your connection", apperrors.UserMessage(err))
	assert.Equal(t, "test-token", store.Token())
}

func TestClient_LogLinesCarryDeviceID(t *testing.T) {
	server := gatewaytest.New()
	t.Cleanup(server.Close)
	server.FailSubmit(http.StatusUnprocessableEntity, "insufficient balance")

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.SetToken("test-token"))

	var buf bytes.Buffer
	client := gateway.New(gateway.DefaultConfig(server.URL), store, logger.NewWithWriter("wallet-test", "info", &buf))

	_, err = client.SubmitTransfer(context.Background(), validTransferRequest())
	require.Error(t, err)

	deviceID, err := store.DeviceID()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"device_id":"`+deviceID+`"`)
}

func TestClient_OpenBreakerFailsFastWithRetryableMessage(t *testing.T) {
	server := gatewaytest.New()
	t.Cleanup(server.Close)
	server.FailSubmit(http.StatusInternalServerError, "boom")

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.SetToken("test-token"))

	cfg := gateway.DefaultConfig(server.URL)
	cfg.Breaker.MinRequests = 2
	cfg.Breaker.FailureRatio = 0.5
	client := gateway.New(cfg, store, newTestLogger())

	// Two server errors trip the breaker.
	for i := 0; i < 2; i++ {
		_, err := client.SubmitTransfer(context.Background(), validTransferRequest())
		require.Error(t, err)
	}

	_, err = client.SubmitTransfer(context.Background(), validTransferRequest())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.Equal(t, "transfers are briefly unavailable, please retry in a moment", appErr.Message)
}

func TestClient_Login(t *testing.T) {
	client, _, _ := newTestClient(t)

	resp, err := client.Login(context.Background(), "chikondi@example.mw", "secret")
	require.NoError(t, err)
	assert.Equal(t, "test-token", resp.Token)
	assert.Contains(t, string(resp.User), "chikondi@example.mw")
}

func TestClient_LoginRejected(t *testing.T) {
	client, _, _ := newTestClient(t)

	_, err := client.Login(context.Background(), "chikondi@example.mw", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, "invalid email or password", apperrors.UserMessage(err))
}

func TestClient_Rate(t *testing.T) {
	client, _, server := newTestClient(t)
	server.SetRateFunc(func(from, to string, amount float64) (float64, float64, float64) {
		return 0.005, amount * 0.005, 1.25
	})

	preview, err := client.Rate(context.Background(), domain.CurrencyMWK, domain.CurrencyCNY, 200)
	require.NoError(t, err)

	assert.Equal(t, domain.CurrencyMWK, preview.SourceCurrency)
	assert.Equal(t, domain.CurrencyCNY, preview.TargetCurrency)
	assert.Equal(t, 200.0, preview.Amount)
	assert.Equal(t, 0.005, preview.Rate)
	assert.Equal(t, 1.0, preview.ConvertedAmount)
	assert.Equal(t, 1.25, preview.Fee)
}

func TestClient_RateHonorsQuoteTimeout(t *testing.T) {
	server := gatewaytest.New()
	t.Cleanup(server.Close)
	server.SetRateDelay(func(string, string, float64) {
		time.Sleep(200 * time.Millisecond)
	})

	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.SetToken("test-token"))

	cfg := gateway.DefaultConfig(server.URL)
	cfg.QuoteTimeout = 20 * time.Millisecond
	client := gateway.New(cfg, store, newTestLogger())

	_, err = client.Rate(context.Background(), domain.CurrencyMWK, domain.CurrencyCNY, 100)
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_SubmitTransfer(t *testing.T) {
	client, _, _ := newTestClient(t)

	resp, err := client.SubmitTransfer(context.Background(), validTransferRequest())
	require.NoError(t, err)
	assert.Equal(t, "txn-0001", resp.TransactionID)
	assert.Equal(t, "Li Wei", resp.RecipientName)
	assert.Equal(t, "9876543210987654", resp.RecipientWallet)
}

func TestClient_Transactions(t *testing.T) {
	client, _, server := newTestClient(t)
	server.SetTransactions([]domain.Transaction{
		{ID: "t-1", Direction: domain.TransactionSent, Status: domain.TransactionCompleted, Amount: 100, Currency: domain.CurrencyMWK, Counterparty: "Li Wei"},
		{ID: "t-2", Direction: domain.TransactionReceived, Status: domain.TransactionPending, Amount: 45, Currency: domain.CurrencyCNY, Counterparty: "Zhang Min"},
	})

	result, err := client.Transactions(context.Background(), pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 10, result.PerPage)
	assert.Equal(t, "t-1", result.Data[0].ID)
}

func TestClient_UploadAndListDocuments(t *testing.T) {
	client, _, _ := newTestClient(t)

	doc, err := client.UploadDocument(context.Background(), domain.DocumentPassport, "passport.jpg", bytes.NewReader([]byte("jpeg bytes")))
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentPassport, doc.Type)
	assert.Equal(t, "passport.jpg", doc.FileName)
	assert.Equal(t, domain.DocumentSubmitted, doc.Status)

	docs, err := client.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)
}

func validTransferRequest() domain.TransferRequest {
	return domain.TransferRequest{
		Amount:         150,
		SourceCurrency: domain.CurrencyMWK,
		TargetCurrency: domain.CurrencyCNY,
		FundingSource:  domain.FundingWallet,
		PayoutMethod:   domain.PayoutMobileMoney,
		Recipient:      "wallet:9876543210987654",
	}
}
