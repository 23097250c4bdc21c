package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/domain"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/pagination"
)

// AuthResponse is the gateway payload for login and registration. The user
// object is kept raw so the session layer can persist it verbatim and run it
// through the profile mapper.
type AuthResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// RegisterInput holds the parameters for creating an account.
type RegisterInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Country   string `json:"country,omitempty"`
	UserType  string `json:"user_type,omitempty"`
}

// TransferResponse is the gateway payload for a submitted transfer.
type TransferResponse struct {
	TransactionID   string `json:"transaction_id"`
	RecipientName   string `json:"recipient_name"`
	RecipientWallet string `json:"recipient_wallet"`
	RecipientID     string `json:"recipient_id"`
}

// CurrentUser fetches the authoritative raw user payload for the session.
func (c *Client) CurrentUser(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, request{
		operation: "current_user",
		method:    http.MethodGet,
		path:      "/v1/auth/me",
	}, &raw)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Login exchanges credentials for a bearer token and the raw user payload.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		operation: "login",
		method:    http.MethodPost,
		path:      "/v1/auth/login",
		body: map[string]string{
			"email":    email,
			"password": password,
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account and returns the initial session.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		operation: "register",
		method:    http.MethodPost,
		path:      "/v1/auth/register",
		body:      input,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestPasswordReset asks the gateway to start a password reset for email.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, request{
		operation: "password_reset_request",
		method:    http.MethodPost,
		path:      "/v1/auth/password-reset/request",
		body:      map[string]string{"email": email},
	}, nil)
}

// ConfirmPasswordReset completes a password reset with the emailed token.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, request{
		operation: "password_reset_confirm",
		method:    http.MethodPost,
		path:      "/v1/auth/password-reset/confirm",
		body: map[string]string{
			"token":    token,
			"password": newPassword,
		},
	}, nil)
}

// VerifyEmailToken verifies an email address via the link token.
func (c *Client) VerifyEmailToken(ctx context.Context, token string) error {
	q := url.Values{}
	q.Set("token", token)
	return c.do(ctx, request{
		operation: "verify_email_token",
		method:    http.MethodGet,
		path:      "/v1/auth/verify-email",
		query:     q,
	}, nil)
}

// VerifyEmailCode verifies an email address via the short code.
func (c *Client) VerifyEmailCode(ctx context.Context, email, code string) error {
	return c.do(ctx, request{
		operation: "verify_email_code",
		method:    http.MethodPost,
		path:      "/v1/auth/verify-email",
		body: map[string]string{
			"email": email,
			"code":  code,
		},
	}, nil)
}

// Wallets lists the user's currency wallets.
func (c *Client) Wallets(ctx context.Context) ([]domain.Wallet, error) {
	var out []domain.Wallet
	err := c.do(ctx, request{
		operation: "wallets",
		method:    http.MethodGet,
		path:      "/v1/wallets",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transactions lists past transfers, newest first.
func (c *Client) Transactions(ctx context.Context, params pagination.Params) (pagination.Result[domain.Transaction], error) {
	var out pagination.Result[domain.Transaction]
	err := c.do(ctx, request{
		operation: "transactions",
		method:    http.MethodGet,
		path:      "/v1/transactions",
		query:     params.Query(),
	}, &out)
	if err != nil {
		return pagination.Result[domain.Transaction]{}, err
	}
	return out, nil
}

// Rate looks up the exchange rate for the given currency pair and amount.
// The call is bounded by the quote timeout and routed through the circuit
// breaker: the quote loop runs on every input change and must fail fast.
func (c *Client) Rate(ctx context.Context, source, target string, amount float64) (domain.RatePreview, error) {
	ctx, cancel := context.WithTimeout(ctx, c.quoteTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("from", source)
	q.Set("to", target)
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))

	var out struct {
		Rate            float64 `json:"rate"`
		ConvertedAmount float64 `json:"converted_amount"`
		Fee             float64 `json:"fee"`
	}
	err := c.do(ctx, request{
		operation: "rate",
		method:    http.MethodGet,
		path:      "/v1/rates",
		query:     q,
		resilient: true,
	}, &out)
	if err != nil {
		return domain.RatePreview{}, err
	}

	return domain.RatePreview{
		SourceCurrency:  source,
		TargetCurrency:  target,
		Amount:          amount,
		Rate:            out.Rate,
		ConvertedAmount: out.ConvertedAmount,
		Fee:             out.Fee,
	}, nil
}

// SubmitTransfer submits a composed transfer, bounded by the submit timeout.
func (c *Client) SubmitTransfer(ctx context.Context, req domain.TransferRequest) (*TransferResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	var out TransferResponse
	err := c.do(ctx, request{
		operation: "submit_transfer",
		method:    http.MethodPost,
		path:      "/v1/transfers",
		body:      req,
		resilient: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDocument submits a compliance document as a multipart upload.
func (c *Client) UploadDocument(ctx context.Context, docType, fileName string, content io.Reader) (domain.Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("type", docType); err != nil {
		return domain.Document{}, fmt.Errorf("write document type field: %w", err)
	}
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return domain.Document{}, fmt.Errorf("create document form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return domain.Document{}, fmt.Errorf("copy document content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return domain.Document{}, fmt.Errorf("finalize multipart body: %w", err)
	}

	var out domain.Document
	err = c.do(ctx, request{
		operation:   "upload_document",
		method:      http.MethodPost,
		path:        "/v1/kyc/documents",
		raw:         &buf,
		contentType: mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return domain.Document{}, err
	}
	return out, nil
}

// Documents lists the user's submitted compliance documents.
func (c *Client) Documents(ctx context.Context) ([]domain.Document, error) {
	var out []domain.Document
	err := c.do(ctx, request{
		operation: "documents",
		method:    http.MethodGet,
		path:      "/v1/kyc/documents",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
