package domain

import (
	"fmt"

	apperrors "github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/errors"
)

// Currency codes supported by the corridor.
const (
	CurrencyMWK = "MWK"
	CurrencyCNY = "CNY"
	CurrencyUSD = "USD"
	CurrencyZAR = "ZAR"
)

// Funding source constants.
const (
	FundingWallet       = "wallet"
	FundingMobileMoney  = "mobile_money"
	FundingBankTransfer = "bank_transfer"
	FundingCard         = "card"
)

// Payout method constants.
const (
	PayoutWallet      = "wallet"
	PayoutBankDeposit = "bank_deposit"
	PayoutMobileMoney = "mobile_money"
	PayoutCashPickup  = "cash_pickup"
)

// SupportedCurrencies returns the fixed currency set.
func SupportedCurrencies() []string {
	return []string{CurrencyMWK, CurrencyCNY, CurrencyUSD, CurrencyZAR}
}

// IsSupportedCurrency checks whether the given code is in the fixed set.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies() {
		if c == code {
			return true
		}
	}
	return false
}

// ValidFundingSources returns all valid funding sources.
func ValidFundingSources() []string {
	return []string{FundingWallet, FundingMobileMoney, FundingBankTransfer, FundingCard}
}

// IsValidFundingSource checks whether the given source is valid.
func IsValidFundingSource(source string) bool {
	for _, s := range ValidFundingSources() {
		if s == source {
			return true
		}
	}
	return false
}

// ValidPayoutMethods returns all valid payout methods.
func ValidPayoutMethods() []string {
	return []string{PayoutWallet, PayoutBankDeposit, PayoutMobileMoney, PayoutCashPickup}
}

// IsValidPayoutMethod checks whether the given method is valid.
func IsValidPayoutMethod(method string) bool {
	for _, m := range ValidPayoutMethods() {
		if m == method {
			return true
		}
	}
	return false
}

// TransferRequest is the in-flight payment the user is composing. It is
// created empty when the send-money flow starts, mutated field by field, and
// consumed exactly once on submit.
type TransferRequest struct {
	Amount         float64 `json:"amount"`
	SourceCurrency string  `json:"source_currency"`
	TargetCurrency string  `json:"target_currency"`
	FundingSource  string  `json:"funding_source"`
	PayoutMethod   string  `json:"payout_method"`
	Recipient      string  `json:"recipient"`
}

// Validate re-checks the request at submission time, regardless of any
// earlier per-field checks.
func (r *TransferRequest) Validate() error {
	if r.Amount <= 0 {
		return apperrors.Validation("amount must be greater than zero")
	}
	if !IsSupportedCurrency(r.SourceCurrency) {
		return apperrors.Validation(fmt.Sprintf("unsupported source currency %q", r.SourceCurrency))
	}
	if !IsSupportedCurrency(r.TargetCurrency) {
		return apperrors.Validation(fmt.Sprintf("unsupported target currency %q", r.TargetCurrency))
	}
	if r.SourceCurrency == r.TargetCurrency {
		return apperrors.Validation("target currency must differ from source currency")
	}
	if !IsValidFundingSource(r.FundingSource) {
		return apperrors.Validation("select a funding source")
	}
	if !IsValidPayoutMethod(r.PayoutMethod) {
		return apperrors.Validation("select a payout method")
	}
	if r.Recipient == "" {
		return apperrors.Validation("recipient is required")
	}
	return nil
}

// RatePreview is a transient quote tied to a specific
// (source currency, target currency, amount) triple. It is never cached
// across triples.
type RatePreview struct {
	SourceCurrency  string  `json:"source_currency"`
	TargetCurrency  string  `json:"target_currency"`
	Amount          float64 `json:"amount"`
	Rate            float64 `json:"rate"`
	ConvertedAmount float64 `json:"converted_amount"`
	Fee             float64 `json:"fee"`
}

// Matches reports whether the preview was computed for the given triple.
func (p *RatePreview) Matches(amount float64, source, target string) bool {
	return p.Amount == amount && p.SourceCurrency == source && p.TargetCurrency == target
}

// TransferReceipt is the outcome of a successful submission.
type TransferReceipt struct {
	TransactionID string `json:"transaction_id"`
	Counterparty  string `json:"counterparty"`
}

// CounterpartyDisplay picks the counterparty label: display name, else wallet
// number, else the raw identifier.
func CounterpartyDisplay(name, walletNumber, identifier string) string {
	if name != "" {
		return name
	}
	if walletNumber != "" {
		return walletNumber
	}
	return identifier
}
