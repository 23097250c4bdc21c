// Package transfer drives the send-money flow: a small state machine around
// the request the user is composing, the live rate preview, and the single
// submission. Quotes are re-fetched on every input change, so responses can
// arrive out of order; every edit bumps a sequence number and a quote result
// is applied only while the flow is still quoting and no edit happened after
// it was requested. A result that lands after a submission is discarded, a
// completed transfer never reopens.
package transfer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/domain"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/gateway"
	apperrors "github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/errors"
)

// State is the phase of the send-money flow.
type State string

// Flow states.
const (
	StateComposing  State = "composing"
	StateQuoting    State = "quoting"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Gateway is the slice of the API client the flow needs.
type Gateway interface {
	Rate(ctx context.Context, source, target string, amount float64) (domain.RatePreview, error)
	SubmitTransfer(ctx context.Context, req domain.TransferRequest) (*gateway.TransferResponse, error)
}

// Snapshot is a point-in-time view of the flow for rendering.
type Snapshot struct {
	State          State
	Request        domain.TransferRequest
	Quote          *domain.RatePreview
	Receipt        *domain.TransferReceipt
	FailureMessage string
}

// Flow is the send-money controller. All mutations go through its lock; the
// gateway calls themselves run unlocked so a slow quote never blocks edits.
type Flow struct {
	gateway Gateway
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	req     domain.TransferRequest
	quote   *domain.RatePreview
	receipt *domain.TransferReceipt
	failure string

	// editSeq increments on every edit; a quote is applied only when the
	// sequence it was requested under is still current.
	editSeq uint64
}

// NewFlow creates a flow in the composing state with an empty request.
func NewFlow(gw Gateway, logger *slog.Logger) *Flow {
	return &Flow{
		gateway: gw,
		logger:  logger,
		state:   StateComposing,
	}
}

// Snapshot returns the current flow view.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		State:          f.state,
		Request:        f.req,
		FailureMessage: f.failure,
	}
	if f.quote != nil {
		q := *f.quote
		snap.Quote = &q
	}
	if f.receipt != nil {
		r := *f.receipt
		snap.Receipt = &r
	}
	return snap
}

// SetAmount updates the amount being sent.
func (f *Flow) SetAmount(amount float64) error {
	return f.edit(func(r *domain.TransferRequest) { r.Amount = amount })
}

// SetSourceCurrency updates the currency the user pays in.
func (f *Flow) SetSourceCurrency(code string) error {
	return f.edit(func(r *domain.TransferRequest) { r.SourceCurrency = code })
}

// SetTargetCurrency updates the currency the recipient receives.
func (f *Flow) SetTargetCurrency(code string) error {
	return f.edit(func(r *domain.TransferRequest) { r.TargetCurrency = code })
}

// SetFundingSource updates how the transfer is paid for.
func (f *Flow) SetFundingSource(source string) error {
	return f.edit(func(r *domain.TransferRequest) { r.FundingSource = source })
}

// SetPayoutMethod updates how the recipient is paid out.
func (f *Flow) SetPayoutMethod(method string) error {
	return f.edit(func(r *domain.TransferRequest) { r.PayoutMethod = method })
}

// SetRecipient updates the recipient identifier.
func (f *Flow) SetRecipient(recipient string) error {
	return f.edit(func(r *domain.TransferRequest) { r.Recipient = recipient })
}

// edit applies a field mutation. Any edit invalidates the displayed quote and
// returns the flow to composing; a failed flow is edited back into composing
// so the user can correct and retry. Edits during submission are rejected,
// the request has already left the building.
func (f *Flow) edit(mutate func(*domain.TransferRequest)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateSubmitting:
		return apperrors.Validation("transfer is being submitted")
	case StateSucceeded:
		return apperrors.Validation("transfer already completed, start a new one")
	}

	mutate(&f.req)
	f.editSeq++
	f.quote = nil
	f.failure = ""
	f.state = StateComposing
	return nil
}

// RequestQuote fetches a rate preview for the current request. The pair and
// amount are checked locally first so obviously invalid input never reaches
// the gateway. A response that arrives after a further edit, or after the
// request has been submitted, is discarded.
func (f *Flow) RequestQuote(ctx context.Context) error {
	f.mu.Lock()

	if f.state != StateComposing && f.state != StateQuoting {
		f.mu.Unlock()
		return apperrors.Validation("no quote in this state")
	}

	req := f.req
	if err := validateQuoteInput(req); err != nil {
		f.mu.Unlock()
		return err
	}

	seq := f.editSeq
	f.state = StateQuoting
	f.mu.Unlock()

	preview, err := f.gateway.Rate(ctx, req.SourceCurrency, req.TargetCurrency, req.Amount)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateQuoting || f.editSeq != seq {
		// An edit or a submission overtook this quote while it was in
		// flight; whatever state the flow is in now owns the display.
		f.logger.DebugContext(ctx, "discarding stale quote",
			slog.Float64("amount", req.Amount),
			slog.String("pair", req.SourceCurrency+"/"+req.TargetCurrency),
		)
		return nil
	}

	if err != nil {
		f.quote = nil
		f.state = StateComposing
		return err
	}

	if !preview.Matches(f.req.Amount, f.req.SourceCurrency, f.req.TargetCurrency) {
		f.state = StateComposing
		return nil
	}

	f.quote = &preview
	f.state = StateComposing
	return nil
}

// validateQuoteInput checks the subset of the request a quote depends on.
func validateQuoteInput(req domain.TransferRequest) error {
	if req.Amount <= 0 {
		return apperrors.Validation("amount must be greater than zero")
	}
	if !domain.IsSupportedCurrency(req.SourceCurrency) || !domain.IsSupportedCurrency(req.TargetCurrency) {
		return apperrors.Validation("select a supported currency pair")
	}
	if req.SourceCurrency == req.TargetCurrency {
		return apperrors.Validation("target currency must differ from source currency")
	}
	return nil
}

// Submit sends the composed transfer. The request is fully re-validated
// locally before any network traffic; a rejected request stays in composing
// with the field error. A gateway failure moves the flow to failed with a
// user-facing message, and a success to succeeded with the receipt.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()

	if f.state == StateSubmitting {
		f.mu.Unlock()
		return apperrors.Validation("transfer is already being submitted")
	}
	if f.state == StateSucceeded {
		f.mu.Unlock()
		return apperrors.Validation("transfer already completed, start a new one")
	}

	req := f.req
	if err := req.Validate(); err != nil {
		f.mu.Unlock()
		return err
	}

	f.state = StateSubmitting
	f.failure = ""
	f.mu.Unlock()

	resp, err := f.gateway.SubmitTransfer(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = StateFailed
		f.failure = apperrors.UserMessage(err)
		f.logger.WarnContext(ctx, "transfer submission failed",
			slog.String("error", err.Error()),
		)
		return err
	}

	f.receipt = &domain.TransferReceipt{
		TransactionID: resp.TransactionID,
		Counterparty:  domain.CounterpartyDisplay(resp.RecipientName, resp.RecipientWallet, req.Recipient),
	}
	f.state = StateSucceeded

	f.logger.InfoContext(ctx, "transfer submitted",
		slog.String("transaction_id", resp.TransactionID),
		slog.Float64("amount", req.Amount),
		slog.String("pair", req.SourceCurrency+"/"+req.TargetCurrency),
	)
	return nil
}

// Reset returns the flow to an empty composing state, used both for "send
// another" after success and for abandoning a failed attempt.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.req = domain.TransferRequest{}
	f.quote = nil
	f.receipt = nil
	f.failure = ""
	f.editSeq++
	f.state = StateComposing
}
