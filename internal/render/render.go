// Package render turns session and account state into the text blocks the
// terminal UI prints. Everything here is stateless; the data comes in, a
// string comes out.
package render

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/domain"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/format"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/transfer"
)

// ProfileHeader renders the dashboard greeting block.
func ProfileHeader(p *domain.Profile) string {
	if p == nil {
		return "Signed out"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Name)
	fmt.Fprintf(&b, "%s\n", p.AccountLabel)
	if p.WalletNumber != "" {
		fmt.Fprintf(&b, "%s\n", format.WalletNumber(p.WalletNumber))
	}
	fmt.Fprintf(&b, "KYC: %s", p.KYCStatus)
	return b.String()
}

// Wallets renders the wallet balances, default wallet first as received.
func Wallets(wallets []domain.Wallet) string {
	if len(wallets) == 0 {
		return "No wallets yet"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, wallet := range wallets {
		marker := ""
		if wallet.IsDefault {
			marker = " *"
		}
		fmt.Fprintf(w, "%s\t%s\t%s%s\n",
			wallet.Currency,
			format.WalletNumber(wallet.Number),
			format.Currency(wallet.Balance, wallet.Currency),
			marker,
		)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// Transactions renders the activity list, one line per transfer.
func Transactions(txns []domain.Transaction) string {
	if len(txns) == 0 {
		return "No activity yet"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, txn := range txns {
		sign := "-"
		if txn.Direction == domain.TransactionReceived {
			sign = "+"
		}
		fmt.Fprintf(w, "%s\t%s%s\t%s\t%s\n",
			txn.CreatedAt.Format("2006-01-02"),
			sign,
			format.Currency(txn.Amount, txn.Currency),
			txn.Counterparty,
			txn.Status,
		)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// Documents renders the compliance document list.
func Documents(docs []domain.Document) string {
	if len(docs) == 0 {
		return "No documents submitted"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, doc := range docs {
		line := doc.Status
		if doc.Status == domain.DocumentRejected && doc.Reason != "" {
			line = doc.Status + " (" + doc.Reason + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", doc.Type, doc.FileName, line)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// Quote renders the rate preview under the amount field.
func Quote(q *domain.RatePreview) string {
	if q == nil {
		return ""
	}
	return fmt.Sprintf("%s → %s (rate %.4f, fee %s)",
		format.Currency(q.Amount, q.SourceCurrency),
		format.Currency(q.ConvertedAmount, q.TargetCurrency),
		q.Rate,
		format.Currency(q.Fee, q.SourceCurrency),
	)
}

// FlowStatus renders the send-money flow state line.
func FlowStatus(snap transfer.Snapshot) string {
	switch snap.State {
	case transfer.StateQuoting:
		return "Fetching rate..."
	case transfer.StateSubmitting:
		return "Sending..."
	case transfer.StateSucceeded:
		if snap.Receipt != nil {
			return fmt.Sprintf("Sent to %s (ref %s)", snap.Receipt.Counterparty, snap.Receipt.TransactionID)
		}
		return "Sent"
	case transfer.StateFailed:
		return "Failed: " + snap.FailureMessage
	default:
		return Quote(snap.Quote)
	}
}
