package domain

import (
	"time"
)

// Wallet represents one of the user's currency wallets.
type Wallet struct {
	ID        string    `json:"id"`
	Currency  string    `json:"currency"`
	Number    string    `json:"number"`
	Balance   float64   `json:"balance"`
	Label     string    `json:"label,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction direction constants.
const (
	TransactionSent     = "sent"
	TransactionReceived = "received"
)

// Transaction status constants.
const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
)

// Transaction is a past transfer shown on the dashboard.
type Transaction struct {
	ID           string    `json:"id"`
	Direction    string    `json:"direction"`
	Status       string    `json:"status"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Counterparty string    `json:"counterparty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Compliance document type constants.
const (
	DocumentNationalID   = "national_id"
	DocumentPassport     = "passport"
	DocumentProofAddress = "proof_of_address"
	DocumentBusinessReg  = "business_registration"
)

// Compliance document review status constants.
const (
	DocumentSubmitted = "submitted"
	DocumentApproved  = "approved"
	DocumentRejected  = "rejected"
)

// Document is a compliance document submitted for KYC review.
type Document struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	FileName   string    `json:"file_name"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ValidDocumentTypes returns the types the compliance screen accepts.
func ValidDocumentTypes() []string {
	return []string{DocumentNationalID, DocumentPassport, DocumentProofAddress, DocumentBusinessReg}
}

// IsValidDocumentType checks whether the given type is accepted.
func IsValidDocumentType(docType string) bool {
	for _, t := range ValidDocumentTypes() {
		if t == docType {
			return true
		}
	}
	return false
}
