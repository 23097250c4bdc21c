package domain

import (
	"encoding/json"
	"strings"
)

// KYC status constants.
const (
	KYCUnverified = "unverified"
	KYCPending    = "pending"
	KYCVerified   = "verified"
)

// Account type constants.
const (
	AccountIndividual = "individual"
	AccountMerchant   = "merchant"
	AccountAgent      = "agent"
)

// RawUser is the backend user payload parsed at the boundary. The gateway has
// grown several casing conventions over time (snake_case from the core API,
// camelCase from the mobile BFF), so decoding probes the known aliases for
// each field instead of trusting a single shape. Missing or null fields decode
// to the zero value; decoding never fails for a well-formed JSON object.
type RawUser struct {
	ID           string
	FirstName    string
	LastName     string
	Name         string
	Email        string
	Phone        string
	Country      string
	UserType     string
	KYCStatus    string
	AvatarURL    string
	WalletNumber string
}

// UnmarshalJSON decodes a raw user payload, probing field aliases.
func (u *RawUser) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	u.ID = pickString(m, "id", "user_id", "userId")
	u.FirstName = pickString(m, "first_name", "firstName")
	u.LastName = pickString(m, "last_name", "lastName")
	u.Name = pickString(m, "name", "full_name", "fullName")
	u.Email = pickString(m, "email")
	u.Phone = pickString(m, "phone", "phone_number", "phoneNumber")
	u.Country = pickString(m, "country", "country_code", "countryCode")
	u.UserType = pickString(m, "user_type", "userType", "account_type", "accountType")
	u.KYCStatus = pickString(m, "kyc_status", "kycStatus")
	u.AvatarURL = pickString(m, "avatar", "avatar_url", "avatarUrl")
	u.WalletNumber = pickString(m, "wallet_number", "walletNumber")

	return nil
}

// ParseRawUser decodes a persisted or fetched user payload. Malformed JSON
// yields the zero RawUser, which maps to the default profile.
func ParseRawUser(data []byte) RawUser {
	var raw RawUser
	_ = json.Unmarshal(data, &raw)
	return raw
}

// pickString returns the first non-empty string value among the given keys.
func pickString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// Profile is the canonical session identity derived from a RawUser. It is
// never stored: it is recomputed on every raw-payload refresh so the label
// cannot drift from the underlying classification.
type Profile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	KYCStatus    string `json:"kyc_status"`
	AvatarURL    string `json:"avatar_url"`
	AccountLabel string `json:"account_label"`
	CountryCode  string `json:"country_code"`
	AccountType  string `json:"account_type"`
	WalletNumber string `json:"wallet_number"`
}

// NewProfile maps a raw backend payload into the canonical profile. The
// mapping is pure and total: every field has a defined fallback and no input
// can make it fail.
func NewProfile(raw RawUser) Profile {
	userType := strings.ToLower(strings.TrimSpace(raw.UserType))
	country := resolveCountry(raw.Country, userType)

	return Profile{
		ID:           raw.ID,
		Name:         resolveName(raw),
		Email:        raw.Email,
		Phone:        raw.Phone,
		KYCStatus:    resolveKYCStatus(raw.KYCStatus),
		AvatarURL:    raw.AvatarURL,
		AccountLabel: accountLabel(country, userType),
		CountryCode:  country,
		AccountType:  resolveAccountType(userType),
		WalletNumber: raw.WalletNumber,
	}
}

// resolveName picks the display name: first+last, else the explicit name
// field, else the email, else "User".
func resolveName(raw RawUser) string {
	if raw.FirstName != "" && raw.LastName != "" {
		return raw.FirstName + " " + raw.LastName
	}
	if raw.Name != "" {
		return raw.Name
	}
	if raw.Email != "" {
		return raw.Email
	}
	return "User"
}

// resolveCountry returns the explicit country (upper-cased) when present,
// else infers it from the account type: merchants and agents sit on the China
// side of the corridor, everyone else on the Malawi side.
func resolveCountry(country, userType string) string {
	if c := strings.ToUpper(strings.TrimSpace(country)); c != "" {
		return c
	}
	if userType == AccountMerchant || userType == AccountAgent {
		return "CN"
	}
	return "MW"
}

// resolveKYCStatus defaults to verified when the backend omits the field,
// matching the gateway contract for accounts created before KYC tracking.
func resolveKYCStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return KYCVerified
	}
	return s
}

// resolveAccountType normalizes the account type, defaulting to individual.
func resolveAccountType(userType string) string {
	switch userType {
	case AccountMerchant, AccountAgent:
		return userType
	default:
		return AccountIndividual
	}
}

// accountLabel is a pure function of (countryCode, raw user type). It is
// computed on every mapping, never persisted.
func accountLabel(country, userType string) string {
	switch {
	case country == "MW" && userType == AccountIndividual:
		return "Sender (Malawi)"
	case country == "CN" && (userType == AccountMerchant || userType == AccountAgent):
		return "Receiver (China)"
	case userType == AccountMerchant:
		return "Business Account"
	case userType == AccountAgent:
		return "Agent Account"
	default:
		return "Personal Account"
	}
}
