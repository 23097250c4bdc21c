// Package format renders values for display: money amounts, wallet numbers,
// and the password strength meter.
package format

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// The UI copy is English on both sides of the corridor, so amounts use
// English digit grouping regardless of the device locale.
var printer = message.NewPrinter(language.English)

// Currency renders an amount with its ISO code and grouped digits, e.g.
// "MWK 1,234,567.89". Codes that are not ISO 4217 are rendered plainly.
func Currency(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, err := currency.ParseISO(code); err != nil {
		return fmt.Sprintf("%s %.2f", code, amount)
	}
	return printer.Sprintf("%s %v", code,
		number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// WalletNumber renders a wallet number as four groups of four digits.
// Non-digits are stripped, short numbers are right-padded with zeros, long
// ones truncated. An empty number renders as a placeholder.
func WalletNumber(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	if digits.Len() == 0 {
		return ".... .... .... ...."
	}

	padded := digits.String()
	if len(padded) < 16 {
		padded += strings.Repeat("0", 16-len(padded))
	}
	padded = padded[:16]

	return padded[0:4] + " " + padded[4:8] + " " + padded[8:12] + " " + padded[12:16]
}

// Password strength labels.
const (
	StrengthWeak   = "weak"
	StrengthFair   = "fair"
	StrengthGood   = "good"
	StrengthStrong = "strong"
)

// passwordSymbols is the set of characters the meter counts as symbols.
// Spaces and letters outside A-Z score under the other criteria or not at all.
const passwordSymbols = "!@#$%^&*()-_=+[]{}|;:'\",.<>/?`~\\"

// PasswordStrength scores a password against six criteria and maps the score
// to a meter label. It is advisory only; acceptance is a length check.
func PasswordStrength(password string) (int, string) {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	score := 0
	if len(password) >= 8 {
		score++
	}
	if len(password) >= 12 {
		score++
	}
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if ok {
			score++
		}
	}

	switch {
	case score <= 2:
		return score, StrengthWeak
	case score == 3:
		return score, StrengthFair
	case score == 4:
		return score, StrengthGood
	default:
		return score, StrengthStrong
	}
}
