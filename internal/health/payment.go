package health

import (
	"fmt"
	"strings"
)

// PaymentType is the tag of the PaymentMethod variant.
type PaymentType string

const (
	PaymentCash       PaymentType = "cash"
	PaymentCard       PaymentType = "card"
	PaymentUPI        PaymentType = "upi"
	PaymentPayPal     PaymentType = "paypal"
	PaymentWallet     PaymentType = "wallet"
	PaymentNetBanking PaymentType = "netbanking"
	PaymentCOD        PaymentType = "cod"
)

// PaymentTypes lists every supported variant.
var PaymentTypes = []PaymentType{
	PaymentCash, PaymentCard, PaymentUPI, PaymentPayPal, PaymentWallet, PaymentNetBanking, PaymentCOD,
}

// PaymentDetails carries the optional per-variant fields.
type PaymentDetails struct {
	LastFourDigits string `json:"last_four_digits,omitempty"` // card
	UPIID          string `json:"upi_id,omitempty"`           // upi
	WalletName     string `json:"wallet_name,omitempty"`      // wallet
	Bank           string `json:"bank,omitempty"`             // netbanking
	PayPalEmail    string `json:"paypal_email,omitempty"`     // paypal
}

// PaymentMethod is a tagged variant over the supported payment types.
type PaymentMethod struct {
	ID        string          `json:"id"`
	Type      PaymentType     `json:"type"`
	Label     string          `json:"label"`
	Details   *PaymentDetails `json:"details,omitempty"`
	IsDefault bool            `json:"is_default,omitempty"`
}

// Clone copies the method so the details pointer is not shared.
func (p PaymentMethod) Clone() PaymentMethod {
	out := p
	if p.Details != nil {
		d := *p.Details
		out.Details = &d
	}
	return out
}

// Known reports whether t is one of PaymentTypes.
func (t PaymentType) Known() bool {
	for _, v := range PaymentTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Validate checks the detail field required by the variant.
func (p PaymentMethod) Validate() error {
	if !p.Type.Known() {
		return fmt.Errorf("unknown payment type %q", p.Type)
	}
	d := p.Details
	if d == nil {
		d = &PaymentDetails{}
	}
	switch p.Type {
	case PaymentCard:
		if len(d.LastFourDigits) != 4 || strings.Trim(d.LastFourDigits, "0123456789") != "" {
			return fmt.Errorf("card payment requires last_four_digits")
		}
	case PaymentUPI:
		if !strings.Contains(d.UPIID, "@") {
			return fmt.Errorf("upi payment requires upi_id")
		}
	case PaymentWallet:
		if strings.TrimSpace(d.WalletName) == "" {
			return fmt.Errorf("wallet payment requires wallet_name")
		}
	case PaymentNetBanking:
		if strings.TrimSpace(d.Bank) == "" {
			return fmt.Errorf("netbanking payment requires bank")
		}
	case PaymentPayPal:
		if !strings.Contains(d.PayPalEmail, "@") {
			return fmt.Errorf("paypal payment requires paypal_email")
		}
	}
	return nil
}
