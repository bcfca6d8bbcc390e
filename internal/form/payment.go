package form

import (
	"fmt"
	"strconv"
	"strings"
)

// PaymentMethod is the resolved autopay channel.
type PaymentMethod string

const (
	PaymentUnknown PaymentMethod = ""
	PaymentBank    PaymentMethod = "bank"
	PaymentCard    PaymentMethod = "card"
)

// ParsePaymentMethod maps the spellings the front-end has used over time.
func ParsePaymentMethod(s string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bank", "account", "transfer", "cms", "은행", "계좌", "계좌이체", "자동이체":
		return PaymentBank
	case "card", "credit", "creditcard", "credit_card", "카드", "신용카드", "카드결제":
		return PaymentCard
	default:
		return PaymentUnknown
	}
}

// JoinType is the subscription type.
type JoinType string

const (
	JoinUnknown JoinType = ""
	JoinNew     JoinType = "new"
	JoinPortIn  JoinType = "port-in"
)

// ParseJoinType maps explicit join type values.
func ParseJoinType(s string) JoinType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new", "신규", "신규가입":
		return JoinNew
	case "port", "port-in", "port_in", "portin", "mnp", "번호이동":
		return JoinPortIn
	default:
		return JoinUnknown
	}
}

// groupHasValue reports whether any key of the group (or any record key
// carrying the prefix) holds a value.
func (d *Deriver) groupHasValue(rec Record, keys []string, prefix string) bool {
	for _, key := range keys {
		if d.resolver.Lookup(rec, key) != "" {
			return true
		}
	}
	if prefix == "" {
		return false
	}
	for key, v := range rec {
		if strings.HasPrefix(key, prefix) && strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// clearGroup blanks the listed keys, their aliases, and every record key
// carrying the prefix.
func (d *Deriver) clearGroup(rec Record, keys []string, prefix string) {
	for _, key := range keys {
		d.resolver.Clear(rec, key)
	}
	if prefix == "" {
		return
	}
	for key := range rec {
		if strings.HasPrefix(key, prefix) {
			d.resolver.Clear(rec, key)
		}
	}
}

// resolvePayment settles the autopay channel. An explicit method wins;
// otherwise the method is inferred from which group carries data, card
// first when both do unless payment_preference names bank.
func (d *Deriver) resolvePayment(rec Record) PaymentMethod {
	method := ParsePaymentMethod(d.resolver.Lookup(rec, KeyPaymentMethod))
	if method == PaymentUnknown {
		hasBank := d.groupHasValue(rec, d.rules.BankKeys, "bank_")
		hasCard := d.groupHasValue(rec, d.rules.CardKeys, "card_")
		switch {
		case hasBank && hasCard:
			method = PaymentCard
			if ParsePaymentMethod(d.resolver.Lookup(rec, KeyPaymentPreference)) == PaymentBank {
				method = PaymentBank
			}
		case hasCard:
			method = PaymentCard
		case hasBank:
			method = PaymentBank
		}
	}

	switch method {
	case PaymentBank:
		d.resolver.Set(rec, KeyPaymentMethod, string(PaymentBank))
		d.clearGroup(rec, d.rules.CardKeys, "card_")
	case PaymentCard:
		d.resolver.Set(rec, KeyPaymentMethod, string(PaymentCard))
		d.clearGroup(rec, d.rules.BankKeys, "bank_")
	}

	d.fillAutopay(rec, method)
	return method
}

// fillAutopay derives the composite autopay fields from the winning group.
func (d *Deriver) fillAutopay(rec Record, method PaymentMethod) {
	get := func(key string) string { return d.resolver.Lookup(rec, key) }

	switch method {
	case PaymentCard:
		d.setOrClear(rec, KeyAutopayOrg, get(KeyCardCompany))
		d.setOrClear(rec, KeyAutopayNumber, get(KeyCardNumber))
		d.setOrClear(rec, KeyAutopayHolder, get(KeyCardHolder))
		d.setOrClear(rec, KeyAutopayExp, FormatCardExpiry(get(KeyCardExpYear), get(KeyCardExpMonth)))
	case PaymentBank:
		d.setOrClear(rec, KeyAutopayOrg, get(KeyBankName))
		d.setOrClear(rec, KeyAutopayNumber, get(KeyBankAccount))
		d.setOrClear(rec, KeyAutopayHolder, get(KeyAccountHolder))
		d.resolver.Clear(rec, KeyAutopayExp)
	default:
		for _, key := range []string{KeyAutopayOrg, KeyAutopayNumber, KeyAutopayHolder, KeyAutopayExp} {
			d.resolver.Clear(rec, key)
		}
	}
}

func (d *Deriver) setOrClear(rec Record, key, value string) {
	if value == "" {
		d.resolver.Clear(rec, key)
		return
	}
	d.resolver.Set(rec, key, value)
}

// FormatCardExpiry renders a card expiry as "YY / MM". Each part is
// zero-padded to two digits and a four-digit year keeps its last two.
// Both parts are required.
func FormatCardExpiry(year, month string) string {
	yy := twoDigits(year)
	mm := twoDigits(month)
	if yy == "" || mm == "" {
		return ""
	}
	return fmt.Sprintf("%s / %s", yy, mm)
}

func twoDigits(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		// Free text passes through untouched.
		return s
	}
	return fmt.Sprintf("%02d", n%100)
}
