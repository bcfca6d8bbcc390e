package form

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-10-18 20:00 UTC is already the 19th in Seoul.
var fixedNow = time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)

func newTestDeriver(t *testing.T) *Deriver {
	t.Helper()
	d, err := NewDeriver(DefaultRules(), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return d
}

func TestNormalize_PlanOverridesSubmittedValues(t *testing.T) {
	d := newTestDeriver(t)

	res := d.Normalize(Record{
		"plan":              "WEL5",
		"plan_name":         "typed by hand",
		"final_monthly_fee": "1",
	})

	assert.Equal(t, "wel5", res.Plan)
	assert.Equal(t, "5G 웰컴5 (통화200분/25GB+5Mbps)", res.Record[KeyPlanName])
	assert.Equal(t, "38,750", res.Record[KeyFinalMonthlyFee])
	assert.Equal(t, "177,000", res.Record[KeyTotalDiscount])
	assert.Equal(t, "59,000", res.Record[KeyBaseMonthlyFee])
	assert.Equal(t, "20,250", res.Record[KeyPlanDisc])
	assert.Equal(t, res.Record[KeyPlanName], res.Record["요금제"])
}

func TestNormalize_PlanCodeInKoreanLabel(t *testing.T) {
	d := newTestDeriver(t)
	res := d.Normalize(Record{"요금제": "wel3"})
	assert.Equal(t, "wel3", res.Record[KeyPlan])
	assert.Equal(t, "33,450", res.Record[KeyFinalMonthlyFee])
}

func TestNormalize_UnknownPlanKeepsInput(t *testing.T) {
	d := newTestDeriver(t)
	res := d.Normalize(Record{"plan": "gold", "plan_name": "Gold plan"})
	assert.Empty(t, res.Plan)
	assert.Equal(t, "Gold plan", res.Record[KeyPlanName])
	assert.Empty(t, res.Record[KeyFinalMonthlyFee])
}

func TestNormalize_ApplyDate(t *testing.T) {
	d := newTestDeriver(t)

	res := d.Normalize(Record{})
	assert.Equal(t, "2026.10.19", res.Record[KeyApplyDate])

	res = d.Normalize(Record{"Ngày đăng ký": "2025.01.01"})
	assert.Equal(t, "2025.01.01", res.Record[KeyApplyDate], "multilingual alias counts as present")
}

func TestNormalize_DefaultSummary(t *testing.T) {
	d := newTestDeriver(t)
	assert.Equal(t, DefaultSummary, d.Normalize(Record{}).Record[KeySvcSummary])
	assert.Equal(t, "roaming", d.Normalize(Record{"서비스요약": "roaming"}).Record[KeySvcSummary])
}

func TestNormalize_PaymentMethod(t *testing.T) {
	tests := []struct {
		name       string
		in         Record
		want       PaymentMethod
		wantBlank  []string
		wantFilled map[string]string
	}{
		{
			name:      "card number alone selects card",
			in:        Record{"card_number": "1234"},
			want:      PaymentCard,
			wantBlank: []string{KeyBankName, KeyBankAccount, KeyAccountHolder},
			wantFilled: map[string]string{
				KeyAutopayNumber: "1234",
			},
		},
		{
			name:      "bank only",
			in:        Record{"은행": "KB", "계좌번호": "999", "예금주": "HONG"},
			want:      PaymentBank,
			wantBlank: []string{KeyCardNumber, KeyAutopayExp},
			wantFilled: map[string]string{
				KeyAutopayOrg:    "KB",
				KeyAutopayNumber: "999",
				KeyAutopayHolder: "HONG",
			},
		},
		{
			name: "both groups prefer card",
			in: Record{
				"bank_name": "KB", "bank_account": "999", "holder_bank": "HONG",
				"card_company": "SHINHAN", "card_number": "1234",
			},
			want:      PaymentCard,
			wantBlank: []string{KeyBankName, KeyBankAccount, KeyAccountHolder, "holder_bank", "예금주"},
			wantFilled: map[string]string{
				KeyAutopayOrg: "SHINHAN",
			},
		},
		{
			name: "hint breaks the tie toward bank",
			in: Record{
				"bank_name": "KB", "card_number": "1234", "card_owner": "KIM",
				"payment_preference": "bank",
			},
			want:      PaymentBank,
			wantBlank: []string{KeyCardNumber, KeyCardHolder, "card_owner", "card_name"},
		},
		{
			name:      "explicit method wins over data",
			in:        Record{"paymentMethod": "계좌이체", "card_number": "1234"},
			want:      PaymentBank,
			wantBlank: []string{KeyCardNumber},
		},
		{
			name: "prefixed keys outside the rules count",
			in:   Record{"bank_branch": "Gangnam", "card_cvc_hint": ""},
			want: PaymentBank,
		},
		{
			name: "nothing selected",
			in:   Record{},
			want: PaymentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeriver(t)
			res := d.Normalize(tt.in)

			assert.Equal(t, tt.want, res.Payment)
			if tt.want != PaymentUnknown {
				assert.Equal(t, string(tt.want), res.Record[KeyPaymentMethod])
			}
			for _, key := range tt.wantBlank {
				assert.Empty(t, res.Record[key], "key %q", key)
			}
			for key, want := range tt.wantFilled {
				assert.Equal(t, want, res.Record[key], "key %q", key)
			}
			if res.Payment == PaymentCard {
				for key, v := range res.Record {
					if strings.HasPrefix(key, "bank_") {
						assert.Empty(t, v, "key %q", key)
					}
				}
			}
		})
	}
}

func TestNormalize_AutopayExpiry(t *testing.T) {
	d := newTestDeriver(t)

	res := d.Normalize(Record{"card_number": "1", "card_exp_year": "2027", "card_exp_month": "3"})
	assert.Equal(t, "27 / 03", res.Record[KeyAutopayExp])

	res = d.Normalize(Record{"card_number": "1", "card_exp_year": "7", "card_exp_month": "11"})
	assert.Equal(t, "07 / 11", res.Record[KeyAutopayExp])

	res = d.Normalize(Record{"bank_account": "1", "card_exp_year": "27", "card_exp_month": "1",
		"payment_method": "bank"})
	assert.Empty(t, res.Record[KeyAutopayExp], "expiry is card-only")
}

func TestFormatCardExpiry(t *testing.T) {
	assert.Equal(t, "29 / 12", FormatCardExpiry("29", "12"))
	assert.Equal(t, "00 / 01", FormatCardExpiry("2100", "1"))
	assert.Empty(t, FormatCardExpiry("", "12"))
	assert.Empty(t, FormatCardExpiry("29", " "))
}

func TestNormalize_JoinType(t *testing.T) {
	d := newTestDeriver(t)

	res := d.Normalize(Record{"join_type": "new", "hope_number": "1234", "port_number": "010", "prev_carrier": "SKT"})
	assert.Equal(t, JoinNew, res.Join)
	assert.Equal(t, "1234", res.Record[KeyHopeNumber])
	assert.Empty(t, res.Record[KeyPortNumber])
	assert.Empty(t, res.Record[KeyPrevCarrier])

	res = d.Normalize(Record{"joinType": "번호이동", "희망번호": "1234", "port_number": "010"})
	assert.Equal(t, JoinPortIn, res.Join)
	assert.Empty(t, res.Record[KeyHopeNumber])
	assert.Empty(t, res.Record["희망번호"])
	assert.Equal(t, "010", res.Record[KeyPortNumber])

	res = d.Normalize(Record{"hope_number": "1234", "port_number": "010"})
	assert.Equal(t, JoinUnknown, res.Join)
	assert.Equal(t, "1234", res.Record[KeyHopeNumber])
	assert.Equal(t, "010", res.Record[KeyPortNumber])
}

func TestNormalize_CarrierResidue(t *testing.T) {
	d := newTestDeriver(t)

	res := d.Normalize(Record{"prev_carrier": "mvno", "mvno_carrier": "Hello"})
	assert.Equal(t, "Hello", res.Record[KeyMVNOCarrier])

	res = d.Normalize(Record{"prev_carrier": "KT", "알뜰폰통신사": "Hello"})
	assert.Empty(t, res.Record[KeyMVNOCarrier])
	assert.Empty(t, res.Record["알뜰폰통신사"])

	res = d.Normalize(Record{"mvno_name": "Hello"})
	assert.Empty(t, res.Record[KeyMVNOCarrier])
}

func TestNormalize_Idempotent(t *testing.T) {
	d := newTestDeriver(t)
	in := Record{
		"요금제":            "wel1",
		"card_number":    "1234",
		"bank_name":      "KB",
		"card_exp_year":  "2030",
		"card_exp_month": "4",
		"joinType":       "port",
		"hope_number":    "5555",
		"prev_carrier":   "SKT",
		"mvno_carrier":   "Hello",
	}

	first := d.Normalize(in)
	second := d.Normalize(first.Record)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("normalizing twice changed the result (-first +second):\n%s", diff)
	}
}

func TestGated(t *testing.T) {
	d := newTestDeriver(t)

	card := Result{Payment: PaymentCard}
	assert.True(t, d.Gated(card, KeyBankAccount))
	assert.True(t, d.Gated(card, "예금주"))
	assert.False(t, d.Gated(card, KeyCardNumber))
	assert.False(t, d.Gated(card, KeyCustName))

	bank := Result{Payment: PaymentBank, Join: JoinPortIn}
	assert.True(t, d.Gated(bank, "card_owner"))
	assert.True(t, d.Gated(bank, KeyHopeNumber))
	assert.False(t, d.Gated(bank, KeyPortNumber))

	assert.False(t, d.Gated(Result{}, KeyBankAccount))
}
