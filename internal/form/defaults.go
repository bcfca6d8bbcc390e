package form

const (
	DefaultTimezone = "Asia/Seoul"
	DefaultSummary  = "국제전화차단/로밍차단"
	DateLayout      = "2006.01.02"
)

// defaultAliasGroups lists every known spelling of each field. The first
// entry is the canonical key; order is resolution priority.
var defaultAliasGroups = []AliasGroup{
	// plan and pricing
	{KeyPlan, "요금제코드", "planCode", "plan_code"},
	{KeyPlanName, "요금제", "요금제명", "planName"},
	{KeyBaseMonthlyFee, "월 이용료", "월이용료", "baseMonthlyFee"},
	{KeyTotalDiscount, "요금할인", "totalDiscount"},
	{KeyPlanDisc, "할인금액", "planDisc"},
	{KeyFinalMonthlyFee, "월 청구금액", "월청구금액", "finalMonthlyFee"},
	{
		KeyApplyDate, "신청일", "신청일자",
		"applyDate", "application_date", "applicationDate",
		"Application Date", "Ngày đăng ký", "วันที่สมัคร", "កាលបរិច្ឆេទដាក់ពាក្យ",
	},
	{KeySvcSummary, "서비스요약", "svcSummary"},

	// subscriber
	{KeyCustName, "가입자명", "custName", "subscriber_name", "subscriberName"},
	{KeyAddress, "주소"},
	{KeyBirth, "생년월일", "birthdate"},
	{KeyGender, "성별"},
	{KeySimSerial, "유심 일련번호", "유심일련번호", "simSerial"},
	{KeyPrefLangs, "문자안내 선호언어", "문자안내_선호언어", "prefLangs"},
	{KeyCustPhone, "가입자 번호", "가입자번호", "custPhone"},

	// autopay
	{KeyPaymentMethod, "결제방법", "납부방법", "paymentMethod"},
	{KeyPaymentPreference, "paymentPreference"},
	{KeyBankName, "은행", "bankName"},
	{KeyBankAccount, "계좌번호", "bankAccount"},
	{KeyAccountHolder, "예금주", "예금주명", "accountHolder", "holder_bank"},
	{KeyCardCompany, "카드사", "cardCompany"},
	{KeyCardNumber, "카드번호", "cardNumber"},
	{KeyCardExpYear, "유효기간(년)", "cardExpYear"},
	{KeyCardExpMonth, "유효기간(월)", "cardExpMonth"},
	// card_owner and card_name are legacy spellings of the holder and keep
	// their place ahead of the Korean label.
	{KeyCardHolder, "card_owner", "card_name", "카드주", "카드주명", "cardHolder", "holder_card"},

	// subscription type
	{KeyJoinType, "가입유형", "joinType"},
	{KeyHopeNumber, "희망번호", "hopeNumber"},
	{KeyPortNumber, "이동번호", "portNumber"},
	{KeyPortAuth, "인증방법", "portAuth"},
	{KeyPrevCarrier, "이전통신사", "이전 통신사", "prevCarrier"},
	{KeyMVNOCarrier, "알뜰폰통신사", "알뜰폰 통신사", "mvnoCarrier", "mvno_name"},
}

var defaultPlans = []Plan{
	{Code: "wel5", Title: "5G 웰컴5 (통화200분/25GB+5Mbps)", Total: 177000, Monthly: 59000, Discount: 20250, Bill: 38750},
	{Code: "wel3", Title: "5G 웰컴3 (통화200분/3GB+5Mbps)", Total: 147000, Monthly: 49000, Discount: 15550, Bill: 33450},
	{Code: "wel1", Title: "5G 웰컴1 (통화200분/1GB+3Mbps)", Total: 117000, Monthly: 39000, Discount: 13050, Bill: 25950},
}

// DefaultRules returns the built-in rule set.
func DefaultRules() *Rules {
	groups := make([]AliasGroup, len(defaultAliasGroups))
	for i, g := range defaultAliasGroups {
		groups[i] = append(AliasGroup(nil), g...)
	}
	return &Rules{
		Timezone:       DefaultTimezone,
		DefaultSummary: DefaultSummary,
		Aliases:        groups,
		Plans:          append([]Plan(nil), defaultPlans...),
		BankKeys:       []string{KeyBankName, KeyBankAccount, KeyAccountHolder},
		CardKeys:       []string{KeyCardCompany, KeyCardNumber, KeyCardExpYear, KeyCardExpMonth, KeyCardHolder},
		NewKeys:        []string{KeyHopeNumber},
		PortKeys:       []string{KeyPortNumber, KeyPortAuth, KeyPrevCarrier, KeyMVNOCarrier},
		MVNOKeys:       []string{KeyMVNOCarrier},
	}
}
