package form

// Canonical field names. Mapping files and derivations address fields by
// these keys; every other spelling reaches them through an alias group.
const (
	KeyPlan            = "plan"
	KeyPlanName        = "plan_name"
	KeyBaseMonthlyFee  = "base_monthly_fee"
	KeyTotalDiscount   = "total_discount"
	KeyPlanDisc        = "plan_disc"
	KeyFinalMonthlyFee = "final_monthly_fee"
	KeyApplyDate       = "apply_date"
	KeySvcSummary      = "svc_summary"

	KeyCustName  = "cust_name"
	KeyCustPhone = "cust_phone"
	KeyAddress   = "address"
	KeyBirth     = "birth"
	KeyGender    = "gender"
	KeySimSerial = "sim_serial"
	KeyPrefLangs = "pref_langs"

	KeyPaymentMethod     = "payment_method"
	KeyPaymentPreference = "payment_preference"
	KeyBankName          = "bank_name"
	KeyBankAccount       = "bank_account"
	KeyAccountHolder     = "account_holder"
	KeyCardCompany       = "card_company"
	KeyCardNumber        = "card_number"
	KeyCardExpYear       = "card_exp_year"
	KeyCardExpMonth      = "card_exp_month"
	KeyCardHolder        = "card_holder"

	KeyAutopayOrg    = "autopay_org"
	KeyAutopayNumber = "autopay_number"
	KeyAutopayExp    = "autopay_exp"
	KeyAutopayHolder = "autopay_holder"

	KeyJoinType    = "join_type"
	KeyHopeNumber  = "hope_number"
	KeyPortNumber  = "port_number"
	KeyPortAuth    = "port_auth"
	KeyPrevCarrier = "prev_carrier"
	KeyMVNOCarrier = "mvno_carrier"

	KeyMode = "mode"
)

// MVNOSentinel is the previous-carrier value that keeps the MVNO carrier
// name on the form.
const MVNOSentinel = "MVNO"
