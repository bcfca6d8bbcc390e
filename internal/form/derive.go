package form

import (
	"strings"
	"time"
)

// Result is a fully normalized submission.
type Result struct {
	Record  Record        `json:"record"`
	Payment PaymentMethod `json:"payment_method"`
	Join    JoinType      `json:"join_type"`
	Plan    string        `json:"plan,omitempty"`
}

// Deriver computes the fields that depend on other fields. Every step is a
// pure function of the record and safe to run twice.
type Deriver struct {
	rules    *Rules
	resolver *Resolver
	catalog  *Catalog
	loc      *time.Location
	now      func() time.Time
}

// Option customizes a Deriver.
type Option func(*Deriver)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Deriver) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDeriver builds a Deriver from a validated rule set.
func NewDeriver(rules *Rules, opts ...Option) (*Deriver, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	loc, err := rules.Location()
	if err != nil {
		return nil, err
	}

	d := &Deriver{
		rules:    rules,
		resolver: NewResolver(rules.Aliases),
		catalog:  rules.Catalog(),
		loc:      loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Resolver exposes the alias resolver the deriver uses.
func (d *Deriver) Resolver() *Resolver {
	return d.resolver
}

// Catalog exposes the plan catalog.
func (d *Deriver) Catalog() *Catalog {
	return d.catalog
}

// Normalize resolves aliases, applies every derivation in order and
// resolves again.
func (d *Deriver) Normalize(raw Record) Result {
	rec := d.resolver.Resolve(raw)

	plan := d.derivePlan(rec)
	d.deriveApplyDate(rec)
	d.deriveSummary(rec)
	payment := d.resolvePayment(rec)
	join := d.resolveJoin(rec)
	d.clearCarrierResidue(rec)

	rec = d.resolver.Resolve(rec)
	return Result{Record: rec, Payment: payment, Join: join, Plan: plan}
}

// derivePlan overwrites the price breakdown from the catalog. A code that
// only arrived through the plan name field is honored too.
func (d *Deriver) derivePlan(rec Record) string {
	p, ok := d.catalog.Lookup(d.resolver.Lookup(rec, KeyPlan))
	if !ok {
		p, ok = d.catalog.Lookup(d.resolver.Lookup(rec, KeyPlanName))
	}
	if !ok {
		return ""
	}

	d.resolver.Set(rec, KeyPlan, p.Code)
	d.resolver.Set(rec, KeyPlanName, strings.TrimSpace(p.Title))
	d.resolver.Set(rec, KeyTotalDiscount, FormatWon(p.Total))
	d.resolver.Set(rec, KeyBaseMonthlyFee, FormatWon(p.Monthly))
	d.resolver.Set(rec, KeyPlanDisc, FormatWon(p.Discount))
	d.resolver.Set(rec, KeyFinalMonthlyFee, FormatWon(p.Bill))
	return p.Code
}

func (d *Deriver) deriveApplyDate(rec Record) {
	if d.resolver.Lookup(rec, KeyApplyDate) != "" {
		return
	}
	d.resolver.Set(rec, KeyApplyDate, d.Today())
}

// Today formats the current date in the configured timezone.
func (d *Deriver) Today() string {
	return d.now().In(d.loc).Format(DateLayout)
}

func (d *Deriver) deriveSummary(rec Record) {
	if d.resolver.Lookup(rec, KeySvcSummary) != "" {
		return
	}
	summary := d.rules.DefaultSummary
	if summary == "" {
		summary = DefaultSummary
	}
	d.resolver.Set(rec, KeySvcSummary, summary)
}

// resolveJoin clears the group that does not match an explicit join type.
// Without one nothing is cleared.
func (d *Deriver) resolveJoin(rec Record) JoinType {
	join := ParseJoinType(d.resolver.Lookup(rec, KeyJoinType))
	switch join {
	case JoinNew:
		d.clearGroup(rec, d.rules.PortKeys, "")
	case JoinPortIn:
		d.clearGroup(rec, d.rules.NewKeys, "")
	}
	return join
}

// clearCarrierResidue drops a stale MVNO carrier name once the previous
// carrier is no longer "MVNO".
func (d *Deriver) clearCarrierResidue(rec Record) {
	prev := d.resolver.Lookup(rec, KeyPrevCarrier)
	if strings.EqualFold(prev, MVNOSentinel) {
		return
	}
	for _, key := range d.rules.MVNOKeys {
		d.resolver.Clear(rec, key)
	}
}

// Gated reports whether field must render blank given the resolved
// payment method and join type.
func (d *Deriver) Gated(res Result, field string) bool {
	canonical := d.resolver.Canonical(field)
	switch res.Payment {
	case PaymentCard:
		if d.inGroup(canonical, d.rules.BankKeys, "bank_") {
			return true
		}
	case PaymentBank:
		if d.inGroup(canonical, d.rules.CardKeys, "card_") {
			return true
		}
	}
	switch res.Join {
	case JoinNew:
		return d.inGroup(canonical, d.rules.PortKeys, "")
	case JoinPortIn:
		return d.inGroup(canonical, d.rules.NewKeys, "")
	}
	return false
}

func (d *Deriver) inGroup(canonical string, keys []string, prefix string) bool {
	if prefix != "" && strings.HasPrefix(canonical, prefix) {
		return true
	}
	for _, k := range keys {
		if d.resolver.Canonical(k) == canonical {
			return true
		}
	}
	return false
}
