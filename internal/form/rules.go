package form

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// AliasGroup is a set of equivalent keys; the first one is canonical.
type AliasGroup []string

// Canonical returns the canonical key of the group.
func (g AliasGroup) Canonical() string {
	if len(g) == 0 {
		return ""
	}
	return g[0]
}

// Plan is one entry of the rate plan catalog. Amounts are in won.
type Plan struct {
	Code     string `yaml:"code" json:"code"`
	Title    string `yaml:"title" json:"title"`
	Total    int64  `yaml:"total" json:"total"`
	Monthly  int64  `yaml:"monthly" json:"monthly"`
	Discount int64  `yaml:"discount" json:"discount"`
	Bill     int64  `yaml:"bill" json:"bill"`
}

// Rules bundles the static tables the normalizer and deriver work from.
// A Rules value is treated as read-only once built.
type Rules struct {
	Timezone       string       `yaml:"timezone"`
	DefaultSummary string       `yaml:"default_summary"`
	Aliases        []AliasGroup `yaml:"aliases"`
	Plans          []Plan       `yaml:"plans"`
	BankKeys       []string     `yaml:"bank_keys"`
	CardKeys       []string     `yaml:"card_keys"`
	NewKeys        []string     `yaml:"new_keys"`
	PortKeys       []string     `yaml:"port_keys"`
	MVNOKeys       []string     `yaml:"mvno_keys"`
}

var (
	ErrDuplicateAlias = errors.New("alias declared in more than one group")
	ErrEmptyGroup     = errors.New("alias group is empty")
	ErrDuplicatePlan  = errors.New("plan code declared twice")
)

// LoadRules reads a YAML rules file and overlays it on the built-in rules.
// Sections missing from the file keep their defaults.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var overlay Rules
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if overlay.Timezone != "" {
		rules.Timezone = overlay.Timezone
	}
	if overlay.DefaultSummary != "" {
		rules.DefaultSummary = overlay.DefaultSummary
	}
	if len(overlay.Aliases) > 0 {
		rules.Aliases = overlay.Aliases
	}
	if len(overlay.Plans) > 0 {
		rules.Plans = overlay.Plans
	}
	if len(overlay.BankKeys) > 0 {
		rules.BankKeys = overlay.BankKeys
	}
	if len(overlay.CardKeys) > 0 {
		rules.CardKeys = overlay.CardKeys
	}
	if len(overlay.NewKeys) > 0 {
		rules.NewKeys = overlay.NewKeys
	}
	if len(overlay.PortKeys) > 0 {
		rules.PortKeys = overlay.PortKeys
	}
	if len(overlay.MVNOKeys) > 0 {
		rules.MVNOKeys = overlay.MVNOKeys
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return rules, nil
}

// Validate checks the invariants resolution depends on: groups are
// non-empty, no key belongs to two groups, plan codes are unique, and the
// timezone loads.
func (r *Rules) Validate() error {
	seen := make(map[string]string)
	for i, g := range r.Aliases {
		if len(g) == 0 {
			return fmt.Errorf("group %d: %w", i, ErrEmptyGroup)
		}
		for _, key := range g {
			key = NormalizeKey(key)
			if owner, ok := seen[key]; ok {
				return fmt.Errorf("%q (groups %q and %q): %w", key, owner, g.Canonical(), ErrDuplicateAlias)
			}
			seen[key] = g.Canonical()
		}
	}

	codes := make(map[string]bool)
	for _, p := range r.Plans {
		code := foldCode(p.Code)
		if codes[code] {
			return fmt.Errorf("%q: %w", p.Code, ErrDuplicatePlan)
		}
		codes[code] = true
	}

	if _, err := r.Location(); err != nil {
		return err
	}
	return nil
}

// Location loads the configured timezone.
func (r *Rules) Location() (*time.Location, error) {
	tz := r.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Catalog indexes the rule set's plans by folded code.
func (r *Rules) Catalog() *Catalog {
	c := &Catalog{plans: make(map[string]Plan, len(r.Plans))}
	for _, p := range r.Plans {
		c.plans[foldCode(p.Code)] = p
		c.order = append(c.order, p.Code)
	}
	return c
}

// Catalog is the immutable plan lookup.
type Catalog struct {
	plans map[string]Plan
	order []string
}

// Lookup finds a plan by code, ignoring case and surrounding space.
func (c *Catalog) Lookup(code string) (Plan, bool) {
	if c == nil {
		return Plan{}, false
	}
	p, ok := c.plans[foldCode(code)]
	return p, ok
}

// List returns the plans in declaration order.
func (c *Catalog) List() []Plan {
	if c == nil {
		return nil
	}
	out := make([]Plan, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.plans[foldCode(code)])
	}
	return out
}

// FormatWon renders an amount with Korean digit grouping ("177,000").
// Zero renders as the empty string so it never overwrites a field.
func FormatWon(amount int64) string {
	if amount == 0 {
		return ""
	}
	return message.NewPrinter(language.Korean).Sprintf("%d", amount)
}

// foldCode builds a fresh Caser per call; Casers carry state.
func foldCode(code string) string {
	return cases.Fold().String(strings.TrimSpace(code))
}
