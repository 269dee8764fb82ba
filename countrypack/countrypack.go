// Package countrypack holds the built-in country packs: per-country currency,
// address, legal, tax and consent rules used when rendering a storefront.
//
// The registry is built once at process start and is read-only afterwards,
// so it is safe for concurrent use. Lookups are total: an unknown or empty
// code resolves to the registry's default pack.
package countrypack

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultCode is the pack used when a tenant's country code is absent or unknown.
const DefaultCode = "RO"

// SymbolPosition places the currency symbol relative to the amount.
type SymbolPosition string

const (
	SymbolBefore SymbolPosition = "before"
	SymbolAfter  SymbolPosition = "after"
)

// Currency describes how prices are written in a country.
type Currency struct {
	Code               string         `json:"code"`
	Symbol             string         `json:"symbol"`
	Position           SymbolPosition `json:"position"`
	DecimalSeparator   string         `json:"decimalSeparator"`
	ThousandsSeparator string         `json:"thousandsSeparator"`
	Digits             int            `json:"digits"`
}

// AddressField is one line of a postal address form.
type AddressField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// Legal holds the disclosure copy a storefront must display.
type Legal struct {
	Disclosure    string `json:"disclosure"`
	TaxDisclosure string `json:"taxDisclosure"`
	GDPRConsent   string `json:"gdprConsent"`
}

// Pack is the read-only bundle of rules for one country.
type Pack struct {
	Code     string         `json:"code"`
	Locale   string         `json:"locale"`
	Currency Currency       `json:"currency"`
	Address  []AddressField `json:"address"`
	Legal    Legal          `json:"legal"`
}

// AddressFields returns a copy of the address layout.
func (p Pack) AddressFields() []AddressField {
	return slices.Clone(p.Address)
}

// FormatPrice writes an amount given in minor units (cents, bani) using the
// pack's currency rules, for example 123456 -> "1.234,56 lei" for RO.
func (p Pack) FormatPrice(minor int64) string {
	c := p.Currency

	// magnitude in uint64 so math.MinInt64 negates cleanly
	sign, magnitude := "", uint64(minor)
	if minor < 0 {
		sign = "-"
		magnitude = -magnitude
	}

	scale := uint64(1)
	for range c.Digits {
		scale *= 10
	}
	whole, frac := magnitude/scale, magnitude%scale

	digits := strconv.FormatUint(whole, 10)
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteString(c.ThousandsSeparator)
		}
		grouped.WriteRune(r)
	}

	amount := grouped.String()
	if c.Digits > 0 {
		amount += c.DecimalSeparator + fmt.Sprintf("%0*d", c.Digits, frac)
	}

	if c.Position == SymbolBefore {
		return sign + c.Symbol + amount
	}
	return sign + amount + " " + c.Symbol
}

// Registry maps upper-cased 2-letter country codes to packs.
type Registry struct {
	packs       map[string]Pack
	defaultCode string
}

// New builds a Registry from the built-in packs. defaultCode selects the
// fallback pack and must be one of them; an empty value means DefaultCode.
func New(defaultCode string) (*Registry, error) {
	if defaultCode == "" {
		defaultCode = DefaultCode
	}
	defaultCode = normalize(defaultCode)

	packs := make(map[string]Pack, len(builtin))
	for _, p := range builtin {
		if _, dup := packs[p.Code]; dup {
			return nil, fmt.Errorf("duplicate country pack %q", p.Code)
		}
		packs[p.Code] = p
	}

	if _, ok := packs[defaultCode]; !ok {
		return nil, fmt.Errorf("default country %q has no pack", defaultCode)
	}

	return &Registry{packs: packs, defaultCode: defaultCode}, nil
}

// MustNew is like New but panics on error. It is meant for package level
// registries built from constant input.
func MustNew(defaultCode string) *Registry {
	r, err := New(defaultCode)
	if err != nil {
		panic(err)
	}
	return r
}

// Pack returns the pack for code, case-insensitively. Unknown or empty codes
// return the default pack.
func (r *Registry) Pack(code string) Pack {
	p, ok := r.packs[normalize(code)]
	if !ok {
		p = r.packs[r.defaultCode]
	}
	p.Address = slices.Clone(p.Address)
	return p
}

// Supported reports whether code names a built-in pack.
func (r *Registry) Supported(code string) bool {
	_, ok := r.packs[normalize(code)]
	return ok
}

// Resolve returns the code that Pack would use for code.
func (r *Registry) Resolve(code string) string {
	if r.Supported(code) {
		return normalize(code)
	}
	return r.defaultCode
}

// DefaultCode returns the fallback country code.
func (r *Registry) DefaultCode() string { return r.defaultCode }

// Codes returns the supported codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.packs))
	for code := range r.packs {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
