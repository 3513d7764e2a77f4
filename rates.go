package moneta

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RateTable maps currency codes to their rate against a common unit.
// A table is immutable once built; consumers read a fully-formed snapshot
// and the engine swaps whole tables on refresh.
type RateTable struct {
	base  string
	rates map[string]decimal.Decimal
}

// NewRateTable builds a table from rates expressed against the base
// currency (units of base per one unit of the keyed currency).
// The base itself is implicitly 1.
func NewRateTable(base string, rates map[string]float64) *RateTable {
	t := &RateTable{
		base:  NormalizeCurrency(base),
		rates: make(map[string]decimal.Decimal, len(rates)+1),
	}
	t.rates[t.base] = decimal.NewFromInt(1)
	for code, r := range rates {
		t.rates[NormalizeCurrency(code)] = decimal.NewFromFloat(r)
	}
	return t
}

// Base returns the table's common unit currency.
func (t *RateTable) Base() string { return t.base }

// Has reports whether the table can convert the given currency.
func (t *RateTable) Has(code string) bool {
	_, ok := t.rates[NormalizeCurrency(code)]
	return ok
}

// Rate returns the units of base per one unit of code.
func (t *RateTable) Rate(code string) (decimal.Decimal, bool) {
	r, ok := t.rates[NormalizeCurrency(code)]
	return r, ok
}

// Currencies returns the codes the table knows, sorted, base included.
func (t *RateTable) Currencies() []string {
	out := make([]string, 0, len(t.rates))
	for code := range t.rates {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Convert converts m into the target currency: amount * rate[from] / rate[to].
//
// Same-currency conversion is the identity, short-circuited before any table
// lookup so it is exact even when the table does not know the currency.
func (t *RateTable) Convert(m Money, to string) (Money, error) {
	to = NormalizeCurrency(to)
	if m.cur == to {
		return m, nil
	}
	from, ok := t.rates[m.cur]
	if !ok {
		return Money{}, &ConversionError{Currency: m.cur}
	}
	target, ok := t.rates[to]
	if !ok {
		return Money{}, &ConversionError{Currency: to}
	}
	return Money{value: m.value.Mul(from).Div(target), cur: to}, nil
}
