package moneta

import "fmt"

// InvestmentAsset is one position inside an investment case.
type InvestmentAsset struct {
	Name          string
	Quantity      Quantity
	PurchasePrice Money // per unit
	CurrentPrice  Money // per unit, same currency as PurchasePrice
}

// ProfitLoss is (currentPrice - purchasePrice) * quantity in the asset's
// own currency.
func (a InvestmentAsset) ProfitLoss() Money {
	return a.CurrentPrice.Sub(a.PurchasePrice).Mul(a.Quantity)
}

// CurrentValue prices the position at its current price.
func (a InvestmentAsset) CurrentValue() Money {
	return a.CurrentPrice.Mul(a.Quantity)
}

// InvestmentCase is a named grouping of investment assets.
type InvestmentCase struct {
	ID     string
	Name   string
	Assets []InvestmentAsset
}

// ProfitLoss rolls up the case's per-asset P/L into the display currency.
func (c InvestmentCase) ProfitLoss(display string, rates *RateTable) (Money, error) {
	total := M(0, NormalizeCurrency(display))
	for _, a := range c.Assets {
		converted, err := rates.Convert(a.ProfitLoss(), display)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(converted)
	}
	return total, nil
}

// CurrentValue rolls up the case's market value into the display currency.
func (c InvestmentCase) CurrentValue(display string, rates *RateTable) (Money, error) {
	total := M(0, NormalizeCurrency(display))
	for _, a := range c.Assets {
		converted, err := rates.Convert(a.CurrentValue(), display)
		if err != nil {
			return Money{}, err
		}
		total = total.Add(converted)
	}
	return total, nil
}

// InvestmentBook owns the investment cases. Unlike crypto buys, cases are a
// tracking layer only: they never move wallet funds.
type InvestmentBook struct {
	cases map[string]*InvestmentCase
	order []string
	seq   int
}

// NewInvestmentBook creates an empty investment book.
func NewInvestmentBook() *InvestmentBook {
	return &InvestmentBook{cases: make(map[string]*InvestmentCase)}
}

// Add creates a named empty case.
func (b *InvestmentBook) Add(name string) InvestmentCase {
	b.seq++
	c := &InvestmentCase{ID: fmt.Sprintf("i-%03d", b.seq), Name: name}
	b.cases[c.ID] = c
	b.order = append(b.order, c.ID)
	return *c
}

// AddAsset appends a position to a case.
func (b *InvestmentBook) AddAsset(caseID string, a InvestmentAsset) error {
	c, ok := b.cases[caseID]
	if !ok {
		return fmt.Errorf("investment case %q not found", caseID)
	}
	if err := ValidateCurrency(a.PurchasePrice.Currency()); err != nil {
		return err
	}
	if a.CurrentPrice.Currency() != a.PurchasePrice.Currency() {
		return fmt.Errorf("asset prices mix currencies %s and %s",
			a.PurchasePrice.Currency(), a.CurrentPrice.Currency())
	}
	c.Assets = append(c.Assets, a)
	return nil
}

// SetCurrentPrice updates the live price of one asset in a case.
func (b *InvestmentBook) SetCurrentPrice(caseID string, asset string, price Money) error {
	c, ok := b.cases[caseID]
	if !ok {
		return fmt.Errorf("investment case %q not found", caseID)
	}
	for i := range c.Assets {
		if c.Assets[i].Name == asset {
			if price.Currency() != c.Assets[i].PurchasePrice.Currency() {
				return fmt.Errorf("price currency %s does not match asset currency %s",
					price.Currency(), c.Assets[i].PurchasePrice.Currency())
			}
			c.Assets[i].CurrentPrice = price
			return nil
		}
	}
	return fmt.Errorf("asset %q not found in case %q", asset, caseID)
}

// Case returns a copy of the case with the given id.
func (b *InvestmentBook) Case(id string) (InvestmentCase, error) {
	c, ok := b.cases[id]
	if !ok {
		return InvestmentCase{}, fmt.Errorf("investment case %q not found", id)
	}
	out := *c
	out.Assets = append([]InvestmentAsset(nil), c.Assets...)
	return out, nil
}

// Cases returns copies of all cases in creation order.
func (b *InvestmentBook) Cases() []InvestmentCase {
	out := make([]InvestmentCase, 0, len(b.order))
	for _, id := range b.order {
		c, _ := b.Case(id)
		out = append(out, c)
	}
	return out
}
