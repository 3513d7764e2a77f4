package moneta

import "fmt"

// CryptoHolding is an aggregated position in one crypto asset with a
// weighted-average cost basis per unit.
//
// A holding sold down to zero is retained at zero amount rather than
// deleted: the id stays stable and the invariant Amount >= 0 is all that
// matters.
type CryptoHolding struct {
	ID        string
	Asset     string // ticker, e.g. "BTC"
	Name      string
	Amount    Quantity
	CostBasis Money // average cost per unit, in the purchase currency
}

// MarketValue prices the holding at the given per-unit price.
func (h CryptoHolding) MarketValue(pricePerUnit Money) Money {
	return pricePerUnit.Mul(h.Amount)
}

// CryptoBook owns the crypto holdings. Buys and sells move fiat through the
// wallet ledger and update the holding only after the funds moved.
type CryptoBook struct {
	ledger   *WalletLedger
	holdings map[string]*CryptoHolding
	byAsset  map[string]string // ticker -> holding id
	order    []string
	seq      int
}

// NewCryptoBook creates an empty crypto book posting through the given ledger.
func NewCryptoBook(ledger *WalletLedger) *CryptoBook {
	return &CryptoBook{
		ledger:   ledger,
		holdings: make(map[string]*CryptoHolding),
		byAsset:  make(map[string]string),
	}
}

// Holding returns a copy of the holding with the given id.
func (b *CryptoBook) Holding(id string) (CryptoHolding, error) {
	h, ok := b.holdings[id]
	if !ok {
		return CryptoHolding{}, fmt.Errorf("crypto holding %q not found", id)
	}
	return *h, nil
}

// Holdings returns copies of all holdings in creation order.
func (b *CryptoBook) Holdings() []CryptoHolding {
	out := make([]CryptoHolding, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.holdings[id])
	}
	return out
}

// Buy purchases quantity units of an asset at pricePerUnit and pays for it
// from the wallet. The debit is funds-checked: if the wallet cannot cover
// the converted cost, the buy fails with InsufficientFundsError and the
// holding is untouched.
//
// The holding for the asset is upserted; on top of an existing position the
// cost basis becomes the weighted average of old and new cost.
func (b *CryptoBook) Buy(walletID, asset, name string, quantity Quantity, pricePerUnit Money, on Date, rates *RateTable) (CryptoHolding, error) {
	if !quantity.IsPositive() {
		return CryptoHolding{}, fmt.Errorf("buy quantity must be positive, got %s", quantity)
	}
	if !pricePerUnit.IsPositive() {
		return CryptoHolding{}, fmt.Errorf("buy price must be positive, got %s", pricePerUnit)
	}
	asset = NormalizeCurrency(asset)
	cost := pricePerUnit.Mul(quantity)

	w, err := b.ledger.Wallet(walletID)
	if err != nil {
		return CryptoHolding{}, err
	}
	inWalletCur, err := rates.Convert(cost, w.Currency)
	if err != nil {
		return CryptoHolding{}, err
	}

	// All fallible work happens before the wallet moves: a failed buy must
	// leave both the wallet and the holding untouched. A cross-currency
	// top-up is normalized into the existing basis currency first, since the
	// weighted average is only meaningful when the currencies agree.
	id, exists := b.byAsset[asset]
	link := Link{Kind: LinkCrypto, ID: id}
	price := pricePerUnit
	if !exists {
		link.ID = fmt.Sprintf("c-%03d", b.seq+1)
	} else if price.Currency() != b.holdings[id].CostBasis.Currency() {
		price, err = rates.Convert(price, b.holdings[id].CostBasis.Currency())
		if err != nil {
			return CryptoHolding{}, err
		}
	}

	if _, err := b.ledger.PostChecked(walletID, on, inWalletCur, Debit, "crypto", link, "buy "+asset); err != nil {
		return CryptoHolding{}, err
	}

	if !exists {
		b.seq++
		h := &CryptoHolding{
			ID:        link.ID,
			Asset:     asset,
			Name:      name,
			Amount:    quantity,
			CostBasis: pricePerUnit,
		}
		b.holdings[h.ID] = h
		b.byAsset[asset] = h.ID
		b.order = append(b.order, h.ID)
		return *h, nil
	}

	h := b.holdings[id]
	// Weighted average: (oldAmount*oldCost + quantity*price) / (oldAmount+quantity).
	oldValue := h.CostBasis.Mul(h.Amount)
	newValue := price.Mul(quantity)
	total := h.Amount.Add(quantity)
	h.CostBasis = oldValue.Add(newValue).Div(total)
	h.Amount = total
	return *h, nil
}

// Sell disposes quantity units of a holding at pricePerUnit, crediting the
// proceeds to the wallet. Selling more than held fails with
// InsufficientHoldingsError: never a silent clamp.
//
// The cost basis is unchanged by a sale. The realized profit or loss,
// (price - basis) * quantity in the sale currency, is returned for display
// but not stored.
func (b *CryptoBook) Sell(walletID, holdingID string, quantity Quantity, pricePerUnit Money, on Date, rates *RateTable) (realized Money, err error) {
	if !quantity.IsPositive() {
		return Money{}, fmt.Errorf("sell quantity must be positive, got %s", quantity)
	}
	if !pricePerUnit.IsPositive() {
		return Money{}, fmt.Errorf("sell price must be positive, got %s", pricePerUnit)
	}
	h, ok := b.holdings[holdingID]
	if !ok {
		return Money{}, fmt.Errorf("crypto holding %q not found", holdingID)
	}
	if quantity.GreaterThan(h.Amount) {
		return Money{}, &InsufficientHoldingsError{Asset: h.Asset, Quantity: quantity, Held: h.Amount}
	}

	w, err := b.ledger.Wallet(walletID)
	if err != nil {
		return Money{}, err
	}
	proceeds := pricePerUnit.Mul(quantity)
	inWalletCur, err := rates.Convert(proceeds, w.Currency)
	if err != nil {
		return Money{}, err
	}
	basisInSaleCur, err := rates.Convert(h.CostBasis, pricePerUnit.Currency())
	if err != nil {
		return Money{}, err
	}

	link := Link{Kind: LinkCrypto, ID: h.ID}
	if _, err := b.ledger.Post(walletID, on, inWalletCur, Credit, "crypto", link, "sell "+h.Asset); err != nil {
		return Money{}, err
	}

	h.Amount = h.Amount.Sub(quantity)
	realized = pricePerUnit.Sub(basisInSaleCur).Mul(quantity)
	return realized, nil
}
