package moneta

import (
	"fmt"
	"sync"
)

// ChangeKind tags what part of the engine state a change touched.
type ChangeKind int

const (
	ChangedWallets ChangeKind = iota
	ChangedTransactions
	ChangedBudgets
	ChangedDebts
	ChangedCrypto
	ChangedInvestments
	ChangedRates
)

// Change notifies observers that a mutation succeeded. Observation is a
// separate capability from the mutation API so the engine carries no UI
// dependency.
type Change struct {
	Kind ChangeKind
}

// Engine is one user session's finance state: wallets, budgets, debts,
// crypto holdings and investment cases, plus the current rate table.
//
// It is constructed explicitly per session and passed by reference; there is
// no ambient global. All mutators are synchronous and validate before
// mutating, so a failed call leaves state unchanged. The single mutex gives
// compound operations (check funds, debit, record) the required atomicity
// with respect to reads without fine-grained locking.
type Engine struct {
	mu sync.Mutex

	ledger  *WalletLedger
	budgets *BudgetBook
	debts   *DebtBook
	crypto  *CryptoBook
	invest  *InvestmentBook

	rates   *RateTable
	display string // primary display currency

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// NewEngine creates an engine with an empty state and an identity rate table
// for the display currency.
func NewEngine(displayCurrency string) (*Engine, error) {
	if err := ValidateCurrency(displayCurrency); err != nil {
		return nil, fmt.Errorf("invalid display currency: %w", err)
	}
	display := NormalizeCurrency(displayCurrency)
	ledger := NewWalletLedger()
	return &Engine{
		ledger:  ledger,
		budgets: NewBudgetBook(ledger),
		debts:   NewDebtBook(ledger),
		crypto:  NewCryptoBook(ledger),
		invest:  NewInvestmentBook(),
		rates:   NewRateTable(display, nil),
		display: display,
		subs:    make(map[int]func(Change)),
	}, nil
}

// DisplayCurrency returns the primary display currency.
func (e *Engine) DisplayCurrency() string { return e.display }

// Rates returns the current exchange rate table.
func (e *Engine) Rates() *RateTable {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rates
}

// SetRates swaps the whole rate table. Consumers only ever see a
// fully-formed snapshot.
func (e *Engine) SetRates(t *RateTable) {
	e.mu.Lock()
	e.rates = t
	e.mu.Unlock()
	e.notify(Change{Kind: ChangedRates})
}

// Subscribe registers an observer called after every successful mutation.
// The returned function cancels the subscription.
func (e *Engine) Subscribe(fn func(Change)) (cancel func()) {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()
	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

// notify runs outside the state lock so observers may call back into the
// engine.
func (e *Engine) notify(c Change) {
	e.subMu.Lock()
	fns := make([]func(Change), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

// --- wallets and transactions ---

// CreateWallet adds a wallet in the given currency.
func (e *Engine) CreateWallet(name, currency, color, icon string) (Wallet, error) {
	e.mu.Lock()
	w, err := e.ledger.CreateWallet(name, currency, color, icon)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedWallets})
	}
	return w, err
}

// Wallets lists all wallets.
func (e *Engine) Wallets() []Wallet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Wallets()
}

// Balance returns a wallet's cached balance.
func (e *Engine) Balance(walletID string) (Money, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Balance(walletID)
}

// PostTransaction appends a manual transaction to a wallet.
func (e *Engine) PostTransaction(walletID string, on Date, amount Money, dir Direction, category, note string) (Transaction, error) {
	e.mu.Lock()
	tx, err := e.ledger.Post(walletID, on, amount, dir, category, Link{}, note)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedTransactions})
	}
	return tx, err
}

// Transactions lists transactions matching the filter.
func (e *Engine) Transactions(f TxFilter) []Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Transactions(f)
}

// --- budgets ---

// AddBudgetEntry creates a planned recurring or one-off income/expense.
func (e *Engine) AddBudgetEntry(typ EntryType, amount Money, category string, freq Frequency, dayOfMonth int, limit Money, from Date) (BudgetEntry, error) {
	e.mu.Lock()
	entry, err := e.budgets.Add(typ, amount, category, freq, dayOfMonth, limit, from)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedBudgets})
	}
	return entry, err
}

// UpdateBudgetEntry edits an entry, rescheduling it if needed.
func (e *Engine) UpdateBudgetEntry(id string, amount Money, category string, freq Frequency, dayOfMonth int, limit Money, on Date) (BudgetEntry, error) {
	e.mu.Lock()
	entry, err := e.budgets.Update(id, amount, category, freq, dayOfMonth, limit, on)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedBudgets})
	}
	return entry, err
}

// DeleteBudgetEntry removes an entry.
func (e *Engine) DeleteBudgetEntry(id string) error {
	e.mu.Lock()
	err := e.budgets.Delete(id)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedBudgets})
	}
	return err
}

// BudgetEntries lists all budget entries.
func (e *Engine) BudgetEntries() []BudgetEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.budgets.Entries()
}

// ActualSpending reports an entry's spending in its current period.
func (e *Engine) ActualSpending(id string, on Date) (Money, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.budgets.ActualSpending(id, on, e.rates)
}

// FireBudgetEntry materializes a due entry into a wallet transaction.
func (e *Engine) FireBudgetEntry(id, walletID string, on Date) (Transaction, error) {
	e.mu.Lock()
	tx, err := e.budgets.Fire(id, walletID, on, e.rates)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedBudgets})
	}
	return tx, err
}

// DueBudgetEntries lists active entries due on or before the date.
func (e *Engine) DueBudgetEntries(on Date) []BudgetEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.budgets.Due(on)
}

// --- debts ---

// AddDebt creates a tracked obligation.
func (e *Engine) AddDebt(typ DebtType, person, description string, initial Money, due Date) (Debt, error) {
	e.mu.Lock()
	d, err := e.debts.Add(typ, person, description, initial, due)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedDebts})
	}
	return d, err
}

// Debts lists all debts.
func (e *Engine) Debts() []Debt {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.debts.Debts()
}

// DebtPayments lists one debt's payment history.
func (e *Engine) DebtPayments(debtID string) []DebtPayment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.debts.Payments(debtID)
}

// RecordDebtPayment applies a payment, moving funds through the wallet first.
func (e *Engine) RecordDebtPayment(debtID string, amount Money, walletID string, on Date, note string) (DebtPayment, error) {
	e.mu.Lock()
	p, err := e.debts.RecordPayment(debtID, amount, walletID, on, note, e.rates)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedDebts})
	}
	return p, err
}

// CancelDebt flags a debt cancelled.
func (e *Engine) CancelDebt(id string) error {
	e.mu.Lock()
	err := e.debts.Cancel(id)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedDebts})
	}
	return err
}

// DeleteDebt removes a debt and its payment history.
func (e *Engine) DeleteDebt(id string) error {
	e.mu.Lock()
	err := e.debts.Delete(id)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedDebts})
	}
	return err
}

// --- crypto ---

// BuyCrypto purchases an asset, paying from the wallet with a funds check.
func (e *Engine) BuyCrypto(walletID, asset, name string, quantity Quantity, pricePerUnit Money, on Date) (CryptoHolding, error) {
	e.mu.Lock()
	h, err := e.crypto.Buy(walletID, asset, name, quantity, pricePerUnit, on, e.rates)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedCrypto})
	}
	return h, err
}

// SellCrypto disposes part of a holding, crediting the wallet. Returns the
// realized profit or loss.
func (e *Engine) SellCrypto(walletID, holdingID string, quantity Quantity, pricePerUnit Money, on Date) (Money, error) {
	e.mu.Lock()
	realized, err := e.crypto.Sell(walletID, holdingID, quantity, pricePerUnit, on, e.rates)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedCrypto})
	}
	return realized, err
}

// CryptoHoldings lists all holdings.
func (e *Engine) CryptoHoldings() []CryptoHolding {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.crypto.Holdings()
}

// --- investments ---

// AddInvestmentCase creates a named empty case.
func (e *Engine) AddInvestmentCase(name string) InvestmentCase {
	e.mu.Lock()
	c := e.invest.Add(name)
	e.mu.Unlock()
	e.notify(Change{Kind: ChangedInvestments})
	return c
}

// AddInvestmentAsset appends a position to a case.
func (e *Engine) AddInvestmentAsset(caseID string, a InvestmentAsset) error {
	e.mu.Lock()
	err := e.invest.AddAsset(caseID, a)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedInvestments})
	}
	return err
}

// SetAssetPrice updates the live price of one asset in a case.
func (e *Engine) SetAssetPrice(caseID, asset string, price Money) error {
	e.mu.Lock()
	err := e.invest.SetCurrentPrice(caseID, asset, price)
	e.mu.Unlock()
	if err == nil {
		e.notify(Change{Kind: ChangedInvestments})
	}
	return err
}

// InvestmentCases lists all cases.
func (e *Engine) InvestmentCases() []InvestmentCase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.invest.Cases()
}

// --- aggregation ---

// Overview computes the dashboard rollup in the display currency.
func (e *Engine) Overview(on Date) (*Overview, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewOverview(e.ledger, e.budgets, e.debts, e.crypto, e.invest, on, e.display, e.rates)
}

// PeriodSummary totals a date range in the display currency.
func (e *Engine) PeriodSummary(rng Range) (*PeriodSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewPeriodSummary(e.ledger, rng, e.display, e.rates)
}
