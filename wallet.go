package moneta

import (
	"fmt"
	"strings"
)

// Direction tells whether a transaction credits or debits its wallet.
type Direction int

const (
	Credit Direction = iota
	Debit
)

func (d Direction) String() string {
	if d == Credit {
		return "credit"
	}
	return "debit"
}

// ParseDirection parses "credit" or "debit".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit":
		return Credit, nil
	case "debit":
		return Debit, nil
	default:
		return Credit, fmt.Errorf("unknown direction %q", s)
	}
}

// LinkKind tags the entity that caused a transaction, if any.
type LinkKind int

const (
	LinkNone LinkKind = iota
	LinkBudget
	LinkDebt
	LinkCrypto
)

func (k LinkKind) String() string {
	switch k {
	case LinkBudget:
		return "budget"
	case LinkDebt:
		return "debt"
	case LinkCrypto:
		return "crypto"
	default:
		return ""
	}
}

// Link is an optional back-reference from a transaction to the budget entry,
// debt or crypto holding that caused it.
type Link struct {
	Kind LinkKind
	ID   string
}

// Transaction is an immutable, signed movement of funds against exactly one
// wallet. Corrections are modeled as new offsetting transactions, never edits.
type Transaction struct {
	ID        string
	WalletID  string
	Amount    Money // positive magnitude, in the wallet's currency
	Direction Direction
	Category  string
	Date      Date
	Note      string
	Link      Link
}

// Signed returns the amount with the direction applied: positive for a
// credit, negative for a debit.
func (t Transaction) Signed() Money {
	if t.Direction == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Wallet is a named balance-holding account in one currency.
//
// The balance is derived-but-cached: it always equals the sum of the signed
// amounts of the wallet's transactions. Only the ledger mutates it.
type Wallet struct {
	ID       string
	Name     string
	Currency string
	Color    string
	Icon     string

	balance Money
}

// Balance returns the wallet's cached balance.
func (w Wallet) Balance() Money { return w.balance }

// WalletLedger owns the wallets and the append-only transaction log.
// Every other component posts transactions through it rather than touching
// wallets directly, which keeps the balance invariant in one place.
type WalletLedger struct {
	wallets map[string]*Wallet
	order   []string // wallet ids in creation order
	log     []Transaction
	seq     int
}

// NewWalletLedger creates an empty ledger.
func NewWalletLedger() *WalletLedger {
	return &WalletLedger{wallets: make(map[string]*Wallet)}
}

// CreateWallet adds a wallet with a zero balance and returns it.
func (l *WalletLedger) CreateWallet(name, currency, color, icon string) (Wallet, error) {
	if err := ValidateCurrency(currency); err != nil {
		return Wallet{}, err
	}
	currency = NormalizeCurrency(currency)
	w := &Wallet{
		ID:       fmt.Sprintf("w-%03d", len(l.order)+1),
		Name:     name,
		Currency: currency,
		Color:    color,
		Icon:     icon,
		balance:  M(0, currency),
	}
	l.wallets[w.ID] = w
	l.order = append(l.order, w.ID)
	return *w, nil
}

// Wallet returns a copy of the wallet with the given id.
func (l *WalletLedger) Wallet(id string) (Wallet, error) {
	w, ok := l.wallets[id]
	if !ok {
		return Wallet{}, &WalletNotFoundError{WalletID: id}
	}
	return *w, nil
}

// Wallets returns copies of all wallets in creation order.
func (l *WalletLedger) Wallets() []Wallet {
	out := make([]Wallet, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.wallets[id])
	}
	return out
}

// Balance returns the cached balance of a wallet.
func (l *WalletLedger) Balance(id string) (Money, error) {
	w, ok := l.wallets[id]
	if !ok {
		return Money{}, &WalletNotFoundError{WalletID: id}
	}
	return w.balance, nil
}

// Post appends an immutable transaction and updates the wallet's cached
// balance in the same step. The amount must be a positive magnitude in the
// wallet's currency (a missing currency is adopted from the wallet).
//
// Negative resulting balances are allowed: wallets may act as credit-style
// accounts. Flows that must not overdraw use PostChecked.
func (l *WalletLedger) Post(walletID string, on Date, amount Money, dir Direction, category string, link Link, note string) (Transaction, error) {
	return l.post(walletID, on, amount, dir, category, link, note, false)
}

// PostChecked is Post, but fails with InsufficientFundsError before any
// mutation if a debit would exceed the wallet balance.
func (l *WalletLedger) PostChecked(walletID string, on Date, amount Money, dir Direction, category string, link Link, note string) (Transaction, error) {
	return l.post(walletID, on, amount, dir, category, link, note, true)
}

func (l *WalletLedger) post(walletID string, on Date, amount Money, dir Direction, category string, link Link, note string, checked bool) (Transaction, error) {
	w, ok := l.wallets[walletID]
	if !ok {
		return Transaction{}, &WalletNotFoundError{WalletID: walletID}
	}
	if amount.Currency() == "" {
		amount = M(amount.value, w.Currency)
	} else if amount.Currency() != w.Currency {
		return Transaction{}, fmt.Errorf("transaction currency %s does not match wallet currency %s", amount.Currency(), w.Currency)
	}
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("transaction amount must be positive, got %s", amount)
	}
	if on.IsZero() {
		on = Today()
	}
	if checked && dir == Debit && w.balance.LessThan(amount) {
		return Transaction{}, &InsufficientFundsError{WalletID: walletID, Needed: amount, Balance: w.balance}
	}

	l.seq++
	tx := Transaction{
		ID:        fmt.Sprintf("t-%06d", l.seq),
		WalletID:  walletID,
		Amount:    amount,
		Direction: dir,
		Category:  category,
		Date:      on,
		Note:      note,
		Link:      link,
	}
	// Append and balance update happen together: no suspension point
	// between them, so no reader can observe one without the other.
	l.log = append(l.log, tx)
	w.balance = w.balance.Add(tx.Signed())
	return tx, nil
}

// TxFilter selects transactions. Zero fields match everything.
type TxFilter struct {
	WalletID  string
	Category  string
	Direction *Direction
	Range     Range // zero range matches all dates
	LinkKind  LinkKind
	LinkID    string
}

func (f TxFilter) matches(t Transaction) bool {
	if f.WalletID != "" && t.WalletID != f.WalletID {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Direction != nil && t.Direction != *f.Direction {
		return false
	}
	if !f.Range.From.IsZero() && !f.Range.Contains(t.Date) {
		return false
	}
	if f.LinkKind != LinkNone && t.Link.Kind != f.LinkKind {
		return false
	}
	if f.LinkID != "" && t.Link.ID != f.LinkID {
		return false
	}
	return true
}

// Transactions returns the matching transactions in insertion order.
func (l *WalletLedger) Transactions(f TxFilter) []Transaction {
	var out []Transaction
	for _, t := range l.log {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// CheckBalances verifies the balance invariant for every wallet: the cached
// balance must equal the sum of signed transaction amounts. Used after
// decoding a snapshot to detect corruption rather than trusting the cache.
func (l *WalletLedger) CheckBalances() error {
	sums := make(map[string]Money, len(l.wallets))
	for id, w := range l.wallets {
		sums[id] = M(0, w.Currency)
	}
	for _, t := range l.log {
		sum, ok := sums[t.WalletID]
		if !ok {
			return &WalletNotFoundError{WalletID: t.WalletID}
		}
		sums[t.WalletID] = sum.Add(t.Signed())
	}
	for id, w := range l.wallets {
		if !w.balance.Equal(sums[id]) {
			return fmt.Errorf("wallet %q balance %s does not match transaction sum %s", id, w.balance, sums[id])
		}
	}
	return nil
}
