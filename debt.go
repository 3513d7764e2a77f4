package moneta

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DebtType tells which way the obligation runs.
type DebtType int

const (
	IOwe DebtType = iota
	OwedToMe
)

func (t DebtType) String() string {
	if t == OwedToMe {
		return "owedToMe"
	}
	return "iOwe"
}

// ParseDebtType parses "iOwe" or "owedToMe" (case-insensitive).
func ParseDebtType(s string) (DebtType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "iowe", "i-owe":
		return IOwe, nil
	case "owedtome", "owed-to-me":
		return OwedToMe, nil
	default:
		return IOwe, fmt.Errorf("unknown debt type %q", s)
	}
}

// DebtStatus is the lifecycle state of a debt. It is always derived from the
// paid amount and the cancelled flag, never stored independently.
type DebtStatus int

const (
	DebtPending DebtStatus = iota
	DebtPartiallyPaid
	DebtPaid
	DebtCancelled
)

func (s DebtStatus) String() string {
	switch s {
	case DebtPartiallyPaid:
		return "partiallyPaid"
	case DebtPaid:
		return "paid"
	case DebtCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// paymentEpsilon is the tolerance for float-originating payment amounts,
// in the debt's currency.
var paymentEpsilon = decimal.NewFromFloat(0.001)

// Debt is a tracked obligation with a payment history.
// Invariant: 0 <= PaidAmount <= InitialAmount, within paymentEpsilon.
type Debt struct {
	ID            string
	Type          DebtType
	PersonName    string
	Description   string
	Currency      string
	InitialAmount Money
	PaidAmount    Money
	DueDate       Date

	cancelled bool
}

// Status derives the debt's state from its amounts and cancellation flag.
func (d Debt) Status() DebtStatus {
	switch {
	case d.cancelled:
		return DebtCancelled
	case d.InitialAmount.Sub(d.PaidAmount).value.LessThanOrEqual(paymentEpsilon):
		return DebtPaid
	case d.PaidAmount.IsPositive():
		return DebtPartiallyPaid
	default:
		return DebtPending
	}
}

// Remaining returns the unpaid part of the debt, in the debt's currency.
func (d Debt) Remaining() Money { return d.InitialAmount.Sub(d.PaidAmount) }

// DebtPayment is one append-only payment record against a debt. The sum of a
// debt's payments, converted to the debt's currency, equals its PaidAmount.
type DebtPayment struct {
	ID       string
	DebtID   string
	Amount   Money // as paid, possibly in the wallet's currency
	WalletID string
	Date     Date
	Note     string
}

// DebtBook owns debts and their payment records. Every payment moves funds
// through the wallet ledger before the debt itself is touched.
type DebtBook struct {
	ledger   *WalletLedger
	debts    map[string]*Debt
	order    []string
	payments []DebtPayment
	seq      int
	pseq     int
}

// NewDebtBook creates an empty debt book posting through the given ledger.
func NewDebtBook(ledger *WalletLedger) *DebtBook {
	return &DebtBook{ledger: ledger, debts: make(map[string]*Debt)}
}

// Add creates a debt with nothing paid yet.
func (b *DebtBook) Add(typ DebtType, person, description string, initial Money, due Date) (Debt, error) {
	if err := ValidateCurrency(initial.Currency()); err != nil {
		return Debt{}, err
	}
	if !initial.IsPositive() {
		return Debt{}, fmt.Errorf("debt amount must be positive, got %s", initial)
	}
	b.seq++
	d := &Debt{
		ID:            fmt.Sprintf("d-%03d", b.seq),
		Type:          typ,
		PersonName:    person,
		Description:   description,
		Currency:      initial.Currency(),
		InitialAmount: initial,
		PaidAmount:    M(0, initial.Currency()),
		DueDate:       due,
	}
	b.debts[d.ID] = d
	b.order = append(b.order, d.ID)
	return *d, nil
}

// Debt returns a copy of the debt with the given id.
func (b *DebtBook) Debt(id string) (Debt, error) {
	d, ok := b.debts[id]
	if !ok {
		return Debt{}, fmt.Errorf("debt %q not found", id)
	}
	return *d, nil
}

// Debts returns copies of all debts in creation order.
func (b *DebtBook) Debts() []Debt {
	out := make([]Debt, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.debts[id])
	}
	return out
}

// Payments returns the payment history of one debt, oldest first.
func (b *DebtBook) Payments(debtID string) []DebtPayment {
	var out []DebtPayment
	for _, p := range b.payments {
		if p.DebtID == debtID {
			out = append(out, p)
		}
	}
	return out
}

// RecordPayment applies a payment to a debt.
//
// The amount (in any convertible currency) must satisfy
// 0 < amount <= remaining + epsilon in the debt's currency, otherwise it
// fails with OverpaymentError. For iOwe debts the payment wallet is debited
// with a funds check; for owedToMe debts it is credited. The wallet mutation
// gates the debt mutation: a debt can never be marked paid when the
// underlying funds movement failed.
func (b *DebtBook) RecordPayment(debtID string, amount Money, walletID string, on Date, note string, rates *RateTable) (DebtPayment, error) {
	d, ok := b.debts[debtID]
	if !ok {
		return DebtPayment{}, fmt.Errorf("debt %q not found", debtID)
	}
	if d.cancelled {
		return DebtPayment{}, fmt.Errorf("debt %q is cancelled", debtID)
	}
	if !amount.IsPositive() {
		return DebtPayment{}, fmt.Errorf("payment amount must be positive, got %s", amount)
	}
	inDebtCur, err := rates.Convert(amount, d.Currency)
	if err != nil {
		return DebtPayment{}, err
	}
	remaining := d.Remaining()
	if inDebtCur.value.GreaterThan(remaining.value.Add(paymentEpsilon)) {
		return DebtPayment{}, &OverpaymentError{DebtID: debtID, Amount: inDebtCur, Remaining: remaining}
	}

	w, err := b.ledger.Wallet(walletID)
	if err != nil {
		return DebtPayment{}, err
	}
	inWalletCur, err := rates.Convert(amount, w.Currency)
	if err != nil {
		return DebtPayment{}, err
	}
	if on.IsZero() {
		on = Today()
	}
	link := Link{Kind: LinkDebt, ID: d.ID}
	if d.Type == IOwe {
		_, err = b.ledger.PostChecked(walletID, on, inWalletCur, Debit, "debt", link, note)
	} else {
		_, err = b.ledger.Post(walletID, on, inWalletCur, Credit, "debt", link, note)
	}
	if err != nil {
		return DebtPayment{}, err
	}

	// Funds moved; now, and only now, the debt state follows.
	b.pseq++
	p := DebtPayment{
		ID:       fmt.Sprintf("p-%03d", b.pseq),
		DebtID:   d.ID,
		Amount:   amount,
		WalletID: walletID,
		Date:     on,
		Note:     note,
	}
	b.payments = append(b.payments, p)
	d.PaidAmount = d.PaidAmount.Add(inDebtCur)
	if d.PaidAmount.GreaterThan(d.InitialAmount) {
		d.PaidAmount = d.InitialAmount // epsilon overshoot settles at exactly paid
	}
	return p, nil
}

// Cancel flags the debt as cancelled. Amounts are untouched.
func (b *DebtBook) Cancel(id string) error {
	d, ok := b.debts[id]
	if !ok {
		return fmt.Errorf("debt %q not found", id)
	}
	d.cancelled = true
	return nil
}

// Delete removes the debt and its payment history. Wallet transactions the
// payments posted stay: historical cash movements are not retroactively
// undone.
func (b *DebtBook) Delete(id string) error {
	if _, ok := b.debts[id]; !ok {
		return fmt.Errorf("debt %q not found", id)
	}
	delete(b.debts, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	kept := b.payments[:0]
	for _, p := range b.payments {
		if p.DebtID != id {
			kept = append(kept, p)
		}
	}
	b.payments = kept
	return nil
}
