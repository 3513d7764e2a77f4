package moneta

import (
	"fmt"
	"strings"
)

// EntryType tells whether a budget entry plans income or expense.
type EntryType int

const (
	Expense EntryType = iota
	Income
)

func (t EntryType) String() string {
	if t == Income {
		return "income"
	}
	return "expense"
}

// ParseEntryType parses "income" or "expense".
func ParseEntryType(s string) (EntryType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return Expense, fmt.Errorf("unknown entry type %q", s)
	}
}

// direction returns the transaction direction a fired entry posts with.
func (t EntryType) direction() Direction {
	if t == Income {
		return Credit
	}
	return Debit
}

// BudgetEntry is a planned recurring or one-off income/expense.
//
// NextDue is always the earliest future occurrence consistent with
// Frequency/DayOfMonth: it is recomputed whenever the entry fires or its
// schedule is edited, never left stale.
type BudgetEntry struct {
	ID         string
	Type       EntryType
	Amount     Money
	Category   string
	Frequency  Frequency
	DayOfMonth int  // for monthly entries
	NextDue    Date // zero once a one-off entry has fired
	Limit      Money // optional ceiling for expense entries; zero = none
	Active     bool
}

// HasLimit reports whether the entry carries a spending ceiling.
func (e BudgetEntry) HasLimit() bool { return !e.Limit.IsZero() }

// BudgetBook owns the budget entries and computes actual-vs-planned spending
// by querying the wallet ledger's transaction log.
type BudgetBook struct {
	ledger  *WalletLedger
	entries map[string]*BudgetEntry
	order   []string
	seq     int
}

// NewBudgetBook creates an empty budget book reading from the given ledger.
func NewBudgetBook(ledger *WalletLedger) *BudgetBook {
	return &BudgetBook{ledger: ledger, entries: make(map[string]*BudgetEntry)}
}

// Add creates a budget entry. 'from' is the reference date the schedule
// starts at; the entry's NextDue is the earliest occurrence on or after it
// (for one-off entries, 'from' itself).
func (b *BudgetBook) Add(typ EntryType, amount Money, category string, freq Frequency, dayOfMonth int, limit Money, from Date) (BudgetEntry, error) {
	if err := ValidateCurrency(amount.Currency()); err != nil {
		return BudgetEntry{}, err
	}
	if !amount.IsPositive() {
		return BudgetEntry{}, fmt.Errorf("budget amount must be positive, got %s", amount)
	}
	if err := validateLimit(limit, amount); err != nil {
		return BudgetEntry{}, err
	}
	if from.IsZero() {
		from = Today()
	}
	b.seq++
	e := &BudgetEntry{
		ID:         fmt.Sprintf("b-%03d", b.seq),
		Type:       typ,
		Amount:     amount,
		Category:   category,
		Frequency:  freq,
		DayOfMonth: dayOfMonth,
		NextDue:    dueOnOrAfter(freq, dayOfMonth, from),
		Limit:      limit,
		Active:     true,
	}
	b.entries[e.ID] = e
	b.order = append(b.order, e.ID)
	return *e, nil
}

// validateLimit rejects a limit in a different currency than the entry:
// OverLimit compares actual spending to the limit directly, so the two must
// share a currency rather than drift through a silent 1:1 comparison.
func validateLimit(limit, amount Money) error {
	if !limit.IsZero() && limit.Currency() != amount.Currency() {
		return fmt.Errorf("budget limit must be in the entry currency %s, got %s", amount.Currency(), limit.Currency())
	}
	return nil
}

// dueOnOrAfter is the earliest occurrence on or after 'from'. Daily, weekly
// and yearly schedules anchor on the reference date itself; monthly ones on
// the configured day of month.
func dueOnOrAfter(freq Frequency, dayOfMonth int, from Date) Date {
	if freq == EveryMonth {
		return NextOccurrence(freq, dayOfMonth, from.Add(-1))
	}
	return from
}

// Entry returns a copy of the entry with the given id.
func (b *BudgetBook) Entry(id string) (BudgetEntry, error) {
	e, ok := b.entries[id]
	if !ok {
		return BudgetEntry{}, fmt.Errorf("budget entry %q not found", id)
	}
	return *e, nil
}

// Entries returns copies of all entries in creation order.
func (b *BudgetBook) Entries() []BudgetEntry {
	out := make([]BudgetEntry, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.entries[id])
	}
	return out
}

// Update edits an entry. Changing the frequency or day of month recomputes
// NextDue from 'on' so the schedule is never stale.
func (b *BudgetBook) Update(id string, amount Money, category string, freq Frequency, dayOfMonth int, limit Money, on Date) (BudgetEntry, error) {
	e, ok := b.entries[id]
	if !ok {
		return BudgetEntry{}, fmt.Errorf("budget entry %q not found", id)
	}
	if !amount.IsPositive() {
		return BudgetEntry{}, fmt.Errorf("budget amount must be positive, got %s", amount)
	}
	if err := validateLimit(limit, amount); err != nil {
		return BudgetEntry{}, err
	}
	if on.IsZero() {
		on = Today()
	}
	rescheduled := freq != e.Frequency || dayOfMonth != e.DayOfMonth
	e.Amount = amount
	e.Category = category
	e.Frequency = freq
	e.DayOfMonth = dayOfMonth
	e.Limit = limit
	if rescheduled {
		e.NextDue = dueOnOrAfter(freq, dayOfMonth, on)
	}
	return *e, nil
}

// Delete removes an entry. Transactions it already materialized stay in the
// ledger untouched.
func (b *BudgetBook) Delete(id string) error {
	if _, ok := b.entries[id]; !ok {
		return fmt.Errorf("budget entry %q not found", id)
	}
	delete(b.entries, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

// ActualSpending sums the ledger transactions matching the entry's category
// and type within the entry's current period, converted into the entry's
// currency. It is a pure read: materializing an entry into a transaction is
// Fire, an explicit action, never a side effect of looking at spending.
func (b *BudgetBook) ActualSpending(id string, on Date, rates *RateTable) (Money, error) {
	e, ok := b.entries[id]
	if !ok {
		return Money{}, fmt.Errorf("budget entry %q not found", id)
	}
	if on.IsZero() {
		on = Today()
	}
	dir := e.Type.direction()
	txs := b.ledger.Transactions(TxFilter{
		Category:  e.Category,
		Direction: &dir,
		Range:     CurrentPeriod(e.Frequency, on),
	})
	total := M(0, e.Amount.Currency())
	for _, t := range txs {
		converted, err := rates.Convert(t.Amount, e.Amount.Currency())
		if err != nil {
			return Money{}, err
		}
		total = total.Add(converted)
	}
	return total, nil
}

// OverLimit reports whether an expense entry's actual spending exceeds its
// limit. Derived on demand, never stored.
func (b *BudgetBook) OverLimit(id string, on Date, rates *RateTable) (bool, error) {
	e, err := b.Entry(id)
	if err != nil {
		return false, err
	}
	if e.Type != Expense || !e.HasLimit() {
		return false, nil
	}
	actual, err := b.ActualSpending(id, on, rates)
	if err != nil {
		return false, err
	}
	return actual.GreaterThan(e.Limit), nil
}

// Fire materializes a due entry into an actual wallet transaction and
// advances the schedule. The wallet mutation comes first; if it fails the
// entry is left untouched. One-off entries are deactivated instead of being
// given a next date.
func (b *BudgetBook) Fire(id, walletID string, on Date, rates *RateTable) (Transaction, error) {
	e, ok := b.entries[id]
	if !ok {
		return Transaction{}, fmt.Errorf("budget entry %q not found", id)
	}
	if !e.Active {
		return Transaction{}, fmt.Errorf("budget entry %q is inactive", id)
	}
	if on.IsZero() {
		on = Today()
	}
	w, err := b.ledger.Wallet(walletID)
	if err != nil {
		return Transaction{}, err
	}
	amount, err := rates.Convert(e.Amount, w.Currency)
	if err != nil {
		return Transaction{}, err
	}
	tx, err := b.ledger.Post(walletID, on, amount, e.Type.direction(), e.Category, Link{Kind: LinkBudget, ID: e.ID}, "")
	if err != nil {
		return Transaction{}, err
	}
	if e.Frequency == Once {
		e.Active = false
		e.NextDue = Date{}
	} else {
		after := on
		if e.NextDue.After(after) {
			after = e.NextDue
		}
		e.NextDue = NextOccurrence(e.Frequency, e.DayOfMonth, after)
	}
	return tx, nil
}

// Due returns the active entries whose NextDue falls on or before 'on'.
func (b *BudgetBook) Due(on Date) []BudgetEntry {
	var out []BudgetEntry
	for _, id := range b.order {
		e := b.entries[id]
		if e.Active && !e.NextDue.IsZero() && !e.NextDue.After(on) {
			out = append(out, *e)
		}
	}
	return out
}
