package moneta

import "testing"

func TestBudgetAdd_SchedulesNextDue(t *testing.T) {
	l, _ := newTestLedger(t)
	b := NewBudgetBook(l)

	testCases := []struct {
		name    string
		freq    Frequency
		day     int
		from    string
		wantDue string
	}{
		{"monthly later in month", EveryMonth, 15, "2025-01-10", "2025-01-15"},
		{"monthly same day keeps it", EveryMonth, 10, "2025-01-10", "2025-01-10"},
		{"monthly day 31 from Jan 31 clamps", EveryMonth, 31, "2025-02-01", "2025-02-28"},
		{"once keeps the given date", Once, 0, "2025-06-01", "2025-06-01"},
		{"weekly", EveryWeek, 0, "2025-01-10", "2025-01-10"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := b.Add(Expense, M(50, "USD"), "rent", tc.freq, tc.day, Money{}, MustParseDate(tc.from))
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if e.NextDue.String() != tc.wantDue {
				t.Errorf("NextDue = %s, want %s", e.NextDue, tc.wantDue)
			}
			if !e.Active {
				t.Error("new entry should be active")
			}
		})
	}
}

func TestBudgetLimitCurrencyMustMatchEntry(t *testing.T) {
	l, _ := newTestLedger(t)
	b := NewBudgetBook(l)
	on := MustParseDate("2025-03-10")

	// A GBP limit on a USD entry would be compared to USD spending 1:1.
	if _, err := b.Add(Expense, M(100, "USD"), "food", EveryMonth, 1, M(120, "GBP"), on); err == nil {
		t.Error("Add accepted a limit in a different currency than the entry")
	}
	if got := len(b.Entries()); got != 0 {
		t.Errorf("entries after rejected Add: %d", got)
	}

	e, err := b.Add(Expense, M(100, "USD"), "food", EveryMonth, 1, M(120, "USD"), on)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Update(e.ID, M(100, "USD"), "food", EveryMonth, 1, M(120, "EUR"), on); err == nil {
		t.Error("Update accepted a limit in a different currency than the entry")
	}
	e, _ = b.Entry(e.ID)
	if !e.Limit.Equal(M(120, "USD")) {
		t.Errorf("limit changed by rejected update: %s", e.Limit)
	}

	// Dropping the limit is always allowed.
	if _, err := b.Update(e.ID, M(100, "USD"), "food", EveryMonth, 1, Money{}, on); err != nil {
		t.Errorf("Update with zero limit: %v", err)
	}
}

func TestBudgetUpdate_ReschedulesOnFrequencyChange(t *testing.T) {
	l, _ := newTestLedger(t)
	b := NewBudgetBook(l)
	on := MustParseDate("2025-03-10")

	e, err := b.Add(Expense, M(50, "USD"), "rent", EveryMonth, 5, Money{}, on)
	if err != nil {
		t.Fatal(err)
	}
	if e.NextDue.String() != "2025-04-05" {
		t.Fatalf("initial NextDue = %s", e.NextDue)
	}

	// Changing only the amount keeps the schedule.
	e, err = b.Update(e.ID, M(60, "USD"), "rent", EveryMonth, 5, Money{}, on)
	if err != nil {
		t.Fatal(err)
	}
	if e.NextDue.String() != "2025-04-05" {
		t.Errorf("NextDue moved to %s on an amount-only update", e.NextDue)
	}

	// Changing the day of month recomputes it.
	e, err = b.Update(e.ID, M(60, "USD"), "rent", EveryMonth, 20, Money{}, on)
	if err != nil {
		t.Fatal(err)
	}
	if e.NextDue.String() != "2025-03-20" {
		t.Errorf("NextDue = %s, want 2025-03-20", e.NextDue)
	}
}

func TestActualSpending(t *testing.T) {
	l, w := newTestLedger(t)
	b := NewBudgetBook(l)
	rates := testRates()
	on := MustParseDate("2025-03-15")

	// Budget in EUR, spending in a USD wallet: conversion applies.
	e, err := b.Add(Expense, M(200, "EUR"), "food", EveryMonth, 1, Money{}, on)
	if err != nil {
		t.Fatal(err)
	}

	l.Post(w.ID, MustParseDate("2025-03-05"), M(125, "USD"), Debit, "food", Link{}, "")
	l.Post(w.ID, MustParseDate("2025-03-20"), M(25, "USD"), Debit, "food", Link{}, "")
	// Outside the period, other category, other direction: all ignored.
	l.Post(w.ID, MustParseDate("2025-02-20"), M(500, "USD"), Debit, "food", Link{}, "")
	l.Post(w.ID, MustParseDate("2025-03-10"), M(40, "USD"), Debit, "transport", Link{}, "")
	l.Post(w.ID, MustParseDate("2025-03-11"), M(75, "USD"), Credit, "food", Link{}, "")

	actual, err := b.ActualSpending(e.ID, on, rates)
	if err != nil {
		t.Fatal(err)
	}
	// 150 USD spent on food in March = 120 EUR at 1 EUR = 1.25 USD.
	if !actual.Equal(M(120, "EUR")) {
		t.Errorf("actual = %s, want €120", actual)
	}

	// Reading spending created no transactions.
	if got := len(l.Transactions(TxFilter{})); got != 5 {
		t.Errorf("log grew to %d transactions on a read", got)
	}
}

func TestOverLimit(t *testing.T) {
	l, w := newTestLedger(t)
	b := NewBudgetBook(l)
	rates := testRates()
	on := MustParseDate("2025-03-15")

	e, _ := b.Add(Expense, M(100, "USD"), "food", EveryMonth, 1, M(100, "USD"), on)
	l.Post(w.ID, MustParseDate("2025-03-05"), M(90, "USD"), Debit, "food", Link{}, "")

	over, err := b.OverLimit(e.ID, on, rates)
	if err != nil {
		t.Fatal(err)
	}
	if over {
		t.Error("90 of 100 should not be over budget")
	}

	l.Post(w.ID, MustParseDate("2025-03-06"), M(20, "USD"), Debit, "food", Link{}, "")
	over, err = b.OverLimit(e.ID, on, rates)
	if err != nil {
		t.Fatal(err)
	}
	if !over {
		t.Error("110 of 100 should be over budget")
	}
}

func TestFire_PostsAndAdvances(t *testing.T) {
	l, w := newTestLedger(t)
	b := NewBudgetBook(l)
	rates := testRates()

	e, _ := b.Add(Income, M(1000, "USD"), "salary", EveryMonth, 1, Money{}, MustParseDate("2025-03-01"))
	tx, err := b.Fire(e.ID, w.ID, MustParseDate("2025-03-01"), rates)
	if err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if tx.Direction != Credit || !tx.Amount.Equal(M(1000, "USD")) {
		t.Errorf("fired tx = %+v", tx)
	}
	if tx.Link.Kind != LinkBudget || tx.Link.ID != e.ID {
		t.Errorf("fired tx not linked to its entry: %+v", tx.Link)
	}

	balance, _ := l.Balance(w.ID)
	if !balance.Equal(M(1000, "USD")) {
		t.Errorf("balance = %s", balance)
	}

	e, _ = b.Entry(e.ID)
	if e.NextDue.String() != "2025-04-01" {
		t.Errorf("NextDue = %s, want 2025-04-01", e.NextDue)
	}
}

func TestFire_OnceDeactivates(t *testing.T) {
	l, w := newTestLedger(t)
	b := NewBudgetBook(l)
	rates := testRates()

	e, _ := b.Add(Expense, M(75, "USD"), "gift", Once, 0, Money{}, MustParseDate("2025-05-01"))
	if _, err := b.Fire(e.ID, w.ID, MustParseDate("2025-05-01"), rates); err != nil {
		t.Fatal(err)
	}

	e, _ = b.Entry(e.ID)
	if e.Active {
		t.Error("one-off entry still active after firing")
	}
	if !e.NextDue.IsZero() {
		t.Errorf("one-off entry has NextDue %s after firing", e.NextDue)
	}

	if _, err := b.Fire(e.ID, w.ID, MustParseDate("2025-05-02"), rates); err == nil {
		t.Error("firing an inactive entry should fail")
	}
}

func TestFire_ConvertsToWalletCurrency(t *testing.T) {
	l, _ := newTestLedger(t)
	eur, _ := l.CreateWallet("Euro account", "EUR", "", "")
	b := NewBudgetBook(l)
	rates := testRates()

	e, _ := b.Add(Expense, M(125, "USD"), "subscription", EveryMonth, 1, Money{}, MustParseDate("2025-03-01"))
	tx, err := b.Fire(e.ID, eur.ID, MustParseDate("2025-03-01"), rates)
	if err != nil {
		t.Fatal(err)
	}
	if !tx.Amount.Equal(M(100, "EUR")) {
		t.Errorf("fired amount = %s, want €100", tx.Amount)
	}
}

func TestBudgetDue(t *testing.T) {
	l, _ := newTestLedger(t)
	b := NewBudgetBook(l)

	due, _ := b.Add(Expense, M(10, "USD"), "a", EveryMonth, 5, Money{}, MustParseDate("2025-03-01"))
	_, _ = b.Add(Expense, M(10, "USD"), "b", EveryMonth, 25, Money{}, MustParseDate("2025-03-01"))

	got := b.Due(MustParseDate("2025-03-10"))
	if len(got) != 1 || got[0].ID != due.ID {
		t.Errorf("Due = %+v, want only %s", got, due.ID)
	}
}

func TestBudgetDelete(t *testing.T) {
	l, _ := newTestLedger(t)
	b := NewBudgetBook(l)
	e, _ := b.Add(Expense, M(10, "USD"), "a", EveryMonth, 5, Money{}, MustParseDate("2025-03-01"))
	if err := b.Delete(e.ID); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete(e.ID); err == nil {
		t.Error("double delete should fail")
	}
	if got := len(b.Entries()); got != 0 {
		t.Errorf("entries = %d, want 0", got)
	}
}
