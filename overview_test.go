package moneta

import (
	"reflect"
	"testing"
)

func TestBucketPeriod(t *testing.T) {
	testCases := []struct {
		name string
		rng  Range
		want Period
	}{
		{"one month", Monthly.Range(MustParseDate("2025-03-15")), Daily},
		{"one quarter", Quarterly.Range(MustParseDate("2025-03-15")), Weekly},
		{"one year", Yearly.Range(MustParseDate("2025-03-15")), Monthly},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := bucketPeriod(tc.rng); got != tc.want {
				t.Errorf("bucketPeriod = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestNewPeriodSummary(t *testing.T) {
	l, w := newTestLedger(t)
	rates := testRates()

	l.Post(w.ID, MustParseDate("2025-03-01"), M(1000, "USD"), Credit, "salary", Link{}, "")
	l.Post(w.ID, MustParseDate("2025-03-05"), M(200, "USD"), Debit, "rent", Link{}, "")
	l.Post(w.ID, MustParseDate("2025-03-05"), M(50, "USD"), Debit, "food", Link{}, "")
	// Outside the month.
	l.Post(w.ID, MustParseDate("2025-04-01"), M(999, "USD"), Debit, "rent", Link{}, "")

	rng := Monthly.Range(MustParseDate("2025-03-15"))
	s, err := NewPeriodSummary(l, rng, "EUR", rates)
	if err != nil {
		t.Fatal(err)
	}

	// $1,000 = €800; $250 = €200.
	if !s.Income.Equal(M(800, "EUR")) {
		t.Errorf("income = %s, want €800", s.Income)
	}
	if !s.Expenses.Equal(M(200, "EUR")) {
		t.Errorf("expenses = %s, want €200", s.Expenses)
	}
	if !s.Net.Equal(M(600, "EUR")) {
		t.Errorf("net = %s, want €600", s.Net)
	}
	if s.Count != 3 {
		t.Errorf("count = %d, want 3", s.Count)
	}

	// A one-month range buckets daily: 31 points for March.
	if len(s.Buckets) != 31 {
		t.Fatalf("buckets = %d, want 31", len(s.Buckets))
	}
	day5 := s.Buckets[4]
	if day5.Label != "2025-03-05" {
		t.Fatalf("bucket label = %s", day5.Label)
	}
	if day5.Count != 2 || !day5.Expenses.Equal(M(200, "EUR")) || !day5.Net.Equal(M(-200, "EUR")) {
		t.Errorf("day 5 bucket = %+v", day5)
	}

	// Bucket totals agree with the range totals.
	sum := M(0, "EUR")
	for _, b := range s.Buckets {
		sum = sum.Add(b.Net)
	}
	if !sum.Equal(s.Net) {
		t.Errorf("bucket nets sum to %s, range net is %s", sum, s.Net)
	}
}

func newTestOverviewState(t *testing.T) (*WalletLedger, *BudgetBook, *DebtBook, *CryptoBook, *InvestmentBook) {
	t.Helper()
	l := NewWalletLedger()
	usd, err := l.CreateWallet("Checking", "USD", "", "")
	if err != nil {
		t.Fatal(err)
	}
	eur, err := l.CreateWallet("Euro", "EUR", "", "")
	if err != nil {
		t.Fatal(err)
	}
	l.Post(usd.ID, MustParseDate("2025-03-01"), M(1000, "USD"), Credit, "salary", Link{}, "")
	l.Post(eur.ID, MustParseDate("2025-03-01"), M(400, "EUR"), Credit, "salary", Link{}, "")

	budgets := NewBudgetBook(l)
	budgets.Add(Expense, M(100, "USD"), "food", EveryMonth, 1, M(100, "USD"), MustParseDate("2025-03-01"))
	l.Post(usd.ID, MustParseDate("2025-03-10"), M(120, "USD"), Debit, "food", Link{}, "")

	debts := NewDebtBook(l)
	debts.Add(IOwe, "Alice", "", M(250, "USD"), Date{})
	debts.Add(OwedToMe, "Bob", "", M(80, "EUR"), Date{})
	cancelled, _ := debts.Add(IOwe, "Carol", "", M(9999, "USD"), Date{})
	debts.Cancel(cancelled.ID)

	crypto := NewCryptoBook(l)
	crypto.Buy(usd.ID, "BTC", "Bitcoin", Q(0.01), M(10000, "USD"), MustParseDate("2025-03-05"), testRates())

	invest := NewInvestmentBook()
	c := invest.Add("Retirement")
	invest.AddAsset(c.ID, InvestmentAsset{
		Name:          "World ETF",
		Quantity:      Q(2),
		PurchasePrice: M(100, "USD"),
		CurrentPrice:  M(110, "USD"),
	})
	return l, budgets, debts, crypto, invest
}

func TestNewOverview(t *testing.T) {
	l, budgets, debts, crypto, invest := newTestOverviewState(t)
	rates := testRates()
	on := MustParseDate("2025-03-15")

	o, err := NewOverview(l, budgets, debts, crypto, invest, on, "USD", rates)
	if err != nil {
		t.Fatal(err)
	}

	// USD 1000 - 120 - 100 crypto = 780, EUR 400 = $500.
	if !o.TotalBalance.Equal(M(1280, "USD")) {
		t.Errorf("total = %s, want $1,280", o.TotalBalance)
	}
	if len(o.Wallets) != 2 {
		t.Fatalf("wallets = %d", len(o.Wallets))
	}
	if !o.Wallets[1].Converted.Equal(M(500, "USD")) {
		t.Errorf("converted EUR balance = %s, want $500", o.Wallets[1].Converted)
	}

	if len(o.Budgets) != 1 {
		t.Fatalf("budgets = %d", len(o.Budgets))
	}
	if !o.Budgets[0].Actual.Equal(M(120, "USD")) {
		t.Errorf("actual = %s, want $120", o.Budgets[0].Actual)
	}
	if !o.Budgets[0].OverLimit {
		t.Error("120 of 100 should be over limit")
	}

	// The cancelled debt is excluded.
	if !o.DebtIOwe.Equal(M(250, "USD")) {
		t.Errorf("iOwe = %s, want $250", o.DebtIOwe)
	}
	if !o.DebtOwedToMe.Equal(M(100, "USD")) {
		t.Errorf("owedToMe = %s, want $100", o.DebtOwedToMe)
	}

	if !o.CryptoValue.Equal(M(100, "USD")) {
		t.Errorf("crypto = %s, want $100", o.CryptoValue)
	}
	if !o.InvestmentValue.Equal(M(220, "USD")) {
		t.Errorf("investments = %s, want $220", o.InvestmentValue)
	}

	if o.Month == nil || o.Month.Count != 4 {
		t.Errorf("month summary = %+v", o.Month)
	}
}

func TestNewOverview_PureRead(t *testing.T) {
	l, budgets, debts, crypto, invest := newTestOverviewState(t)
	rates := testRates()
	on := MustParseDate("2025-03-15")

	first, err := NewOverview(l, budgets, debts, crypto, invest, on, "USD", rates)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewOverview(l, budgets, debts, crypto, invest, on, "USD", rates)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two reads with no mutation in between differ")
	}
}
