package moneta

// The aggregation layer is a pure, re-run-from-scratch read over the
// transaction log. At personal scale (hundreds to low thousands of
// transactions) recomputation is cheap, and it buys correctness: there is no
// incremental aggregate state to drift out of sync.

// SummaryBucket is one charted data point of a period summary.
type SummaryBucket struct {
	Label    string
	Range    Range
	Income   Money
	Expenses Money
	Net      Money
	Count    int
}

// PeriodSummary totals a date range in one display currency, with a
// time-bucketed series for charting.
type PeriodSummary struct {
	Range    Range
	Currency string
	Income   Money
	Expenses Money
	Net      Money
	Count    int
	Buckets  []SummaryBucket
}

// bucketPeriod picks the bucket granularity from the range length:
// one point per day up to a month, per week up to a season, per month beyond.
func bucketPeriod(r Range) Period {
	switch days := r.Days(); {
	case days <= 31:
		return Daily
	case days <= 120:
		return Weekly
	default:
		return Monthly
	}
}

// NewPeriodSummary computes income, expenses, net and transaction count for
// the range, all converted into the display currency.
func NewPeriodSummary(ledger *WalletLedger, rng Range, display string, rates *RateTable) (*PeriodSummary, error) {
	display = NormalizeCurrency(display)
	s := &PeriodSummary{
		Range:    rng,
		Currency: display,
		Income:   M(0, display),
		Expenses: M(0, display),
	}

	for bucket := range rng.Periods(bucketPeriod(rng)) {
		s.Buckets = append(s.Buckets, SummaryBucket{
			Label:    bucket.Identifier(),
			Range:    bucket,
			Income:   M(0, display),
			Expenses: M(0, display),
			Net:      M(0, display),
		})
	}

	for _, tx := range ledger.Transactions(TxFilter{Range: rng}) {
		amount, err := rates.Convert(tx.Amount, display)
		if err != nil {
			return nil, err
		}
		s.Count++
		if tx.Direction == Credit {
			s.Income = s.Income.Add(amount)
		} else {
			s.Expenses = s.Expenses.Add(amount)
		}
		for i := range s.Buckets {
			if !s.Buckets[i].Range.Contains(tx.Date) {
				continue
			}
			s.Buckets[i].Count++
			if tx.Direction == Credit {
				s.Buckets[i].Income = s.Buckets[i].Income.Add(amount)
			} else {
				s.Buckets[i].Expenses = s.Buckets[i].Expenses.Add(amount)
			}
			break
		}
	}

	s.Net = s.Income.Sub(s.Expenses)
	for i := range s.Buckets {
		s.Buckets[i].Net = s.Buckets[i].Income.Sub(s.Buckets[i].Expenses)
	}
	return s, nil
}

// WalletOverview is one wallet's balance in both its own and the display
// currency.
type WalletOverview struct {
	Wallet    Wallet
	Converted Money
}

// BudgetOverview is one budget entry with its actual spending in the current
// period and the derived over-limit flag.
type BudgetOverview struct {
	Entry     BudgetEntry
	Actual    Money
	OverLimit bool
}

// Overview is the dashboard rollup: everything converted into the primary
// display currency as of a date.
type Overview struct {
	Date            Date
	Currency        string
	TotalBalance    Money
	Wallets         []WalletOverview
	Month           *PeriodSummary
	Budgets         []BudgetOverview
	DebtIOwe        Money // total remaining I owe
	DebtOwedToMe    Money // total remaining owed to me
	CryptoValue     Money // holdings valued at cost basis
	InvestmentValue Money
}

// NewOverview computes the dashboard totals. Pure read: calling it twice
// with no intervening mutation returns identical results.
func NewOverview(ledger *WalletLedger, budgets *BudgetBook, debts *DebtBook, crypto *CryptoBook, invest *InvestmentBook, on Date, display string, rates *RateTable) (*Overview, error) {
	display = NormalizeCurrency(display)
	o := &Overview{
		Date:            on,
		Currency:        display,
		TotalBalance:    M(0, display),
		DebtIOwe:        M(0, display),
		DebtOwedToMe:    M(0, display),
		CryptoValue:     M(0, display),
		InvestmentValue: M(0, display),
	}

	for _, w := range ledger.Wallets() {
		converted, err := rates.Convert(w.Balance(), display)
		if err != nil {
			return nil, err
		}
		o.Wallets = append(o.Wallets, WalletOverview{Wallet: w, Converted: converted})
		o.TotalBalance = o.TotalBalance.Add(converted)
	}

	month, err := NewPeriodSummary(ledger, Monthly.Range(on), display, rates)
	if err != nil {
		return nil, err
	}
	o.Month = month

	for _, e := range budgets.Entries() {
		if !e.Active {
			continue
		}
		actual, err := budgets.ActualSpending(e.ID, on, rates)
		if err != nil {
			return nil, err
		}
		over := e.Type == Expense && e.HasLimit() && actual.GreaterThan(e.Limit)
		o.Budgets = append(o.Budgets, BudgetOverview{Entry: e, Actual: actual, OverLimit: over})
	}

	for _, d := range debts.Debts() {
		if d.Status() == DebtCancelled || d.Status() == DebtPaid {
			continue
		}
		remaining, err := rates.Convert(d.Remaining(), display)
		if err != nil {
			return nil, err
		}
		if d.Type == IOwe {
			o.DebtIOwe = o.DebtIOwe.Add(remaining)
		} else {
			o.DebtOwedToMe = o.DebtOwedToMe.Add(remaining)
		}
	}

	// Crypto is valued at cost basis: the engine holds no market prices,
	// only the externally supplied fiat rate table.
	for _, h := range crypto.Holdings() {
		value, err := rates.Convert(h.CostBasis.Mul(h.Amount), display)
		if err != nil {
			return nil, err
		}
		o.CryptoValue = o.CryptoValue.Add(value)
	}

	for _, c := range invest.Cases() {
		value, err := c.CurrentValue(display, rates)
		if err != nil {
			return nil, err
		}
		o.InvestmentValue = o.InvestmentValue.Add(value)
	}

	return o, nil
}
