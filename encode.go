package moneta

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The snapshot format is JSONL: one JSON object per line, each tagged with a
// "record" discriminator. Cached quantities (wallet balances, debt paid
// amounts) are written out, and verified against the logs on decode so a
// corrupted or hand-edited file is detected rather than trusted.

type engineRec struct {
	Record   string `json:"record"`
	Currency string `json:"currency"`
}

type walletRec struct {
	Record   string          `json:"record"`
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Currency string          `json:"currency"`
	Color    string          `json:"color,omitempty"`
	Icon     string          `json:"icon,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
}

type txRec struct {
	Record    string          `json:"record"`
	ID        string          `json:"id"`
	Wallet    string          `json:"wallet"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Direction string          `json:"direction"`
	Category  string          `json:"category,omitempty"`
	Date      Date            `json:"date"`
	Note      string          `json:"note,omitempty"`
	LinkKind  string          `json:"linkKind,omitempty"`
	LinkID    string          `json:"linkId,omitempty"`
}

type budgetRec struct {
	Record     string          `json:"record"`
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Category   string          `json:"category,omitempty"`
	Frequency  string          `json:"frequency"`
	DayOfMonth int             `json:"dayOfMonth,omitempty"`
	NextDue    *Date           `json:"nextDue,omitempty"`
	Limit      decimal.Decimal `json:"limit"`
	Active     bool            `json:"active"`
}

type debtRec struct {
	Record      string          `json:"record"`
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Person      string          `json:"person"`
	Description string          `json:"description,omitempty"`
	Currency    string          `json:"currency"`
	Initial     decimal.Decimal `json:"initial"`
	Paid        decimal.Decimal `json:"paid"`
	Due         *Date           `json:"due,omitempty"`
	Cancelled   bool            `json:"cancelled,omitempty"`
}

type paymentRec struct {
	Record   string          `json:"record"`
	ID       string          `json:"id"`
	Debt     string          `json:"debt"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Wallet   string          `json:"wallet"`
	Date     Date            `json:"date"`
	Note     string          `json:"note,omitempty"`
}

type holdingRec struct {
	Record    string          `json:"record"`
	ID        string          `json:"id"`
	Asset     string          `json:"asset"`
	Name      string          `json:"name,omitempty"`
	Amount    Quantity        `json:"amount"`
	CostBasis decimal.Decimal `json:"costBasis"`
	Currency  string          `json:"currency"`
}

type assetRec struct {
	Name          string          `json:"name"`
	Quantity      Quantity        `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Currency      string          `json:"currency"`
}

type caseRec struct {
	Record string     `json:"record"`
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Assets []assetRec `json:"assets,omitempty"`
}

// EncodeEngine writes the full engine state as JSONL.
func EncodeEngine(w io.Writer, e *Engine) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	enc := json.NewEncoder(w)
	if err := enc.Encode(engineRec{Record: "engine", Currency: e.display}); err != nil {
		return err
	}
	for _, wal := range e.ledger.Wallets() {
		rec := walletRec{
			Record: "wallet", ID: wal.ID, Name: wal.Name, Currency: wal.Currency,
			Color: wal.Color, Icon: wal.Icon, Balance: wal.balance.value,
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	for _, t := range e.ledger.log {
		rec := txRec{
			Record: "tx", ID: t.ID, Wallet: t.WalletID,
			Amount: t.Amount.value, Currency: t.Amount.Currency(),
			Direction: t.Direction.String(), Category: t.Category,
			Date: t.Date, Note: t.Note,
			LinkKind: t.Link.Kind.String(), LinkID: t.Link.ID,
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	for _, b := range e.budgets.Entries() {
		rec := budgetRec{
			Record: "budget", ID: b.ID, Type: b.Type.String(),
			Amount: b.Amount.value, Currency: b.Amount.Currency(),
			Category: b.Category, Frequency: b.Frequency.String(),
			DayOfMonth: b.DayOfMonth, Limit: b.Limit.value, Active: b.Active,
		}
		if !b.NextDue.IsZero() {
			due := b.NextDue
			rec.NextDue = &due
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	for _, d := range e.debts.Debts() {
		rec := debtRec{
			Record: "debt", ID: d.ID, Type: d.Type.String(),
			Person: d.PersonName, Description: d.Description,
			Currency: d.Currency, Initial: d.InitialAmount.value,
			Paid: d.PaidAmount.value, Cancelled: d.cancelled,
		}
		if !d.DueDate.IsZero() {
			due := d.DueDate
			rec.Due = &due
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	for _, p := range e.debts.payments {
		rec := paymentRec{
			Record: "payment", ID: p.ID, Debt: p.DebtID,
			Amount: p.Amount.value, Currency: p.Amount.Currency(),
			Wallet: p.WalletID, Date: p.Date, Note: p.Note,
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	for _, h := range e.crypto.Holdings() {
		rec := holdingRec{
			Record: "holding", ID: h.ID, Asset: h.Asset, Name: h.Name,
			Amount: h.Amount, CostBasis: h.CostBasis.value,
			Currency: h.CostBasis.Currency(),
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	for _, c := range e.invest.Cases() {
		rec := caseRec{Record: "case", ID: c.ID, Name: c.Name}
		for _, a := range c.Assets {
			rec.Assets = append(rec.Assets, assetRec{
				Name: a.Name, Quantity: a.Quantity,
				PurchasePrice: a.PurchasePrice.value,
				CurrentPrice:  a.CurrentPrice.value,
				Currency:      a.PurchasePrice.Currency(),
			})
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// DecodeEngine reads a JSONL snapshot and rebuilds the engine.
//
// Cached fields are never trusted: wallet balances are recomputed from the
// transaction log and compared, and a debt's paid amount is checked against
// its payment history where the currencies allow it. A mismatch fails the
// decode.
func DecodeEngine(r io.Reader) (*Engine, error) {
	var e *Engine
	loadedBalances := make(map[string]Money)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var disc struct {
			Record string `json:"record"`
		}
		if err := json.Unmarshal(raw, &disc); err != nil {
			return nil, fmt.Errorf("line %d: cannot identify record: %w", line, err)
		}
		if disc.Record == "engine" {
			var rec engineRec
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			var err error
			if e, err = NewEngine(rec.Currency); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			continue
		}
		if e == nil {
			return nil, fmt.Errorf("line %d: %q record before engine header", line, disc.Record)
		}

		switch disc.Record {
		case "wallet":
			var rec walletRec
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			w := &Wallet{
				ID: rec.ID, Name: rec.Name, Currency: NormalizeCurrency(rec.Currency),
				Color: rec.Color, Icon: rec.Icon,
				balance: M(0, rec.Currency),
			}
			e.ledger.wallets[w.ID] = w
			e.ledger.order = append(e.ledger.order, w.ID)
			loadedBalances[w.ID] = M(rec.Balance, rec.Currency)
		case "tx":
			var rec txRec
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			dir, err := ParseDirection(rec.Direction)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			w, ok := e.ledger.wallets[rec.Wallet]
			if !ok {
				return nil, fmt.Errorf("line %d: transaction %q references unknown wallet %q", line, rec.ID, rec.Wallet)
			}
			t := Transaction{
				ID: rec.ID, WalletID: rec.Wallet,
				Amount: M(rec.Amount, rec.Currency), Direction: dir,
				Category: rec.Category, Date: rec.Date, Note: rec.Note,
				Link: Link{Kind: parseLinkKind(rec.LinkKind), ID: rec.LinkID},
			}
			e.ledger.log = append(e.ledger.log, t)
			w.balance = w.balance.Add(t.Signed())
			e.ledger.seq = maxSeq(e.ledger.seq, rec.ID)
		case "budget":
			var rec budgetRec
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			typ, err := ParseEntryType(rec.Type)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			freq, err := ParseFrequency(rec.Frequency)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			entry := &BudgetEntry{
				ID: rec.ID, Type: typ,
				Amount:   M(rec.Amount, rec.Currency),
				Category: rec.Category, Frequency: freq,
				DayOfMonth: rec.DayOfMonth,
				Limit:      M(rec.Limit, rec.Currency),
				Active:     rec.Active,
			}
			if rec.NextDue != nil {
				entry.NextDue = *rec.NextDue
			}
			e.budgets.entries[entry.ID] = entry
			e.budgets.order = append(e.budgets.order, entry.ID)
			e.budgets.seq = maxSeq(e.budgets.seq, rec.ID)
		case "debt":
			var rec debtRec
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			typ, err := ParseDebtType(rec.Type)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			d := &Debt{
				ID: rec.ID, Type: typ, PersonName: rec.Person,
				Description: rec.Description, Currency: NormalizeCurrency(rec.Currency),
				InitialAmount: M(rec.Initial, rec.Currency),
				PaidAmount:    M(rec.Paid, rec.Currency),
				cancelled:     rec.Cancelled,
			}
			if rec.Due != nil {
				d.DueDate = *rec.Due
			}
			if d.PaidAmount.IsNegative() || d.PaidAmount.GreaterThan(d.InitialAmount) {
				return nil, fmt.Errorf("line %d: debt %q paid amount %s outside [0, %s]", line, d.ID, d.PaidAmount, d.InitialAmount)
			}
			e.debts.debts[d.ID] = d
			e.debts.order = append(e.debts.order, d.ID)
			e.debts.seq = maxSeq(e.debts.seq, rec.ID)
		case "payment":
			var rec paymentRec
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if _, ok := e.debts.debts[rec.Debt]; !ok {
				return nil, fmt.Errorf("line %d: payment %q references unknown debt %q", line, rec.ID, rec.Debt)
			}
			e.debts.payments = append(e.debts.payments, DebtPayment{
				ID: rec.ID, DebtID: rec.Debt,
				Amount: M(rec.Amount, rec.Currency),
				WalletID: rec.Wallet, Date: rec.Date, Note: rec.Note,
			})
			e.debts.pseq = maxSeq(e.debts.pseq, rec.ID)
		case "holding":
			var rec holdingRec
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if rec.Amount.IsNegative() {
				return nil, fmt.Errorf("line %d: holding %q has negative amount %s", line, rec.ID, rec.Amount)
			}
			h := &CryptoHolding{
				ID: rec.ID, Asset: NormalizeCurrency(rec.Asset), Name: rec.Name,
				Amount: rec.Amount, CostBasis: M(rec.CostBasis, rec.Currency),
			}
			e.crypto.holdings[h.ID] = h
			e.crypto.byAsset[h.Asset] = h.ID
			e.crypto.order = append(e.crypto.order, h.ID)
			e.crypto.seq = maxSeq(e.crypto.seq, rec.ID)
		case "case":
			var rec caseRec
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			c := &InvestmentCase{ID: rec.ID, Name: rec.Name}
			for _, a := range rec.Assets {
				c.Assets = append(c.Assets, InvestmentAsset{
					Name: a.Name, Quantity: a.Quantity,
					PurchasePrice: M(a.PurchasePrice, a.Currency),
					CurrentPrice:  M(a.CurrentPrice, a.Currency),
				})
			}
			e.invest.cases[c.ID] = c
			e.invest.order = append(e.invest.order, c.ID)
			e.invest.seq = maxSeq(e.invest.seq, rec.ID)
		default:
			return nil, fmt.Errorf("line %d: unknown record kind %q", line, disc.Record)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("snapshot has no engine header")
	}

	// Verify the cached balances against the rebuilt log.
	for id, loaded := range loadedBalances {
		if !e.ledger.wallets[id].balance.Equal(loaded) {
			return nil, fmt.Errorf("wallet %q: snapshot balance %s does not match transaction sum %s",
				id, loaded, e.ledger.wallets[id].balance)
		}
	}
	if err := e.ledger.CheckBalances(); err != nil {
		return nil, err
	}
	if err := verifyPaidAmounts(e.debts); err != nil {
		return nil, err
	}
	return e, nil
}

// verifyPaidAmounts cross-checks each debt's paid amount against its payment
// history. Only payments recorded in the debt's own currency can be verified
// offline; a snapshot carries no rate table for the others.
func verifyPaidAmounts(b *DebtBook) error {
	for _, id := range b.order {
		d := b.debts[id]
		sum := M(0, d.Currency)
		verifiable := true
		for _, p := range b.payments {
			if p.DebtID != id {
				continue
			}
			if p.Amount.Currency() != d.Currency {
				verifiable = false
				break
			}
			sum = sum.Add(p.Amount)
		}
		// Epsilon-overshoot payments settle at exactly paid, so the sum may
		// exceed the paid amount by up to the tolerance.
		if verifiable && sum.Sub(d.PaidAmount).value.Abs().GreaterThan(paymentEpsilon) {
			return fmt.Errorf("debt %q: snapshot paid amount %s does not match payment sum %s",
				id, d.PaidAmount, sum)
		}
	}
	return nil
}

func parseLinkKind(s string) LinkKind {
	switch s {
	case "budget":
		return LinkBudget
	case "debt":
		return LinkDebt
	case "crypto":
		return LinkCrypto
	default:
		return LinkNone
	}
}

// maxSeq keeps an id counter ahead of every id seen in a snapshot, so new
// ids never collide with loaded ones. Ids look like "t-000042".
func maxSeq(cur int, id string) int {
	i := strings.LastIndex(id, "-")
	if i < 0 {
		return cur
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n <= cur {
		return cur
	}
	return n
}
