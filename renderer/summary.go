package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/moneta-dev/moneta"
)

// SummaryMarkdown renders a period summary with its charted buckets.
func SummaryMarkdown(s *moneta.PeriodSummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Summary for %s", s.Range.Identifier()))
	doc.PlainText(fmt.Sprintf("%d transactions in %s", s.Count, s.Currency))

	doc.H2("Totals")
	doc.Table(md.TableSet{
		Header: []string{"Income", "Expenses", "Net"},
		Rows: [][]string{
			{s.Income.SignedString(), s.Expenses.String(), s.Net.SignedString()},
		},
	})

	doc.H2("Breakdown")
	table := md.TableSet{Header: []string{"Bucket", "Income", "Expenses", "Net", "Txs"}}
	for _, b := range s.Buckets {
		if b.Count == 0 {
			continue
		}
		table.Rows = append(table.Rows, []string{
			b.Label,
			b.Income.SignedString(),
			b.Expenses.String(),
			b.Net.SignedString(),
			fmt.Sprintf("%d", b.Count),
		})
	}
	doc.Table(table)

	return doc.String()
}

// DebtsMarkdown renders the debt list with derived statuses.
func DebtsMarkdown(debts []moneta.Debt) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Debts")
	table := md.TableSet{Header: []string{"ID", "Who", "Type", "Initial", "Paid", "Remaining", "Due", "Status"}}
	for _, d := range debts {
		due := "-"
		if !d.DueDate.IsZero() {
			due = d.DueDate.String()
		}
		table.Rows = append(table.Rows, []string{
			d.ID,
			d.PersonName,
			d.Type.String(),
			d.InitialAmount.String(),
			d.PaidAmount.String(),
			d.Remaining().String(),
			due,
			d.Status().String(),
		})
	}
	doc.Table(table)

	return doc.String()
}

// HoldingsMarkdown renders the crypto holdings valued at cost basis.
func HoldingsMarkdown(holdings []moneta.CryptoHolding) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Crypto Holdings")
	table := md.TableSet{Header: []string{"ID", "Asset", "Amount", "Avg Cost", "Value (at cost)"}}
	for _, h := range holdings {
		table.Rows = append(table.Rows, []string{
			h.ID,
			h.Asset,
			h.Amount.String(),
			h.CostBasis.String(),
			h.CostBasis.Mul(h.Amount).String(),
		})
	}
	doc.Table(table)

	return doc.String()
}

// CasesMarkdown renders the investment cases with per-asset performance.
func CasesMarkdown(cases []moneta.InvestmentCase, display string, rates *moneta.RateTable) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Investment Cases")
	for _, c := range cases {
		doc.H2(fmt.Sprintf("%s (%s)", c.Name, c.ID))
		table := md.TableSet{Header: []string{"Asset", "Quantity", "Bought At", "Now At", "P/L"}}
		for _, a := range c.Assets {
			table.Rows = append(table.Rows, []string{
				a.Name,
				a.Quantity.String(),
				a.PurchasePrice.String(),
				a.CurrentPrice.String(),
				a.ProfitLoss().SignedString(),
			})
		}
		doc.Table(table)
		if pl, err := c.ProfitLoss(display, rates); err == nil {
			doc.PlainText(fmt.Sprintf("Case P/L: %s", pl.SignedString()))
		}
	}

	return doc.String()
}
