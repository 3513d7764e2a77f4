package renderer

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/moneta-dev/moneta"
)

// headings parses markdown and returns the text of every heading, so tests
// assert on document structure rather than raw bytes.
func headings(t *testing.T, source string) []string {
	t.Helper()
	src := []byte(source)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var out []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			var b strings.Builder
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				if txt, ok := c.(*ast.Text); ok {
					b.Write(txt.Value(src))
				}
			}
			out = append(out, b.String())
		}
		return ast.WalkContinue, nil
	})
	return out
}

func overviewFixture(t *testing.T) *moneta.Overview {
	t.Helper()
	e, err := moneta.NewEngine("USD")
	if err != nil {
		t.Fatal(err)
	}
	e.SetRates(moneta.NewRateTable("USD", map[string]float64{"EUR": 1.25}))

	on := moneta.MustParseDate("2025-03-15")
	w, err := e.CreateWallet("Checking", "USD", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.PostTransaction(w.ID, moneta.MustParseDate("2025-03-01"), moneta.M(2000, "USD"), moneta.Credit, "salary", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddBudgetEntry(moneta.Expense, moneta.M(300, "USD"), "food", moneta.EveryMonth, 1, moneta.M(300, "USD"), on); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddDebt(moneta.IOwe, "Alice", "", moneta.M(50, "USD"), moneta.Date{}); err != nil {
		t.Fatal(err)
	}

	o, err := e.Overview(on)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestRenderOverview(t *testing.T) {
	got := RenderOverview(NewOverview(overviewFixture(t)))

	want := []string{"Overview on 2025-03-15", "Wallets", "This Month", "Budgets", "Positions"}
	h := headings(t, got)
	if len(h) != len(want) {
		t.Fatalf("headings = %v, want %v", h, want)
	}
	for i := range want {
		if h[i] != want[i] {
			t.Errorf("heading[%d] = %q, want %q", i, h[i], want[i])
		}
	}

	for _, cell := range []string{"Checking", "$2,000.00", "food", "ok", "$50.00"} {
		if !strings.Contains(got, cell) {
			t.Errorf("output missing %q:\n%s", cell, got)
		}
	}
	if strings.Contains(got, "over limit") {
		t.Errorf("no budget is over limit:\n%s", got)
	}
}

func TestSummaryMarkdown(t *testing.T) {
	e, err := moneta.NewEngine("USD")
	if err != nil {
		t.Fatal(err)
	}
	w, _ := e.CreateWallet("Checking", "USD", "", "")
	e.PostTransaction(w.ID, moneta.MustParseDate("2025-03-01"), moneta.M(100, "USD"), moneta.Credit, "salary", "")
	e.PostTransaction(w.ID, moneta.MustParseDate("2025-03-02"), moneta.M(40, "USD"), moneta.Debit, "food", "")

	s, err := e.PeriodSummary(moneta.Monthly.Range(moneta.MustParseDate("2025-03-15")))
	if err != nil {
		t.Fatal(err)
	}
	got := SummaryMarkdown(s)

	h := headings(t, got)
	if len(h) != 3 || h[0] != "Summary for 2025-03" {
		t.Errorf("headings = %v", h)
	}
	// Empty buckets are not rendered.
	if strings.Contains(got, "2025-03-07") {
		t.Errorf("output includes an empty day bucket:\n%s", got)
	}
	for _, cell := range []string{"2025-03-01", "2025-03-02", "+$60.00"} {
		if !strings.Contains(got, cell) {
			t.Errorf("output missing %q:\n%s", cell, got)
		}
	}
}

func TestDebtsMarkdown(t *testing.T) {
	debts := []moneta.Debt{}
	e, _ := moneta.NewEngine("USD")
	e.SetRates(moneta.NewRateTable("USD", nil))
	w, _ := e.CreateWallet("Checking", "USD", "", "")
	e.PostTransaction(w.ID, moneta.MustParseDate("2025-03-01"), moneta.M(500, "USD"), moneta.Credit, "", "")
	d, _ := e.AddDebt(moneta.IOwe, "Alice", "lunch", moneta.M(100, "USD"), moneta.MustParseDate("2025-06-01"))
	e.RecordDebtPayment(d.ID, moneta.M(40, "USD"), w.ID, moneta.MustParseDate("2025-03-02"), "")
	debts = e.Debts()

	got := DebtsMarkdown(debts)
	for _, cell := range []string{"Alice", "iOwe", "$100.00", "$40.00", "$60.00", "2025-06-01", "partiallyPaid"} {
		if !strings.Contains(got, cell) {
			t.Errorf("output missing %q:\n%s", cell, got)
		}
	}
}

func TestTransactionsMarkdown(t *testing.T) {
	on := moneta.MustParseDate("2025-03-01")
	txs := []moneta.Transaction{
		{ID: "t-000001", WalletID: "w-001", Amount: moneta.M(100, "USD"), Direction: moneta.Credit, Category: "salary", Date: on},
		{ID: "t-000002", WalletID: "w-001", Amount: moneta.M(20, "USD"), Direction: moneta.Debit, Category: "food", Date: on, Note: "groceries"},
		{ID: "t-000003", WalletID: "w-001", Amount: moneta.M(30, "USD"), Direction: moneta.Debit, Date: on.Add(1), Link: moneta.Link{Kind: moneta.LinkDebt, ID: "d-001"}},
	}
	got := TransactionsMarkdown(txs, func(string) string { return "Checking" })

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if lines[0] != "# Transactions" {
		t.Errorf("first line = %q", lines[0])
	}
	body := lines[2:]
	if len(body) != 3 {
		t.Fatalf("body lines = %d, want 3", len(body))
	}
	if !strings.Contains(body[0], "Received $100.00 on Checking (salary)") {
		t.Errorf("line 1 = %q", body[0])
	}
	// The repeated date is blanked.
	if strings.Contains(body[1], "2025-03-01") {
		t.Errorf("repeated date not blanked: %q", body[1])
	}
	if !strings.Contains(body[1], "Spent $20.00 on Checking (food): groceries") {
		t.Errorf("line 2 = %q", body[1])
	}
	if !strings.Contains(body[2], "2025-03-02") || !strings.Contains(body[2], "Paid $30.00 towards d-001") {
		t.Errorf("line 3 = %q", body[2])
	}
}
