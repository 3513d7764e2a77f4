// Package cmd implements the CLI application to manage a personal ledger.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/moneta-dev/moneta"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&walletNewCmd{}, "wallets")
	c.Register(&walletsCmd{}, "wallets")

	c.Register(&depositCmd{}, "transactions")
	c.Register(&withdrawCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")

	c.Register(&budgetAddCmd{}, "budgets")
	c.Register(&budgetsCmd{}, "budgets")
	c.Register(&budgetFireCmd{}, "budgets")

	c.Register(&debtAddCmd{}, "debts")
	c.Register(&debtPayCmd{}, "debts")
	c.Register(&debtsCmd{}, "debts")

	c.Register(&buyCmd{}, "crypto")
	c.Register(&sellCmd{}, "crypto")
	c.Register(&holdingsCmd{}, "crypto")

	c.Register(&caseNewCmd{}, "investments")
	c.Register(&assetAddCmd{}, "investments")
	c.Register(&assetPriceCmd{}, "investments")
	c.Register(&casesCmd{}, "investments")

	c.Register(&overviewCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&ratesCmd{}, "reports")
}

// As a CLI application it has a very short lived lifecycle, so it is ok to
// use global variables.

var ledgerFile = flag.String("ledger-file", "moneta.jsonl", "Path to the ledger snapshot file (JSONL format)")
var newCurrency = flag.String("currency", "USD", "Display currency used when creating a new ledger file")
var offline = flag.Bool("offline", false, "Do not fetch exchange rates; only same-currency amounts convert")

// LoadEngine reads the snapshot from the app ledger file. A missing file is
// not an error: it yields an empty engine in the configured currency.
func LoadEngine() (*moneta.Engine, error) {
	f, err := os.Open(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("warning, ledger file does not exist, starting with an empty one")
		return moneta.NewEngine(*newCurrency)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger file %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	e, err := moneta.DecodeEngine(f)
	if err != nil {
		return nil, fmt.Errorf("cannot load ledger file %q: %w", *ledgerFile, err)
	}
	return e, nil
}

// SaveEngine writes the snapshot back, atomically via a rename.
func SaveEngine(e *moneta.Engine) error {
	tmp := *ledgerFile + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("cannot write ledger file %q: %w", *ledgerFile, err)
	}
	if err := moneta.EncodeEngine(f, e); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cannot encode ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, *ledgerFile)
}

// LoadRates refreshes the engine's rate table from the default quote source,
// covering every currency the ledger mentions. Responses are cached for the
// day, so repeated invocations are free. Failures degrade to the table the
// engine already has.
func LoadRates(ctx context.Context, e *moneta.Engine) {
	if *offline {
		return
	}
	symbols := ledgerCurrencies(e)
	if len(symbols) == 0 {
		return
	}
	table, err := moneta.FetchRates(ctx, moneta.DailyCachedClient(), moneta.DefaultRateSource, e.DisplayCurrency(), symbols)
	if err != nil {
		log.Printf("warning, could not fetch exchange rates: %v", err)
		return
	}
	e.SetRates(table)
}

// ledgerCurrencies collects every fiat currency the ledger mentions besides
// the display currency.
func ledgerCurrencies(e *moneta.Engine) []string {
	set := make(map[string]bool)
	add := func(code string) {
		if code != "" && code != e.DisplayCurrency() {
			set[code] = true
		}
	}
	for _, w := range e.Wallets() {
		add(w.Currency)
	}
	for _, b := range e.BudgetEntries() {
		add(b.Amount.Currency())
	}
	for _, d := range e.Debts() {
		add(d.Currency)
	}
	for _, h := range e.CryptoHoldings() {
		add(h.CostBasis.Currency())
	}
	for _, c := range e.InvestmentCases() {
		for _, a := range c.Assets {
			add(a.PurchasePrice.Currency())
		}
	}
	out := make([]string, 0, len(set))
	for code := range set {
		out = append(out, code)
	}
	return out
}

// printMarkdown pretty-prints markdown to the terminal, falling back to the
// raw text when the renderer cannot run.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
