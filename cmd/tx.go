package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/moneta-dev/moneta"
	"github.com/moneta-dev/moneta/renderer"
)

// postCmd holds the shared shape of deposit and withdraw.
type postCmd struct {
	wallet   string
	amount   float64
	currency string
	category string
	date     string
	note     string
}

func (c *postCmd) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet id to post to")
	f.Float64Var(&c.amount, "a", 0, "Amount, in the wallet currency")
	f.StringVar(&c.currency, "c", "", "Currency of the amount (defaults to the wallet currency)")
	f.StringVar(&c.category, "cat", "", "Free-form category, e.g. food")
	f.StringVar(&c.date, "d", "", "Date of the transaction (defaults to today)")
	f.StringVar(&c.note, "note", "", "Free-form note")
}

func (c *postCmd) post(dir moneta.Direction) subcommands.ExitStatus {
	on, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	tx, err := e.PostTransaction(c.wallet, on, moneta.M(c.amount, c.currency), dir, c.category, c.note)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	balance, _ := e.Balance(c.wallet)
	fmt.Printf("Posted %s: %s %s, balance %s\n", tx.ID, tx.Direction, tx.Amount, balance)
	return subcommands.ExitSuccess
}

// parseDateFlag parses a -d flag value, defaulting to today when empty.
func parseDateFlag(s string) (moneta.Date, error) {
	if s == "" {
		return moneta.Today(), nil
	}
	return moneta.ParseDate(s)
}

type depositCmd struct{ postCmd }

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "add money to a wallet" }
func (*depositCmd) Usage() string {
	return `mnt deposit -w <wallet> -a <amount> [-cat <category>] [-d <date>] [-note <text>]

  Credits a wallet. The amount must be positive and in the wallet currency.
`
}
func (c *depositCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }
func (c *depositCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.post(moneta.Credit)
}

type withdrawCmd struct{ postCmd }

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "take money out of a wallet" }
func (*withdrawCmd) Usage() string {
	return `mnt withdraw -w <wallet> -a <amount> [-cat <category>] [-d <date>] [-note <text>]

  Debits a wallet. Overdrawing is allowed for manual spending records.
`
}
func (c *withdrawCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }
func (c *withdrawCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.post(moneta.Debit)
}

type txCmd struct {
	wallet   string
	category string
	period   string
	date     string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions in the ledger" }
func (*txCmd) Usage() string {
	return `mnt tx [-w <wallet>] [-cat <category>] [-p <period>] [-d <date>]

  Lists transactions, optionally filtered by wallet, category and period.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Only transactions of this wallet id")
	f.StringVar(&c.category, "cat", "", "Only transactions with this category")
	f.StringVar(&c.period, "p", "", "Predefined period (day, week, month, quarter, year)")
	f.StringVar(&c.date, "d", "", "Reference date for the period (defaults to today)")
}

func (c *txCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	filter := moneta.TxFilter{WalletID: c.wallet, Category: c.category}
	if c.period != "" {
		period, err := moneta.ParsePeriod(c.period)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		on, err := parseDateFlag(c.date)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		filter.Range = period.Range(on)
	}

	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	names := make(map[string]string)
	for _, w := range e.Wallets() {
		names[w.ID] = w.Name
	}
	md := renderer.TransactionsMarkdown(e.Transactions(filter), func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	})
	printMarkdown(md)
	return subcommands.ExitSuccess
}
