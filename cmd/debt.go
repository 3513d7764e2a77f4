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

type debtAddCmd struct {
	typ      string
	person   string
	desc     string
	amount   float64
	currency string
	due      string
}

func (*debtAddCmd) Name() string     { return "debt-add" }
func (*debtAddCmd) Synopsis() string { return "track a new debt" }
func (*debtAddCmd) Usage() string {
	return `mnt debt-add -p <person> -a <amount> -c <currency> [-t iOwe|owedToMe] [-desc <text>] [-due <date>]

  Tracks an obligation. Adding a debt moves no money: only payments do.
`
}

func (c *debtAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "t", "iOwe", "Debt type (iOwe, owedToMe)")
	f.StringVar(&c.person, "p", "", "The other party")
	f.StringVar(&c.desc, "desc", "", "Free-form description")
	f.Float64Var(&c.amount, "a", 0, "Initial amount of the debt")
	f.StringVar(&c.currency, "c", "", "Currency of the debt")
	f.StringVar(&c.due, "due", "", "Optional due date")
}

func (c *debtAddCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ, err := moneta.ParseDebtType(c.typ)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	var due moneta.Date
	if c.due != "" {
		if due, err = moneta.ParseDate(c.due); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}

	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	d, err := e.AddDebt(typ, c.person, c.desc, moneta.M(c.amount, c.currency), due)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Added debt %s: %s %s %s\n", d.ID, d.Type, d.InitialAmount, d.PersonName)
	return subcommands.ExitSuccess
}

type debtPayCmd struct {
	wallet   string
	amount   float64
	currency string
	date     string
	note     string
}

func (*debtPayCmd) Name() string     { return "debt-pay" }
func (*debtPayCmd) Synopsis() string { return "record a payment against a debt" }
func (*debtPayCmd) Usage() string {
	return `mnt debt-pay -w <wallet> -a <amount> -c <currency> [-d <date>] [-note <text>] <debt-id>

  Moves money through the wallet and applies it to the debt. Paying an iOwe
  debt debits the wallet and requires sufficient funds; an owedToMe payment
  credits it. Paying more than remains is refused.
`
}

func (c *debtPayCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet id the payment moves through")
	f.Float64Var(&c.amount, "a", 0, "Payment amount")
	f.StringVar(&c.currency, "c", "", "Currency of the payment")
	f.StringVar(&c.date, "d", "", "Date of the payment (defaults to today)")
	f.StringVar(&c.note, "note", "", "Free-form note")
}

func (c *debtPayCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one debt id is required")
		return subcommands.ExitUsageError
	}
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
	LoadRates(ctx, e)

	p, err := e.RecordDebtPayment(f.Arg(0), moneta.M(c.amount, c.currency), c.wallet, on, c.note)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	for _, d := range e.Debts() {
		if d.ID == f.Arg(0) {
			fmt.Printf("Recorded %s: %s paid, %s remaining (%s)\n", p.ID, p.Amount, d.Remaining(), d.Status())
			break
		}
	}
	return subcommands.ExitSuccess
}

type debtsCmd struct {
	cancel string
	remove string
}

func (*debtsCmd) Name() string     { return "debts" }
func (*debtsCmd) Synopsis() string { return "list debts, or cancel/delete one" }
func (*debtsCmd) Usage() string {
	return `mnt debts [-cancel <debt-id> | -rm <debt-id>]

  Lists all debts with their payment state. Cancelling flags a debt without
  touching amounts; deleting removes it and its payment history, leaving
  wallet transactions in place.
`
}

func (c *debtsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.cancel, "cancel", "", "Cancel this debt id")
	f.StringVar(&c.remove, "rm", "", "Delete this debt id and its payment history")
}

func (c *debtsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.cancel != "" || c.remove != "" {
		if c.cancel != "" {
			err = e.CancelDebt(c.cancel)
		} else {
			err = e.DeleteDebt(c.remove)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if err := SaveEngine(e); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.DebtsMarkdown(e.Debts()))
	return subcommands.ExitSuccess
}
