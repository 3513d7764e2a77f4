package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/moneta-dev/moneta"
)

type budgetAddCmd struct {
	typ      string
	amount   float64
	currency string
	category string
	freq     string
	day      int
	limit    float64
	from     string
}

func (*budgetAddCmd) Name() string     { return "budget-add" }
func (*budgetAddCmd) Synopsis() string { return "plan a recurring or one-off income/expense" }
func (*budgetAddCmd) Usage() string {
	return `mnt budget-add -a <amount> -c <currency> -cat <category> [-t expense|income] [-f once|daily|weekly|monthly|yearly] [-day <n>] [-limit <amount>] [-from <date>]

  Adds a budget entry. Recurring entries carry a next-due date; monthly ones
  fire on the given day of month, clamped to shorter months.
`
}

func (c *budgetAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.typ, "t", "expense", "Entry type (expense, income)")
	f.Float64Var(&c.amount, "a", 0, "Planned amount per occurrence")
	f.StringVar(&c.currency, "c", "", "Currency of the amount")
	f.StringVar(&c.category, "cat", "", "Category the entry plans for")
	f.StringVar(&c.freq, "f", "monthly", "Frequency (once, daily, weekly, monthly, yearly)")
	f.IntVar(&c.day, "day", 1, "Day of month for monthly entries")
	f.Float64Var(&c.limit, "limit", 0, "Optional spending ceiling, in the entry currency")
	f.StringVar(&c.from, "from", "", "Schedule reference date (defaults to today)")
}

func (c *budgetAddCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	typ, err := moneta.ParseEntryType(c.typ)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	freq, err := moneta.ParseFrequency(c.freq)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	from, err := parseDateFlag(c.from)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	var limit moneta.Money
	if c.limit > 0 {
		limit = moneta.M(c.limit, c.currency)
	}
	entry, err := e.AddBudgetEntry(typ, moneta.M(c.amount, c.currency), c.category, freq, c.day, limit, from)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Added budget entry %s (%s %s %s), next due %s\n",
		entry.ID, entry.Frequency, entry.Type, entry.Amount, entry.NextDue)
	return subcommands.ExitSuccess
}

type budgetsCmd struct {
	date   string
	remove string
}

func (*budgetsCmd) Name() string     { return "budgets" }
func (*budgetsCmd) Synopsis() string { return "list budget entries with actual spending" }
func (*budgetsCmd) Usage() string {
	return `mnt budgets [-d <date>] [-rm <entry-id>]

  Lists budget entries with their actual spending in the current period, and
  marks due and over-limit entries. Deleting an entry keeps the transactions
  it fired.
`
}

func (c *budgetsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Reference date (defaults to today)")
	f.StringVar(&c.remove, "rm", "", "Delete this budget entry id")
}

func (c *budgetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if c.remove != "" {
		if err := e.DeleteBudgetEntry(c.remove); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if err := SaveEngine(e); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	due := make(map[string]bool)
	for _, entry := range e.DueBudgetEntries(on) {
		due[entry.ID] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Budgets on %s\n\n", on)
	fmt.Fprintln(&b, "| ID | Category | Type | Planned | Actual | Limit | Next Due | |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|:---|:---|")
	for _, entry := range e.BudgetEntries() {
		actual, err := e.ActualSpending(entry.ID, on)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		limit := "-"
		if entry.HasLimit() {
			limit = entry.Limit.String()
		}
		nextDue := "-"
		if !entry.NextDue.IsZero() {
			nextDue = entry.NextDue.String()
		}
		var marks []string
		if due[entry.ID] {
			marks = append(marks, "due")
		}
		if entry.HasLimit() && actual.GreaterThan(entry.Limit) {
			marks = append(marks, "over limit")
		}
		if !entry.Active {
			marks = append(marks, "inactive")
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			entry.ID, entry.Category, entry.Type, entry.Amount, actual, limit, nextDue, strings.Join(marks, ", "))
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}

type budgetFireCmd struct {
	wallet string
	date   string
}

func (*budgetFireCmd) Name() string     { return "budget-fire" }
func (*budgetFireCmd) Synopsis() string { return "materialize a due budget entry into a transaction" }
func (*budgetFireCmd) Usage() string {
	return `mnt budget-fire -w <wallet> [-d <date>] <entry-id>

  Posts the entry's planned amount to the wallet, converting currency if
  needed, and advances the entry's schedule.
`
}

func (c *budgetFireCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet id to post the transaction to")
	f.StringVar(&c.date, "d", "", "Date of the transaction (defaults to today)")
}

func (c *budgetFireCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one budget entry id is required")
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

	tx, err := e.FireBudgetEntry(f.Arg(0), c.wallet, on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Fired %s: posted %s %s as %s\n", f.Arg(0), tx.Direction, tx.Amount, tx.ID)
	return subcommands.ExitSuccess
}
