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

type buyCmd struct {
	wallet   string
	asset    string
	name     string
	quantity float64
	price    float64
	currency string
	date     string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "buy a crypto asset, paying from a wallet" }
func (*buyCmd) Usage() string {
	return `mnt buy -w <wallet> -s <ticker> -q <quantity> -p <price> -c <currency> [-name <text>] [-d <date>]

  Buys quantity units at the given per-unit price. The wallet is debited the
  converted cost and must cover it. Repeat buys average the cost basis.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet id to pay from")
	f.StringVar(&c.asset, "s", "", "Asset ticker, e.g. BTC")
	f.StringVar(&c.name, "name", "", "Asset display name")
	f.Float64Var(&c.quantity, "q", 0, "Quantity of units to buy")
	f.Float64Var(&c.price, "p", 0, "Price per unit")
	f.StringVar(&c.currency, "c", "", "Currency of the price")
	f.StringVar(&c.date, "d", "", "Date of the purchase (defaults to today)")
}

func (c *buyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	h, err := e.BuyCrypto(c.wallet, c.asset, c.name, moneta.Q(c.quantity), moneta.M(c.price, c.currency), on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Bought %s %s, holding %s now %s at %s avg\n", moneta.Q(c.quantity), h.Asset, h.ID, h.Amount, h.CostBasis)
	return subcommands.ExitSuccess
}

type sellCmd struct {
	wallet   string
	quantity float64
	price    float64
	currency string
	date     string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell part of a crypto holding" }
func (*sellCmd) Usage() string {
	return `mnt sell -w <wallet> -q <quantity> -p <price> -c <currency> [-d <date>] <holding-id>

  Sells quantity units at the given per-unit price, crediting the proceeds to
  the wallet. Selling more than held is refused.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "w", "", "Wallet id to credit")
	f.Float64Var(&c.quantity, "q", 0, "Quantity of units to sell")
	f.Float64Var(&c.price, "p", 0, "Price per unit")
	f.StringVar(&c.currency, "c", "", "Currency of the price")
	f.StringVar(&c.date, "d", "", "Date of the sale (defaults to today)")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one holding id is required")
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

	realized, err := e.SellCrypto(c.wallet, f.Arg(0), moneta.Q(c.quantity), moneta.M(c.price, c.currency), on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Sold %s of %s, realized %s\n", moneta.Q(c.quantity), f.Arg(0), realized.SignedString())
	return subcommands.ExitSuccess
}

type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list crypto holdings" }
func (*holdingsCmd) Usage() string {
	return `mnt holdings

  Lists crypto holdings with their average cost basis.
`
}
func (*holdingsCmd) SetFlags(*flag.FlagSet) {}

func (c *holdingsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.HoldingsMarkdown(e.CryptoHoldings()))
	return subcommands.ExitSuccess
}
