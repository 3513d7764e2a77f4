package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/moneta-dev/moneta"
	"github.com/moneta-dev/moneta/renderer"
)

type caseNewCmd struct{}

func (*caseNewCmd) Name() string     { return "case-new" }
func (*caseNewCmd) Synopsis() string { return "create a named investment case" }
func (*caseNewCmd) Usage() string {
	return `mnt case-new <name>

  Creates an empty investment case. Cases track positions only; they never
  move wallet funds.
`
}
func (*caseNewCmd) SetFlags(*flag.FlagSet) {}

func (c *caseNewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.TrimSpace(strings.Join(f.Args(), " "))
	if name == "" {
		fmt.Fprintln(os.Stderr, "Error: case name is required")
		return subcommands.ExitUsageError
	}
	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ic := e.AddInvestmentCase(name)
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Created investment case %s (%s)\n", ic.ID, ic.Name)
	return subcommands.ExitSuccess
}

type assetAddCmd struct {
	name     string
	quantity float64
	bought   float64
	now      float64
	currency string
}

func (*assetAddCmd) Name() string     { return "asset-add" }
func (*assetAddCmd) Synopsis() string { return "add a position to an investment case" }
func (*assetAddCmd) Usage() string {
	return `mnt asset-add -name <text> -q <quantity> -bought <price> -now <price> -c <currency> <case-id>

  Adds a position with its per-unit purchase and current prices, both in the
  same currency.
`
}

func (c *assetAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Asset name")
	f.Float64Var(&c.quantity, "q", 0, "Quantity of units held")
	f.Float64Var(&c.bought, "bought", 0, "Purchase price per unit")
	f.Float64Var(&c.now, "now", 0, "Current price per unit")
	f.StringVar(&c.currency, "c", "", "Currency of both prices")
}

func (c *assetAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one case id is required")
		return subcommands.ExitUsageError
	}
	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a := moneta.InvestmentAsset{
		Name:          c.name,
		Quantity:      moneta.Q(c.quantity),
		PurchasePrice: moneta.M(c.bought, c.currency),
		CurrentPrice:  moneta.M(c.now, c.currency),
	}
	if err := e.AddInvestmentAsset(f.Arg(0), a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Added %s to %s, P/L %s\n", a.Name, f.Arg(0), a.ProfitLoss().SignedString())
	return subcommands.ExitSuccess
}

type assetPriceCmd struct {
	name     string
	now      float64
	currency string
}

func (*assetPriceCmd) Name() string     { return "asset-price" }
func (*assetPriceCmd) Synopsis() string { return "update the current price of a case asset" }
func (*assetPriceCmd) Usage() string {
	return `mnt asset-price -name <asset> -now <price> -c <currency> <case-id>

  Updates the asset's current price; the currency must match its purchase
  price.
`
}

func (c *assetPriceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Asset name inside the case")
	f.Float64Var(&c.now, "now", 0, "New current price per unit")
	f.StringVar(&c.currency, "c", "", "Currency of the price")
}

func (c *assetPriceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one case id is required")
		return subcommands.ExitUsageError
	}
	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := e.SetAssetPrice(f.Arg(0), c.name, moneta.M(c.now, c.currency)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Updated %s in %s to %s\n", c.name, f.Arg(0), moneta.M(c.now, c.currency))
	return subcommands.ExitSuccess
}

type casesCmd struct{}

func (*casesCmd) Name() string     { return "cases" }
func (*casesCmd) Synopsis() string { return "list investment cases with their performance" }
func (*casesCmd) Usage() string {
	return `mnt cases

  Lists investment cases with per-asset profit and loss.
`
}
func (*casesCmd) SetFlags(*flag.FlagSet) {}

func (c *casesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	LoadRates(ctx, e)
	printMarkdown(renderer.CasesMarkdown(e.InvestmentCases(), e.DisplayCurrency(), e.Rates()))
	return subcommands.ExitSuccess
}
