package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type ratesCmd struct{}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "display the exchange rates in use" }
func (*ratesCmd) Usage() string {
	return `mnt rates

  Fetches today's exchange rates for every currency the ledger mentions and
  displays them against the display currency.
`
}
func (*ratesCmd) SetFlags(*flag.FlagSet) {}

func (c *ratesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	LoadRates(ctx, e)

	table := e.Rates()
	var b strings.Builder
	fmt.Fprintf(&b, "# Exchange rates to %s\n\n", e.DisplayCurrency())
	fmt.Fprintln(&b, "| Currency | Rate |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, code := range table.Currencies() {
		rate, _ := table.Rate(code)
		fmt.Fprintf(&b, "| %s | %s |\n", code, rate)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
