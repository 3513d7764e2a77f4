package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type walletNewCmd struct {
	currency string
	color    string
	icon     string
}

func (*walletNewCmd) Name() string     { return "wallet-new" }
func (*walletNewCmd) Synopsis() string { return "create a new wallet" }
func (*walletNewCmd) Usage() string {
	return `mnt wallet-new [-c <currency>] [-color <hex>] [-icon <name>] <name>

  Creates a wallet holding a single currency. All transactions posted to it
  must be in that currency.
`
}

func (c *walletNewCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Wallet currency (defaults to the ledger display currency)")
	f.StringVar(&c.color, "color", "", "Display color, e.g. #336699")
	f.StringVar(&c.icon, "icon", "", "Display icon name")
}

func (c *walletNewCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.TrimSpace(strings.Join(f.Args(), " "))
	if name == "" {
		fmt.Fprintln(os.Stderr, "Error: wallet name is required")
		return subcommands.ExitUsageError
	}

	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	currency := c.currency
	if currency == "" {
		currency = e.DisplayCurrency()
	}
	w, err := e.CreateWallet(name, currency, c.color, c.icon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := SaveEngine(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Created wallet %s (%s, %s)\n", w.ID, w.Name, w.Currency)
	return subcommands.ExitSuccess
}

type walletsCmd struct{}

func (*walletsCmd) Name() string     { return "wallets" }
func (*walletsCmd) Synopsis() string { return "list wallets and their balances" }
func (*walletsCmd) Usage() string {
	return `mnt wallets

  Lists every wallet with its balance.
`
}
func (*walletsCmd) SetFlags(*flag.FlagSet) {}

func (c *walletsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := LoadEngine()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Wallets\n\n")
	fmt.Fprintln(&b, "| ID | Name | Currency | Balance |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|")
	for _, w := range e.Wallets() {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", w.ID, w.Name, w.Currency, w.Balance())
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
