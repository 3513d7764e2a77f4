package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"

	"github.com/moneta-dev/moneta/cmd"
)

func main() {
	_ = godotenv.Load()

	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	// Shell completion, active only when invoked by the completion hook.
	completion().Complete(name)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command tree for shell completion.
func completion() *complete.Command {
	sub := make(map[string]*complete.Command)
	for _, n := range []string{
		"wallet-new", "wallets",
		"deposit", "withdraw", "tx",
		"budget-add", "budgets", "budget-fire",
		"debt-add", "debt-pay", "debts",
		"buy", "sell", "holdings",
		"case-new", "asset-add", "asset-price", "cases",
		"overview", "summary", "rates",
		"help", "flags", "commands",
	} {
		sub[n] = &complete.Command{}
	}
	return &complete.Command{Sub: sub}
}
