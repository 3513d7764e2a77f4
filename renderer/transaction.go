package renderer

import (
	"fmt"
	"strings"

	"github.com/moneta-dev/moneta"
)

// Transaction renders a transaction to a single detail string.
func Transaction(tx moneta.Transaction, wallet string) string {
	var b strings.Builder
	switch {
	case tx.Link.Kind == moneta.LinkBudget:
		fmt.Fprintf(&b, "Budget %q fired %s", tx.Category, tx.Amount)
	case tx.Link.Kind == moneta.LinkDebt:
		if tx.Direction == moneta.Debit {
			fmt.Fprintf(&b, "Paid %s towards %s", tx.Amount, tx.Link.ID)
		} else {
			fmt.Fprintf(&b, "Received %s for %s", tx.Amount, tx.Link.ID)
		}
	case tx.Link.Kind == moneta.LinkCrypto:
		fmt.Fprintf(&b, "Crypto %s for %s", tx.Note, tx.Amount)
	case tx.Direction == moneta.Credit:
		fmt.Fprintf(&b, "Received %s", tx.Amount)
	default:
		fmt.Fprintf(&b, "Spent %s", tx.Amount)
	}
	fmt.Fprintf(&b, " on %s", wallet)
	if tx.Category != "" && tx.Link.Kind == moneta.LinkNone {
		fmt.Fprintf(&b, " (%s)", tx.Category)
	}
	if tx.Note != "" && tx.Link.Kind != moneta.LinkCrypto {
		fmt.Fprintf(&b, ": %s", tx.Note)
	}
	return b.String()
}

// TransactionsMarkdown renders a transaction list as a markdown bullet list,
// oldest first. Repeated dates are blanked with non-breaking spaces to keep
// the column aligned.
func TransactionsMarkdown(txs []moneta.Transaction, walletName func(id string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions\n\n")
	var prev moneta.Date
	for _, tx := range txs {
		dateStr := tx.Date.String()
		if !prev.IsZero() && prev == tx.Date {
			dateStr = strings.Repeat("\u00A0", len(dateStr))
		}
		fmt.Fprintf(&b, "* %s: %s\n", dateStr, Transaction(tx, walletName(tx.WalletID)))
		prev = tx.Date
	}
	return b.String()
}
