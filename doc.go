// Package moneta is a personal finance ledger engine: multi-currency
// wallets with an append-only transaction log, recurring budget entries,
// peer debts with payment histories, crypto holdings with a weighted
// average cost basis, and on-demand dashboard aggregation in a single
// display currency.
//
// The engine owns all money-moving state. Wallet balances are derived from
// the transaction log and cached; every other component moves funds by
// posting transactions through the wallet ledger, never by editing a
// balance. Mutating operations validate all preconditions before touching
// anything, so a failed operation leaves state unchanged.
package moneta
