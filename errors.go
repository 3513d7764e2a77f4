package moneta

import "fmt"

// The engine's error taxonomy. Every error here represents a user-input or
// domain-rule violation: callers surface them, nothing retries them, and a
// failed operation leaves state unchanged.

// WalletNotFoundError reports a reference to an unknown wallet.
type WalletNotFoundError struct {
	WalletID string
}

func (e *WalletNotFoundError) Error() string {
	return fmt.Sprintf("wallet %q not found", e.WalletID)
}

// InsufficientFundsError reports a funds-checked debit that would exceed the
// wallet balance. Both amounts are in the wallet's currency.
type InsufficientFundsError struct {
	WalletID string
	Needed   Money
	Balance  Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in wallet %q: need %s, balance is %s",
		e.WalletID, e.Needed, e.Balance)
}

// InsufficientHoldingsError reports a sell of more units than held.
type InsufficientHoldingsError struct {
	Asset    string
	Quantity Quantity
	Held     Quantity
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("cannot sell %s of %s, holding is only %s",
		e.Quantity, e.Asset, e.Held)
}

// OverpaymentError reports a debt payment exceeding the remaining amount.
type OverpaymentError struct {
	DebtID    string
	Amount    Money
	Remaining Money
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment %s exceeds remaining %s on debt %q",
		e.Amount, e.Remaining, e.DebtID)
}

// ConversionError reports a conversion involving a currency code missing
// from the rate table. Callers must surface it; silently assuming a 1:1
// rate would corrupt balance invariants.
type ConversionError struct {
	Currency string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("no conversion rate for currency %q", e.Currency)
}
