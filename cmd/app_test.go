package cmd

import (
	"path/filepath"
	"testing"

	"github.com/moneta-dev/moneta"
)

func TestSaveLoadEngine_RoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ledger.jsonl")
	old := *ledgerFile
	*ledgerFile = file
	defer func() { *ledgerFile = old }()

	e, err := moneta.NewEngine("EUR")
	if err != nil {
		t.Fatal(err)
	}
	w, err := e.CreateWallet("Checking", "EUR", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.PostTransaction(w.ID, moneta.Today(), moneta.M(100, "EUR"), moneta.Credit, "salary", ""); err != nil {
		t.Fatal(err)
	}
	if err := SaveEngine(e); err != nil {
		t.Fatal(err)
	}

	got, err := LoadEngine()
	if err != nil {
		t.Fatal(err)
	}
	balance, err := got.Balance(w.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Equal(moneta.M(100, "EUR")) {
		t.Errorf("balance after reload = %s, want €100.00", balance)
	}
}

func TestLoadEngine_MissingFileStartsEmpty(t *testing.T) {
	old, oldCur := *ledgerFile, *newCurrency
	*ledgerFile = filepath.Join(t.TempDir(), "does-not-exist.jsonl")
	*newCurrency = "GBP"
	defer func() { *ledgerFile, *newCurrency = old, oldCur }()

	e, err := LoadEngine()
	if err != nil {
		t.Fatal(err)
	}
	if e.DisplayCurrency() != "GBP" {
		t.Errorf("display currency = %q, want GBP", e.DisplayCurrency())
	}
	if len(e.Wallets()) != 0 {
		t.Errorf("expected an empty engine, got %d wallets", len(e.Wallets()))
	}
}

func TestParseDateFlag(t *testing.T) {
	on, err := parseDateFlag("2025-03-15")
	if err != nil {
		t.Fatal(err)
	}
	if on.String() != "2025-03-15" {
		t.Errorf("parsed %s, want 2025-03-15", on)
	}

	today, err := parseDateFlag("")
	if err != nil {
		t.Fatal(err)
	}
	if today != moneta.Today() {
		t.Errorf("empty flag = %s, want today", today)
	}

	if _, err := parseDateFlag("not-a-date"); err == nil {
		t.Error("expected an error for a malformed date")
	}
}
