package moneta

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populatedEngine(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(t)
	on := MustParseDate("2025-03-01")

	w, err := e.CreateWallet("Checking", "USD", "#336699", "bank")
	require.NoError(t, err)
	eur, err := e.CreateWallet("Euro", "EUR", "", "")
	require.NoError(t, err)
	_, err = e.PostTransaction(w.ID, on, M(5000, "USD"), Credit, "salary", "march")
	require.NoError(t, err)
	_, err = e.PostTransaction(eur.ID, on, M(800, "EUR"), Credit, "salary", "")
	require.NoError(t, err)

	rent, err := e.AddBudgetEntry(Expense, M(1200, "USD"), "rent", EveryMonth, 1, Money{}, on)
	require.NoError(t, err)
	_, err = e.FireBudgetEntry(rent.ID, w.ID, on)
	require.NoError(t, err)
	_, err = e.AddBudgetEntry(Expense, M(400, "USD"), "food", EveryMonth, 1, M(400, "USD"), on)
	require.NoError(t, err)

	d, err := e.AddDebt(IOwe, "Alice", "deposit", M(300, "USD"), MustParseDate("2025-06-01"))
	require.NoError(t, err)
	_, err = e.RecordDebtPayment(d.ID, M(100, "USD"), w.ID, on.Add(3), "first installment")
	require.NoError(t, err)
	cancelled, err := e.AddDebt(OwedToMe, "Bob", "", M(50, "EUR"), Date{})
	require.NoError(t, err)
	require.NoError(t, e.CancelDebt(cancelled.ID))

	_, err = e.BuyCrypto(w.ID, "BTC", "Bitcoin", Q(0.02), M(10000, "USD"), on.Add(5))
	require.NoError(t, err)

	c := e.AddInvestmentCase("Retirement")
	require.NoError(t, e.AddInvestmentAsset(c.ID, InvestmentAsset{
		Name:          "World ETF",
		Quantity:      Q(3),
		PurchasePrice: M(100, "EUR"),
		CurrentPrice:  M(110, "EUR"),
	}))
	return e
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	e := populatedEngine(t)

	var first bytes.Buffer
	require.NoError(t, EncodeEngine(&first, e))

	loaded, err := DecodeEngine(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	// Encoding the loaded engine reproduces the snapshot byte for byte.
	var second bytes.Buffer
	require.NoError(t, EncodeEngine(&second, loaded))
	assert.Equal(t, first.String(), second.String())

	assert.Equal(t, e.DisplayCurrency(), loaded.DisplayCurrency())

	// The loaded engine answers queries like the original.
	origBalance, err := e.Balance("w-001")
	require.NoError(t, err)
	loadedBalance, err := loaded.Balance("w-001")
	require.NoError(t, err)
	assert.True(t, origBalance.Equal(loadedBalance), "balance %s vs %s", origBalance, loadedBalance)
	assert.Len(t, loaded.Transactions(TxFilter{}), len(e.Transactions(TxFilter{})))
	assert.Len(t, loaded.BudgetEntries(), 2)
	require.Len(t, loaded.Debts(), 2)
	assert.Equal(t, DebtPartiallyPaid, loaded.Debts()[0].Status())
	assert.Equal(t, DebtCancelled, loaded.Debts()[1].Status())
	assert.Len(t, loaded.DebtPayments("d-001"), 1)
	require.Len(t, loaded.CryptoHoldings(), 1)
	assert.True(t, loaded.CryptoHoldings()[0].Amount.Equal(Q(0.02)))
	require.Len(t, loaded.InvestmentCases(), 1)
	assert.Len(t, loaded.InvestmentCases()[0].Assets, 1)
}

func TestDecode_SequencesContinue(t *testing.T) {
	e := populatedEngine(t)
	var buf bytes.Buffer
	require.NoError(t, EncodeEngine(&buf, e))
	loaded, err := DecodeEngine(&buf)
	require.NoError(t, err)

	// New ids pick up after the loaded ones instead of colliding.
	loaded.SetRates(testRates())
	w, err := loaded.CreateWallet("Savings", "USD", "", "")
	require.NoError(t, err)
	assert.Equal(t, "w-003", w.ID)

	d, err := loaded.AddDebt(IOwe, "Carol", "", M(10, "USD"), Date{})
	require.NoError(t, err)
	assert.Equal(t, "d-003", d.ID)
}

func TestDecode_RejectsCorruptedBalance(t *testing.T) {
	e := populatedEngine(t)
	var buf bytes.Buffer
	require.NoError(t, EncodeEngine(&buf, e))

	// Doctor the cached balance of the first wallet.
	doctored := strings.Replace(buf.String(), `"balance":3500`, `"balance":9999`, 1)
	require.NotEqual(t, buf.String(), doctored, "fixture drifted: expected balance 3500 in snapshot")

	_, err := DecodeEngine(strings.NewReader(doctored))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestDecode_RejectsCorruptedPaidAmount(t *testing.T) {
	e := populatedEngine(t)
	var buf bytes.Buffer
	require.NoError(t, EncodeEngine(&buf, e))

	doctored := strings.Replace(buf.String(), `"paid":100`, `"paid":250`, 1)
	require.NotEqual(t, buf.String(), doctored)

	_, err := DecodeEngine(strings.NewReader(doctored))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment sum")
}

func TestDecode_RejectsDanglingReferences(t *testing.T) {
	header := `{"record":"engine","currency":"USD"}` + "\n"

	testCases := []struct {
		name string
		line string
	}{
		{"tx without wallet", `{"record":"tx","id":"t-000001","wallet":"w-404","amount":1,"currency":"USD","direction":"credit","date":"2025-03-01"}`},
		{"payment without debt", `{"record":"payment","id":"p-001","debt":"d-404","amount":1,"currency":"USD","wallet":"w-001","date":"2025-03-01"}`},
		{"unknown record kind", `{"record":"gremlin"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeEngine(strings.NewReader(header + tc.line + "\n"))
			require.Error(t, err)
		})
	}
}

func TestDecode_RequiresEngineHeader(t *testing.T) {
	_, err := DecodeEngine(strings.NewReader(`{"record":"wallet","id":"w-001","name":"X","currency":"USD","balance":0}` + "\n"))
	require.Error(t, err)

	_, err = DecodeEngine(strings.NewReader(""))
	require.Error(t, err)
}
