package moneta

import "testing"

func TestInvestmentCase_Rollups(t *testing.T) {
	b := NewInvestmentBook()
	rates := testRates()

	c := b.Add("Retirement")
	if err := b.AddAsset(c.ID, InvestmentAsset{
		Name:          "World ETF",
		Quantity:      Q(10),
		PurchasePrice: M(100, "EUR"),
		CurrentPrice:  M(110, "EUR"),
	}); err != nil {
		t.Fatal(err)
	}
	if err := b.AddAsset(c.ID, InvestmentAsset{
		Name:          "Bond fund",
		Quantity:      Q(20),
		PurchasePrice: M(50, "USD"),
		CurrentPrice:  M(45, "USD"),
	}); err != nil {
		t.Fatal(err)
	}

	c, err := b.Case(c.ID)
	if err != nil {
		t.Fatal(err)
	}

	// +€100 = +$125, plus -$100.
	pl, err := c.ProfitLoss("USD", rates)
	if err != nil {
		t.Fatal(err)
	}
	if !pl.Equal(M(25, "USD")) {
		t.Errorf("P/L = %s, want $25", pl)
	}

	// €1,100 = $1,375, plus $900.
	value, err := c.CurrentValue("USD", rates)
	if err != nil {
		t.Fatal(err)
	}
	if !value.Equal(M(2275, "USD")) {
		t.Errorf("value = %s, want $2,275", value)
	}
}

func TestAddAsset_RejectsMixedCurrencies(t *testing.T) {
	b := NewInvestmentBook()
	c := b.Add("Bad")
	err := b.AddAsset(c.ID, InvestmentAsset{
		Name:          "mixed",
		Quantity:      Q(1),
		PurchasePrice: M(100, "EUR"),
		CurrentPrice:  M(110, "USD"),
	})
	if err == nil {
		t.Error("expected error for mixed purchase/current currencies")
	}
}

func TestSetCurrentPrice(t *testing.T) {
	b := NewInvestmentBook()
	rates := testRates()
	c := b.Add("Growth")
	b.AddAsset(c.ID, InvestmentAsset{
		Name:          "Tech ETF",
		Quantity:      Q(5),
		PurchasePrice: M(200, "USD"),
		CurrentPrice:  M(200, "USD"),
	})

	if err := b.SetCurrentPrice(c.ID, "Tech ETF", M(240, "USD")); err != nil {
		t.Fatal(err)
	}
	c, _ = b.Case(c.ID)
	pl, _ := c.ProfitLoss("USD", rates)
	if !pl.Equal(M(200, "USD")) {
		t.Errorf("P/L = %s, want $200", pl)
	}

	if err := b.SetCurrentPrice(c.ID, "Tech ETF", M(240, "EUR")); err == nil {
		t.Error("expected error for a price in the wrong currency")
	}
	if err := b.SetCurrentPrice(c.ID, "no such asset", M(1, "USD")); err == nil {
		t.Error("expected error for an unknown asset")
	}
}

func TestCase_ReturnsCopies(t *testing.T) {
	b := NewInvestmentBook()
	c := b.Add("Isolated")
	b.AddAsset(c.ID, InvestmentAsset{
		Name:          "X",
		Quantity:      Q(1),
		PurchasePrice: M(10, "USD"),
		CurrentPrice:  M(10, "USD"),
	})

	got, _ := b.Case(c.ID)
	got.Assets[0].Name = "mutated"

	again, _ := b.Case(c.ID)
	if again.Assets[0].Name != "X" {
		t.Error("mutating a returned case leaked into the book")
	}
}
