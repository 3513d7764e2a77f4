package moneta

import "testing"

func TestNormalizeCurrency(t *testing.T) {
	if got := NormalizeCurrency(" usd "); got != "USD" {
		t.Errorf("got %q, want USD", got)
	}
}

func TestValidateCurrency(t *testing.T) {
	if err := ValidateCurrency("eur"); err != nil {
		t.Errorf("eur should be valid: %v", err)
	}
	if err := ValidateCurrency("XXX-NOT-A-CODE"); err == nil {
		t.Error("expected error for unknown code")
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := M(10.5, "usd")
	b := M(4.5, "USD")
	if got := a.Add(b); !got.Equal(M(15, "USD")) {
		t.Errorf("Add = %s", got)
	}
	if got := a.Sub(b); !got.Equal(M(6, "USD")) {
		t.Errorf("Sub = %s", got)
	}
	if got := a.Neg(); !got.Equal(M(-10.5, "USD")) {
		t.Errorf("Neg = %s", got)
	}
	if got := M(3, "USD").Mul(Q(4)); !got.Equal(M(12, "USD")) {
		t.Errorf("Mul = %s", got)
	}
	if got := M(12, "USD").Div(Q(4)); !got.Equal(M(3, "USD")) {
		t.Errorf("Div = %s", got)
	}
}

func TestMoney_AddMismatchedCurrenciesPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on currency mismatch")
		}
	}()
	_ = M(1, "USD").Add(M(1, "EUR"))
}

func TestMoney_ZeroCurrencyIsWeak(t *testing.T) {
	var zero Money
	got := zero.Add(M(5, "EUR"))
	if got.Currency() != "EUR" || !got.Equal(M(5, "EUR")) {
		t.Errorf("got %s %s", got, got.Currency())
	}
}

func TestMoney_SignedString(t *testing.T) {
	if got := M(0, "USD").SignedString(); got != "-" {
		t.Errorf("zero = %q, want -", got)
	}
	pos := M(5, "USD").SignedString()
	if len(pos) == 0 || pos[0] != '+' {
		t.Errorf("positive = %q, want leading +", pos)
	}
}

func TestQuantity_Compare(t *testing.T) {
	if !Q(2).GreaterThan(Q(1.5)) {
		t.Error("2 > 1.5")
	}
	if !Q(1).Add(Q(1)).Equal(Q(2)) {
		t.Error("1+1 = 2")
	}
	if !Q(1).Sub(Q(2)).IsNegative() {
		t.Error("1-2 < 0")
	}
}
