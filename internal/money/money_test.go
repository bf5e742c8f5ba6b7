package money

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		units int64
		ok    bool
	}{
		{"1500.00", 150000, true},
		{"0.01", 1, true},
		{"10", 1000, true},
		{"-3.50", -350, true},
		{"0", 0, true},
		{"1.005", 0, false}, // finer than the supported scale
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		m, err := Parse(c.in)
		if c.ok && err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", c.in, err)
			continue
		}
		if !c.ok {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %v", c.in, m)
			}
			continue
		}
		if m.Units() != c.units {
			t.Errorf("Parse(%q) units=%d want=%d", c.in, m.Units(), c.units)
		}
	}
}

func TestArithmeticIsExact(t *testing.T) {
	// The classic float trap: 0.1 + 0.2.
	a, _ := Parse("0.10")
	b, _ := Parse("0.20")
	if got := a.Add(b).String(); got != "0.30" {
		t.Fatalf("0.10+0.20=%s want 0.30", got)
	}

	// Summing a cent a thousand times must give exactly 10.00.
	sum := Zero
	cent := FromUnits(1)
	for i := 0; i < 1000; i++ {
		sum = sum.Add(cent)
	}
	if got := sum.String(); got != "10.00" {
		t.Fatalf("1000 cents = %s want 10.00", got)
	}
}

func TestString(t *testing.T) {
	if got := FromUnits(150000).String(); got != "1500.00" {
		t.Errorf("String()=%q want 1500.00", got)
	}
	if got := FromUnits(1).String(); got != "0.01" {
		t.Errorf("String()=%q want 0.01", got)
	}
	if got := Zero.String(); got != "0.00" {
		t.Errorf("String()=%q want 0.00", got)
	}
}

func TestPredicates(t *testing.T) {
	if !FromUnits(1).IsPositive() || FromUnits(0).IsPositive() || FromUnits(-1).IsPositive() {
		t.Error("IsPositive misclassifies")
	}
	if !FromUnits(-1).IsNegative() || FromUnits(0).IsNegative() {
		t.Error("IsNegative misclassifies")
	}
	if !FromUnits(5).LessThan(FromUnits(6)) || FromUnits(6).LessThan(FromUnits(6)) {
		t.Error("LessThan misclassifies")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Amount Money `json:"amount"`
	}
	out, err := json.Marshal(payload{Amount: FromUnits(12345)})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"amount":"123.45"}` {
		t.Fatalf("marshal=%s", out)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"amount":"99.50"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Amount.Units() != 9950 {
		t.Fatalf("unmarshal string units=%d want 9950", p.Amount.Units())
	}

	// Bare numbers are accepted too.
	if err := json.Unmarshal([]byte(`{"amount":25.75}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Amount.Units() != 2575 {
		t.Fatalf("unmarshal number units=%d want 2575", p.Amount.Units())
	}
}

func TestScan(t *testing.T) {
	var m Money
	if err := m.Scan([]byte("42.10")); err != nil {
		t.Fatal(err)
	}
	if m.Units() != 4210 {
		t.Fatalf("scan bytes units=%d want 4210", m.Units())
	}
	if err := m.Scan("0.99"); err != nil {
		t.Fatal(err)
	}
	if m.Units() != 99 {
		t.Fatalf("scan string units=%d want 99", m.Units())
	}
	if err := m.Scan(struct{}{}); err == nil {
		t.Fatal("scan of unsupported type should fail")
	}
}
