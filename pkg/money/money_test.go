package money

import "testing"

func TestParseCents(t *testing.T) {
	cases := map[string]int64{
		"100":     10000,
		"100.00":  10000,
		"50.5":    5050,
		" 0.01 ":  1,
		"12.3400": 1234,
	}
	for in, want := range cases {
		got, err := ParseCents(in)
		if err != nil {
			t.Fatalf("ParseCents(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseCents(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseCentsRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "0", "-5", "1.005"} {
		if _, err := ParseCents(in); err == nil {
			t.Fatalf("ParseCents(%q) expected error", in)
		}
	}
}

func TestFormatCents(t *testing.T) {
	if got := FormatCents(10000); got != "100.00" {
		t.Fatalf("expected 100.00, got %s", got)
	}
	if got := FormatCents(5); got != "0.05" {
		t.Fatalf("expected 0.05, got %s", got)
	}
}
