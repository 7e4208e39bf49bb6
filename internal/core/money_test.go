package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"10.5", 1050, true},
		{"10,5", 1050, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"1500.00", 150000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseAmountCommaDotEquivalence(t *testing.T) {
	a, err := ParseAmount("10,5")
	if err != nil {
		t.Fatalf("parse 10,5: %v", err)
	}
	b, err := ParseAmount("10.5")
	if err != nil {
		t.Fatalf("parse 10.5: %v", err)
	}
	if a != b {
		t.Fatalf("expected same value, got %d and %d", a.Cents, b.Cents)
	}
}

func TestMoneyBRL(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "R$ 0,00"},
		{5, "R$ 0,05"},
		{150, "R$ 1,50"},
		{123456, "R$ 1.234,56"},
		{150000, "R$ 1.500,00"},
		{100000000, "R$ 1.000.000,00"},
		{-35049, "-R$ 350,49"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).BRL(); got != tc.want {
			t.Fatalf("BRL(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
