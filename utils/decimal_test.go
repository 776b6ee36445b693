package utils

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestUnmarshalDecimal_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       interface{}
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"VND 20,000", "20000"},
		{"-20,000 đ", "-20000"},
		{"  1,234.50₫  ", "1234.5"},
		{json.Number("42.25"), "42.25"},
		{int64(7), "7"},
		{3, "3"},
	}
	for _, tc := range cases {
		d, err := UnmarshalDecimal(tc.in)
		if err != nil {
			t.Fatalf("UnmarshalDecimal(%v) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("UnmarshalDecimal(%v) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestUnmarshalDecimal_RejectsGarbage(t *testing.T) {
	for _, in := range []interface{}{"", "VND", true, nil} {
		if _, err := UnmarshalDecimal(in); err == nil {
			t.Fatalf("UnmarshalDecimal(%v) expected error", in)
		}
	}
}

func TestWithinTolerance(t *testing.T) {
	one := decimal.NewFromInt(1)
	if !WithinTolerance(decimal.RequireFromString("110"), decimal.RequireFromString("109"), one) {
		t.Fatal("difference of exactly 1 should be tolerated")
	}
	if WithinTolerance(decimal.RequireFromString("110"), decimal.RequireFromString("108.5"), one) {
		t.Fatal("difference of 1.5 should not be tolerated")
	}
}

func TestCalculateDocumentTotals(t *testing.T) {
	lines := []LineAmount{
		{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50000)},
		{Quantity: decimal.RequireFromString("1.5"), UnitPrice: decimal.NewFromInt(20000)},
	}
	totals := CalculateDocumentTotals(lines, decimal.NewFromInt(10), decimal.NewFromInt(5))

	if !totals.RevenueAmount.Equal(decimal.NewFromInt(130000)) {
		t.Fatalf("revenue: got %s", totals.RevenueAmount)
	}
	if !totals.DiscountAmount.Equal(decimal.NewFromInt(6500)) {
		t.Fatalf("discount: got %s", totals.DiscountAmount)
	}
	if !totals.TaxAmount.Equal(decimal.NewFromInt(12350)) {
		t.Fatalf("tax: got %s", totals.TaxAmount)
	}
	if !totals.PaymentTotal.Equal(decimal.NewFromInt(135850)) {
		t.Fatalf("payment: got %s", totals.PaymentTotal)
	}
}

func TestCalculateTaxAmount_Inclusive(t *testing.T) {
	got := CalculateTaxAmount(decimal.NewFromInt(110), decimal.NewFromInt(10), true)
	if !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected 10, got %s", got)
	}
	if !CalculateTaxAmount(decimal.NewFromInt(110), decimal.Zero, false).IsZero() {
		t.Fatal("zero rate should give zero tax")
	}
}
