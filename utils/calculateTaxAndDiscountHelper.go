package utils

import (
	"github.com/shopspring/decimal"
)

// CalculateTaxAmount returns amount * rate / 100.
func CalculateTaxAmount(amount decimal.Decimal, taxRate decimal.Decimal, isTaxInclusive bool) decimal.Decimal {
	if taxRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var taxAmount decimal.Decimal
	if isTaxInclusive {
		// Tax-inclusive: (amount / (100 + taxRate)) * taxRate
		taxAmount = amount.DivRound(taxRate.Add(DecimalHundred), 4).Mul(taxRate)
	} else {
		// Tax-exclusive: (amount / 100) * taxRate
		taxAmount = amount.DivRound(DecimalHundred, 4).Mul(taxRate)
	}

	return RoundMoney(taxAmount)
}

// CalculateDiscountAmount returns a percentage ("P") or fixed discount of subTotal.
func CalculateDiscountAmount(subTotal decimal.Decimal, discount decimal.Decimal, discountType string) decimal.Decimal {

	var discountAmount decimal.Decimal

	if discount.GreaterThan(decimal.Zero) {
		if discountType == "P" {
			discountAmount = subTotal.Mul(discount).DivRound(DecimalHundred, 4)
		} else {
			discountAmount = discount
		}
	} else {
		discountAmount = decimal.Zero
	}

	return RoundMoney(discountAmount)
}

type LineAmount struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

type DocumentTotals struct {
	RevenueAmount  decimal.Decimal `json:"revenue_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	PaymentTotal   decimal.Decimal `json:"payment_total"`
}

// CalculateDocumentTotals sums lines into revenue, applies the discount percentage to the
// revenue, then tax on the discounted amount.
// paymentTotal = revenue + tax - discount.
func CalculateDocumentTotals(lines []LineAmount, taxRate decimal.Decimal, discountRate decimal.Decimal) DocumentTotals {
	revenue := decimal.Zero
	for _, line := range lines {
		revenue = revenue.Add(line.Quantity.Mul(line.UnitPrice))
	}
	revenue = RoundMoney(revenue)
	discountAmount := CalculateDiscountAmount(revenue, discountRate, "P")
	taxAmount := CalculateTaxAmount(revenue.Sub(discountAmount), taxRate, false)

	return DocumentTotals{
		RevenueAmount:  revenue,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		PaymentTotal:   revenue.Add(taxAmount).Sub(discountAmount),
	}
}
