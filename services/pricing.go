package services

import "github.com/shopspring/decimal"

// Pricing computes checkout totals. All arithmetic runs on decimals and is
// rounded half-up to cents; floats only appear at the storage boundary.
type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// NewPricing builds a Pricing from the configured float constants.
func NewPricing(taxRate, shippingFee, freeShippingThreshold float64) Pricing {
	return Pricing{
		TaxRate:               decimal.NewFromFloat(taxRate),
		ShippingFee:           decimal.NewFromFloat(shippingFee),
		FreeShippingThreshold: decimal.NewFromFloat(freeShippingThreshold),
	}
}

// Totals is the price breakdown of an order.
type Totals struct {
	Subtotal float64
	Tax      float64
	Shipping float64
	Total    float64
}

// LineSubtotal returns unitPrice × quantity rounded to cents.
func LineSubtotal(unitPrice float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2)
}

// Compute derives tax, shipping and total from an order subtotal. Shipping is
// waived strictly above the free-shipping threshold.
func (p Pricing) Compute(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(p.TaxRate).Round(2)

	shipping := p.ShippingFee
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	total := subtotal.Add(tax).Add(shipping)
	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}
