package engine

import "github.com/shopspring/decimal"

var decimalOneHundred = decimal.NewFromInt(100)

// LineAmounts is the computed money breakdown of one line item.
type LineAmounts struct {
	Taxable decimal.Decimal
	Tax     decimal.Decimal
	Cgst    decimal.Decimal
	Sgst    decimal.Decimal
	Net     decimal.Decimal
}

// CalculateLineAmounts computes taxable amount, intra-state GST split and net
// amount for a line item. Free quantity does not participate in the amount.
//
// Derived amounts are rounded half-up to 2 decimal places at each step.
// Sgst is taken as tax minus cgst so the split always sums to the tax even
// when the tax is an odd cent.
func CalculateLineAmounts(qty int, unitRate, discountPct, gstPct decimal.Decimal) (*LineAmounts, error) {
	if qty < 0 {
		return nil, &InvalidLineItemError{Field: "qty", Reason: "must not be negative"}
	}
	if unitRate.IsNegative() {
		return nil, &InvalidLineItemError{Field: "unit_rate", Reason: "must not be negative"}
	}
	if discountPct.IsNegative() || discountPct.GreaterThan(decimalOneHundred) {
		return nil, &InvalidLineItemError{Field: "discount_pct", Reason: "must be between 0 and 100"}
	}
	if gstPct.IsNegative() || gstPct.GreaterThan(decimalOneHundred) {
		return nil, &InvalidLineItemError{Field: "gst_pct", Reason: "must be between 0 and 100"}
	}

	base := unitRate.Mul(decimal.NewFromInt(int64(qty)))
	discount := base.Mul(discountPct).DivRound(decimalOneHundred, 2)
	taxable := base.Sub(discount).Round(2)
	tax := taxable.Mul(gstPct).DivRound(decimalOneHundred, 2)
	cgst := tax.DivRound(decimal.NewFromInt(2), 2)
	sgst := tax.Sub(cgst)
	net := taxable.Add(tax)

	return &LineAmounts{
		Taxable: taxable,
		Tax:     tax,
		Cgst:    cgst,
		Sgst:    sgst,
		Net:     net,
	}, nil
}
