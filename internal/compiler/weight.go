package compiler

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/cespio/omtmzn/internal/ir"
)

// weightContext is wide enough that sums of literal weights are exact for any
// realistic script.
var weightContext = apd.BaseContext.WithPrecision(100)

// LiteralWeight extracts the value of a soft weight. Only numerals, decimals
// and the negation of either are accepted; anything else cannot be bounded
// statically and fails with UNBOUNDED_WEIGHT.
func LiteralWeight(e ir.Expr) (*apd.Decimal, error) {
	switch v := e.(type) {
	case ir.Numeral:
		return parseWeight(v.Text, e)
	case ir.Decimal:
		return parseWeight(v.Text, e)
	case ir.App:
		if v.Op == "-" && len(v.Args) == 1 && len(v.Indices) == 0 {
			switch v.Args[0].(type) {
			case ir.Numeral, ir.Decimal:
				d, err := LiteralWeight(v.Args[0])
				if err != nil {
					return nil, err
				}
				return d.Neg(d), nil
			}
		}
	}
	return nil, ir.NewError(ir.ErrCodeUnboundedWeight, nil, "weight %s is not a numeric literal", ir.Format(e))
}

func parseWeight(text string, e ir.Expr) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(text)
	if err != nil {
		return nil, ir.NewError(ir.ErrCodeUnboundedWeight, nil, "weight %s: %v", ir.Format(e), err)
	}
	return d, nil
}

// formatWeight renders a weight in plain notation, without trailing zeros.
// Negative values are parenthesized.
func formatWeight(d *apd.Decimal) string {
	var r apd.Decimal
	r.Reduce(d)
	text := r.Text('f')
	if r.Negative && !r.IsZero() {
		return "(" + text + ")"
	}
	return text
}

// integral reports whether d has no fractional part.
func integral(d *apd.Decimal) bool {
	var r apd.Decimal
	r.Reduce(d)
	return r.Exponent >= 0
}

// weightBounds returns the sum of negative weights and the sum of
// non-negative weights.
func weightBounds(weights []*apd.Decimal) (lo, hi *apd.Decimal, err error) {
	lo, hi = new(apd.Decimal), new(apd.Decimal)
	for _, w := range weights {
		acc := hi
		if w.Negative && !w.IsZero() {
			acc = lo
		}
		if _, err := weightContext.Add(acc, acc, w); err != nil {
			return nil, nil, err
		}
	}
	return lo, hi, nil
}
