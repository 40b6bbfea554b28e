package entity

import "github.com/shopspring/decimal"

func init() {
	// Amounts are emitted as JSON numbers, e.g. 129.564 rather than "129.564".
	decimal.MarshalJSONWithoutQuotes = true
}

// Hundred is used for percentage arithmetic.
var Hundred = decimal.NewFromInt(100)
