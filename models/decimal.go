package models

import "github.com/shopspring/decimal"

func init() {
	// API clients expect amounts as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}
