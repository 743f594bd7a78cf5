package catalog

import "github.com/shopspring/decimal"

// CurrencySymbol is the ZAR prefix used for every displayed amount
const CurrencySymbol = "R"

// FormatPrice renders an amount with the currency symbol and two fraction digits
func FormatPrice(amount decimal.Decimal) string {
	return CurrencySymbol + amount.StringFixed(2)
}
