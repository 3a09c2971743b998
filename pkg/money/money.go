// Package money formats integer rouble amounts for display.
package money

import "fmt"

func Format(price int64) string {
	return fmt.Sprintf("%d ₽", price)
}

// FormatWithDecimals renders a fractional amount with kopecks. The domain
// stores whole roubles, this exists for display surfaces that keep cents.
func FormatWithDecimals(price float64) string {
	return fmt.Sprintf("%.2f ₽", price)
}
