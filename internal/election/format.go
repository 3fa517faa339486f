package election

import (
	"math"
	"strconv"
)

// NotAvailable is printed for missing values
const NotAvailable = "N/A"

// Pct formats a share as a percentage with one decimal, e.g. "12.3 %"
func Pct(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return NotAvailable
	}
	return PctLabel(*v)
}

// PctLabel is Pct for a known value
func PctLabel(v float64) string {
	return fixed(v*100, 1) + " %"
}

// PPLabel formats a share difference in percentage points, e.g. "5.2 pt"
func PPLabel(v float64) string {
	return fixed(v*100, 1) + " pt"
}

// PPSigned is PPLabel with an explicit plus sign for gains
func PPSigned(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return NotAvailable
	}
	pp := *v * 100
	sign := ""
	if pp > 0 {
		sign = "+"
	}
	return sign + fixed(pp, 1) + " pt"
}

// RatioLabel formats a ratio with two decimals
func RatioLabel(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return NotAvailable
	}
	return fixed(*v, 2)
}

// Fixed3 formats an index value with three decimals
func Fixed3(v float64) string {
	return fixed(v, 3)
}

func fixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
