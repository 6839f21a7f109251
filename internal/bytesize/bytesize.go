// Package bytesize renders byte counts as short human-readable strings.
package bytesize

import (
	"math"
	"strconv"
)

const k = 1024

var units = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// DefaultDecimals is the precision used by FormatDefault.
const DefaultDecimals = 2

// Format converts n bytes to "<value> <unit>" using 1024-based units.
// The value is rounded to decimals places and printed without trailing zeros,
// so 1536 becomes "1.5 KB" and 1048576 becomes "1 MB". Negative n is not supported.
func Format(n int64, decimals int) string {
	if n == 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}

	// floor(log_k(n)) without the float error of math.Log on exact powers of k.
	i := 0
	for i < len(units)-1 && float64(n) >= math.Pow(k, float64(i+1)) {
		i++
	}

	v := float64(n) / math.Pow(k, float64(i))
	// Round at the requested precision, then reparse to drop padding zeros.
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		rounded = v
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + units[i]
}

// FormatDefault is Format with DefaultDecimals.
func FormatDefault(n int64) string {
	return Format(n, DefaultDecimals)
}
