package utils

import "math"

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// MinFloat returns the smaller of two float64 values.
func MinFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
