// Package utils holds small numeric helpers shared across packages.
package utils

import "math"

// Round rounds a float64 value to 2 decimal places. Used for clock
// frequencies and other display values where raw float precision is noise.
func Round(val float64) float64 {
	return math.Round(val*100) / 100
}
