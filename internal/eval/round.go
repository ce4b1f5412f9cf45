package eval

import (
	"math"
	"strconv"
)

// Round rounds the exact decimal value of x to the given number of places,
// resolving exact ties to the even neighbour. 2.675 is stored just below
// the tie and rounds to 2.67. NaN and infinities are returned unchanged.
func Round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}
