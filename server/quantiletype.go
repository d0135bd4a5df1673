package server

import "github.com/replicest/replicvar/estimate"

func parseQuantileType(s string) (estimate.QuantileType, bool) {
	switch s {
	case "lower":
		return estimate.QuantileLower, true
	case "interpolation":
		return estimate.QuantileInterpolation, true
	case "upper":
		return estimate.QuantileUpper, true
	default:
		return 0, false
	}
}
