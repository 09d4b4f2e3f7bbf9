package pipeline

import (
	"math"
	"strconv"
	"strings"
)

// NetAmount derives the net amount from a gross amount and a fee, both
// decimal strings, and re-serializes the difference with the shortest
// round-tripping representation. Currency is never touched here; it is
// carried through by the caller unchanged.
func NetAmount(gross, fee string) (string, error) {
	grossValue, err := parseAmount(gross)
	if err != nil {
		return "", err
	}
	feeValue, err := parseAmount(fee)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(grossValue-feeValue, 'f', -1, 64), nil
}

func parseAmount(value string) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, validationErrorf("invalid amount: %q", value)
	}
	return parsed, nil
}
