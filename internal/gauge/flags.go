package gauge

import (
	"strconv"

	"github.com/chrissnell/tidegauge/internal/types"
)

// KnownFlags are the quality letters seen in BODC station files:
//
//	M  improbable value
//	N  null value
//	T  interpolated value
//
// Any other trailing letter is treated the same way.
var KnownFlags = []byte{'M', 'N', 'T'}

// qualityFlag returns the trailing flag letter of a raw field, if any
func qualityFlag(field string) (byte, bool) {
	if field == "" {
		return 0, false
	}
	c := field[len(field)-1]
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		return c, true
	}
	return 0, false
}

// parseLevel classifies a raw height field. A flagged field is missing no
// matter what its numeric prefix says; only unflagged fields reach
// ParseFloat.
func parseLevel(field string) (level types.Level, flag byte, err error) {
	if c, ok := qualityFlag(field); ok {
		return types.Missing, c, nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return types.Missing, 0, err
	}
	return types.Some(v), 0, nil
}
