package domain

import (
	"fmt"

	"github.com/yigit/campusprint/internal/pkg/apperrors"
)

// Order limits. Anything above these is rejected rather than priced.
const (
	MaxCopies = 500
	MaxPages  = 5000
)

// rates holds the per-printed-side price in currency units. Both the live
// estimate and the stored cost read from this table.
var rates = map[PrintType]int64{
	PrintTypeBW:    5,
	PrintTypeColor: 20,
}

// Quote is the result of pricing a print job
type Quote struct {
	TotalSheets int64 `json:"totalPages"`
	PageCost    int64 `json:"pageCost"`
	TotalCost   int64 `json:"totalCost"`
}

// Rate returns the per-side price for a print type.
func Rate(pt PrintType) (int64, error) {
	rate, ok := rates[pt]
	if !ok {
		return 0, apperrors.NewValidationError(apperrors.ErrInvalidPrintType,
			fmt.Sprintf("print type must be one of: bw, color (got %q)", pt))
	}
	return rate, nil
}

// RateTable returns a copy of the rate table keyed by print type.
func RateTable() map[PrintType]int64 {
	out := make(map[PrintType]int64, len(rates))
	for k, v := range rates {
		out[k] = v
	}
	return out
}

// ComputeCost prices a job. Duplex puts two printed sides on one sheet,
// rounding an odd side count up.
func ComputeCost(pt PrintType, copies, pages int, doubleSided bool) (Quote, error) {
	rate, err := Rate(pt)
	if err != nil {
		return Quote{}, err
	}
	if copies < 1 || copies > MaxCopies {
		return Quote{}, apperrors.NewValidationError(nil,
			fmt.Sprintf("copies must be between 1 and %d", MaxCopies))
	}
	if pages < 1 || pages > MaxPages {
		return Quote{}, apperrors.NewValidationError(nil,
			fmt.Sprintf("pages must be between 1 and %d", MaxPages))
	}

	sheets := int64(pages) * int64(copies)
	if doubleSided {
		sheets = (sheets + 1) / 2
	}

	return Quote{
		TotalSheets: sheets,
		PageCost:    rate,
		TotalCost:   sheets * rate,
	}, nil
}
