package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
)

func TestComputeCost(t *testing.T) {
	tests := []struct {
		name        string
		printType   PrintType
		copies      int
		pages       int
		doubleSided bool
		want        Quote
	}{
		{"single bw page", PrintTypeBW, 1, 1, false, Quote{TotalSheets: 1, PageCost: 5, TotalCost: 5}},
		{"color copies", PrintTypeColor, 2, 3, false, Quote{TotalSheets: 6, PageCost: 20, TotalCost: 120}},
		{"duplex rounds odd sides up", PrintTypeBW, 1, 3, true, Quote{TotalSheets: 2, PageCost: 5, TotalCost: 10}},
		{"duplex even sides", PrintTypeColor, 2, 2, true, Quote{TotalSheets: 2, PageCost: 20, TotalCost: 40}},
		{"duplex single side", PrintTypeBW, 1, 1, true, Quote{TotalSheets: 1, PageCost: 5, TotalCost: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeCost(tt.printType, tt.copies, tt.pages, tt.doubleSided)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeCostRejectsUnknownPrintType(t *testing.T) {
	_, err := ComputeCost(PrintType("sepia"), 1, 1, false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidPrintType))
	assert.True(t, apperrors.IsValidation(err))
}

func TestComputeCostRejectsOutOfRangeQuantities(t *testing.T) {
	cases := []struct {
		copies, pages int
	}{
		{0, 1},
		{1, 0},
		{-3, 4},
		{MaxCopies + 1, 1},
		{1, MaxPages + 1},
	}
	for _, c := range cases {
		_, err := ComputeCost(PrintTypeBW, c.copies, c.pages, false)
		assert.Truef(t, apperrors.IsValidation(err), "copies=%d pages=%d", c.copies, c.pages)
	}
}

func TestComputeCostIsMonotonic(t *testing.T) {
	for _, pt := range []PrintType{PrintTypeBW, PrintTypeColor} {
		for _, duplex := range []bool{false, true} {
			for copies := 1; copies <= 6; copies++ {
				for pages := 1; pages <= 12; pages++ {
					base, err := ComputeCost(pt, copies, pages, duplex)
					require.NoError(t, err)

					morePages, err := ComputeCost(pt, copies, pages+1, duplex)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, morePages.TotalCost, base.TotalCost)

					moreCopies, err := ComputeCost(pt, copies+1, pages, duplex)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, moreCopies.TotalCost, base.TotalCost)
				}
			}
		}
	}
}

func TestDuplexNeverCostsMore(t *testing.T) {
	for _, pt := range []PrintType{PrintTypeBW, PrintTypeColor} {
		for copies := 1; copies <= 5; copies++ {
			for pages := 1; pages <= 20; pages++ {
				single, err := ComputeCost(pt, copies, pages, false)
				require.NoError(t, err)
				duplex, err := ComputeCost(pt, copies, pages, true)
				require.NoError(t, err)
				assert.LessOrEqual(t, duplex.TotalCost, single.TotalCost)
			}
		}
	}
}

func TestRateTableIsACopy(t *testing.T) {
	table := RateTable()
	table[PrintTypeBW] = 1

	rate, err := Rate(PrintTypeBW)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rate)
}

func TestParsePrintType(t *testing.T) {
	pt, err := ParsePrintType(" Color ")
	require.NoError(t, err)
	assert.Equal(t, PrintTypeColor, pt)

	_, err = ParsePrintType("")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidPrintType))
}
