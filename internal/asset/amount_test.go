package asset_test

import (
	"math/big"
	"testing"

	"github.com/fd1az/tokenprice/internal/asset"
)

func TestUnitAmount(t *testing.T) {
	tests := []struct {
		decimals uint8
		want     string
	}{
		{0, "1"},
		{6, "1000000"},
		{18, "1000000000000000000"},
	}

	for _, tt := range tests {
		if got := asset.UnitAmount(tt.decimals); got.String() != tt.want {
			t.Errorf("UnitAmount(%d) = %s, want %s", tt.decimals, got, tt.want)
		}
	}
}

func TestFormatUnits(t *testing.T) {
	raw, _ := new(big.Int).SetString("612345678900000000000", 10)

	tests := []struct {
		name     string
		raw      *big.Int
		decimals uint8
		want     string
	}{
		{"trailing zeros trimmed", raw, 18, "612.3456789"},
		{"six decimals", big.NewInt(2_431_200), 6, "2.4312"},
		{"one unit", asset.UnitAmount(18), 18, "1"},
		{"nil is zero", nil, 18, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := asset.FormatUnits(tt.raw, tt.decimals).String(); got != tt.want {
				t.Errorf("FormatUnits() = %s, want %s", got, tt.want)
			}
		})
	}
}
