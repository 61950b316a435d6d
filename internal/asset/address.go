package asset

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/tokenprice/internal/apperror"
)

// ParseAddress validates raw as a 20-byte hex address in any letter case,
// with or without a 0x prefix.
func ParseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, apperror.Validation(apperror.CodeInvalidAddress, raw)
	}
	return common.HexToAddress(raw), nil
}

// NormalizeAddress returns the EIP-55 checksummed form of raw.
// It is idempotent and insensitive to the input's letter case.
func NormalizeAddress(raw string) (string, error) {
	addr, err := ParseAddress(raw)
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}

// SortAddresses returns a and b in canonical pool order (token0 < token1).
func SortAddresses(a, b common.Address) (common.Address, common.Address) {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		return b, a
	}
	return a, b
}
