package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/tokenprice/internal/apperror"
)

// Contract binds an ABI to an address for read-only calls.
type Contract struct {
	address common.Address
	abi     abi.ABI
	caller  Caller
}

// MustParseABI parses a JSON ABI, panicking on malformed input. Intended for
// package-level ABI constants.
func MustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("chain: bad abi: %v", err))
	}
	return parsed
}

// NewContract binds parsed to address.
func NewContract(caller Caller, address common.Address, parsed abi.ABI) *Contract {
	return &Contract{address: address, abi: parsed, caller: caller}
}

// Address returns the bound address.
func (c *Contract) Address() common.Address {
	return c.address
}

// Call packs method(args...), executes it at the latest block and unpacks
// the outputs.
func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithCause(err),
			apperror.WithContext("pack "+method))
	}

	res, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s on %s", method, c.address.Hex())))
	}

	values, err := c.abi.Unpack(method, res)
	if err != nil {
		return nil, apperror.New(apperror.CodeContractDecodeFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s on %s", method, c.address.Hex())))
	}
	if len(values) == 0 {
		return nil, apperror.New(apperror.CodeContractDecodeFailed,
			apperror.WithContext(fmt.Sprintf("%s on %s: empty output", method, c.address.Hex())))
	}

	return values, nil
}
