// Package chain provides read-only contract access over JSON-RPC.
package chain

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/circuitbreaker"
	"github.com/fd1az/tokenprice/internal/logger"
)

// Caller executes eth_call against the latest (nil) or a given block.
// *ethclient.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var _ Caller = (*ethclient.Client)(nil)

// Dial connects to a JSON-RPC endpoint.
func Dial(ctx context.Context, url string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, apperror.New(apperror.CodeEthereumConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext(url))
	}
	return client, nil
}

// IsNodeResponse reports whether err was returned by the node as a JSON-RPC
// error (e.g. "execution reverted") rather than a transport failure.
func IsNodeResponse(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr)
}

// BreakerCaller guards a Caller with a circuit breaker. Node-side errors,
// reverts included, count as successes: a revert is an answer, not an outage.
type BreakerCaller struct {
	next Caller
	cb   *circuitbreaker.CircuitBreaker[[]byte]
}

var _ Caller = (*BreakerCaller)(nil)

// NewBreakerCaller wraps next. Breaker transitions are logged through log.
func NewBreakerCaller(next Caller, cfg circuitbreaker.Config, log logger.LoggerInterface) *BreakerCaller {
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || IsNodeResponse(err) || errors.Is(err, context.Canceled)
	}
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "rpc circuit breaker state change",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
	}

	return &BreakerCaller{
		next: next,
		cb:   circuitbreaker.New[[]byte](cfg),
	}
}

// CallContract implements Caller.
func (b *BreakerCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return b.cb.Execute(func() ([]byte, error) {
		return b.next.CallContract(ctx, msg, blockNumber)
	})
}
