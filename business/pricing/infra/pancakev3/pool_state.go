// Package pancakev3 prices tokens against PancakeSwap v3 pools.
package pancakev3

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/tokenprice/business/pricing/app"
	"github.com/fd1az/tokenprice/business/pricing/domain"
	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/asset"
	"github.com/fd1az/tokenprice/internal/chain"
	"github.com/fd1az/tokenprice/internal/logger"
)

const (
	tracerName = "pancakev3"
	meterName  = "pancakev3"
)

var _ app.V3PriceResolver = (*PoolStateResolver)(nil)

// PoolStateResolver derives prices from the current tick of a pool found
// through the known-pool registry or the factory.
type PoolStateResolver struct {
	caller  chain.Caller
	factory *chain.Contract
	known   *PoolRegistry

	logger logger.LoggerInterface
	tracer trace.Tracer
	probes metric.Int64Counter
}

// NewPoolStateResolver creates a PoolStateResolver. known may be nil.
func NewPoolStateResolver(caller chain.Caller, factory common.Address, known *PoolRegistry, log logger.LoggerInterface) (*PoolStateResolver, error) {
	probes, err := newTierProbeCounter()
	if err != nil {
		return nil, err
	}

	return &PoolStateResolver{
		caller:  caller,
		factory: chain.NewContract(caller, factory, factoryABI),
		known:   known,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		probes:  probes,
	}, nil
}

func newTierProbeCounter() (metric.Int64Counter, error) {
	c, err := otel.Meter(meterName).Int64Counter(
		"v3_tier_probes_total",
		metric.WithDescription("Fee tier probes by tier and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return c, nil
}

// ResolvePrice returns the price of tokenIn in tokenOut from pool tick state.
func (r *PoolStateResolver) ResolvePrice(ctx context.Context, in, out *asset.Asset) (decimal.Decimal, error) {
	tokenIn, tokenOut := in.Address(), out.Address()
	ctx, span := r.tracer.Start(ctx, "pancakev3.resolve_price",
		trace.WithAttributes(
			attribute.String("token_in", tokenIn.Hex()),
			attribute.String("token_out", tokenOut.Hex()),
			attribute.String("strategy", string(StrategyPoolState)),
		),
	)
	defer span.End()

	state, err := r.FindPoolState(ctx, tokenIn, tokenOut)
	if err != nil {
		span.SetStatus(codes.Error, "no pool")
		return decimal.Zero, err
	}

	price := state.PriceOf(tokenIn)
	if math.IsInf(price, 0) || math.IsNaN(price) || price == 0 {
		span.SetStatus(codes.Error, "price out of range")
		return decimal.Zero, apperror.New(apperror.CodeContractDecodeFailed,
			apperror.WithContext(fmt.Sprintf("tick %d on %s", state.Tick, state.Pool.Hex())))
	}

	span.SetAttributes(
		attribute.String("pool", state.Pool.Hex()),
		attribute.Int64("tick", state.Tick),
	)
	span.SetStatus(codes.Ok, "price resolved")
	return decimal.NewFromFloat(price), nil
}

// FindPoolState resolves and reads the pool for tokenIn/tokenOut. A pinned
// pool is used as is; otherwise fee tiers are probed in order and the first
// pool that exists and reads cleanly wins.
func (r *PoolStateResolver) FindPoolState(ctx context.Context, tokenIn, tokenOut common.Address) (domain.PoolState, error) {
	if pool, ok := r.known.Lookup(tokenIn, tokenOut); ok {
		state, err := r.ReadPool(ctx, pool)
		if err != nil {
			r.logger.Debug(ctx, "known pool read failed", "pool", pool.Hex(), "error", err)
			return domain.PoolState{}, err
		}
		return state, nil
	}

	span := trace.SpanFromContext(ctx)
	for _, tier := range domain.FeeTiers {
		state, err := r.probeTier(ctx, tokenIn, tokenOut, tier)
		if err != nil {
			r.record(ctx, tier, "failed")
			span.AddEvent("fee_tier_failed", trace.WithAttributes(
				attribute.Int("fee_tier", int(tier)),
				attribute.String("error", err.Error()),
			))
			r.logger.Debug(ctx, "v3 fee tier failed",
				"fee_tier", tier.String(),
				"token_in", tokenIn.Hex(),
				"token_out", tokenOut.Hex(),
				"error", err,
			)
			continue
		}

		r.record(ctx, tier, "success")
		span.SetAttributes(attribute.Int("fee_tier", int(tier)))
		return state, nil
	}

	return domain.PoolState{}, apperror.NotFound(apperror.CodePoolNotFound,
		fmt.Sprintf("%s/%s", tokenIn.Hex(), tokenOut.Hex()))
}

func (r *PoolStateResolver) probeTier(ctx context.Context, tokenIn, tokenOut common.Address, tier domain.FeeTier) (domain.PoolState, error) {
	values, err := r.factory.Call(ctx, "getPool", tokenIn, tokenOut, big.NewInt(int64(tier)))
	if err != nil {
		return domain.PoolState{}, err
	}

	pool, ok := values[0].(common.Address)
	if !ok || pool == (common.Address{}) {
		return domain.PoolState{}, apperror.NotFound(apperror.CodePoolNotFound, "fee tier "+tier.String())
	}

	return r.ReadPool(ctx, pool)
}

// ReadPool reads token0, token1 and the slot0 tick of pool.
func (r *PoolStateResolver) ReadPool(ctx context.Context, pool common.Address) (domain.PoolState, error) {
	contract := chain.NewContract(r.caller, pool, poolABI)

	token0, err := readAddress(ctx, contract, "token0")
	if err != nil {
		return domain.PoolState{}, err
	}
	token1, err := readAddress(ctx, contract, "token1")
	if err != nil {
		return domain.PoolState{}, err
	}

	values, err := contract.Call(ctx, "slot0")
	if err != nil {
		return domain.PoolState{}, err
	}
	if len(values) < 2 {
		return domain.PoolState{}, apperror.New(apperror.CodeContractDecodeFailed,
			apperror.WithContext("slot0 on "+pool.Hex()))
	}
	tick, ok := values[1].(*big.Int)
	if !ok {
		return domain.PoolState{}, apperror.New(apperror.CodeContractDecodeFailed,
			apperror.WithContext(fmt.Sprintf("slot0 tick: unexpected type %T", values[1])))
	}

	return domain.PoolState{
		Pool:   pool,
		Token0: token0,
		Token1: token1,
		Tick:   tick.Int64(),
	}, nil
}

func readAddress(ctx context.Context, c *chain.Contract, method string) (common.Address, error) {
	values, err := c.Call(ctx, method)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, apperror.New(apperror.CodeContractDecodeFailed,
			apperror.WithContext(fmt.Sprintf("%s: unexpected type %T", method, values[0])))
	}
	return addr, nil
}

func (r *PoolStateResolver) record(ctx context.Context, tier domain.FeeTier, outcome string) {
	r.probes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", string(StrategyPoolState)),
		attribute.Int("fee_tier", int(tier)),
		attribute.String("outcome", outcome),
	))
}
