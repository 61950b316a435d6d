package pancakev3

import (
	"context"
	"fmt"
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

var _ app.V3PriceResolver = (*QuoterResolver)(nil)

// QuoteResult represents the output of quoteExactInputSingle.
type QuoteResult struct {
	AmountOut               *big.Int
	SqrtPriceX96After       *big.Int
	InitializedTicksCrossed uint32
	GasEstimate             *big.Int
}

// QuoterResolver prices tokens by simulating a one-unit swap through
// QuoterV2.
type QuoterResolver struct {
	quoter *chain.Contract

	logger logger.LoggerInterface
	tracer trace.Tracer
	probes metric.Int64Counter
}

// NewQuoterResolver creates a QuoterResolver.
func NewQuoterResolver(caller chain.Caller, quoter common.Address, log logger.LoggerInterface) (*QuoterResolver, error) {
	probes, err := newTierProbeCounter()
	if err != nil {
		return nil, err
	}

	return &QuoterResolver{
		quoter: chain.NewContract(caller, quoter, quoterABI),
		logger: log,
		tracer: otel.Tracer(tracerName),
		probes: probes,
	}, nil
}

// ResolvePrice quotes one unit of tokenIn at each fee tier in order and
// returns the first successful quote scaled by tokenOut's decimals.
func (q *QuoterResolver) ResolvePrice(ctx context.Context, in, out *asset.Asset) (decimal.Decimal, error) {
	tokenIn, tokenOut := in.Address(), out.Address()
	ctx, span := q.tracer.Start(ctx, "pancakev3.resolve_price",
		trace.WithAttributes(
			attribute.String("token_in", tokenIn.Hex()),
			attribute.String("token_out", tokenOut.Hex()),
			attribute.String("strategy", string(StrategyQuoter)),
		),
	)
	defer span.End()

	amountIn := asset.UnitAmount(in.Decimals())

	for _, tier := range domain.FeeTiers {
		res, err := q.Quote(ctx, tokenIn, tokenOut, amountIn, tier)
		if err == nil && res.AmountOut.Sign() <= 0 {
			err = apperror.NotFound(apperror.CodePoolNotFound, "zero output at fee tier "+tier.String())
		}
		if err != nil {
			q.record(ctx, tier, "failed")
			span.AddEvent("fee_tier_failed",
				trace.WithAttributes(
					attribute.Int("fee_tier", int(tier)),
					attribute.String("error", err.Error()),
				),
			)
			q.logger.Debug(ctx, "quoter fee tier failed",
				"fee_tier", tier.String(),
				"token_in", tokenIn.Hex(),
				"token_out", tokenOut.Hex(),
				"error", err,
			)
			continue
		}

		q.record(ctx, tier, "success")
		span.SetAttributes(
			attribute.String("amount_out", res.AmountOut.String()),
			attribute.Int("fee_tier", int(tier)),
			attribute.Int64("gas_estimate", res.GasEstimate.Int64()),
		)
		span.SetStatus(codes.Ok, "quote received")
		return asset.FormatUnits(res.AmountOut, out.Decimals()), nil
	}

	span.SetStatus(codes.Error, "no valid quote")
	return decimal.Zero, apperror.NotFound(apperror.CodePoolNotFound,
		fmt.Sprintf("%s/%s", tokenIn.Hex(), tokenOut.Hex()))
}

// Quote calls QuoterV2.quoteExactInputSingle for a specific fee tier.
func (q *QuoterResolver) Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, tier domain.FeeTier) (*QuoteResult, error) {
	outputs, err := q.quoter.Call(ctx, "quoteExactInputSingle", QuoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(int64(tier)),
		SqrtPriceLimitX96: big.NewInt(0), // No price limit
	})
	if err != nil {
		return nil, err
	}

	if len(outputs) < 4 {
		return nil, apperror.New(apperror.CodeContractDecodeFailed,
			apperror.WithContext(fmt.Sprintf("unexpected output length: %d", len(outputs))))
	}

	return &QuoteResult{
		AmountOut:               outputs[0].(*big.Int),
		SqrtPriceX96After:       outputs[1].(*big.Int),
		InitializedTicksCrossed: outputs[2].(uint32),
		GasEstimate:             outputs[3].(*big.Int),
	}, nil
}

func (q *QuoterResolver) record(ctx context.Context, tier domain.FeeTier, outcome string) {
	q.probes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", string(StrategyQuoter)),
		attribute.Int("fee_tier", int(tier)),
		attribute.String("outcome", outcome),
	))
}
