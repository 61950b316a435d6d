// Package pancakev2 probes PancakeSwap v2 router paths for liquidity.
package pancakev2

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
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
	tracerName = "pancakev2"
	meterName  = "pancakev2"
)

var _ app.V2Prober = (*Prober)(nil)

// Config holds the router and the intermediate hops tried after the direct
// pair.
type Config struct {
	Router  common.Address
	Native  common.Address
	PeggedA common.Address
	PeggedB common.Address
}

// Prober finds the first router path with liquidity.
type Prober struct {
	router       *chain.Contract
	intermediate []common.Address

	logger   logger.LoggerInterface
	tracer   trace.Tracer
	attempts metric.Int64Counter
}

// NewProber creates a Prober.
func NewProber(caller chain.Caller, cfg Config, log logger.LoggerInterface) (*Prober, error) {
	attempts, err := otel.Meter(meterName).Int64Counter(
		"v2_probe_attempts_total",
		metric.WithDescription("Router path probes by candidate and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return &Prober{
		router:       chain.NewContract(caller, cfg.Router, routerABI),
		intermediate: []common.Address{cfg.Native, cfg.PeggedA, cfg.PeggedB},
		logger:       log,
		tracer:       otel.Tracer(tracerName),
		attempts:     attempts,
	}, nil
}

// Candidates returns the probe order for input→quote: the direct pair, then
// one hop through native, pegged stable A and pegged stable B. The list is
// the same for every quote currency, so a candidate may repeat a token.
func (p *Prober) Candidates(input, quote common.Address) []domain.Path {
	out := make([]domain.Path, 0, 1+len(p.intermediate))
	out = append(out, domain.NewPath(input, quote))
	for _, hop := range p.intermediate {
		out = append(out, domain.NewPath(input, hop, quote))
	}
	return out
}

// FindLiquidPath quotes one unit of input along each candidate in order and
// returns the first that succeeds. Outputs are never compared.
func (p *Prober) FindLiquidPath(ctx context.Context, input, quote common.Address, decimals uint8) (domain.Path, *big.Int, error) {
	ctx, span := p.tracer.Start(ctx, "pancakev2.find_liquid_path",
		trace.WithAttributes(
			attribute.String("token_in", input.Hex()),
			attribute.String("token_out", quote.Hex()),
		),
	)
	defer span.End()

	amountIn := asset.UnitAmount(decimals)

	for i, path := range p.Candidates(input, quote) {
		amountOut, err := p.QuotePath(ctx, path, amountIn)
		if err != nil {
			p.record(ctx, i, "failed")
			span.AddEvent("candidate_failed", trace.WithAttributes(
				attribute.Int("candidate", i),
				attribute.String("path", path.String()),
				attribute.String("error", err.Error()),
			))
			p.logger.Debug(ctx, "v2 candidate not liquid",
				"candidate", i,
				"path", path.String(),
				"error", err,
			)
			continue
		}

		p.record(ctx, i, "success")
		span.SetAttributes(
			attribute.Int("candidate", i),
			attribute.String("amount_out", amountOut.String()),
		)
		span.SetStatus(codes.Ok, "path found")
		return path, amountOut, nil
	}

	span.SetStatus(codes.Error, "no liquid path")
	return nil, nil, apperror.NotFound(apperror.CodeNoLiquidPath,
		fmt.Sprintf("%s -> %s", input.Hex(), quote.Hex()))
}

// QuotePath calls getAmountsOut(amountIn, path) and returns the final
// output amount. A zero output is treated as no liquidity.
func (p *Prober) QuotePath(ctx context.Context, path domain.Path, amountIn *big.Int) (*big.Int, error) {
	if !path.Valid() {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "path needs at least two tokens")
	}

	values, err := p.router.Call(ctx, "getAmountsOut", amountIn, []common.Address(path))
	if err != nil {
		return nil, err
	}

	amounts, ok := values[0].([]*big.Int)
	if !ok || len(amounts) != len(path) {
		return nil, apperror.New(apperror.CodeContractDecodeFailed,
			apperror.WithContext(fmt.Sprintf("getAmountsOut: unexpected result for %d hops", len(path))))
	}

	out := amounts[len(amounts)-1]
	if out == nil || out.Sign() <= 0 {
		return nil, apperror.NotFound(apperror.CodeNoLiquidPath, path.String())
	}
	return out, nil
}

func (p *Prober) record(ctx context.Context, candidate int, outcome string) {
	p.attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("candidate", candidate),
		attribute.String("outcome", outcome),
	))
}
