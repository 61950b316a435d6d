// Package erc20 reads token metadata from ERC-20 contracts.
package erc20

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/tokenprice/business/pricing/app"
	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/asset"
	"github.com/fd1az/tokenprice/internal/chain"
	"github.com/fd1az/tokenprice/internal/logger"
)

const tracerName = "erc20"

var _ app.MetadataResolver = (*MetadataResolver)(nil)

// MetadataResolver fetches symbol, name and decimals. Results are not cached.
type MetadataResolver struct {
	caller chain.Caller
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewMetadataResolver creates a MetadataResolver.
func NewMetadataResolver(caller chain.Caller, log logger.LoggerInterface) *MetadataResolver {
	return &MetadataResolver{
		caller: caller,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
}

// Resolve issues the three reads concurrently. If any of them fails the
// placeholder descriptor is returned instead.
func (r *MetadataResolver) Resolve(ctx context.Context, addr common.Address) *asset.Asset {
	ctx, span := r.tracer.Start(ctx, "erc20.metadata",
		trace.WithAttributes(attribute.String("token", addr.Hex())),
	)
	defer span.End()

	var (
		symbol, name string
		decimals     uint8
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		symbol, err = r.readText(gctx, addr, "symbol")
		return err
	})
	g.Go(func() error {
		var err error
		name, err = r.readText(gctx, addr, "name")
		return err
	})
	g.Go(func() error {
		values, err := chain.NewContract(r.caller, addr, erc20ABI).Call(gctx, "decimals")
		if err != nil {
			return err
		}
		d, ok := values[0].(uint8)
		if !ok {
			return apperror.New(apperror.CodeContractDecodeFailed,
				apperror.WithContext(fmt.Sprintf("decimals: unexpected type %T", values[0])))
		}
		decimals = d
		return nil
	})

	if err := g.Wait(); err != nil {
		err = apperror.New(apperror.CodeMetadataFetchFailed,
			apperror.WithCause(err),
			apperror.WithContext(addr.Hex()))
		span.AddEvent("metadata_placeholder", trace.WithAttributes(
			attribute.String("error", err.Error()),
		))
		r.logger.Warn(ctx, "token metadata unavailable, using placeholder",
			"token", addr.Hex(),
			"error", err,
		)
		return asset.Unknown(addr)
	}

	span.SetAttributes(
		attribute.String("symbol", symbol),
		attribute.Int("decimals", int(decimals)),
	)
	return asset.NewAsset(addr, symbol, name, decimals)
}

// readText reads a string getter, retrying with the bytes32 layout when the
// string decoding fails.
func (r *MetadataResolver) readText(ctx context.Context, addr common.Address, method string) (string, error) {
	values, err := chain.NewContract(r.caller, addr, erc20ABI).Call(ctx, method)
	if err == nil {
		if s, ok := values[0].(string); ok {
			return s, nil
		}
	}
	if err != nil && !apperror.HasCode(err, apperror.CodeContractDecodeFailed) {
		return "", err
	}

	values, err = chain.NewContract(r.caller, addr, legacyABI).Call(ctx, method)
	if err != nil {
		return "", err
	}
	raw, ok := values[0].([32]byte)
	if !ok {
		return "", apperror.New(apperror.CodeContractDecodeFailed,
			apperror.WithContext(fmt.Sprintf("%s: unexpected type %T", method, values[0])))
	}
	return string(bytes.TrimRight(raw[:], "\x00")), nil
}
