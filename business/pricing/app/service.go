package app

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/tokenprice/business/pricing/domain"
	"github.com/fd1az/tokenprice/internal/apm"
	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/asset"
	"github.com/fd1az/tokenprice/internal/logger"
)

const (
	tracerName = "pricing"
	meterName  = "pricing"

	venueUnresolved = "UNRESOLVED"
)

// QuoteTokens are the two tokens prices can be expressed in.
type QuoteTokens struct {
	Native *asset.Asset
	Stable *asset.Asset
}

// ServiceConfig configures a PriceService.
type ServiceConfig struct {
	Quotes QuoteTokens
	// Symbols labels intermediate hops in reported paths.
	Symbols *asset.Registry
	// V3Enabled turns the concentrated-liquidity tier on by default.
	V3Enabled bool
}

// ResolveOption tweaks a single Resolve call.
type ResolveOption func(*resolveOptions)

type resolveOptions struct {
	v3 bool
}

// WithoutV3 skips the concentrated-liquidity tier for this call.
func WithoutV3() ResolveOption {
	return func(o *resolveOptions) {
		o.v3 = false
	}
}

type serviceMetrics struct {
	resolutions metric.Int64Counter
	latency     metric.Float64Histogram
}

// PriceService resolves token prices by escalating through the identity
// shortcut, V2 router paths, V3 pools and finally the aggregator. The first
// tier to produce a price wins.
type PriceService struct {
	cfg        ServiceConfig
	metadata   MetadataResolver
	v2         V2Prober
	v3         V3PriceResolver
	aggregator AggregatorClient

	logger  logger.LoggerInterface
	tracer  apm.Tracer
	metrics *serviceMetrics
}

// NewPriceService creates a PriceService. v3 may be nil, which disables the
// V3 tier regardless of cfg.V3Enabled.
func NewPriceService(
	cfg ServiceConfig,
	metadata MetadataResolver,
	v2 V2Prober,
	v3 V3PriceResolver,
	aggregator AggregatorClient,
	log logger.LoggerInterface,
) (*PriceService, error) {
	if cfg.Quotes.Native == nil || cfg.Quotes.Stable == nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("native and stable quote tokens are required"))
	}
	if cfg.Symbols == nil {
		cfg.Symbols = asset.NewRegistry()
	}
	if log == nil {
		log = logger.NewNop()
	}

	s := &PriceService{
		cfg:        cfg,
		metadata:   metadata,
		v2:         v2,
		v3:         v3,
		aggregator: aggregator,
		logger:     log,
		tracer:     apm.NewTracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, apperror.Internal(apperror.CodeInternalError, "pricing metrics", err)
	}

	return s, nil
}

func (s *PriceService) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &serviceMetrics{}

	s.metrics.resolutions, err = meter.Int64Counter(
		"price_resolutions_total",
		metric.WithDescription("Price resolutions by winning venue"),
	)
	if err != nil {
		return err
	}

	s.metrics.latency, err = meter.Float64Histogram(
		"price_resolution_latency_ms",
		metric.WithDescription("End-to-end price resolution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// QuoteToken returns the token backing quote.
func (s *PriceService) QuoteToken(quote domain.QuoteCurrency) (*asset.Asset, error) {
	switch quote {
	case domain.QuoteNative:
		return s.cfg.Quotes.Native, nil
	case domain.QuoteStable:
		return s.cfg.Quotes.Stable, nil
	default:
		return nil, apperror.Validation(apperror.CodeInvalidQuoteCurrency, string(quote))
	}
}

// Resolve prices rawAddress in quote. Only a malformed address or quote
// currency is returned as an error; exhausting every tier yields
// domain.Unresolved with a nil error.
func (s *PriceService) Resolve(ctx context.Context, rawAddress string, quote domain.QuoteCurrency, opts ...ResolveOption) (domain.PriceQuote, error) {
	o := resolveOptions{v3: s.cfg.V3Enabled && s.v3 != nil}
	for _, opt := range opts {
		opt(&o)
	}

	input, err := asset.ParseAddress(rawAddress)
	if err != nil {
		return domain.Unresolved, err
	}
	quoteToken, err := s.QuoteToken(quote)
	if err != nil {
		return domain.Unresolved, err
	}

	ctx, span := s.tracer.StartSpanFromContext(ctx, "pricing.resolve",
		trace.WithAttributes(
			attribute.String("token", input.Hex()),
			attribute.String("quote", quote.String()),
		),
	)
	defer span.End()

	start := time.Now()
	result := s.resolve(ctx, span, input, quote, quoteToken, o)

	venue := venueUnresolved
	if result.Resolved() {
		venue = string(result.Venue)
		span.SetStatus(codes.Ok, "resolved")
	} else {
		span.SetStatus(codes.Error, "unresolved")
	}
	span.SetAttribute(attribute.String("venue", venue))

	s.metrics.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("venue", venue),
		attribute.String("quote", quote.String()),
	))
	s.metrics.latency.Record(ctx, float64(time.Since(start).Milliseconds()))

	s.logger.Info(ctx, "price resolved",
		"token", input.Hex(),
		"quote", quote.String(),
		"venue", venue,
		"price", result.Price,
		"path", result.Path,
	)

	return result, nil
}

func (s *PriceService) resolve(ctx context.Context, span apm.Span, input common.Address, quote domain.QuoteCurrency, quoteToken *asset.Asset, o resolveOptions) domain.PriceQuote {
	if result, ok := s.identity(ctx, span, input, quote); ok {
		return result
	}

	token := s.metadata.Resolve(ctx, input)
	if token.IsPlaceholder() {
		span.AddEvent("metadata_degraded")
	}

	if result, ok := s.viaV2(ctx, span, token, quoteToken); ok {
		return result
	}

	if o.v3 {
		if result, ok := s.viaV3(ctx, span, token, quote, quoteToken); ok {
			return result
		}
	}

	if result, ok := s.viaAggregator(ctx, span, token, quote, quoteToken); ok {
		return result
	}

	return domain.Unresolved
}

// identity handles the native token itself and the native/stable pair.
func (s *PriceService) identity(ctx context.Context, span apm.Span, input common.Address, quote domain.QuoteCurrency) (domain.PriceQuote, bool) {
	native, stable := s.cfg.Quotes.Native, s.cfg.Quotes.Stable

	var in, out *asset.Asset
	switch {
	case input == native.Address() && quote == domain.QuoteNative:
		return domain.PriceQuote{
			Price: "1",
			Venue: domain.VenueIdentity,
			Path:  []string{native.Symbol()},
		}, true
	case input == native.Address() && quote == domain.QuoteStable:
		in, out = native, stable
	case input == stable.Address() && quote == domain.QuoteNative:
		in, out = stable, native
	default:
		return domain.Unresolved, false
	}

	path := domain.NewPath(in.Address(), out.Address())
	amountOut, err := s.v2.QuotePath(ctx, path, asset.UnitAmount(in.Decimals()))
	if err != nil {
		s.tierFailed(ctx, span, "identity_pair", input, err)
		return domain.Unresolved, false
	}

	return domain.PriceQuote{
		Price: asset.FormatUnits(amountOut, out.Decimals()).String(),
		Venue: domain.VenueV2,
		Path:  []string{in.Symbol(), out.Symbol()},
	}, true
}

func (s *PriceService) viaV2(ctx context.Context, span apm.Span, token, quoteToken *asset.Asset) (domain.PriceQuote, bool) {
	path, amountOut, err := s.v2.FindLiquidPath(ctx, token.Address(), quoteToken.Address(), token.Decimals())
	if err != nil {
		s.tierFailed(ctx, span, "v2", token.Address(), err)
		return domain.Unresolved, false
	}

	return domain.PriceQuote{
		Price: asset.FormatUnits(amountOut, quoteToken.Decimals()).String(),
		Venue: domain.VenueV2,
		Path:  path.Symbols(s.symbolResolver(token)),
	}, true
}

func (s *PriceService) viaV3(ctx context.Context, span apm.Span, token *asset.Asset, quote domain.QuoteCurrency, quoteToken *asset.Asset) (domain.PriceQuote, bool) {
	price, err := s.v3.ResolvePrice(ctx, token, quoteToken)
	if err == nil {
		return domain.PriceQuote{
			Price: price.String(),
			Venue: domain.VenueV3,
			Path:  []string{token.Symbol(), quoteToken.Symbol()},
		}, true
	}
	s.tierFailed(ctx, span, "v3_direct", token.Address(), err)

	if quote != domain.QuoteStable {
		return domain.Unresolved, false
	}

	native := s.cfg.Quotes.Native
	toNative, err := s.v3.ResolvePrice(ctx, token, native)
	if err != nil {
		s.tierFailed(ctx, span, "v3_via_native", token.Address(), err)
		return domain.Unresolved, false
	}
	nativeToStable, err := s.v3.ResolvePrice(ctx, native, quoteToken)
	if err != nil {
		s.tierFailed(ctx, span, "v3_native_stable", token.Address(), err)
		return domain.Unresolved, false
	}

	return domain.PriceQuote{
		Price: toNative.Mul(nativeToStable).String(),
		Venue: domain.VenueV3,
		Path:  []string{token.Symbol(), native.Symbol(), quoteToken.Symbol()},
	}, true
}

func (s *PriceService) viaAggregator(ctx context.Context, span apm.Span, token *asset.Asset, quote domain.QuoteCurrency, quoteToken *asset.Asset) (domain.PriceQuote, bool) {
	price, err := s.aggregator.FetchBestPrice(ctx, token.Address(), quote)
	if err != nil {
		s.tierFailed(ctx, span, "aggregator", token.Address(), err)
		return domain.Unresolved, false
	}

	return domain.PriceQuote{
		Price: price,
		Venue: domain.VenueAggregator,
		Path:  []string{token.Symbol(), quoteToken.Symbol()},
	}, true
}

// symbolResolver labels the input with its fetched symbol and every other
// hop from the registry.
func (s *PriceService) symbolResolver(token *asset.Asset) func(common.Address) string {
	return func(addr common.Address) string {
		if addr == token.Address() {
			return token.Symbol()
		}
		return s.cfg.Symbols.SymbolOf(addr)
	}
}

func (s *PriceService) tierFailed(ctx context.Context, span apm.Span, tier string, token common.Address, err error) {
	span.AddEvent("tier_failed", trace.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("error", err.Error()),
	))

	if errors.Is(err, context.Canceled) {
		return
	}
	s.logger.Debug(ctx, "pricing tier failed",
		"tier", tier,
		"token", token.Hex(),
		"code", string(apperror.GetCode(err)),
		"error", err,
	)
}
