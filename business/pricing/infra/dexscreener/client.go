// Package dexscreener is the aggregator fallback backed by the DexScreener REST API.
package dexscreener

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/tokenprice/business/pricing/app"
	"github.com/fd1az/tokenprice/business/pricing/domain"
	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/httpclient"
	"github.com/fd1az/tokenprice/internal/logger"
	"github.com/fd1az/tokenprice/internal/ratelimit"
)

const (
	tracerName = "dexscreener"
	meterName  = "dexscreener"

	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://api.dexscreener.com"
	// DefaultTimeout bounds the single request made per lookup.
	DefaultTimeout = 5 * time.Second
	// DefaultRequestsPerMinute is the published limit of the tokens endpoint.
	DefaultRequestsPerMinute = 300
)

var _ app.AggregatorClient = (*Client)(nil)

// Config configures the Client.
type Config struct {
	BaseURL string

	// Timeout bounds the request. Zero uses DefaultTimeout.
	Timeout time.Duration

	// ChainID keeps only pairs on this chain (e.g. "bsc"). Empty keeps all.
	ChainID string

	// RequestsPerMinute throttles outgoing lookups. Zero uses
	// DefaultRequestsPerMinute; negative disables throttling.
	RequestsPerMinute int
}

// Client fetches the price of the most liquid pair for a token. It makes
// exactly one request per lookup and never retries.
type Client struct {
	http    httpclient.Client
	limiter *ratelimit.Limiter
	chainID string

	logger   logger.LoggerInterface
	tracer   trace.Tracer
	requests metric.Int64Counter
}

// NewClient creates a Client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	var limiter *ratelimit.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = ratelimit.New(cfg.RequestsPerMinute)
	}

	tracer := otel.Tracer(tracerName)
	httpClient, err := httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithProviderName("dexscreener"),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithUserAgent("tokenprice"),
		httpclient.WithTracer(tracer, false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	requests, err := otel.Meter(meterName).Int64Counter(
		"aggregator_requests_total",
		metric.WithDescription("Aggregator lookups by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return &Client{
		http:     httpClient,
		limiter:  limiter,
		chainID:  strings.ToLower(cfg.ChainID),
		logger:   log,
		tracer:   tracer,
		requests: requests,
	}, nil
}

// FetchBestPrice returns priceNative (native quote) or priceUsd (stable
// quote) of the pair with the highest USD liquidity, verbatim.
func (c *Client) FetchBestPrice(ctx context.Context, addr common.Address, quote domain.QuoteCurrency) (string, error) {
	ctx, span := c.tracer.Start(ctx, "dexscreener.fetch_best_price",
		trace.WithAttributes(
			attribute.String("token", addr.Hex()),
			attribute.String("quote", quote.String()),
		),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		c.record(ctx, "throttled")
		span.SetStatus(codes.Error, "rate limit wait aborted")
		return "", apperror.New(apperror.CodeAggregatorRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext(addr.Hex()+": rate limited"))
	}

	var body tokensResponse
	_, err := c.http.NewRequest(httpclient.WithResponseErrorHandler(requireOK)).
		SetResult(&body).
		Get(ctx, "/latest/dex/tokens/"+addr.Hex())
	if err != nil {
		c.record(ctx, "failed")
		span.SetStatus(codes.Error, "request failed")
		c.logger.Debug(ctx, "aggregator request failed", "token", addr.Hex(), "error", err)
		return "", apperror.New(apperror.CodeAggregatorRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext(addr.Hex()))
	}

	best, ok := c.bestPair(body.Pairs)
	if !ok {
		c.record(ctx, "no_pairs")
		span.SetStatus(codes.Error, "no pairs")
		return "", apperror.NotFound(apperror.CodeAggregatorNoPrice, addr.Hex()+": no pairs")
	}

	price := best.PriceUSD
	if quote == domain.QuoteNative {
		price = best.PriceNative
	}
	if price == nil || *price == "" {
		c.record(ctx, "no_price")
		span.SetStatus(codes.Error, "missing price field")
		return "", apperror.NotFound(apperror.CodeAggregatorNoPrice,
			fmt.Sprintf("%s: top pair %s has no %s price", addr.Hex(), best.PairAddress, quote))
	}

	c.record(ctx, "success")
	span.SetAttributes(
		attribute.String("pair", best.PairAddress),
		attribute.String("dex", best.DexID),
		attribute.Float64("liquidity_usd", best.liquidityUSD()),
	)
	span.SetStatus(codes.Ok, "price found")
	return *price, nil
}

// bestPair filters by chain and returns the pair with the most USD
// liquidity. Ties keep response order.
func (c *Client) bestPair(pairs []pairInfo) (pairInfo, bool) {
	candidates := make([]pairInfo, 0, len(pairs))
	for _, p := range pairs {
		if c.chainID != "" && strings.ToLower(p.ChainID) != c.chainID {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return pairInfo{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].liquidityUSD() > candidates[j].liquidityUSD()
	})
	return candidates[0], true
}

func (c *Client) record(ctx context.Context, outcome string) {
	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("aggregator", "dexscreener"),
		attribute.String("outcome", outcome),
	))
}

// requireOK rejects every status but 200, including the other 2xx codes.
func requireOK(statusCode int, _ []byte) error {
	if statusCode != http.StatusOK {
		return apperror.New(apperror.CodeExternalServiceError,
			apperror.WithContext(fmt.Sprintf("unexpected status %d", statusCode)))
	}
	return nil
}
