package app

import (
	"context"
	"encoding/json"
	"math/big"
	"reflect"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/tokenprice/business/pricing/domain"
	"github.com/fd1az/tokenprice/internal/apperror"
	"github.com/fd1az/tokenprice/internal/asset"
	"github.com/fd1az/tokenprice/internal/logger"
)

var (
	tokenFOO = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	fooAsset = asset.NewAsset(tokenFOO, "FOO", "Foo Token", 9)
)

// =============================================================================
// Fakes
// =============================================================================

type fakeMetadata struct {
	token *asset.Asset
	calls int
}

func (f *fakeMetadata) Resolve(_ context.Context, addr common.Address) *asset.Asset {
	f.calls++
	if f.token == nil {
		return asset.Unknown(addr)
	}
	return f.token
}

type fakeV2 struct {
	path      domain.Path
	amountOut *big.Int
	quoteOut  *big.Int

	findCalls     int
	quoteCalls    int
	gotDecimals   uint8
	gotQuotePath  domain.Path
	gotQuoteInput *big.Int
}

func (f *fakeV2) FindLiquidPath(_ context.Context, _, _ common.Address, decimals uint8) (domain.Path, *big.Int, error) {
	f.findCalls++
	f.gotDecimals = decimals
	if f.path == nil {
		return nil, nil, apperror.NotFound(apperror.CodeNoLiquidPath, "test")
	}
	return f.path, f.amountOut, nil
}

func (f *fakeV2) QuotePath(_ context.Context, path domain.Path, amountIn *big.Int) (*big.Int, error) {
	f.quoteCalls++
	f.gotQuotePath = path
	f.gotQuoteInput = amountIn
	if f.quoteOut == nil {
		return nil, apperror.New(apperror.CodeContractCallFailed)
	}
	return f.quoteOut, nil
}

type pair struct{ in, out common.Address }

type fakeV3 struct {
	prices     map[pair]decimal.Decimal
	calls      []pair
	inDecimals []uint8
}

func (f *fakeV3) ResolvePrice(_ context.Context, in, out *asset.Asset) (decimal.Decimal, error) {
	key := pair{in.Address(), out.Address()}
	f.calls = append(f.calls, key)
	f.inDecimals = append(f.inDecimals, in.Decimals())
	if p, ok := f.prices[key]; ok {
		return p, nil
	}
	return decimal.Zero, apperror.NotFound(apperror.CodePoolNotFound, "test")
}

type fakeAggregator struct {
	price    string
	calls    int
	gotQuote domain.QuoteCurrency
}

func (f *fakeAggregator) FetchBestPrice(_ context.Context, _ common.Address, quote domain.QuoteCurrency) (string, error) {
	f.calls++
	f.gotQuote = quote
	if f.price == "" {
		return "", apperror.NotFound(apperror.CodeAggregatorNoPrice, "test")
	}
	return f.price, nil
}

type harness struct {
	meta *fakeMetadata
	v2   *fakeV2
	v3   *fakeV3
	agg  *fakeAggregator
	svc  *PriceService
}

func (h *harness) remoteCalls() int {
	return h.meta.calls + h.v2.findCalls + h.v2.quoteCalls + len(h.v3.calls) + h.agg.calls
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		meta: &fakeMetadata{token: fooAsset},
		v2:   &fakeV2{},
		v3:   &fakeV3{prices: map[pair]decimal.Decimal{}},
		agg:  &fakeAggregator{},
	}

	symbols := asset.NewRegistry()
	symbols.Register(asset.WBNB)
	symbols.Register(asset.USDT)
	symbols.Register(asset.BUSD)

	svc, err := NewPriceService(ServiceConfig{
		Quotes:    QuoteTokens{Native: asset.WBNB, Stable: asset.USDT},
		Symbols:   symbols,
		V3Enabled: true,
	}, h.meta, h.v2, h.v3, h.agg, logger.NewNop())
	if err != nil {
		t.Fatalf("NewPriceService: %v", err)
	}
	h.svc = svc
	return h
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), asset.UnitAmount(18))
}

func assertQuote(t *testing.T, got domain.PriceQuote, price string, venue domain.Venue, path ...string) {
	t.Helper()
	if got.Price != price {
		t.Errorf("price = %q, want %q", got.Price, price)
	}
	if got.Venue != venue {
		t.Errorf("venue = %q, want %q", got.Venue, venue)
	}
	if strings.Join(got.Path, ",") != strings.Join(path, ",") {
		t.Errorf("path = %v, want %v", got.Path, path)
	}
}

// =============================================================================
// Input validation
// =============================================================================

func TestResolve_InvalidAddress(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Resolve(context.Background(), "0x1234", domain.QuoteNative)
	if !apperror.HasCode(err, apperror.CodeInvalidAddress) {
		t.Fatalf("expected CodeInvalidAddress, got %v", err)
	}
	if n := h.remoteCalls(); n != 0 {
		t.Errorf("expected no remote calls, got %d", n)
	}
}

func TestResolve_InvalidQuoteCurrency(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Resolve(context.Background(), tokenFOO.Hex(), domain.QuoteCurrency("eur"))
	if !apperror.HasCode(err, apperror.CodeInvalidQuoteCurrency) {
		t.Fatalf("expected CodeInvalidQuoteCurrency, got %v", err)
	}
}

// =============================================================================
// Identity
// =============================================================================

func TestResolve_IdentityNative(t *testing.T) {
	for _, raw := range []string{
		asset.AddrWBNB.Hex(),
		strings.ToLower(asset.AddrWBNB.Hex()),
		strings.TrimPrefix(strings.ToUpper(asset.AddrWBNB.Hex()), "0X"),
	} {
		h := newHarness(t)

		got, err := h.svc.Resolve(context.Background(), raw, domain.QuoteNative)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", raw, err)
		}
		assertQuote(t, got, "1", domain.VenueIdentity, "WBNB")
		if n := h.remoteCalls(); n != 0 {
			t.Errorf("%s: expected zero remote calls, got %d", raw, n)
		}
	}
}

func TestResolve_NativeInStable(t *testing.T) {
	h := newHarness(t)
	h.v2.quoteOut, _ = new(big.Int).SetString("612340000000000000000", 10)

	got, err := h.svc.Resolve(context.Background(), asset.AddrWBNB.Hex(), domain.QuoteStable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertQuote(t, got, "612.34", domain.VenueV2, "WBNB", "USDT")
	if h.v2.gotQuotePath.Input() != asset.AddrWBNB || h.v2.gotQuotePath.Output() != asset.AddrUSDT {
		t.Errorf("unexpected path %s", h.v2.gotQuotePath)
	}
	if h.v2.gotQuoteInput.Cmp(eth(1)) != 0 {
		t.Errorf("amountIn = %s, want 1e18", h.v2.gotQuoteInput)
	}
	if h.meta.calls != 0 {
		t.Errorf("metadata fetched %d times, want 0", h.meta.calls)
	}
}

func TestResolve_StableInNative(t *testing.T) {
	h := newHarness(t)
	h.v2.quoteOut, _ = new(big.Int).SetString("1633000000000000", 10)

	got, err := h.svc.Resolve(context.Background(), asset.AddrUSDT.Hex(), domain.QuoteNative)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertQuote(t, got, "0.001633", domain.VenueV2, "USDT", "WBNB")
}

func TestResolve_IdentityPairFailureContinues(t *testing.T) {
	h := newHarness(t)
	h.meta.token = asset.WBNB
	h.agg.price = "600.1"

	got, err := h.svc.Resolve(context.Background(), asset.AddrWBNB.Hex(), domain.QuoteStable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertQuote(t, got, "600.1", domain.VenueAggregator, "WBNB", "USDT")
	if h.meta.calls != 1 || h.v2.findCalls != 1 {
		t.Errorf("expected flow to continue to metadata and V2, got meta=%d v2=%d", h.meta.calls, h.v2.findCalls)
	}
}

// =============================================================================
// Tiers
// =============================================================================

func TestResolve_V2(t *testing.T) {
	h := newHarness(t)
	h.v2.path = domain.NewPath(tokenFOO, asset.AddrBUSD, asset.AddrUSDT)
	h.v2.amountOut, _ = new(big.Int).SetString("2500000000000000000", 10)

	got, err := h.svc.Resolve(context.Background(), tokenFOO.Hex(), domain.QuoteStable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertQuote(t, got, "2.5", domain.VenueV2, "FOO", "BUSD", "USDT")
	if h.v2.gotDecimals != 9 {
		t.Errorf("decimals = %d, want 9", h.v2.gotDecimals)
	}
	if len(h.v3.calls) != 0 || h.agg.calls != 0 {
		t.Errorf("later tiers ran after V2 success: v3=%d agg=%d", len(h.v3.calls), h.agg.calls)
	}
}

func TestResolve_V3Direct(t *testing.T) {
	h := newHarness(t)
	h.v3.prices[pair{tokenFOO, asset.AddrWBNB}] = decimal.RequireFromString("0.0042")

	got, err := h.svc.Resolve(context.Background(), tokenFOO.Hex(), domain.QuoteNative)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertQuote(t, got, "0.0042", domain.VenueV3, "FOO", "WBNB")
	if h.agg.calls != 0 {
		t.Errorf("aggregator called %d times, want 0", h.agg.calls)
	}
}

func TestResolve_V3ComposedViaNative(t *testing.T) {
	h := newHarness(t)
	h.v3.prices[pair{tokenFOO, asset.AddrWBNB}] = decimal.RequireFromString("0.002")
	h.v3.prices[pair{asset.AddrWBNB, asset.AddrUSDT}] = decimal.RequireFromString("600")

	got, err := h.svc.Resolve(context.Background(), tokenFOO.Hex(), domain.QuoteStable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertQuote(t, got, "1.2", domain.VenueV3, "FOO", "WBNB", "USDT")
	want := []pair{
		{tokenFOO, asset.AddrUSDT},
		{tokenFOO, asset.AddrWBNB},
		{asset.AddrWBNB, asset.AddrUSDT},
	}
	if len(h.v3.calls) != len(want) {
		t.Fatalf("v3 calls = %v, want %v", h.v3.calls, want)
	}
	for i := range want {
		if h.v3.calls[i] != want[i] {
			t.Errorf("v3 call %d = %v, want %v", i, h.v3.calls[i], want[i])
		}
	}
	// FOO's resolved decimals reach V3 without another metadata read.
	if wantDecimals := []uint8{9, 9, 18}; !reflect.DeepEqual(h.v3.inDecimals, wantDecimals) {
		t.Errorf("v3 input decimals = %v, want %v", h.v3.inDecimals, wantDecimals)
	}
	if h.meta.calls != 1 {
		t.Errorf("metadata reads = %d, want 1", h.meta.calls)
	}
}

func TestResolve_V3NoCompositionForNative(t *testing.T) {
	h := newHarness(t)
	h.v3.prices[pair{asset.AddrWBNB, asset.AddrUSDT}] = decimal.RequireFromString("600")

	got, err := h.svc.Resolve(context.Background(), tokenFOO.Hex(), domain.QuoteNative)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Resolved() {
		t.Errorf("expected unresolved, got %+v", got)
	}
	if len(h.v3.calls) != 1 {
		t.Errorf("v3 calls = %d, want only the direct attempt", len(h.v3.calls))
	}
}

func TestResolve_WithoutV3(t *testing.T) {
	h := newHarness(t)
	h.v3.prices[pair{tokenFOO, asset.AddrWBNB}] = decimal.RequireFromString("0.002")
	h.agg.price = "0.0021"

	got, err := h.svc.Resolve(context.Background(), tokenFOO.Hex(), domain.QuoteNative, WithoutV3())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertQuote(t, got, "0.0021", domain.VenueAggregator, "FOO", "WBNB")
	if len(h.v3.calls) != 0 {
		t.Errorf("v3 called %d times with WithoutV3", len(h.v3.calls))
	}
}

func TestResolve_AggregatorFallback(t *testing.T) {
	h := newHarness(t)
	h.agg.price = "0.000001234500"

	got, err := h.svc.Resolve(context.Background(), tokenFOO.Hex(), domain.QuoteStable)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertQuote(t, got, "0.000001234500", domain.VenueAggregator, "FOO", "USDT")
	if h.agg.calls != 1 {
		t.Errorf("aggregator calls = %d, want exactly 1", h.agg.calls)
	}
	if h.agg.gotQuote != domain.QuoteStable {
		t.Errorf("aggregator quote = %q, want stable", h.agg.gotQuote)
	}
}

func TestResolve_Unresolved(t *testing.T) {
	h := newHarness(t)

	got, err := h.svc.Resolve(context.Background(), tokenFOO.Hex(), domain.QuoteStable)
	if err != nil {
		t.Fatalf("unresolved must not be an error, got %v", err)
	}
	if got.Resolved() {
		t.Fatalf("expected unresolved, got %+v", got)
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"price":null,"venue":null,"path":null}` {
		t.Errorf("json = %s", raw)
	}
	if h.agg.calls != 1 {
		t.Errorf("aggregator calls = %d, want 1", h.agg.calls)
	}
}

func TestResolve_MetadataDegradation(t *testing.T) {
	h := newHarness(t)
	h.meta.token = nil
	h.v2.path = domain.NewPath(tokenFOO, asset.AddrWBNB)
	h.v2.amountOut = eth(3)

	got, err := h.svc.Resolve(context.Background(), tokenFOO.Hex(), domain.QuoteNative)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.v2.gotDecimals != 18 {
		t.Errorf("decimals = %d, want placeholder 18", h.v2.gotDecimals)
	}
	assertQuote(t, got, "3", domain.VenueV2, "UNKNOWN", "WBNB")
}

func TestNewPriceService_RequiresQuotes(t *testing.T) {
	_, err := NewPriceService(ServiceConfig{}, &fakeMetadata{}, &fakeV2{}, nil, &fakeAggregator{}, nil)
	if !apperror.HasCode(err, apperror.CodeConfigurationError) {
		t.Errorf("expected CodeConfigurationError, got %v", err)
	}
}
