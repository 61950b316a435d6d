package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/tokenprice/internal/apperror"
)

func TestParseQuoteCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    QuoteCurrency
		wantErr bool
	}{
		{"native", QuoteNative, false},
		{"NATIVE", QuoteNative, false},
		{" Stable ", QuoteStable, false},
		{"usd", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuoteCurrency(tt.in)
			if tt.wantErr {
				if !apperror.HasCode(err, apperror.CodeInvalidQuoteCurrency) {
					t.Fatalf("expected CodeInvalidQuoteCurrency, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPriceQuote_MarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		quote PriceQuote
		want  string
	}{
		{
			name:  "unresolved",
			quote: Unresolved,
			want:  `{"price":null,"venue":null,"path":null}`,
		},
		{
			name:  "identity",
			quote: PriceQuote{Price: "1", Venue: VenueIdentity, Path: []string{"WBNB"}},
			want:  `{"price":"1","venue":"IDENTITY","path":["WBNB"]}`,
		},
		{
			name:  "aggregator",
			quote: PriceQuote{Price: "0.00123", Venue: VenueAggregator, Path: []string{"FOO", "USDT"}},
			want:  `{"price":"0.00123","venue":"AGGREGATOR","path":["FOO","USDT"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.quote)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPriceQuote_UnmarshalUnresolved(t *testing.T) {
	var q PriceQuote
	if err := json.Unmarshal([]byte(`{"price":null,"venue":null,"path":null}`), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Resolved() {
		t.Errorf("expected unresolved, got %+v", q)
	}
}

func TestPriceFromTick(t *testing.T) {
	if got := PriceFromTick(0, false); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("PriceFromTick(0) = %v, want 1", got)
	}

	for _, tick := range []int64{-887272, -60000, -1, 1, 23027, 60000, 887272} {
		direct := PriceFromTick(tick, false)
		inverted := PriceFromTick(tick, true)
		if inverted != 1/direct {
			t.Errorf("tick %d: inverted %v != 1/%v", tick, inverted, direct)
		}
	}

	// 1.0001^23027 is roughly 10.
	if got := PriceFromTick(23027, false); math.Abs(got-10) > 0.01 {
		t.Errorf("PriceFromTick(23027) = %v, want ~10", got)
	}
}

func TestPoolState_PriceOf(t *testing.T) {
	token0 := common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")
	token1 := common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c")
	s := PoolState{Token0: token0, Token1: token1, Tick: -60000}

	if got, want := s.PriceOf(token0), PriceFromTick(-60000, false); got != want {
		t.Errorf("token0 price = %v, want %v", got, want)
	}
	if got, want := s.PriceOf(token1), PriceFromTick(-60000, true); got != want {
		t.Errorf("token1 price = %v, want %v", got, want)
	}
}

func TestFeeTiers_Order(t *testing.T) {
	want := []uint32{1, 5, 25, 100}
	if len(FeeTiers) != len(want) {
		t.Fatalf("got %d tiers, want %d", len(FeeTiers), len(want))
	}
	for i, tier := range FeeTiers {
		if tier.BasisPoints() != want[i] {
			t.Errorf("tier %d = %d bps, want %d", i, tier.BasisPoints(), want[i])
		}
	}
	if FeeTier25.String() != "0.25%" {
		t.Errorf("FeeTier25.String() = %q", FeeTier25.String())
	}
}
