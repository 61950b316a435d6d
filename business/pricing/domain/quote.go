// Package domain contains the core domain types for the pricing context.
package domain

import (
	"encoding/json"
	"strings"

	"github.com/fd1az/tokenprice/internal/apperror"
)

// QuoteCurrency selects the token a price is expressed in.
type QuoteCurrency string

const (
	QuoteNative QuoteCurrency = "native" // wrapped native gas token (WBNB)
	QuoteStable QuoteCurrency = "stable" // pegged stable token (USDT)
)

// ParseQuoteCurrency parses s case-insensitively.
func ParseQuoteCurrency(s string) (QuoteCurrency, error) {
	switch q := QuoteCurrency(strings.ToLower(strings.TrimSpace(s))); q {
	case QuoteNative, QuoteStable:
		return q, nil
	default:
		return "", apperror.Validation(apperror.CodeInvalidQuoteCurrency, s)
	}
}

// String returns the canonical literal.
func (q QuoteCurrency) String() string {
	return string(q)
}

// Venue identifies which tier produced a price.
type Venue string

const (
	VenueV2         Venue = "V2"
	VenueV3         Venue = "V3"
	VenueAggregator Venue = "AGGREGATOR"
	VenueIdentity   Venue = "IDENTITY"
)

// PriceQuote is the outcome of a resolution. The zero value is the
// Unresolved sentinel.
type PriceQuote struct {
	Price string
	Venue Venue
	Path  []string // token symbols, input first
}

// Unresolved is returned when every tier failed.
var Unresolved = PriceQuote{}

// Resolved reports whether q carries a price.
func (q PriceQuote) Resolved() bool {
	return q.Price != ""
}

type priceQuoteJSON struct {
	Price *string  `json:"price"`
	Venue *Venue   `json:"venue"`
	Path  []string `json:"path"`
}

// MarshalJSON renders Unresolved as {"price":null,"venue":null,"path":null}.
func (q PriceQuote) MarshalJSON() ([]byte, error) {
	if !q.Resolved() {
		return json.Marshal(priceQuoteJSON{})
	}
	return json.Marshal(priceQuoteJSON{
		Price: &q.Price,
		Venue: &q.Venue,
		Path:  q.Path,
	})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (q *PriceQuote) UnmarshalJSON(data []byte) error {
	var raw priceQuoteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*q = PriceQuote{Path: raw.Path}
	if raw.Price != nil {
		q.Price = *raw.Price
	}
	if raw.Venue != nil {
		q.Venue = *raw.Venue
	}
	return nil
}
