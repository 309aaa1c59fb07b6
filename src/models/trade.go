// backend/src/models/trade.go
package models

// AssetType classifies the instrument of a normalized trade.
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetOption AssetType = "option"
	AssetFuture AssetType = "future"
)

// Valid reports whether the asset type is one of the known values.
func (a AssetType) Valid() bool {
	switch a {
	case AssetStock, AssetOption, AssetFuture:
		return true
	}
	return false
}

// Side is the direction of a trade. Quantities are always positive; direction lives here.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether the side is one of the known values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// NormalizedTrade is the broker-independent representation of one statement row.
// Every field except Metadata is guaranteed to be populated by the normalizer.
type NormalizedTrade struct {
	Ticker    string         `json:"ticker"`
	AssetType AssetType      `json:"asset_type"`
	Side      Side           `json:"side"`
	Quantity  float64        `json:"quantity"`   // always > 0
	Price     float64        `json:"price"`      // always > 0
	TradeDate string         `json:"trade_date"` // ISO-8601, UTC
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RowError describes a data row that could not be turned into a trade.
// Message is the user-facing text; Reason is the first missing field.
type RowError struct {
	Row     int    `json:"row"` // 1-indexed data row position
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ParseResult is the outcome of one parse call. Trades and Errors are independent:
// a file can yield both.
type ParseResult struct {
	Broker    string            `json:"broker,omitempty"`
	Trades    []NormalizedTrade `json:"trades"`
	Errors    []string          `json:"errors"`
	RowErrors []RowError        `json:"row_errors,omitempty"`
}

// NewParseResult returns a result with non-nil, empty lists so it encodes as [] not null.
func NewParseResult() ParseResult {
	return ParseResult{
		Trades: []NormalizedTrade{},
		Errors: []string{},
	}
}
