// backend/src/parsers/normalizer.go
package parsers

import (
	"math"
	"strings"

	"github.com/username/tradejournal/src/models"
)

// Rejection reasons, checked in this order.
const (
	ReasonMissingTicker   = "missing ticker"
	ReasonMissingSide     = "missing side"
	ReasonMissingQuantity = "missing quantity"
	ReasonMissingPrice    = "missing price"
	ReasonInvalidDate     = "missing or invalid date"
)

// RowOutcome is the result of normalizing one row: either a trade or the reason
// the row was rejected. A rejection is data, not an error.
type RowOutcome struct {
	Trade  *models.NormalizedTrade
	Reason string
}

// OK reports whether the row produced a trade.
func (o RowOutcome) OK() bool { return o.Trade != nil }

func reject(reason string) RowOutcome { return RowOutcome{Reason: reason} }

// tradeDraft carries the raw, broker-derived values of a row before coercion.
type tradeDraft struct {
	ticker    string
	side      models.Side // empty when the row carries no side signal
	quantity  string
	price     string
	date      string
	assetType models.AssetType
	metadata  map[string]any
}

// build coerces the draft into a trade, rejecting it on the first missing required field.
func (d tradeDraft) build() RowOutcome {
	ticker := strings.ToUpper(strings.TrimSpace(d.ticker))
	if ticker == "" {
		return reject(ReasonMissingTicker)
	}
	if !d.side.Valid() {
		return reject(ReasonMissingSide)
	}
	quantity, ok := parseAmount(d.quantity)
	if !ok {
		return reject(ReasonMissingQuantity)
	}
	price, ok := parseAmount(d.price)
	if !ok {
		return reject(ReasonMissingPrice)
	}
	tradeDate, ok := ParseTradeDate(d.date)
	if !ok {
		return reject(ReasonInvalidDate)
	}

	assetType := d.assetType
	if !assetType.Valid() {
		assetType = models.AssetStock
	}

	return RowOutcome{Trade: &models.NormalizedTrade{
		Ticker:    ticker,
		AssetType: assetType,
		Side:      d.side,
		Quantity:  math.Abs(quantity),
		Price:     math.Abs(price),
		TradeDate: tradeDate,
		Metadata:  d.metadata,
	}}
}

// NormalizeTrade converts one raw row into a trade using the given broker's profile.
func NormalizeTrade(row RawRow, broker Broker) RowOutcome {
	profile := GetProfile(broker)
	draft := profile.derive(profile.extract(row))

	metadata := make(map[string]any, len(draft.metadata)+2)
	for k, v := range draft.metadata {
		metadata[k] = v
	}
	metadata["broker"] = broker.String()
	metadata["original_data"] = copyRow(row)
	draft.metadata = metadata

	return draft.build()
}

func copyRow(row RawRow) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
