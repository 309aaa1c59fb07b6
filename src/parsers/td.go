// backend/src/parsers/td.go
package parsers

import (
	"strings"

	"github.com/username/tradejournal/src/models"
)

var tdProfile = Profile{
	Broker: BrokerTD,
	Aliases: Aliases{
		FieldTicker:   {"Symbol", "symbol"},
		FieldSide:     {"Buy/Sell", "buy/sell"},
		FieldQuantity: {"Quantity", "quantity"},
		FieldPrice:    {"Price", "price"},
		FieldDate:     {"Date", "date"},
	},
	derive: deriveFromSideText,
}

// deriveFromSideText reads fixed columns; any side text mentioning "buy" is a buy,
// any other non-empty side text is a sell. Asset type is always stock.
func deriveFromSideText(f extracted) tradeDraft {
	var side models.Side
	if text := strings.TrimSpace(f[FieldSide]); text != "" {
		side = models.SideSell
		if strings.Contains(strings.ToLower(text), "buy") {
			side = models.SideBuy
		}
	}
	return tradeDraft{
		ticker:    f[FieldTicker],
		side:      side,
		quantity:  f[FieldQuantity],
		price:     f[FieldPrice],
		date:      f[FieldDate],
		assetType: models.AssetStock,
	}
}
