// backend/src/parsers/robinhood.go
package parsers

import (
	"strings"

	"github.com/username/tradejournal/src/models"
)

// robinhoodSellCodes are the Trans Code values that open or close a short-side position.
// Any other code with a value is a buy.
var robinhoodSellCodes = map[string]bool{
	"STC": true,
	"STO": true,
}

var robinhoodProfile = Profile{
	Broker: BrokerRobinhood,
	Aliases: Aliases{
		FieldInstrument:  {"Instrument", "instrument"},
		FieldDescription: {"Description", "description"},
		FieldTransCode:   {"Trans Code", "trans code", "TransCode"},
		FieldQuantity:    {"Quantity", "quantity"},
		FieldPrice:       {"Price", "price"},
		FieldDate:        {"Activity Date", "activity date", "ActivityDate"},
	},
	derive: deriveRobinhood,
}

// deriveRobinhood takes the ticker from the first word of the description
// ("NOW 7/11/2025 Call $1,070.00" -> NOW), falling back to the instrument column.
func deriveRobinhood(f extracted) tradeDraft {
	description := f[FieldDescription]
	words := strings.Fields(description)

	ticker := f[FieldInstrument]
	if len(words) > 0 {
		ticker = words[0]
	}

	transCode := strings.TrimSpace(f[FieldTransCode])
	var side models.Side
	if transCode != "" {
		side = models.SideBuy
		if robinhoodSellCodes[strings.ToUpper(transCode)] {
			side = models.SideSell
		}
	}

	assetType := models.AssetStock
	switch {
	case containsWord(words, "Call") || containsWord(words, "Put"):
		assetType = models.AssetOption
	case strings.Contains(description, "/"):
		assetType = models.AssetFuture
	}

	return tradeDraft{
		ticker:    ticker,
		side:      side,
		quantity:  f[FieldQuantity],
		price:     f[FieldPrice],
		date:      f[FieldDate],
		assetType: assetType,
		metadata: map[string]any{
			"trans_code":  transCode,
			"description": description,
		},
	}
}

func containsWord(words []string, word string) bool {
	for _, w := range words {
		if w == word {
			return true
		}
	}
	return false
}
