// backend/src/parsers/generic.go
package parsers

// genericProfile is the fallback. Its aliases are a superset of the td profile's.
var genericProfile = Profile{
	Broker: BrokerGeneric,
	Aliases: Aliases{
		FieldTicker:   {"Symbol", "symbol", "Ticker", "ticker"},
		FieldSide:     {"Side", "side", "Type", "type", "Buy/Sell", "buy/sell", "Action", "action"},
		FieldQuantity: {"Quantity", "quantity", "Qty", "qty"},
		FieldPrice:    {"Price", "price"},
		FieldDate:     {"Date", "date", "Time", "time"},
	},
	derive: deriveFromSideText,
}
