package models

// TickerSummary aggregates one ticker's trades for the dashboard.
type TickerSummary struct {
	Ticker         string  `json:"ticker"`
	Trades         int     `json:"trades"`
	BoughtQuantity float64 `json:"bought_quantity"`
	SoldQuantity   float64 `json:"sold_quantity"`
	NetQuantity    float64 `json:"net_quantity"`
	BoughtNotional float64 `json:"bought_notional"`
	SoldNotional   float64 `json:"sold_notional"`
	AvgBuyPrice    float64 `json:"avg_buy_price"`
	AvgSellPrice   float64 `json:"avg_sell_price"`
}

// JournalSummary holds the dashboard figures for one user's journal.
type JournalSummary struct {
	TotalTrades    int               `json:"total_trades"`
	ByAssetType    map[AssetType]int `json:"by_asset_type"`
	BySide         map[Side]int      `json:"by_side"`
	Tickers        []TickerSummary   `json:"tickers"`
	FirstTradeDate string            `json:"first_trade_date,omitempty"`
	LastTradeDate  string            `json:"last_trade_date,omitempty"`
}

// FileParseResult is the parse outcome of one uploaded file.
type FileParseResult struct {
	Filename string `json:"filename"`
	ParseResult
}

// FileUploadResult is the outcome of storing one uploaded file.
type FileUploadResult struct {
	Filename  string     `json:"filename"`
	Broker    string     `json:"broker"`
	UploadID  string     `json:"upload_id"`
	Trades    int        `json:"trades"`
	Inserted  int        `json:"inserted"`
	Errors    []string   `json:"errors"`
	RowErrors []RowError `json:"row_errors,omitempty"`
}
