// backend/src/processors/summary_processor.go
package processors

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/models"
)

type summaryProcessorImpl struct{}

func NewSummaryProcessor() SummaryProcessor {
	return &summaryProcessorImpl{}
}

type tickerTotals struct {
	trades                       int
	boughtQty, soldQty           decimal.Decimal
	boughtNotional, soldNotional decimal.Decimal
}

func (p *summaryProcessorImpl) Summarize(trades []model.Trade) models.JournalSummary {
	summary := models.JournalSummary{
		TotalTrades: len(trades),
		ByAssetType: make(map[models.AssetType]int),
		BySide:      make(map[models.Side]int),
		Tickers:     []models.TickerSummary{},
	}

	totals := make(map[string]*tickerTotals)
	for _, t := range trades {
		summary.ByAssetType[t.AssetType]++
		summary.BySide[t.Side]++

		if summary.FirstTradeDate == "" || t.TradeDate < summary.FirstTradeDate {
			summary.FirstTradeDate = t.TradeDate
		}
		if t.TradeDate > summary.LastTradeDate {
			summary.LastTradeDate = t.TradeDate
		}

		tt, ok := totals[t.Ticker]
		if !ok {
			tt = &tickerTotals{}
			totals[t.Ticker] = tt
		}
		tt.trades++

		qty := decimal.NewFromFloat(t.Quantity)
		notional := qty.Mul(decimal.NewFromFloat(t.Price))
		switch t.Side {
		case models.SideBuy:
			tt.boughtQty = tt.boughtQty.Add(qty)
			tt.boughtNotional = tt.boughtNotional.Add(notional)
		case models.SideSell:
			tt.soldQty = tt.soldQty.Add(qty)
			tt.soldNotional = tt.soldNotional.Add(notional)
		}
	}

	for ticker, tt := range totals {
		summary.Tickers = append(summary.Tickers, models.TickerSummary{
			Ticker:         ticker,
			Trades:         tt.trades,
			BoughtQuantity: tt.boughtQty.InexactFloat64(),
			SoldQuantity:   tt.soldQty.InexactFloat64(),
			NetQuantity:    tt.boughtQty.Sub(tt.soldQty).InexactFloat64(),
			BoughtNotional: tt.boughtNotional.Round(2).InexactFloat64(),
			SoldNotional:   tt.soldNotional.Round(2).InexactFloat64(),
			AvgBuyPrice:    averagePrice(tt.boughtNotional, tt.boughtQty),
			AvgSellPrice:   averagePrice(tt.soldNotional, tt.soldQty),
		})
	}
	sort.Slice(summary.Tickers, func(i, j int) bool {
		return summary.Tickers[i].Ticker < summary.Tickers[j].Ticker
	})

	return summary
}

func averagePrice(notional, qty decimal.Decimal) float64 {
	if qty.IsZero() {
		return 0
	}
	return notional.DivRound(qty, 4).InexactFloat64()
}
