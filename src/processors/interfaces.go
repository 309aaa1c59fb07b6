package processors

import (
	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/models"
)

// SummaryProcessor defines the interface for computing dashboard figures from stored trades.
type SummaryProcessor interface {
	Summarize(trades []model.Trade) models.JournalSummary
}
