// backend/src/processors/trade_processor.go
package processors

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/security/validation"
)

// TradeProcessor turns normalized statement trades into owner-scoped records ready to store.
type TradeProcessor struct{}

func NewTradeProcessor() *TradeProcessor { return &TradeProcessor{} }

// Process assigns the owner and upload, derives the external id and sanitizes free text.
// Order is preserved.
func (p *TradeProcessor) Process(userID, uploadID string, trades []models.NormalizedTrade) []model.Trade {
	processed := make([]model.Trade, 0, len(trades))
	for _, t := range trades {
		// The external id is keyed on the ticker as stored.
		t.Ticker = validation.SanitizeText(t.Ticker)
		processed = append(processed, model.Trade{
			UserID:     userID,
			Ticker:     t.Ticker,
			AssetType:  t.AssetType,
			Side:       t.Side,
			Quantity:   t.Quantity,
			Price:      t.Price,
			TradeDate:  t.TradeDate,
			Metadata:   SanitizeMetadata(t.Metadata),
			ExternalID: ExternalID(t),
			UploadID:   uploadID,
		})
	}
	return processed
}

// ExternalID is the re-import key of a trade: TICKER_<trade_date>_<side>_<quantity>_<price>,
// numbers in their shortest decimal form.
func ExternalID(t models.NormalizedTrade) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s",
		t.Ticker,
		t.TradeDate,
		t.Side,
		decimal.NewFromFloat(t.Quantity).String(),
		decimal.NewFromFloat(t.Price).String(),
	)
}

// originalDataKey holds the statement row as read; it is copied but never rewritten.
const originalDataKey = "original_data"

// SanitizeMetadata returns a sanitized copy of the trade metadata.
func SanitizeMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	clean := make(map[string]any, len(metadata))
	for k, v := range metadata {
		if k == originalDataKey {
			clean[k] = copyValue(v)
			continue
		}
		clean[k] = sanitizeValue(v)
	}
	return clean
}

func copyValue(v any) any {
	switch value := v.(type) {
	case map[string]string:
		c := make(map[string]string, len(value))
		for k, s := range value {
			c[k] = s
		}
		return c
	case map[string]any:
		c := make(map[string]any, len(value))
		for k, s := range value {
			c[k] = copyValue(s)
		}
		return c
	default:
		return v
	}
}

func sanitizeValue(v any) any {
	switch value := v.(type) {
	case string:
		return validation.SanitizeText(value)
	case map[string]string:
		clean := make(map[string]string, len(value))
		for k, s := range value {
			clean[k] = validation.SanitizeText(s)
		}
		return clean
	case map[string]any:
		return SanitizeMetadata(value)
	default:
		return v
	}
}
