package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/tradejournal/src/models"
)

// Trade is a persisted, owner-scoped normalized trade.
type Trade struct {
	ID         int64            `json:"id"`
	UserID     string           `json:"user_id"`
	Ticker     string           `json:"ticker"`
	AssetType  models.AssetType `json:"asset_type"`
	Side       models.Side      `json:"side"`
	Quantity   float64          `json:"quantity"`
	Price      float64          `json:"price"`
	TradeDate  string           `json:"trade_date"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
	ExternalID string           `json:"external_id,omitempty"`
	UploadID   string           `json:"upload_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	ModifiedAt time.Time        `json:"modified_at"`
}

// TradeUpdate is a partial update; nil fields are left unchanged.
type TradeUpdate struct {
	Ticker    *string           `json:"ticker,omitempty"`
	AssetType *models.AssetType `json:"asset_type,omitempty"`
	Side      *models.Side      `json:"side,omitempty"`
	Quantity  *float64          `json:"quantity,omitempty"`
	Price     *float64          `json:"price,omitempty"`
	TradeDate *string           `json:"trade_date,omitempty"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u TradeUpdate) Empty() bool {
	return u.Ticker == nil && u.AssetType == nil && u.Side == nil && u.Quantity == nil &&
		u.Price == nil && u.TradeDate == nil && u.Metadata == nil
}

// ErrTradeNotFound is returned when a trade does not exist or belongs to another user.
var ErrTradeNotFound = errors.New("trade not found")

const tradeColumns = `id, user_id, ticker, asset_type, side, quantity, price, trade_date, metadata, external_id, upload_id, created_at, modified_at`

// AddTrade inserts t and sets its ID and timestamps.
func AddTrade(db Querier, t *Trade) error {
	metadata, err := encodeMetadata(t.Metadata)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.ModifiedAt = now

	res, err := db.Exec(`
	INSERT INTO trades (user_id, ticker, asset_type, side, quantity, price, trade_date, metadata, external_id, upload_id, created_at, modified_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Ticker, t.AssetType, t.Side, t.Quantity, t.Price, t.TradeDate, metadata,
		t.ExternalID, t.UploadID, t.CreatedAt, t.ModifiedAt)
	if err != nil {
		return fmt.Errorf("error inserting trade (ticker: %s): %w", t.Ticker, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// GetTradesByUser returns the user's trades, most recent trade_date first.
func GetTradesByUser(db Querier, userID string) ([]Trade, error) {
	return queryTrades(db, `SELECT `+tradeColumns+` FROM trades WHERE user_id = ? ORDER BY trade_date DESC, id DESC`, userID)
}

// GetTradesByAssetType returns the user's trades of one asset type, most recent first.
func GetTradesByAssetType(db Querier, userID string, assetType models.AssetType) ([]Trade, error) {
	return queryTrades(db, `SELECT `+tradeColumns+` FROM trades WHERE user_id = ? AND asset_type = ? ORDER BY trade_date DESC, id DESC`, userID, assetType)
}

func GetTradeByID(db Querier, userID string, id int64) (*Trade, error) {
	trades, err := queryTrades(db, `SELECT `+tradeColumns+` FROM trades WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, ErrTradeNotFound
	}
	return &trades[0], nil
}

// FindTradeByExternalID returns the first stored trade carrying the external id.
func FindTradeByExternalID(db Querier, userID, externalID string) (*Trade, error) {
	trades, err := queryTrades(db, `SELECT `+tradeColumns+` FROM trades WHERE user_id = ? AND external_id = ? ORDER BY id LIMIT 1`, userID, externalID)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, ErrTradeNotFound
	}
	return &trades[0], nil
}

// UpdateTrade applies the non-nil fields of u and bumps modified_at.
func UpdateTrade(db Querier, userID string, id int64, u TradeUpdate) error {
	sets := []string{"modified_at = ?"}
	args := []any{time.Now().UTC()}

	if u.Ticker != nil {
		sets = append(sets, "ticker = ?")
		args = append(args, *u.Ticker)
	}
	if u.AssetType != nil {
		sets = append(sets, "asset_type = ?")
		args = append(args, *u.AssetType)
	}
	if u.Side != nil {
		sets = append(sets, "side = ?")
		args = append(args, *u.Side)
	}
	if u.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *u.Quantity)
	}
	if u.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *u.Price)
	}
	if u.TradeDate != nil {
		sets = append(sets, "trade_date = ?")
		args = append(args, *u.TradeDate)
	}
	if u.Metadata != nil {
		metadata, err := encodeMetadata(u.Metadata)
		if err != nil {
			return err
		}
		sets = append(sets, "metadata = ?")
		args = append(args, metadata)
	}

	args = append(args, userID, id)
	res, err := db.Exec(`UPDATE trades SET `+strings.Join(sets, ", ")+` WHERE user_id = ? AND id = ?`, args...)
	if err != nil {
		return fmt.Errorf("error updating trade %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTradeNotFound
	}
	return nil
}

// DeleteTrade removes a trade together with its tags and notes.
func DeleteTrade(db Querier, userID string, id int64) error {
	if _, err := GetTradeByID(db, userID, id); err != nil {
		return err
	}
	if _, err := db.Exec(`DELETE FROM tags WHERE trade_id = ?`, id); err != nil {
		return fmt.Errorf("error deleting tags for trade %d: %w", id, err)
	}
	if _, err := db.Exec(`DELETE FROM notes WHERE trade_id = ?`, id); err != nil {
		return fmt.Errorf("error deleting notes for trade %d: %w", id, err)
	}
	if _, err := db.Exec(`DELETE FROM trades WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return fmt.Errorf("error deleting trade %d: %w", id, err)
	}
	return nil
}

func queryTrades(db Querier, query string, args ...any) ([]Trade, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying trades: %w", err)
	}
	defer rows.Close()

	trades := []Trade{}
	for rows.Next() {
		var t Trade
		var metadata string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Ticker, &t.AssetType, &t.Side, &t.Quantity, &t.Price,
			&t.TradeDate, &metadata, &t.ExternalID, &t.UploadID, &t.CreatedAt, &t.ModifiedAt); err != nil {
			return nil, fmt.Errorf("error scanning trade: %w", err)
		}
		if t.Metadata, err = decodeMetadata(metadata); err != nil {
			return nil, fmt.Errorf("error decoding metadata for trade %d: %w", t.ID, err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func encodeMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("error encoding trade metadata: %w", err)
	}
	return string(b), nil
}

func decodeMetadata(s string) (map[string]any, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteScope selects which of a user's trades DeleteTrades removes.
type DeleteScope string

const (
	DeleteAll    DeleteScope = "all"
	DeleteBroker DeleteScope = "broker" // values: broker names
	DeleteUpload DeleteScope = "upload" // values: upload ids
	DeleteYear   DeleteScope = "year"   // values: one four-digit year
)

// ErrInvalidDeleteScope is returned for an unknown scope or unusable values.
var ErrInvalidDeleteScope = errors.New("invalid delete scope")

// DeleteTrades removes the user's trades matching scope and returns how many went.
// Tags and notes follow through the foreign keys.
func DeleteTrades(db Querier, userID string, scope DeleteScope, values []string) (int64, error) {
	query := `DELETE FROM trades WHERE user_id = ?`
	args := []any{userID}

	switch scope {
	case DeleteAll:
	case DeleteBroker, DeleteUpload:
		if len(values) == 0 {
			return 0, fmt.Errorf("%w: %s needs at least one value", ErrInvalidDeleteScope, scope)
		}
		column := `upload_id`
		if scope == DeleteBroker {
			column = `json_extract(metadata, '$.broker')`
		}
		query += ` AND ` + column + ` IN (?` + strings.Repeat(",?", len(values)-1) + `)`
		for _, v := range values {
			args = append(args, v)
		}
	case DeleteYear:
		if len(values) != 1 || len(values[0]) != 4 {
			return 0, fmt.Errorf("%w: year needs exactly one four-digit value", ErrInvalidDeleteScope)
		}
		query += ` AND substr(trade_date, 1, 4) = ?`
		args = append(args, values[0])
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDeleteScope, scope)
	}

	res, err := db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting trades (%s): %w", scope, err)
	}
	return res.RowsAffected()
}

// CountTradesByUser returns how many trades the user has stored.
func CountTradesByUser(db Querier, userID string) (int, error) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM trades WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting trades: %w", err)
	}
	return count, nil
}
