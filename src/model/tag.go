package model

import (
	"errors"
	"fmt"
	"time"
)

// Tag is a free-text label attached to a trade.
type Tag struct {
	ID        int64     `json:"id"`
	TradeID   int64     `json:"trade_id"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrTagNotFound = errors.New("tag not found")

// AddTag attaches a tag to one of the user's trades.
func AddTag(db Querier, userID string, tradeID int64, text string) (*Tag, error) {
	if _, err := GetTradeByID(db, userID, tradeID); err != nil {
		return nil, err
	}
	tag := &Tag{TradeID: tradeID, Tag: text, CreatedAt: time.Now().UTC()}
	res, err := db.Exec(`INSERT INTO tags (trade_id, tag, created_at) VALUES (?, ?, ?)`, tag.TradeID, tag.Tag, tag.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting tag for trade %d: %w", tradeID, err)
	}
	if tag.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return tag, nil
}

// GetTagsByTrade lists the tags of one of the user's trades in creation order.
func GetTagsByTrade(db Querier, userID string, tradeID int64) ([]Tag, error) {
	return queryTags(db, `
	SELECT t.id, t.trade_id, t.tag, t.created_at
	FROM tags t JOIN trades tr ON tr.id = t.trade_id
	WHERE tr.user_id = ? AND t.trade_id = ?
	ORDER BY t.id`, userID, tradeID)
}

// GetTagsByUser returns every tag of the user's trades grouped by trade id.
func GetTagsByUser(db Querier, userID string) (map[int64][]Tag, error) {
	tags, err := queryTags(db, `
	SELECT t.id, t.trade_id, t.tag, t.created_at
	FROM tags t JOIN trades tr ON tr.id = t.trade_id
	WHERE tr.user_id = ?
	ORDER BY t.id`, userID)
	if err != nil {
		return nil, err
	}
	byTrade := make(map[int64][]Tag)
	for _, tag := range tags {
		byTrade[tag.TradeID] = append(byTrade[tag.TradeID], tag)
	}
	return byTrade, nil
}

// DeleteTag removes a tag if it belongs to one of the user's trades.
func DeleteTag(db Querier, userID string, tagID int64) error {
	res, err := db.Exec(`DELETE FROM tags WHERE id = ? AND trade_id IN (SELECT id FROM trades WHERE user_id = ?)`, tagID, userID)
	if err != nil {
		return fmt.Errorf("error deleting tag %d: %w", tagID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTagNotFound
	}
	return nil
}

func queryTags(db Querier, query string, args ...any) ([]Tag, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying tags: %w", err)
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.TradeID, &tag.Tag, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
