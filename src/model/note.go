package model

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Note is the journal entry text of a trade. A trade has at most one note.
type Note struct {
	ID        int64     `json:"id"`
	TradeID   int64     `json:"trade_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ErrNoteNotFound = errors.New("note not found")

// AddNote creates the note of one of the user's trades.
func AddNote(db Querier, userID string, tradeID int64, text string) (*Note, error) {
	if _, err := GetTradeByID(db, userID, tradeID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	note := &Note{TradeID: tradeID, Text: text, CreatedAt: now, UpdatedAt: now}
	res, err := db.Exec(`INSERT INTO notes (trade_id, text, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		note.TradeID, note.Text, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting note for trade %d: %w", tradeID, err)
	}
	if note.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote replaces the text of a note owned by the user.
func UpdateNote(db Querier, userID string, noteID int64, text string) error {
	res, err := db.Exec(`
	UPDATE notes SET text = ?, updated_at = ?
	WHERE id = ? AND trade_id IN (SELECT id FROM trades WHERE user_id = ?)`,
		text, time.Now().UTC(), noteID, userID)
	if err != nil {
		return fmt.Errorf("error updating note %d: %w", noteID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// GetNoteByTrade returns the note of one of the user's trades.
func GetNoteByTrade(db Querier, userID string, tradeID int64) (*Note, error) {
	var note Note
	err := db.QueryRow(`
	SELECT n.id, n.trade_id, n.text, n.created_at, n.updated_at
	FROM notes n JOIN trades tr ON tr.id = n.trade_id
	WHERE tr.user_id = ? AND n.trade_id = ?`, userID, tradeID).
		Scan(&note.ID, &note.TradeID, &note.Text, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("error querying note for trade %d: %w", tradeID, err)
	}
	return &note, nil
}

// GetNotesByUser returns the notes of the user's trades keyed by trade id.
func GetNotesByUser(db Querier, userID string) (map[int64]Note, error) {
	rows, err := db.Query(`
	SELECT n.id, n.trade_id, n.text, n.created_at, n.updated_at
	FROM notes n JOIN trades tr ON tr.id = n.trade_id
	WHERE tr.user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying notes: %w", err)
	}
	defer rows.Close()

	notes := make(map[int64]Note)
	for rows.Next() {
		var note Note
		if err := rows.Scan(&note.ID, &note.TradeID, &note.Text, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning note: %w", err)
		}
		notes[note.TradeID] = note
	}
	return notes, rows.Err()
}

// DeleteNote removes a note owned by the user.
func DeleteNote(db Querier, userID string, noteID int64) error {
	res, err := db.Exec(`DELETE FROM notes WHERE id = ? AND trade_id IN (SELECT id FROM trades WHERE user_id = ?)`, noteID, userID)
	if err != nil {
		return fmt.Errorf("error deleting note %d: %w", noteID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoteNotFound
	}
	return nil
}
