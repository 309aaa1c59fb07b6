package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UploadRecord is one row of a user's upload history: a single statement file.
type UploadRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Filename   string    `json:"filename"`
	FileSize   int64     `json:"file_size"`
	Broker     string    `json:"broker"`
	TradeCount int       `json:"trade_count"`
	ErrorCount int       `json:"error_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordUpload stores rec, assigning an id when it has none.
func RecordUpload(db Querier, rec *UploadRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = time.Now().UTC()
	_, err := db.Exec(`
	INSERT INTO uploads_history (id, user_id, filename, file_size, broker, trade_count, error_count, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Filename, rec.FileSize, rec.Broker, rec.TradeCount, rec.ErrorCount, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record upload in history: %w", err)
	}
	return nil
}

// GetUploadsByUser lists the user's uploads, newest first.
func GetUploadsByUser(db Querier, userID string) ([]UploadRecord, error) {
	rows, err := db.Query(`
	SELECT id, user_id, filename, file_size, broker, trade_count, error_count, created_at
	FROM uploads_history WHERE user_id = ?
	ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying upload history: %w", err)
	}
	defer rows.Close()

	uploads := []UploadRecord{}
	for rows.Next() {
		var rec UploadRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Filename, &rec.FileSize, &rec.Broker,
			&rec.TradeCount, &rec.ErrorCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning upload history: %w", err)
		}
		uploads = append(uploads, rec)
	}
	return uploads, rows.Err()
}
