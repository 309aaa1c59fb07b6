// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"io"

	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/models"
)

// UploadFile is one statement file of an upload request.
type UploadFile struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// JournalEntry is a stored trade with its tags and note.
type JournalEntry struct {
	model.Trade
	Tags []model.Tag `json:"tags"`
	Note *model.Note `json:"note,omitempty"`
}

// Journal is everything the dashboard shows for one user.
type Journal struct {
	Trades []JournalEntry `json:"trades"`
}

// Define common service errors
var (
	ErrParsingFailed    = errors.New("csv parsing failed")
	ErrProcessingFailed = errors.New("trade processing failed")
	ErrNoFiles          = errors.New("no files uploaded")
	ErrTooManyFiles     = errors.New("too many files uploaded")
	ErrInvalidInput     = errors.New("invalid input")
)

// UploadService parses statement files and stores their trades.
type UploadService interface {
	// PreviewUpload parses files without storing anything.
	PreviewUpload(ctx context.Context, source string, files []UploadFile) ([]models.FileParseResult, error)
	// ProcessUpload parses files and stores their trades for the user, one upload record per file.
	ProcessUpload(ctx context.Context, userID, source string, files []UploadFile) ([]models.FileUploadResult, error)
	GetUploads(userID string) ([]model.UploadRecord, error)
}

// JournalService reads and edits a user's stored trades, tags and notes.
type JournalService interface {
	GetJournal(userID string) (*Journal, error)
	GetSummary(userID string) (*models.JournalSummary, error)
	GetTrades(userID, assetType string) ([]model.Trade, error)
	FindByExternalID(userID, externalID string) (*model.Trade, error)
	UpdateTrade(userID string, tradeID int64, update model.TradeUpdate) (*model.Trade, error)
	DeleteTrade(userID string, tradeID int64) error
	// DeleteTrades removes the user's trades in scope and returns how many went.
	DeleteTrades(userID string, scope model.DeleteScope, values []string) (int64, error)
	HasTrades(userID string) (bool, error)

	GetTags(userID string, tradeID int64) ([]model.Tag, error)
	AddTag(userID string, tradeID int64, tag string) (*model.Tag, error)
	DeleteTag(userID string, tagID int64) error

	GetNote(userID string, tradeID int64) (*model.Note, error)
	SaveNote(userID string, tradeID int64, text string) (*model.Note, error)
	DeleteNote(userID string, noteID int64) error

	InvalidateUserCache(userID string)
}
