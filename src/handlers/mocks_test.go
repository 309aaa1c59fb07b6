package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/services"
)

type mockUploadService struct {
	mock.Mock
}

func (m *mockUploadService) PreviewUpload(ctx context.Context, source string, files []services.UploadFile) ([]models.FileParseResult, error) {
	args := m.Called(ctx, source, files)
	results, _ := args.Get(0).([]models.FileParseResult)
	return results, args.Error(1)
}

func (m *mockUploadService) ProcessUpload(ctx context.Context, userID, source string, files []services.UploadFile) ([]models.FileUploadResult, error) {
	args := m.Called(ctx, userID, source, files)
	results, _ := args.Get(0).([]models.FileUploadResult)
	return results, args.Error(1)
}

func (m *mockUploadService) GetUploads(userID string) ([]model.UploadRecord, error) {
	args := m.Called(userID)
	records, _ := args.Get(0).([]model.UploadRecord)
	return records, args.Error(1)
}

type mockJournalService struct {
	mock.Mock
}

func (m *mockJournalService) GetJournal(userID string) (*services.Journal, error) {
	args := m.Called(userID)
	journal, _ := args.Get(0).(*services.Journal)
	return journal, args.Error(1)
}

func (m *mockJournalService) GetSummary(userID string) (*models.JournalSummary, error) {
	args := m.Called(userID)
	summary, _ := args.Get(0).(*models.JournalSummary)
	return summary, args.Error(1)
}

func (m *mockJournalService) GetTrades(userID, assetType string) ([]model.Trade, error) {
	args := m.Called(userID, assetType)
	trades, _ := args.Get(0).([]model.Trade)
	return trades, args.Error(1)
}

func (m *mockJournalService) FindByExternalID(userID, externalID string) (*model.Trade, error) {
	args := m.Called(userID, externalID)
	trade, _ := args.Get(0).(*model.Trade)
	return trade, args.Error(1)
}

func (m *mockJournalService) UpdateTrade(userID string, tradeID int64, update model.TradeUpdate) (*model.Trade, error) {
	args := m.Called(userID, tradeID, update)
	trade, _ := args.Get(0).(*model.Trade)
	return trade, args.Error(1)
}

func (m *mockJournalService) DeleteTrade(userID string, tradeID int64) error {
	return m.Called(userID, tradeID).Error(0)
}

func (m *mockJournalService) DeleteTrades(userID string, scope model.DeleteScope, values []string) (int64, error) {
	args := m.Called(userID, scope, values)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockJournalService) HasTrades(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockJournalService) GetTags(userID string, tradeID int64) ([]model.Tag, error) {
	args := m.Called(userID, tradeID)
	tags, _ := args.Get(0).([]model.Tag)
	return tags, args.Error(1)
}

func (m *mockJournalService) AddTag(userID string, tradeID int64, tag string) (*model.Tag, error) {
	args := m.Called(userID, tradeID, tag)
	created, _ := args.Get(0).(*model.Tag)
	return created, args.Error(1)
}

func (m *mockJournalService) DeleteTag(userID string, tagID int64) error {
	return m.Called(userID, tagID).Error(0)
}

func (m *mockJournalService) GetNote(userID string, tradeID int64) (*model.Note, error) {
	args := m.Called(userID, tradeID)
	note, _ := args.Get(0).(*model.Note)
	return note, args.Error(1)
}

func (m *mockJournalService) SaveNote(userID string, tradeID int64, text string) (*model.Note, error) {
	args := m.Called(userID, tradeID, text)
	note, _ := args.Get(0).(*model.Note)
	return note, args.Error(1)
}

func (m *mockJournalService) DeleteNote(userID string, noteID int64) error {
	return m.Called(userID, noteID).Error(0)
}

func (m *mockJournalService) InvalidateUserCache(userID string) {
	m.Called(userID)
}
