// backend/src/services/journal_service.go
package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/patrickmn/go-cache"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/parsers"
	"github.com/username/tradejournal/src/processors"
	"github.com/username/tradejournal/src/security/validation"
)

type journalServiceImpl struct {
	db               *sql.DB
	summaryProcessor processors.SummaryProcessor
	journalCache     *cache.Cache
}

// NewJournalService creates the journal service.
func NewJournalService(db *sql.DB, summaryProcessor processors.SummaryProcessor, journalCache *cache.Cache) JournalService {
	return &journalServiceImpl{
		db:               db,
		summaryProcessor: summaryProcessor,
		journalCache:     journalCache,
	}
}

func (s *journalServiceImpl) GetJournal(userID string) (*Journal, error) {
	cacheKey := fmt.Sprintf(ckJournal, userID)
	if cached, found := s.journalCache.Get(cacheKey); found {
		if journal, ok := cached.(*Journal); ok {
			logger.L.Debug("Cache HIT for journal", "userID", userID)
			return journal, nil
		}
	}
	logger.L.Debug("Cache MISS for journal", "userID", userID)

	// Queries run one after another: the pool holds a single connection.
	trades, err := model.GetTradesByUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	tags, err := model.GetTagsByUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	notes, err := model.GetNotesByUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	journal := &Journal{Trades: make([]JournalEntry, 0, len(trades))}
	for _, t := range trades {
		entry := JournalEntry{Trade: t, Tags: tags[t.ID]}
		if entry.Tags == nil {
			entry.Tags = []model.Tag{}
		}
		if note, ok := notes[t.ID]; ok {
			n := note
			entry.Note = &n
		}
		journal.Trades = append(journal.Trades, entry)
	}

	s.journalCache.Set(cacheKey, journal, cache.DefaultExpiration)
	return journal, nil
}

func (s *journalServiceImpl) GetSummary(userID string) (*models.JournalSummary, error) {
	cacheKey := fmt.Sprintf(ckSummary, userID)
	if cached, found := s.journalCache.Get(cacheKey); found {
		if summary, ok := cached.(*models.JournalSummary); ok {
			return summary, nil
		}
	}

	trades, err := model.GetTradesByUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	summary := s.summaryProcessor.Summarize(trades)
	s.journalCache.Set(cacheKey, &summary, cache.DefaultExpiration)
	return &summary, nil
}

func (s *journalServiceImpl) GetTrades(userID, assetType string) ([]model.Trade, error) {
	if assetType == "" {
		return model.GetTradesByUser(s.db, userID)
	}
	at := models.AssetType(assetType)
	if !at.Valid() {
		return nil, fmt.Errorf("%w: unknown asset type %q", ErrInvalidInput, assetType)
	}
	return model.GetTradesByAssetType(s.db, userID, at)
}

func (s *journalServiceImpl) FindByExternalID(userID, externalID string) (*model.Trade, error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: external id is required", ErrInvalidInput)
	}
	return model.FindTradeByExternalID(s.db, userID, externalID)
}

func (s *journalServiceImpl) UpdateTrade(userID string, tradeID int64, update model.TradeUpdate) (*model.Trade, error) {
	if update.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if err := normalizeTradeUpdate(&update); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := model.UpdateTrade(s.db, userID, tradeID, update); err != nil {
		return nil, err
	}
	s.InvalidateUserCache(userID)
	return model.GetTradeByID(s.db, userID, tradeID)
}

// normalizeTradeUpdate validates the edited fields in place with the same rules the parser applies.
func normalizeTradeUpdate(u *model.TradeUpdate) error {
	if u.Ticker != nil {
		ticker, err := validation.ValidateTicker(*u.Ticker)
		if err != nil {
			return err
		}
		ticker = validation.SanitizeText(ticker)
		u.Ticker = &ticker
	}
	if u.AssetType != nil && !u.AssetType.Valid() {
		return fmt.Errorf("%w: unknown asset type %q", validation.ErrValidationFailed, *u.AssetType)
	}
	if u.Side != nil && !u.Side.Valid() {
		return fmt.Errorf("%w: unknown side %q", validation.ErrValidationFailed, *u.Side)
	}
	if u.Quantity != nil {
		if err := validation.ValidatePositiveAmount(*u.Quantity, "quantity"); err != nil {
			return err
		}
	}
	if u.Price != nil {
		if err := validation.ValidatePositiveAmount(*u.Price, "price"); err != nil {
			return err
		}
	}
	if u.TradeDate != nil {
		date, ok := parsers.ParseTradeDate(*u.TradeDate)
		if !ok {
			return fmt.Errorf("%w: trade date %q is not a recognized date", validation.ErrValidationFailed, *u.TradeDate)
		}
		u.TradeDate = &date
	}
	if u.Metadata != nil {
		u.Metadata = processors.SanitizeMetadata(u.Metadata)
	}
	return nil
}

func (s *journalServiceImpl) DeleteTrade(userID string, tradeID int64) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := model.DeleteTrade(dbTx, userID, tradeID); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing trade deletion: %w", err)
	}
	s.InvalidateUserCache(userID)
	return nil
}

func (s *journalServiceImpl) DeleteTrades(userID string, scope model.DeleteScope, values []string) (int64, error) {
	n, err := model.DeleteTrades(s.db, userID, scope, values)
	if err != nil {
		if errors.Is(err, model.ErrInvalidDeleteScope) {
			return 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return 0, err
	}
	s.InvalidateUserCache(userID)
	logger.L.Info("Deleted trades", "userID", userID, "scope", scope, "rowsAffected", n)
	return n, nil
}

func (s *journalServiceImpl) HasTrades(userID string) (bool, error) {
	count, err := model.CountTradesByUser(s.db, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *journalServiceImpl) GetTags(userID string, tradeID int64) ([]model.Tag, error) {
	if _, err := model.GetTradeByID(s.db, userID, tradeID); err != nil {
		return nil, err
	}
	return model.GetTagsByTrade(s.db, userID, tradeID)
}

func (s *journalServiceImpl) AddTag(userID string, tradeID int64, tag string) (*model.Tag, error) {
	clean, err := validation.ValidateTag(tag, strconv.FormatInt(tradeID, 10))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	created, err := model.AddTag(s.db, userID, tradeID, clean)
	if err != nil {
		return nil, err
	}
	s.InvalidateUserCache(userID)
	return created, nil
}

func (s *journalServiceImpl) DeleteTag(userID string, tagID int64) error {
	if err := model.DeleteTag(s.db, userID, tagID); err != nil {
		return err
	}
	s.InvalidateUserCache(userID)
	return nil
}

func (s *journalServiceImpl) GetNote(userID string, tradeID int64) (*model.Note, error) {
	return model.GetNoteByTrade(s.db, userID, tradeID)
}

// SaveNote creates the trade's note or replaces its text.
func (s *journalServiceImpl) SaveNote(userID string, tradeID int64, text string) (*model.Note, error) {
	clean, err := validation.ValidateNote(text, strconv.FormatInt(tradeID, 10))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	existing, err := model.GetNoteByTrade(s.db, userID, tradeID)
	switch {
	case errors.Is(err, model.ErrNoteNotFound):
		existing = nil
	case err != nil:
		return nil, err
	}

	if existing == nil {
		note, err := model.AddNote(s.db, userID, tradeID, clean)
		if err != nil {
			return nil, err
		}
		s.InvalidateUserCache(userID)
		return note, nil
	}

	if err := model.UpdateNote(s.db, userID, existing.ID, clean); err != nil {
		return nil, err
	}
	s.InvalidateUserCache(userID)
	return model.GetNoteByTrade(s.db, userID, tradeID)
}

func (s *journalServiceImpl) DeleteNote(userID string, noteID int64) error {
	if err := model.DeleteNote(s.db, userID, noteID); err != nil {
		return err
	}
	s.InvalidateUserCache(userID)
	return nil
}

func (s *journalServiceImpl) InvalidateUserCache(userID string) {
	invalidateUserCache(s.journalCache, userID)
	logger.L.Debug("Invalidated journal cache", "userID", userID)
}
