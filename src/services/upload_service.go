// backend/src/services/upload_service.go
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/parsers"
	"github.com/username/tradejournal/src/processors"
)

type uploadServiceImpl struct {
	db             *sql.DB
	tradeProcessor *processors.TradeProcessor
	journalCache   *cache.Cache
	locks          *ownerLocks
	maxFiles       int
}

// NewUploadService creates the upload service. maxFiles <= 0 means no per-request limit.
func NewUploadService(db *sql.DB, tradeProcessor *processors.TradeProcessor, journalCache *cache.Cache, maxFiles int) UploadService {
	return &uploadServiceImpl{
		db:             db,
		tradeProcessor: tradeProcessor,
		journalCache:   journalCache,
		locks:          &ownerLocks{},
		maxFiles:       maxFiles,
	}
}

func (s *uploadServiceImpl) PreviewUpload(ctx context.Context, source string, files []UploadFile) ([]models.FileParseResult, error) {
	parsed, err := s.parseFiles(ctx, source, files)
	if err != nil {
		return nil, err
	}
	previews := make([]models.FileParseResult, len(parsed))
	for i, result := range parsed {
		previews[i] = models.FileParseResult{Filename: files[i].Filename, ParseResult: result}
	}
	return previews, nil
}

func (s *uploadServiceImpl) ProcessUpload(ctx context.Context, userID, source string, files []UploadFile) ([]models.FileUploadResult, error) {
	log := logger.FromContext(ctx)
	startTime := time.Now()
	log.Info("ProcessUpload START", "userID", userID, "source", source, "files", len(files))

	parsed, err := s.parseFiles(ctx, source, files)
	if err != nil {
		return nil, err
	}

	mu := s.locks.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	results := make([]models.FileUploadResult, 0, len(parsed))
	totalInserted := 0
	for i, result := range parsed {
		file := files[i]
		uploadID := uuid.NewString()

		trades := s.tradeProcessor.Process(userID, uploadID, result.Trades)
		for j := range trades {
			if err := model.AddTrade(dbTx, &trades[j]); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrProcessingFailed, file.Filename, err)
			}
		}

		broker := result.Broker
		if broker == "" {
			broker = "unknown"
		}
		record := &model.UploadRecord{
			ID:         uploadID,
			UserID:     userID,
			Filename:   file.Filename,
			FileSize:   file.Size,
			Broker:     broker,
			TradeCount: len(trades),
			ErrorCount: len(result.Errors),
		}
		if err := model.RecordUpload(dbTx, record); err != nil {
			return nil, err
		}

		totalInserted += len(trades)
		results = append(results, models.FileUploadResult{
			Filename:  file.Filename,
			Broker:    broker,
			UploadID:  uploadID,
			Trades:    len(result.Trades),
			Inserted:  len(trades),
			Errors:    result.Errors,
			RowErrors: result.RowErrors,
		})
		log.Debug("Statement stored", "userID", userID, "filename", file.Filename, "broker", broker, "trades", len(trades), "errors", len(result.Errors))
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing trades: %w", err)
	}
	invalidateUserCache(s.journalCache, userID)

	log.Info("ProcessUpload END", "userID", userID, "inserted", totalInserted, "duration", time.Since(startTime).String())
	return results, nil
}

func (s *uploadServiceImpl) GetUploads(userID string) ([]model.UploadRecord, error) {
	return model.GetUploadsByUser(s.db, userID)
}

// parseFiles parses every file concurrently and returns the results in file order.
func (s *uploadServiceImpl) parseFiles(ctx context.Context, source string, files []UploadFile) ([]models.ParseResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if s.maxFiles > 0 && len(files) > s.maxFiles {
		return nil, fmt.Errorf("%w: got %d, limit is %d", ErrTooManyFiles, len(files), s.maxFiles)
	}

	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	results := make([]models.ParseResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := parser.Parse(file.Reader)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrParsingFailed, file.Filename, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
