package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradejournal/src/database"
	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/models"
	"github.com/username/tradejournal/src/processors"
)

const robinhoodCSV = `Activity Date,Instrument,Description,Trans Code,Quantity,Price
1/2/2024,AAPL,AAPL Apple Inc,BTO,10,$150.00
1/3/2024,NOW,"NOW 7/11/2025 Call $1,070.00",STC,1,$12.50
1/4/2024,,,,,
`

const genericCSV = `Symbol,Side,Quantity,Price,Date
MSFT,Buy,5,400,2024-02-01
TSLA,Sell,2,200,2024-02-02
`

type testEnv struct {
	db      *sql.DB
	uploads UploadService
	journal JournalService
	userID  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db))

	user := &model.User{Username: "trader", Email: "trader@example.com", Password: "hashed"}
	require.NoError(t, user.CreateUser(db))

	c := NewJournalCache(0, 0)
	return &testEnv{
		db:      db,
		uploads: NewUploadService(db, processors.NewTradeProcessor(), c, 5),
		journal: NewJournalService(db, processors.NewSummaryProcessor(), c),
		userID:  user.ID,
	}
}

func file(name, content string) UploadFile {
	return UploadFile{Filename: name, Size: int64(len(content)), Reader: strings.NewReader(content)}
}

func TestPreviewUpload_DoesNotPersist(t *testing.T) {
	env := newTestEnv(t)

	previews, err := env.uploads.PreviewUpload(context.Background(), "auto", []UploadFile{file("rh.csv", robinhoodCSV)})
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.Equal(t, "rh.csv", previews[0].Filename)
	assert.Equal(t, "robinhood", previews[0].Broker)
	assert.Len(t, previews[0].Trades, 2)
	assert.Len(t, previews[0].Errors, 1)

	trades, err := env.journal.GetTrades(env.userID, "")
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestUploadService_Limits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.uploads.ProcessUpload(ctx, env.userID, "", nil)
	assert.ErrorIs(t, err, ErrNoFiles)

	files := make([]UploadFile, 6)
	for i := range files {
		files[i] = file(fmt.Sprintf("f%d.csv", i), genericCSV)
	}
	_, err = env.uploads.ProcessUpload(ctx, env.userID, "", files)
	assert.ErrorIs(t, err, ErrTooManyFiles)

	_, err = env.uploads.PreviewUpload(ctx, "etrade", []UploadFile{file("a.csv", genericCSV)})
	assert.ErrorIs(t, err, ErrParsingFailed)
}

func TestProcessUpload_StoresTradesInFileOrder(t *testing.T) {
	env := newTestEnv(t)

	results, err := env.uploads.ProcessUpload(context.Background(), env.userID, "auto", []UploadFile{
		file("rh.csv", robinhoodCSV),
		file("generic.csv", genericCSV),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "rh.csv", results[0].Filename)
	assert.Equal(t, "robinhood", results[0].Broker)
	assert.Equal(t, 2, results[0].Inserted)
	assert.Equal(t, []string{"Row 3: Could not parse trade data"}, results[0].Errors)
	assert.NotEmpty(t, results[0].UploadID)

	assert.Equal(t, "generic", results[1].Broker)
	assert.Equal(t, 2, results[1].Inserted)
	assert.Empty(t, results[1].Errors)
	assert.NotEqual(t, results[0].UploadID, results[1].UploadID)

	trades, err := env.journal.GetTrades(env.userID, "")
	require.NoError(t, err)
	require.Len(t, trades, 4)

	byTicker := make(map[string]model.Trade)
	for _, tr := range trades {
		byTicker[tr.Ticker] = tr
	}
	// ids follow file order then row order
	assert.Less(t, byTicker["AAPL"].ID, byTicker["NOW"].ID)
	assert.Less(t, byTicker["NOW"].ID, byTicker["MSFT"].ID)
	assert.Less(t, byTicker["MSFT"].ID, byTicker["TSLA"].ID)
	assert.Equal(t, results[0].UploadID, byTicker["AAPL"].UploadID)
	assert.Equal(t, "AAPL_2024-01-02T00:00:00.000Z_buy_10_150", byTicker["AAPL"].ExternalID)
	assert.Equal(t, models.AssetOption, byTicker["NOW"].AssetType)

	uploads, err := env.uploads.GetUploads(env.userID)
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	total := 0
	for _, u := range uploads {
		total += u.TradeCount
	}
	assert.Equal(t, 4, total)
}

func TestProcessUpload_RecordsEmptyFile(t *testing.T) {
	env := newTestEnv(t)

	results, err := env.uploads.ProcessUpload(context.Background(), env.userID, "", []UploadFile{file("empty.csv", "")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Inserted)
	assert.Equal(t, []string{"No data found in CSV file"}, results[0].Errors)
	assert.Equal(t, "unknown", results[0].Broker)

	uploads, err := env.uploads.GetUploads(env.userID)
	require.NoError(t, err)
	assert.Len(t, uploads, 1)
}

func TestProcessUpload_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.uploads.ProcessUpload(ctx, env.userID, "generic", []UploadFile{file("g.csv", genericCSV)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	trades, err := env.journal.GetTrades(env.userID, "")
	require.NoError(t, err)
	assert.Len(t, trades, 8)

	// Duplicates are stored; the lookup returns the earliest.
	first, err := env.journal.FindByExternalID(env.userID, "MSFT_2024-02-01T00:00:00.000Z_buy_5_400")
	require.NoError(t, err)
	for _, tr := range trades {
		if tr.ExternalID == first.ExternalID {
			assert.GreaterOrEqual(t, tr.ID, first.ID)
		}
	}
}

func TestProcessUpload_CancelledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.uploads.ProcessUpload(ctx, env.userID, "", []UploadFile{file("g.csv", genericCSV)})
	require.Error(t, err)

	trades, err := env.journal.GetTrades(env.userID, "")
	require.NoError(t, err)
	assert.Empty(t, trades)
}
