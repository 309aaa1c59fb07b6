package model

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradejournal/src/database"
	"github.com/username/tradejournal/src/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db))
	return db
}

func createUser(t *testing.T, db *sql.DB, name string) *User {
	t.Helper()
	u := &User{Username: name, Email: name + "@example.com", Password: "hashed"}
	require.NoError(t, u.CreateUser(db))
	return u
}

func addTrade(t *testing.T, db Querier, userID, ticker, date string, assetType models.AssetType) *Trade {
	t.Helper()
	trade := &Trade{
		UserID:     userID,
		Ticker:     ticker,
		AssetType:  assetType,
		Side:       models.SideBuy,
		Quantity:   10,
		Price:      150,
		TradeDate:  date,
		Metadata:   map[string]any{"broker": "generic"},
		ExternalID: fmt.Sprintf("%s_%s_buy_10_150", ticker, date),
	}
	require.NoError(t, AddTrade(db, trade))
	return trade
}

func TestUsers(t *testing.T) {
	db := newTestDB(t)
	u := createUser(t, db, "alice")
	assert.NotEmpty(t, u.ID)

	byID, err := GetUserByID(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := GetUserByUsername(db, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := GetUserByEmail(db, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = GetUserByUsername(db, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)

	dup := &User{Username: "alice", Email: "other@example.com", Password: "x"}
	assert.Error(t, dup.CreateUser(db))
}

func TestTrades_OrderAndFilter(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	addTrade(t, db, alice.ID, "AAPL", "2024-01-02T00:00:00.000Z", models.AssetStock)
	addTrade(t, db, alice.ID, "NOW", "2024-03-01T00:00:00.000Z", models.AssetOption)
	addTrade(t, db, alice.ID, "MSFT", "2024-02-01T00:00:00.000Z", models.AssetStock)
	addTrade(t, db, bob.ID, "TSLA", "2024-05-01T00:00:00.000Z", models.AssetStock)

	trades, err := GetTradesByUser(db, alice.ID)
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, []string{"NOW", "MSFT", "AAPL"}, []string{trades[0].Ticker, trades[1].Ticker, trades[2].Ticker})
	assert.Equal(t, "generic", trades[0].Metadata["broker"])

	stocks, err := GetTradesByAssetType(db, alice.ID, models.AssetStock)
	require.NoError(t, err)
	assert.Len(t, stocks, 2)

	none, err := GetTradesByUser(db, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTrades_OwnerScoping(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	trade := addTrade(t, db, alice.ID, "AAPL", "2024-01-02T00:00:00.000Z", models.AssetStock)

	_, err := GetTradeByID(db, bob.ID, trade.ID)
	assert.ErrorIs(t, err, ErrTradeNotFound)

	price := 1.0
	assert.ErrorIs(t, UpdateTrade(db, bob.ID, trade.ID, TradeUpdate{Price: &price}), ErrTradeNotFound)
	assert.ErrorIs(t, DeleteTrade(db, bob.ID, trade.ID), ErrTradeNotFound)

	_, err = AddTag(db, bob.ID, trade.ID, "swing")
	assert.ErrorIs(t, err, ErrTradeNotFound)
}

func TestUpdateTrade_Partial(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	trade := addTrade(t, db, alice.ID, "AAPL", "2024-01-02T00:00:00.000Z", models.AssetStock)

	side := models.SideSell
	price := 155.25
	require.NoError(t, UpdateTrade(db, alice.ID, trade.ID, TradeUpdate{Side: &side, Price: &price}))

	updated, err := GetTradeByID(db, alice.ID, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SideSell, updated.Side)
	assert.Equal(t, 155.25, updated.Price)
	assert.Equal(t, 10.0, updated.Quantity)
	assert.Equal(t, "AAPL", updated.Ticker)
	assert.False(t, updated.ModifiedAt.Before(updated.CreatedAt))
}

func TestFindTradeByExternalID(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	first := addTrade(t, db, alice.ID, "AAPL", "2024-01-02T00:00:00.000Z", models.AssetStock)
	// Same key again: duplicates are stored, lookup returns the earliest.
	addTrade(t, db, alice.ID, "AAPL", "2024-01-02T00:00:00.000Z", models.AssetStock)

	found, err := FindTradeByExternalID(db, alice.ID, first.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = FindTradeByExternalID(db, alice.ID, "missing")
	assert.ErrorIs(t, err, ErrTradeNotFound)
}

func TestTagsAndNotes(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	trade := addTrade(t, db, alice.ID, "AAPL", "2024-01-02T00:00:00.000Z", models.AssetStock)

	swing, err := AddTag(db, alice.ID, trade.ID, "swing")
	require.NoError(t, err)
	_, err = AddTag(db, alice.ID, trade.ID, "earnings")
	require.NoError(t, err)

	tags, err := GetTagsByTrade(db, alice.ID, trade.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "swing", tags[0].Tag)

	byTrade, err := GetTagsByUser(db, alice.ID)
	require.NoError(t, err)
	assert.Len(t, byTrade[trade.ID], 2)

	assert.ErrorIs(t, DeleteTag(db, bob.ID, swing.ID), ErrTagNotFound)
	require.NoError(t, DeleteTag(db, alice.ID, swing.ID))

	note, err := AddNote(db, alice.ID, trade.ID, "entered on breakout")
	require.NoError(t, err)
	require.NoError(t, UpdateNote(db, alice.ID, note.ID, "entered on breakout, sized down"))
	assert.ErrorIs(t, UpdateNote(db, bob.ID, note.ID, "hijack"), ErrNoteNotFound)

	stored, err := GetNoteByTrade(db, alice.ID, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, "entered on breakout, sized down", stored.Text)

	notes, err := GetNotesByUser(db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, notes[trade.ID].ID)

	require.NoError(t, DeleteNote(db, alice.ID, note.ID))
	_, err = GetNoteByTrade(db, alice.ID, trade.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestDeleteTrade_RemovesTagsAndNotes(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	trade := addTrade(t, db, alice.ID, "AAPL", "2024-01-02T00:00:00.000Z", models.AssetStock)
	_, err := AddTag(db, alice.ID, trade.ID, "swing")
	require.NoError(t, err)
	_, err = AddNote(db, alice.ID, trade.ID, "note")
	require.NoError(t, err)

	require.NoError(t, DeleteTrade(db, alice.ID, trade.ID))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&count))
	assert.Zero(t, count)
}

func TestUploadsAndDeleteUser(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	addTrade(t, db, alice.ID, "AAPL", "2024-01-02T00:00:00.000Z", models.AssetStock)

	rec := &UploadRecord{UserID: alice.ID, Filename: "rh.csv", FileSize: 120, Broker: "robinhood", TradeCount: 1}
	require.NoError(t, RecordUpload(db, rec))
	assert.NotEmpty(t, rec.ID)

	uploads, err := GetUploadsByUser(db, alice.ID)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "rh.csv", uploads[0].Filename)

	require.NoError(t, DeleteUser(db, alice.ID))
	assert.ErrorIs(t, DeleteUser(db, alice.ID), ErrUserNotFound)

	trades, err := GetTradesByUser(db, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, trades)
	uploads, err = GetUploadsByUser(db, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, uploads)
}

func TestDeleteTradesByScope(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	first := addTrade(t, db, alice.ID, "AAPL", "2023-06-01T00:00:00.000Z", models.AssetStock)
	addTrade(t, db, alice.ID, "MSFT", "2024-01-02T00:00:00.000Z", models.AssetStock)
	addTrade(t, db, alice.ID, "TSLA", "2024-03-02T00:00:00.000Z", models.AssetStock)
	addTrade(t, db, bob.ID, "NVDA", "2024-01-02T00:00:00.000Z", models.AssetStock)
	_, err := AddTag(db, alice.ID, first.ID, "old")
	require.NoError(t, err)

	_, err = DeleteTrades(db, alice.ID, DeleteYear, []string{"24"})
	assert.ErrorIs(t, err, ErrInvalidDeleteScope)
	_, err = DeleteTrades(db, alice.ID, DeleteBroker, nil)
	assert.ErrorIs(t, err, ErrInvalidDeleteScope)
	_, err = DeleteTrades(db, alice.ID, "everything", nil)
	assert.ErrorIs(t, err, ErrInvalidDeleteScope)

	n, err := DeleteTrades(db, alice.ID, DeleteYear, []string{"2023"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var tags int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&tags))
	assert.Zero(t, tags)

	n, err = DeleteTrades(db, alice.ID, DeleteBroker, []string{"generic"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := CountTradesByUser(db, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = CountTradesByUser(db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")

	require.NoError(t, UpdatePassword(db, alice.ID, "new-hash"))
	reloaded, err := GetUserByID(db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.Password)

	assert.ErrorIs(t, UpdatePassword(db, "missing", "x"), ErrUserNotFound)
}
