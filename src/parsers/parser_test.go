package parsers

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradejournal/src/models"
)

const robinhoodHeader = "Activity Date,Instrument,Description,Trans Code,Quantity,Price\n"

func TestParseCSV_RobinhoodBuy(t *testing.T) {
	result := ParseCSV(robinhoodHeader + "1/2/2024,AAPL,AAPL,Buy,10,150.00\n")

	require.Empty(t, result.Errors)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, "robinhood", result.Broker)

	trade := result.Trades[0]
	assert.Equal(t, "AAPL", trade.Ticker)
	assert.Equal(t, models.SideBuy, trade.Side)
	assert.Equal(t, 10.0, trade.Quantity)
	assert.Equal(t, 150.0, trade.Price)
	assert.Equal(t, models.AssetStock, trade.AssetType)
	assert.Equal(t, "2024-01-02T00:00:00.000Z", trade.TradeDate)

	assert.Equal(t, "robinhood", trade.Metadata["broker"])
	assert.Equal(t, "Buy", trade.Metadata["trans_code"])
	assert.Equal(t, "AAPL", trade.Metadata["description"])
	original, ok := trade.Metadata["original_data"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "AAPL", original["Instrument"])
	assert.Equal(t, "150.00", original["Price"])
}

func TestParseCSV_RobinhoodSellCodes(t *testing.T) {
	for _, code := range []string{"STC", "STO", "stc"} {
		t.Run(code, func(t *testing.T) {
			result := ParseCSV(robinhoodHeader + "1/2/2024,AAPL,AAPL," + code + ",10,150.00\n")
			require.Len(t, result.Trades, 1)
			assert.Equal(t, models.SideSell, result.Trades[0].Side)
		})
	}
}

func TestParseCSV_RobinhoodAssetTypes(t *testing.T) {
	testCases := []struct {
		name        string
		description string
		ticker      string
		assetType   models.AssetType
	}{
		{"call option", "NOW 7/11/2025 Call $1,070.00", "NOW", models.AssetOption},
		{"put option", "SPY 1/17/2025 Put $450.00", "SPY", models.AssetOption},
		{"future", "/ESZ4 Dec 2024", "/ESZ4", models.AssetFuture},
		{"stock", "Tesla", "TESLA", models.AssetStock},
		{"word containing put", "Putnam Fund", "PUTNAM", models.AssetStock},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			row := `1/2/2024,XYZ,"` + tc.description + `",BTO,1,"$2,500.00"` + "\n"
			result := ParseCSV(robinhoodHeader + row)
			require.Empty(t, result.Errors)
			require.Len(t, result.Trades, 1)
			assert.Equal(t, tc.ticker, result.Trades[0].Ticker)
			assert.Equal(t, tc.assetType, result.Trades[0].AssetType)
			assert.Equal(t, 2500.0, result.Trades[0].Price)
		})
	}
}

func TestParseCSV_RobinhoodFallsBackToInstrument(t *testing.T) {
	result := ParseCSV(robinhoodHeader + "1/2/2024,msft,,Buy,3,400\n")
	require.Len(t, result.Trades, 1)
	assert.Equal(t, "MSFT", result.Trades[0].Ticker)
}

func TestParseCSV_EmptyPriceRejectsRow(t *testing.T) {
	result := ParseCSV(robinhoodHeader +
		"1/2/2024,AAPL,AAPL,Buy,10,150.00\n" +
		"1/3/2024,AAPL,AAPL,Sell,10,\n")

	require.Len(t, result.Trades, 1)
	assert.Equal(t, []string{"Row 2: Could not parse trade data"}, result.Errors)
	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, 2, result.RowErrors[0].Row)
	assert.Equal(t, ReasonMissingPrice, result.RowErrors[0].Reason)
}

func TestParseCSV_MissingRequiredField(t *testing.T) {
	header := "Symbol,Side,Quantity,Price,Date\n"
	cells := []string{"AAPL", "buy", "10", "150", "2024-01-02"}
	reasons := []string{
		ReasonMissingTicker,
		ReasonMissingSide,
		ReasonMissingQuantity,
		ReasonMissingPrice,
		ReasonInvalidDate,
	}

	for i, reason := range reasons {
		t.Run(reason, func(t *testing.T) {
			row := append([]string(nil), cells...)
			row[i] = ""
			result := ParseCSV(header + strings.Join(row, ",") + "\n")

			assert.Empty(t, result.Trades)
			assert.Equal(t, []string{"Row 1: Could not parse trade data"}, result.Errors)
			require.Len(t, result.RowErrors, 1)
			assert.Equal(t, reason, result.RowErrors[0].Reason)
		})
	}
}

func TestParseCSV_InvalidDateRejectsRow(t *testing.T) {
	result := ParseCSV("Symbol,Side,Quantity,Price,Date\nAAPL,buy,10,150,someday\n")
	assert.Empty(t, result.Trades)
	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, ReasonInvalidDate, result.RowErrors[0].Reason)
}

func TestParseCSV_QuantityAndPriceArePositive(t *testing.T) {
	result := ParseCSV("Symbol,Side,Quantity,Price,Date\n" +
		"AAPL,sell,-10,150,2024-01-02\n" +
		"AAPL,buy,(5),\"($1,234.50)\",2024-01-03\n" +
		"AAPL,buy,7,-0.5,2024-01-04\n")

	require.Empty(t, result.Errors)
	require.Len(t, result.Trades, 3)
	for _, trade := range result.Trades {
		assert.Greater(t, trade.Quantity, 0.0)
		assert.Greater(t, trade.Price, 0.0)
	}
	assert.Equal(t, 10.0, result.Trades[0].Quantity)
	assert.Equal(t, 5.0, result.Trades[1].Quantity)
	assert.Equal(t, 1234.5, result.Trades[1].Price)
	assert.Equal(t, 0.5, result.Trades[2].Price)
}

func TestParseCSV_GenericAndTD(t *testing.T) {
	generic := ParseCSV("Symbol,Buy/Sell,Quantity,Price,Date\naapl,Buy,10,150,01/02/2024\n")
	assert.Equal(t, "generic", generic.Broker)
	require.Len(t, generic.Trades, 1)
	assert.Equal(t, models.SideBuy, generic.Trades[0].Side)
	assert.Equal(t, "AAPL", generic.Trades[0].Ticker)

	td := ParseCSV("Symbol,Buy/Sell,Quantity,Price,Date,TD Account\nAAPL,Sold,10,150,01/02/2024,123\n")
	assert.Equal(t, "td", td.Broker)
	require.Len(t, td.Trades, 1)
	assert.Equal(t, models.SideSell, td.Trades[0].Side)
	assert.Equal(t, models.AssetStock, td.Trades[0].AssetType)
	assert.Equal(t, "td", td.Trades[0].Metadata["broker"])
}

func TestParseCSV_GenericAliases(t *testing.T) {
	result := ParseCSV("ticker,type,qty,price,time\nnvda,BUY,2,900.10,2024-05-01 09:30:00\n")
	require.Empty(t, result.Errors)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, "NVDA", result.Trades[0].Ticker)
	assert.Equal(t, "2024-05-01T09:30:00.000Z", result.Trades[0].TradeDate)
}

func TestParseCSV_CaseInsensitiveHeaderFallback(t *testing.T) {
	result := ParseCSV("SYMBOL,  Side ,QUANTITY,PRICE,DATE\nAAPL,buy,1,2,2024-01-02\n")
	require.Empty(t, result.Errors)
	require.Len(t, result.Trades, 1)
}

func TestParseCSV_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "\n\n", "Symbol,Side,Quantity,Price,Date\n", " , ,\n"} {
		result := ParseCSV(text)
		assert.Empty(t, result.Trades)
		assert.NotNil(t, result.Trades)
		assert.Equal(t, []string{"No data found in CSV file"}, result.Errors)
	}
}

func TestParseCSV_InvalidUTF8(t *testing.T) {
	result := ParseCSV("Symbol,Side\n\xff\xfe,buy\n")
	assert.Empty(t, result.Trades)
	assert.Equal(t, []string{"Failed to parse CSV: input is not valid UTF-8 text"}, result.Errors)
}

func TestParseCSV_TokenizerErrorsKeepRecoveredRows(t *testing.T) {
	result := ParseCSV("Symbol,Side,Quantity,Price,Date\n" +
		"AAPL,buy,10\n" +
		"MSFT,sell,5,400,2024-01-02\n")

	require.Len(t, result.Trades, 1)
	assert.Equal(t, "MSFT", result.Trades[0].Ticker)
	assert.Equal(t, []string{
		"CSV parsing errors: Row 1: Too few fields: expected 5 fields but parsed 3",
		"Row 1: Could not parse trade data",
	}, result.Errors)
}

func TestParseCSV_MalformedQuoting(t *testing.T) {
	result := ParseCSV("Symbol,Side,Quantity,Price,Date\n" +
		"AA\"PL,buy,1,2,2024-01-02\n" +
		"MSFT,sell,5,400,2024-01-02\n")

	require.Len(t, result.Errors, 1)
	assert.True(t, strings.HasPrefix(result.Errors[0], "CSV parsing errors: Line 2:"), result.Errors[0])
	require.Len(t, result.Trades, 1)
	assert.Equal(t, "MSFT", result.Trades[0].Ticker)
}

func TestParseCSV_RowNumbersSurviveMalformedLine(t *testing.T) {
	result := ParseCSV("Symbol,Side,Quantity,Price,Date\n" +
		"X,buy,1,2,2024-01-02\n" +
		"Y,b\"ad,1,2,2024-01-02\n" +
		"Z,sell,1,,2024-01-03\n")

	require.Len(t, result.Trades, 1)
	assert.Equal(t, "X", result.Trades[0].Ticker)
	require.Len(t, result.Errors, 2)
	assert.True(t, strings.HasPrefix(result.Errors[0], "CSV parsing errors: Line 3:"), result.Errors[0])
	assert.Equal(t, "Row 3: Could not parse trade data", result.Errors[1])
	require.Len(t, result.RowErrors, 1)
	assert.Equal(t, 3, result.RowErrors[0].Row)
	assert.Equal(t, ReasonMissingPrice, result.RowErrors[0].Reason)
}

func TestParseCSV_Idempotent(t *testing.T) {
	text := robinhoodHeader +
		"1/2/2024,AAPL,AAPL,Buy,10,150.00\n" +
		"1/3/2024,AAPL,AAPL,STC,,150.00\n" +
		"1/4/2024,NOW,NOW 7/11/2025 Call $1070.00,BTO,1,12.5\n"

	first := ParseCSV(text)
	second := ParseCSV(text)
	assert.Equal(t, first, second)
	assert.Len(t, first.Trades, 2)
	assert.Len(t, first.Errors, 1)
}

func TestParseCSVAs_OverridesDetection(t *testing.T) {
	result := ParseCSVAs("Symbol,Buy/Sell,Quantity,Price,Date\nAAPL,Buy,1,2,2024-01-02\n", BrokerTD)
	assert.Equal(t, "td", result.Broker)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, "td", result.Trades[0].Metadata["broker"])
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestStatementParser_Parse(t *testing.T) {
	parser := NewStatementParser()
	result, err := parser.Parse(strings.NewReader(robinhoodHeader + "1/2/2024,AAPL,AAPL,Buy,10,150.00\n"))
	require.NoError(t, err)
	assert.Len(t, result.Trades, 1)

	_, err = parser.Parse(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestGetParser(t *testing.T) {
	for _, source := range []string{"", "auto", "robinhood", "TD", "generic"} {
		parser, err := GetParser(source)
		require.NoError(t, err, source)
		assert.NotNil(t, parser)
	}

	_, err := GetParser("schwab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schwab")
}
