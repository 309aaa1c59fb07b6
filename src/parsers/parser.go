// backend/src/parsers/parser.go
package parsers

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/username/tradejournal/src/models"
)

// Parser turns one uploaded statement into trades and user-facing errors.
type Parser interface {
	Parse(file io.Reader) (models.ParseResult, error)
}

const (
	noDataMessage      = "No data found in CSV file"
	invalidUTF8Message = "input is not valid UTF-8 text"
)

// StatementParser parses CSV statements, detecting the broker unless one is fixed.
type StatementParser struct {
	broker *Broker
}

// NewStatementParser creates a parser that detects the broker from the header row.
func NewStatementParser() *StatementParser {
	return &StatementParser{}
}

// NewStatementParserFor creates a parser that always uses the given broker's profile.
func NewStatementParserFor(broker Broker) *StatementParser {
	return &StatementParser{broker: &broker}
}

// Parse reads the whole statement. Only read failures are returned as errors;
// problems with the data itself are reported in the result.
func (p *StatementParser) Parse(file io.Reader) (models.ParseResult, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return models.NewParseResult(), fmt.Errorf("statement parser: failed to read file: %w", err)
	}
	return parse(string(content), p.broker), nil
}

// ParseCSV normalizes a CSV statement, detecting the broker from its headers.
func ParseCSV(text string) models.ParseResult {
	return parse(text, nil)
}

// ParseCSVAs normalizes a CSV statement with a fixed broker profile.
func ParseCSVAs(text string, broker Broker) models.ParseResult {
	return parse(text, &broker)
}

func parse(text string, forced *Broker) (result models.ParseResult) {
	result = models.NewParseResult()

	defer func() {
		if r := recover(); r != nil {
			result = models.NewParseResult()
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to parse CSV: %v", r))
		}
	}()

	if !utf8.ValidString(text) {
		result.Errors = append(result.Errors, "Failed to parse CSV: "+invalidUTF8Message)
		return result
	}

	table := Tokenize(text)
	if len(table.Errors) > 0 {
		result.Errors = append(result.Errors, "CSV parsing errors: "+strings.Join(table.Errors, ", "))
	}
	if len(table.Rows) == 0 {
		result.Errors = append(result.Errors, noDataMessage)
		return result
	}

	broker := DetectBroker(table.Headers)
	if forced != nil {
		broker = *forced
	}
	result.Broker = broker.String()

	for i, row := range table.Rows {
		outcome := NormalizeTrade(row, broker)
		if outcome.OK() {
			result.Trades = append(result.Trades, *outcome.Trade)
			continue
		}
		rowNumber := table.RowNumbers[i]
		rowErr := models.RowError{
			Row:     rowNumber,
			Reason:  outcome.Reason,
			Message: fmt.Sprintf("Row %d: Could not parse trade data", rowNumber),
		}
		result.Errors = append(result.Errors, rowErr.Message)
		result.RowErrors = append(result.RowErrors, rowErr)
	}

	return result
}
