// backend/src/parsers/tokenizer.go
package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RawRow maps a trimmed header name to the trimmed cell value of one data row.
type RawRow map[string]string

// Table is the tokenized form of a CSV statement.
type Table struct {
	Headers    []string
	Rows       []RawRow
	RowNumbers []int    // 1-indexed data-row position of each entry in Rows
	Errors     []string // structural problems; rows that could be read are still in Rows
}

const utf8BOM = "\uFEFF"

// Tokenize splits CSV text into named rows using the first non-blank record as header.
// It never fails: malformed quoting and ragged rows are reported in Table.Errors
// and reading continues with the next record.
func Tokenize(text string) Table {
	var table Table

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, utf8BOM)))
	reader.FieldsPerRecord = -1 // ragged rows are reported, not fatal
	reader.TrimLeadingSpace = true

	dataRow := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// The rejected record still occupies a data-row position.
				if table.Headers != nil {
					dataRow++
				}
				table.Errors = append(table.Errors, fmt.Sprintf("Line %d: %s", parseErr.StartLine, unwrapCSVError(parseErr)))
				continue
			}
			table.Errors = append(table.Errors, err.Error())
			break
		}

		cells := trimCells(record)
		if isBlank(cells) {
			continue
		}

		if table.Headers == nil {
			table.Headers = dedupeHeaders(cells)
			continue
		}

		dataRow++
		rowNumber := dataRow
		switch {
		case len(cells) < len(table.Headers):
			table.Errors = append(table.Errors, fmt.Sprintf("Row %d: Too few fields: expected %d fields but parsed %d", rowNumber, len(table.Headers), len(cells)))
		case len(cells) > len(table.Headers):
			table.Errors = append(table.Errors, fmt.Sprintf("Row %d: Too many fields: expected %d fields but parsed %d", rowNumber, len(table.Headers), len(cells)))
		}

		row := make(RawRow, len(table.Headers))
		for i, header := range table.Headers {
			if header == "" || i >= len(cells) {
				continue
			}
			row[header] = cells[i]
		}
		table.Rows = append(table.Rows, row)
		table.RowNumbers = append(table.RowNumbers, rowNumber)
	}

	return table
}

func unwrapCSVError(err *csv.ParseError) string {
	if err.Err == nil {
		return err.Error()
	}
	return err.Err.Error()
}

func trimCells(record []string) []string {
	cells := make([]string, len(record))
	for i, c := range record {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// dedupeHeaders suffixes repeated header names with _1, _2, ... so no column is shadowed.
func dedupeHeaders(cells []string) []string {
	seen := make(map[string]int, len(cells))
	headers := make([]string, len(cells))
	for i, name := range cells {
		if name == "" {
			continue
		}
		count, exists := seen[name]
		seen[name] = count + 1
		if exists {
			name = name + "_" + strconv.Itoa(count)
		}
		headers[i] = name
	}
	return headers
}
