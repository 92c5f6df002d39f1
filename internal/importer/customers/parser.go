package customers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	enc "github.com/prabink/khaatabook/internal/encoding"
	"github.com/prabink/khaatabook/internal/ledger"
)

// Parser reads a customer book CSV and produces customer create params. The
// file must carry a header row naming at least the name column; phone,
// address, credit_limit and default_credit_days are optional and matched by
// header name, so column order does not matter.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

const (
	colName       = "name"
	colPhone      = "phone"
	colAddress    = "address"
	colLimit      = "credit_limit"
	colCreditDays = "default_credit_days"
)

func (p *Parser) Parse(r io.Reader) ([]ledger.CreateCustomerParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, ok := findHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no header row found: expected a %q column", colName)
	}

	return parseRows(cols, rows[headerIdx+1:], headerIdx+1)
}

// colIndex maps normalized column names to their index in the row.
type colIndex map[string]int

func findHeader(rows [][]string) (colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		if _, ok := cols[colName]; ok {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func parseRows(cols colIndex, rows [][]string, headerRowNum int) ([]ledger.CreateCustomerParams, error) {
	var out []ledger.CreateCustomerParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		if isEmpty(row) {
			continue
		}

		name := cellValue(row, cols, colName)
		if name == "" {
			return nil, fmt.Errorf("row %d: missing name", rowNum)
		}

		limit, err := parseMoney(cellValue(row, cols, colLimit))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid credit limit: %w", rowNum, err)
		}

		days, err := parseDays(cellValue(row, cols, colCreditDays))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid credit days: %w", rowNum, err)
		}

		out = append(out, ledger.CreateCustomerParams{
			Name:              name,
			Phone:             cellValue(row, cols, colPhone),
			Address:           cellValue(row, cols, colAddress),
			CreditLimit:       limit,
			DefaultCreditDays: days,
		})
	}

	return out, nil
}

// parseMoney converts a currency amount like "5000" or "5,000.50" to cents.
func parseMoney(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}

func parseDays(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

func cellValue(row []string, cols colIndex, name string) string {
	idx, ok := cols[name]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func isEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
