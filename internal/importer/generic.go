package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finai-dev/finai/internal/category"
	"github.com/finai-dev/finai/internal/model"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

// GenericParser reads any CSV whose header names date, description and amount
// columns. Optional type and category columns are used when present; without
// a type column the sign of amount decides.
type GenericParser struct{}

var genericDateFormats = []string{model.DateLayout, "01/02/2006", "2006/01/02", "02 Jan 2006"}

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads the CSV.
func (p *GenericParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"date", "description", "amount"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := parseGenericRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseGenericRow(rec []string, cols map[string]int) (model.Transaction, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return model.Transaction{}, err
	}
	raw := strings.NewReplacer(",", "", "₹", "", "$", "").Replace(field("amount"))
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", field("amount"), err)
	}

	txn := fromSigned(date, field("description"), amount)
	switch strings.ToLower(field("type")) {
	case string(model.TypeIncome), "credit":
		txn.Type = model.TypeIncome
	case string(model.TypeExpense), "debit":
		txn.Type = model.TypeExpense
	}
	if c := field("category"); c != "" {
		txn.Category = c
	} else {
		txn.Category = category.Other
	}
	return txn, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range genericDateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: %w", s, model.ErrInvalidDate)
}
