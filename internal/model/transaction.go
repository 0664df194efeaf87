package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// DateLayout is the ISO calendar date used by the API.
const DateLayout = "2006-01-02"

// Transaction is one ledger row owned by the remote API.
type Transaction struct {
	ID          string
	Date        string // "YYYY-MM-DD"; empty when the API omitted it
	Type        TransactionType
	Category    string
	Description string
	Amount      decimal.Decimal
}

// IsIncome reports whether t adds to income. Any other type counts as expense.
func (t Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// Validate checks a transaction before it is submitted.
func (t Transaction) Validate() error {
	var errs ValidationErrors
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDate, t.Date))
	}
	if t.Type != TypeIncome && t.Type != TypeExpense {
		errs = append(errs, fmt.Errorf("%w: %q (want income or expense)", ErrInvalidType, t.Type))
	}
	if err := checkAmount(t.Amount); err != nil {
		errs = append(errs, err)
	}
	return errs.orNil()
}

type transactionJSON struct {
	ID          string          `json:"id,omitempty"`
	Date        string          `json:"date"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      json.Number     `json:"amount"`
}

type transactionWire struct {
	ID          json.RawMessage `json:"id"`
	Date        json.RawMessage `json:"date"`
	Type        json.RawMessage `json:"type"`
	Category    json.RawMessage `json:"category"`
	Description json.RawMessage `json:"description"`
	Amount      json.RawMessage `json:"amount"`
}

// MarshalJSON encodes the amount as a JSON number.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		ID:          t.ID,
		Date:        t.Date,
		Type:        t.Type,
		Category:    t.Category,
		Description: t.Description,
		Amount:      jsonNumber(t.Amount),
	})
}

// UnmarshalJSON tolerates missing or mistyped fields: a non-string text field
// decodes as "" and a non-numeric amount as zero.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w transactionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Transaction{
		ID:          lenientID(w.ID),
		Date:        lenientString(w.Date),
		Type:        TransactionType(lenientString(w.Type)),
		Category:    lenientString(w.Category),
		Description: lenientString(w.Description),
		Amount:      LenientDecimal(w.Amount),
	}
	return nil
}
