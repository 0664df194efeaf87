package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAll is the goal category that matches every expense.
const CategoryAll = "all"

// MonthLayout is the goal month format.
const MonthLayout = "2006-01"

// Goal is a monthly spending limit. SpentAmount is computed by the server.
type Goal struct {
	ID          string
	Name        string
	Category    string
	Month       string // "YYYY-MM"
	LimitAmount decimal.Decimal
	SpentAmount decimal.Decimal
}

// GoalInput is the payload for creating a goal.
type GoalInput struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Month       string          `json:"month"`
	LimitAmount decimal.Decimal `json:"-"`
}

// Normalize trims fields and defaults an empty category to CategoryAll.
func (g GoalInput) Normalize() GoalInput {
	g.Name = strings.TrimSpace(g.Name)
	g.Category = strings.TrimSpace(g.Category)
	g.Month = strings.TrimSpace(g.Month)
	if g.Category == "" {
		g.Category = CategoryAll
	}
	return g
}

// Validate checks a goal before it is submitted.
func (g GoalInput) Validate() error {
	var errs ValidationErrors
	if g.Name == "" {
		errs = append(errs, ErrEmptyName)
	}
	if _, err := time.Parse(MonthLayout, g.Month); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q (want YYYY-MM)", ErrInvalidMonth, g.Month))
	}
	if err := checkAmount(g.LimitAmount); err != nil {
		errs = append(errs, err)
	}
	return errs.orNil()
}

// MarshalJSON encodes limitAmount as a JSON number.
func (g GoalInput) MarshalJSON() ([]byte, error) {
	type alias GoalInput
	return json.Marshal(struct {
		alias
		LimitAmount json.Number `json:"limitAmount"`
	}{alias: alias(g), LimitAmount: jsonNumber(g.LimitAmount)})
}

type goalWire struct {
	ID          json.RawMessage `json:"id"`
	Name        json.RawMessage `json:"name"`
	Category    json.RawMessage `json:"category"`
	Month       json.RawMessage `json:"month"`
	LimitAmount json.RawMessage `json:"limitAmount"`
	SpentAmount json.RawMessage `json:"spentAmount"`
}

// UnmarshalJSON tolerates missing or mistyped fields the way Transaction does.
func (g *Goal) UnmarshalJSON(data []byte) error {
	var w goalWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*g = Goal{
		ID:          lenientID(w.ID),
		Name:        lenientString(w.Name),
		Category:    lenientString(w.Category),
		Month:       lenientString(w.Month),
		LimitAmount: LenientDecimal(w.LimitAmount),
		SpentAmount: LenientDecimal(w.SpentAmount),
	}
	return nil
}

// MarshalJSON encodes amounts as JSON numbers.
func (g Goal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string      `json:"id,omitempty"`
		Name        string      `json:"name"`
		Category    string      `json:"category"`
		Month       string      `json:"month"`
		LimitAmount json.Number `json:"limitAmount"`
		SpentAmount json.Number `json:"spentAmount"`
	}{g.ID, g.Name, g.Category, g.Month, jsonNumber(g.LimitAmount), jsonNumber(g.SpentAmount)})
}

// Matches reports whether an expense transaction counts toward this goal:
// same month and, unless the goal covers all categories, the same category.
func (g Goal) Matches(t Transaction) bool {
	if t.Type != TypeExpense {
		return false
	}
	if t.Date == "" || g.Month == "" || !strings.HasPrefix(t.Date, g.Month) {
		return false
	}
	cat := g.Category
	if cat == "" {
		cat = CategoryAll
	}
	return cat == CategoryAll || t.Category == cat
}
