package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/finai-dev/finai/internal/model"
)

// ErrTooFewFields is returned when a form line is missing required values.
var ErrTooFewFields = errors.New("too few fields")

// TransactionFormat describes the add/edit transaction line.
const TransactionFormat = "YYYY-MM-DD income|expense category amount [description]"

// GoalFormat describes the add goal line. Use - for every category.
const GoalFormat = "YYYY-MM limit category|- name"

// ParseTransaction reads a transaction form line and validates it.
func ParseTransaction(line string) (model.Transaction, error) {
	f := strings.Fields(line)
	if len(f) < 4 {
		return model.Transaction{}, fmt.Errorf("%w: want %s", ErrTooFewFields, TransactionFormat)
	}
	amount, err := model.ParseAmount(f[3])
	if err != nil {
		return model.Transaction{}, err
	}
	t := model.Transaction{
		Date:        f[0],
		Type:        model.TransactionType(strings.ToLower(f[1])),
		Category:    f[2],
		Amount:      amount,
		Description: strings.Join(f[4:], " "),
	}
	return t, t.Validate()
}

// FormatTransaction is the inverse of ParseTransaction, used to prefill edits.
func FormatTransaction(t model.Transaction) string {
	line := fmt.Sprintf("%s %s %s %s", t.Date, t.Type, t.Category, t.Amount.StringFixed(2))
	if t.Description != "" {
		line += " " + t.Description
	}
	return line
}

// ParseGoal reads a goal form line, normalizes and validates it.
func ParseGoal(line string) (model.GoalInput, error) {
	f := strings.Fields(line)
	if len(f) < 4 {
		return model.GoalInput{}, fmt.Errorf("%w: want %s", ErrTooFewFields, GoalFormat)
	}
	limit, err := model.ParseAmount(f[1])
	if err != nil {
		return model.GoalInput{}, err
	}
	cat := f[2]
	if cat == "-" {
		cat = ""
	}
	g := model.GoalInput{
		Month:       f[0],
		LimitAmount: limit,
		Category:    cat,
		Name:        strings.Join(f[3:], " "),
	}.Normalize()
	return g, g.Validate()
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
