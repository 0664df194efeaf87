package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLenientDecimal(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`12.5`, "12.50"},
		{`"40"`, "40.00"},
		{`" 7.25 "`, "7.25"},
		{`"abc"`, "0.00"},
		{`null`, "0.00"},
		{``, "0.00"},
		{`true`, "0.00"},
		{`{"x":1}`, "0.00"},
	}
	for _, tt := range tests {
		got := LenientDecimal(json.RawMessage(tt.raw))
		assert.Equal(t, tt.want, got.StringFixed(2), "LenientDecimal(%s)", tt.raw)
	}
}

func TestTransactionUnmarshal_Lenient(t *testing.T) {
	data := `[
		{"id":"a","date":"2024-03-01","type":"income","category":"salary","description":"pay","amount":100},
		{"id":"b","type":"expense","category":"food","amount":"oops"},
		{"id":"c","date":null,"type":"expense","category":"food"}
	]`
	var txns []Transaction
	require.NoError(t, json.Unmarshal([]byte(data), &txns))
	require.Len(t, txns, 3)

	assert.Equal(t, "2024-03-01", txns[0].Date)
	assert.True(t, txns[0].IsIncome())
	assert.True(t, txns[0].Amount.Equal(dec("100")))

	assert.Empty(t, txns[1].Date)
	assert.True(t, txns[1].Amount.IsZero())
	assert.Empty(t, txns[2].Date)
	assert.True(t, txns[2].Amount.IsZero())
}

func TestTransactionUnmarshal_MistypedFields(t *testing.T) {
	data := `[
		{"id":"a","date":"2024-01-01","type":"expense","category":"food","amount":100},
		{"id":2,"date":20240102,"type":true,"category":{"x":1},"description":["d"],"amount":5}
	]`
	var txns []Transaction
	require.NoError(t, json.Unmarshal([]byte(data), &txns))
	require.Len(t, txns, 2)

	assert.Equal(t, "2024-01-01", txns[0].Date)
	assert.Equal(t, "food", txns[0].Category)

	bad := txns[1]
	assert.Equal(t, "2", bad.ID)
	assert.Empty(t, bad.Date)
	assert.Empty(t, bad.Type)
	assert.Empty(t, bad.Category)
	assert.Empty(t, bad.Description)
	assert.False(t, bad.IsIncome())
	assert.True(t, bad.Amount.Equal(dec("5")))
}

func TestGoalUnmarshal_MistypedFields(t *testing.T) {
	var goals []Goal
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"g1","name":"Food","category":"food","month":"2024-03","limitAmount":300,"spentAmount":"120"},
		{"id":"g2","name":7,"category":null,"month":202403,"limitAmount":50}
	]`), &goals))
	require.Len(t, goals, 2)

	assert.Equal(t, "food", goals[0].Category)
	assert.True(t, goals[0].SpentAmount.Equal(dec("120")))

	assert.Equal(t, "g2", goals[1].ID)
	assert.Empty(t, goals[1].Name)
	assert.Empty(t, goals[1].Category)
	assert.Empty(t, goals[1].Month)
	assert.True(t, goals[1].LimitAmount.Equal(dec("50")))
}

func TestTransactionMarshal_AmountIsNumber(t *testing.T) {
	txn := Transaction{Date: "2024-03-01", Type: TypeExpense, Category: "food", Description: "lunch", Amount: dec("12.50")}
	data, err := json.Marshal(txn)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-01","type":"expense","category":"food","description":"lunch","amount":12.5}`, string(data))
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{Date: "2024-03-01", Type: TypeExpense, Category: "food", Amount: dec("4.00")}
	require.NoError(t, valid.Validate())

	bad := Transaction{Date: "03/01/2024", Type: "transfer", Amount: dec("-1.005")}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.ErrorIs(t, err, ErrInvalidType)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 19.99 ")
	require.NoError(t, err)
	assert.Equal(t, "19.99", d.StringFixed(2))

	_, err = ParseAmount("1.234")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseAmount("-5")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseAmount("five")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGoalInput_NormalizeAndValidate(t *testing.T) {
	in := GoalInput{Name: " Food cap ", Month: "2024-03", LimitAmount: dec("500")}.Normalize()
	assert.Equal(t, "Food cap", in.Name)
	assert.Equal(t, CategoryAll, in.Category)
	require.NoError(t, in.Validate())

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Food cap","category":"all","month":"2024-03","limitAmount":500}`, string(data))

	err = GoalInput{Month: "March"}.Normalize().Validate()
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestGoalMatches(t *testing.T) {
	food := Goal{Category: "food", Month: "2024-03"}
	all := Goal{Category: CategoryAll, Month: "2024-03"}

	tests := []struct {
		name string
		goal Goal
		txn  Transaction
		want bool
	}{
		{"same category and month", food, Transaction{Date: "2024-03-05", Type: TypeExpense, Category: "food"}, true},
		{"other category", food, Transaction{Date: "2024-03-05", Type: TypeExpense, Category: "rent"}, false},
		{"all matches any category", all, Transaction{Date: "2024-03-05", Type: TypeExpense, Category: "rent"}, true},
		{"other month", all, Transaction{Date: "2024-04-01", Type: TypeExpense}, false},
		{"income never counts", all, Transaction{Date: "2024-03-05", Type: TypeIncome}, false},
		{"undated never counts", all, Transaction{Type: TypeExpense}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.goal.Matches(tt.txn))
		})
	}
}

func TestAlertKindAndIcon(t *testing.T) {
	assert.Equal(t, AlertInfo, Alert{}.Kind())
	assert.Equal(t, AlertInfo, Alert{Type: "shiny"}.Kind())
	assert.Equal(t, "✅", Alert{}.Icon())
	assert.Equal(t, "⚠️", Alert{Type: AlertWarning}.Icon())
	assert.Equal(t, "⛔", Alert{Type: AlertDanger}.Icon())
}

func TestInsightsHeadline(t *testing.T) {
	assert.Equal(t, InsightsFallback, Insights{}.Headline())
	assert.Equal(t, "All good.", Insights{Summary: "All good."}.Headline())
	assert.Equal(t, "All good. Save more.", Insights{Summary: "All good.", Suggestions: []string{"Save more.", "Ignored."}}.Headline())
	assert.Equal(t, InsightsFallback+" Save more.", Insights{Suggestions: []string{"Save more."}}.Headline())
}

func TestSummaryUnmarshal(t *testing.T) {
	var s Summary
	require.NoError(t, json.Unmarshal([]byte(`{"currentBalance":150.5,"totalIncome":"200","totalSpending":null}`), &s))
	assert.Equal(t, "150.50", s.CurrentBalance.StringFixed(2))
	assert.Equal(t, "200.00", s.TotalIncome.StringFixed(2))
	assert.True(t, s.TotalSpending.IsZero())
}
