package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finai-dev/finai/internal/category"
	"github.com/finai-dev/finai/internal/model"
)

const chaseHeader = "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"

const chaseChecking = chaseHeader +
	"DEBIT,01/03/2025,GITHUB *PRO SUBSCRIPTION,-4.00,ACH_DEBIT,5996.00,\n" +
	"DEBIT,01/05/2025,WHOLE FOODS MARKET #123,-82.45,DEBIT_CARD,5913.55,\n" +
	"DEBIT,01/08/2025,MONTHLY RENT PAYMENT,-1500.00,ACH_DEBIT,4413.55,\n" +
	"CREDIT,01/10/2025,ACME CONSULTING INVOICE 1042,3500.00,ACH_CREDIT,7913.55,\n" +
	"DEBIT,01/15/2025,UNITED AIRLINES TRAVEL,-420.10,DEBIT_CARD,7493.45,\n" +
	"DEBIT,01/22/2025,AMAZON SHOPPING,-63.99,DEBIT_CARD,7429.46,\n"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestChaseParser_Parse(t *testing.T) {
	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader(chaseChecking))
	require.NoError(t, err)
	require.Len(t, txns, 6)

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", txns[0].Description)
	assert.Equal(t, "2025-01-03", txns[0].Date)
	assert.Equal(t, model.TypeExpense, txns[0].Type)
	assert.Equal(t, "4.00", txns[0].Amount.StringFixed(2))
	assert.Equal(t, category.Other, txns[0].Category)

	assert.Equal(t, "ACME CONSULTING INVOICE 1042", txns[3].Description)
	assert.Equal(t, model.TypeIncome, txns[3].Type)
	assert.Equal(t, "3500.00", txns[3].Amount.StringFixed(2))

	assert.Equal(t, "2025-01-22", txns[5].Date)
}

func TestChaseParser_RowsAreValid(t *testing.T) {
	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader(chaseChecking))
	require.NoError(t, err)

	for _, txn := range txns {
		assert.NoError(t, txn.Validate(), txn.Description)
		assert.False(t, txn.Amount.IsNegative())
	}
}

func TestChaseParser_EmptyFile(t *testing.T) {
	p := &ChaseParser{}
	txns, err := p.Parse(strings.NewReader(chaseHeader))
	require.NoError(t, err)
	assert.Nil(t, txns)
}

func TestChaseParser_BadDate(t *testing.T) {
	csv := chaseHeader + "DEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n"
	_, err := (&ChaseParser{}).Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "parsing date")
}

func TestChaseParser_BadAmount(t *testing.T) {
	csv := chaseHeader + "DEBIT,01/03/2025,desc,NOTANUMBER,ACH_DEBIT,100.00,\n"
	_, err := (&ChaseParser{}).Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestGenericParser_Parse(t *testing.T) {
	csv := "Date, Description, Amount, Type, Category\n" +
		"2024-03-01,Salary,\"1,000.00\",credit,salary\n" +
		"03/02/2024,Groceries,250,expense,\n" +
		"2024/03/03,Refund,-15.5,,\n"

	txns, err := (&GenericParser{}).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, "2024-03-01", txns[0].Date)
	assert.Equal(t, model.TypeIncome, txns[0].Type)
	assert.Equal(t, "salary", txns[0].Category)
	assert.True(t, txns[0].Amount.Equal(dec("1000")))

	assert.Equal(t, "2024-03-02", txns[1].Date)
	assert.Equal(t, model.TypeExpense, txns[1].Type)
	assert.Equal(t, category.Other, txns[1].Category)

	assert.Equal(t, model.TypeExpense, txns[2].Type)
	assert.True(t, txns[2].Amount.Equal(dec("15.5")))
}

func TestGenericParser_MissingColumn(t *testing.T) {
	_, err := (&GenericParser{}).Parse(strings.NewReader("date,amount\n2024-03-01,4\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestGenericParser_BadDate(t *testing.T) {
	_, err := (&GenericParser{}).Parse(strings.NewReader("date,description,amount\nsoon,x,4\n"))
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}

func TestCategorize(t *testing.T) {
	txns, err := (&ChaseParser{}).Parse(strings.NewReader(chaseChecking))
	require.NoError(t, err)

	Categorize(txns, []string{"rent", "travel", "shopping", "food"})
	assert.Equal(t, category.Other, txns[0].Category)
	assert.Equal(t, "food", txns[1].Category)
	assert.Equal(t, "rent", txns[2].Category)
	assert.Equal(t, "travel", txns[4].Category)
	assert.Equal(t, "shopping", txns[5].Category)
}

func TestDedupe(t *testing.T) {
	existing := []model.Transaction{
		{Date: "2025-01-03", Type: model.TypeExpense, Description: "GITHUB *PRO SUBSCRIPTION", Amount: dec("4")},
	}
	incoming := []model.Transaction{
		{Date: "2025-01-03", Type: model.TypeExpense, Description: "GITHUB PRO SUBSCRIPTION", Amount: dec("4.00")},
		{Date: "2025-01-03", Type: model.TypeExpense, Description: "GITHUB *PRO SUBSCRIPTION", Amount: dec("5")},
		{Date: "2025-01-04", Type: model.TypeIncome, Description: "Refund", Amount: dec("5")},
		{Date: "2025-01-04", Type: model.TypeIncome, Description: "REFUND", Amount: dec("5")},
	}

	keep, skipped := Dedupe(incoming, existing)
	assert.Equal(t, 2, skipped)
	require.Len(t, keep, 2)
	assert.True(t, keep[0].Amount.Equal(dec("5")))
	assert.Equal(t, "Refund", keep[1].Description)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))

	r.Register(&ChaseParser{})
	assert.NotNil(t, r.Get("Chase"))
	assert.NotNil(t, r.Get("CHASE"))
	assert.Panics(t, func() { r.Register(&ChaseParser{}) })

	d := DefaultRegistry()
	assert.Equal(t, "chase", d.Get("chase").Format())
	assert.Equal(t, "generic", d.Get("generic").Format())
}

func TestScan_FindsCSVs(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(filepath.Join(importDir, "processed"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.CSV"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "other.txt"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "processed", "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "bank.CSV", files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestScan_NoImportDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "bank.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.csv"))

	_, err := os.Stat(filepath.Join(importDir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "import", "processed", "bank.csv"))
	assert.NoError(t, err)
}
