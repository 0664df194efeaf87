// Package importer turns bank-statement CSV exports into transactions.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finai-dev/finai/internal/category"
	"github.com/finai-dev/finai/internal/model"
)

// Parser converts a bank CSV file into transactions.
type Parser interface {
	Parse(r io.Reader) ([]model.Transaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&GenericParser{})
	return r
}

// fromSigned builds a transaction from a signed statement amount: money out
// is negative and becomes an expense of the absolute value.
func fromSigned(date time.Time, desc string, amount decimal.Decimal) model.Transaction {
	typ := model.TypeIncome
	if amount.IsNegative() {
		typ = model.TypeExpense
	}
	return model.Transaction{
		Date:        date.Format(model.DateLayout),
		Type:        typ,
		Category:    category.Other,
		Description: strings.TrimSpace(desc),
		Amount:      amount.Abs(),
	}
}

// Categorize fills the category of rows still marked Other from the closest
// known category.
func Categorize(txns []model.Transaction, known []string) {
	for i := range txns {
		if txns[i].Category == category.Other || txns[i].Category == "" {
			txns[i].Category = category.Guess(txns[i].Description, known)
		}
	}
}

// importDir is the subdirectory scanned for statement CSVs.
const importDir = "import"

// processedDir is where imported statements are moved.
const processedDir = "import/processed"

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	if err := os.Rename(src, filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
