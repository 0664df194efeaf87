package importer

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/finai-dev/finai/internal/model"
)

// IsDuplicate reports whether a and b look like the same bank row: same date,
// type and amount, and descriptions within a small edit distance.
func IsDuplicate(a, b model.Transaction) bool {
	if a.Date != b.Date || a.Type != b.Type || !a.Amount.Equal(b.Amount) {
		return false
	}
	da, db := strings.ToUpper(a.Description), strings.ToUpper(b.Description)
	maxlen := max(len(da), len(db))
	if maxlen == 0 {
		return true
	}
	return float64(levenshtein.ComputeDistance(da, db))/float64(maxlen) < 0.4
}

// Dedupe drops incoming rows that duplicate an existing transaction or an
// earlier incoming row. It returns the rows to import and the number skipped.
func Dedupe(incoming, existing []model.Transaction) ([]model.Transaction, int) {
	var keep []model.Transaction
	skipped := 0
	for _, t := range incoming {
		if containsDuplicate(existing, t) || containsDuplicate(keep, t) {
			skipped++
			continue
		}
		keep = append(keep, t)
	}
	return keep, skipped
}

func containsDuplicate(list []model.Transaction, t model.Transaction) bool {
	for _, o := range list {
		if IsDuplicate(o, t) {
			return true
		}
	}
	return false
}
