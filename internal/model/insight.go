package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one confirmed turn of an advisory conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AlertType is the severity of an alert.
type AlertType string

const (
	AlertInfo    AlertType = "info"
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
)

// Alert is a notification produced by insight generation.
type Alert struct {
	Type    AlertType `json:"type"`
	Message string    `json:"message"`
}

// Kind returns the alert type, treating missing or unknown types as info.
func (a Alert) Kind() AlertType {
	switch a.Type {
	case AlertWarning, AlertDanger:
		return a.Type
	default:
		return AlertInfo
	}
}

// Icon returns the glyph shown next to the alert.
func (a Alert) Icon() string {
	switch a.Kind() {
	case AlertDanger:
		return "⛔"
	case AlertWarning:
		return "⚠️"
	default:
		return "✅"
	}
}

// InsightsFallback is shown when the insights summary is empty.
const InsightsFallback = "AI could not generate insights yet."

// Insights is the advisory summary for the current data.
type Insights struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
	Alerts      []Alert  `json:"alerts"`
}

// Headline is the insight card text: the summary plus the first suggestion.
func (in Insights) Headline() string {
	summary := strings.TrimSpace(in.Summary)
	if summary == "" {
		summary = InsightsFallback
	}
	if len(in.Suggestions) == 0 {
		return summary
	}
	return summary + " " + in.Suggestions[0]
}

// Summary holds the dashboard totals card.
type Summary struct {
	CurrentBalance decimal.Decimal
	TotalIncome    decimal.Decimal
	TotalSpending  decimal.Decimal
}

// UnmarshalJSON tolerates missing or non-numeric totals.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var w struct {
		CurrentBalance json.RawMessage `json:"currentBalance"`
		TotalIncome    json.RawMessage `json:"totalIncome"`
		TotalSpending  json.RawMessage `json:"totalSpending"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.CurrentBalance = LenientDecimal(w.CurrentBalance)
	s.TotalIncome = LenientDecimal(w.TotalIncome)
	s.TotalSpending = LenientDecimal(w.TotalSpending)
	return nil
}

// CategoryTotal is the server-side expense total for one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// UnmarshalJSON tolerates a missing or non-numeric total.
func (c *CategoryTotal) UnmarshalJSON(data []byte) error {
	var w struct {
		Category string          `json:"category"`
		Total    json.RawMessage `json:"total"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.Category = w.Category
	c.Total = LenientDecimal(w.Total)
	return nil
}
