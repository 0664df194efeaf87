package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LenientDecimal decodes a JSON money value. Numbers and numeric strings are
// accepted; anything else (null, booleans, objects, garbage text) is zero.
func LenientDecimal(raw json.RawMessage) decimal.Decimal {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.Zero
		}
		s = strings.TrimSpace(str)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// lenientString decodes a JSON string field. Any other JSON value is "".
func lenientString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// lenientID is lenientString that also keeps a numeric id as its digits.
func lenientID(raw json.RawMessage) string {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return lenientString(raw)
}

// ParseAmount parses user-entered money: non-negative, at most 2 decimal places.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := checkAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func checkAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d)
	}
	hundred := decimal.NewFromInt(100)
	if !d.Mul(hundred).Equal(d.Mul(hundred).Floor()) {
		return fmt.Errorf("%w: %s has more than 2 decimal places", ErrInvalidAmount, d)
	}
	return nil
}

// jsonNumber renders d as a bare JSON number so the API receives a float, not a string.
func jsonNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
