package types

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
	"github.com/shopspring/decimal"
)

// Inputs is the read side of a draft's raw values as seen by a worksheet.
type Inputs interface {
	Number(name string) decimal.Decimal
	Count(name string) int64
	Flag(name string) bool
	Text(name string) string
}

// RawValues holds user-entered values keyed by field name. Values are whatever
// the client sent (string, number, bool).
type RawValues map[string]any

func (v RawValues) Number(name string) decimal.Decimal { return worksheet.CleanNumber(v[name]) }

func (v RawValues) Count(name string) int64 { return worksheet.CleanCount(v[name]) }

func (v RawValues) Flag(name string) bool { return ParseFlag(v[name]) }

func (v RawValues) Text(name string) string { return FormatText(v[name]) }

func (v RawValues) Clone() RawValues {
	out := make(RawValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// IsBlank reports whether the named value is missing or empty.
func (v RawValues) IsBlank(name string) bool {
	val, ok := v[name]
	if !ok || val == nil {
		return true
	}
	switch t := val.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case []byte:
		return len(t) == 0
	default:
		return false
	}
}

// ParseFlag accepts the checkbox encodings clients send. Anything unrecognised
// is false.
func ParseFlag(val any) bool {
	switch t := val.(type) {
	case bool:
		return t
	case int:
		return t > 0
	case int64:
		return t > 0
	case float64:
		return t > 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f > 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y", "on", "x", "checked":
			return true
		}
	}
	return false
}

func FormatText(val any) string {
	switch t := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
