package worksheet

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// maxInput is the largest raw amount accepted; anything above it is treated as
// a malformed entry and clamped to zero like any other unparsable value.
var maxInput = decimal.NewFromInt(1_000_000_000_000)

const maxInputText = 24

// CleanNumber turns a raw form value into a non-negative amount. Absent, blank,
// non-numeric, negative and overflowing values all become zero.
func CleanNumber(v any) decimal.Decimal {
	var d decimal.Decimal
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		d = t
	case int:
		d = decimal.NewFromInt(int64(t))
	case int32:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case float32:
		return cleanFloat(float64(t))
	case float64:
		return cleanFloat(t)
	case json.Number:
		return cleanText(t.String())
	case string:
		return cleanText(t)
	default:
		return decimal.Zero
	}
	if d.IsNegative() || d.GreaterThan(maxInput) {
		return decimal.Zero
	}
	return d
}

// CleanCount is CleanNumber floored to a whole allowance count.
func CleanCount(v any) int64 {
	return CleanNumber(v).Floor().IntPart()
}

func cleanFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > 1e12 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func cleanText(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxInputText {
		return decimal.Zero
	}
	dots := 0
	digits := 0
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch >= '0' && ch <= '9':
			digits++
		case ch == '.':
			dots++
		default:
			// signs, exponents and letters are all rejected
			return decimal.Zero
		}
	}
	if digits == 0 || dots > 1 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.GreaterThan(maxInput) {
		return decimal.Zero
	}
	return d
}

func Dollars(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func Max0(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// FloorDiv returns floor(max(a,0) / b); a non-positive divisor yields zero.
func FloorDiv(a decimal.Decimal, b decimal.Decimal) decimal.Decimal {
	if !b.IsPositive() {
		return decimal.Zero
	}
	q, _ := Max0(a).QuoRem(b, 0)
	return q
}

// Sum adds amounts after clamping each to zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(Max0(a))
	}
	return total
}

func Int(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// Times is count allowances worth each dollars apiece; negative counts are zero.
func Times(count int64, each int64) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(count).Mul(decimal.NewFromInt(each))
}
