package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DerivedTotals is the output of a worksheet: named amounts and named flags.
type DerivedTotals struct {
	Numbers map[string]decimal.Decimal
	Flags   map[string]bool
}

func NewDerivedTotals() DerivedTotals {
	return DerivedTotals{
		Numbers: map[string]decimal.Decimal{},
		Flags:   map[string]bool{},
	}
}

func (t DerivedTotals) Set(name string, v decimal.Decimal) DerivedTotals {
	t.Numbers[name] = v
	return t
}

func (t DerivedTotals) SetInt(name string, v int64) DerivedTotals {
	t.Numbers[name] = decimal.NewFromInt(v)
	return t
}

func (t DerivedTotals) SetFlag(name string, v bool) DerivedTotals {
	t.Flags[name] = v
	return t
}

func (t DerivedTotals) Number(name string) decimal.Decimal {
	return t.Numbers[name]
}

func (t DerivedTotals) Int(name string) int64 {
	return t.Numbers[name].IntPart()
}

func (t DerivedTotals) Flag(name string) bool {
	return t.Flags[name]
}

func (t DerivedTotals) Len() int { return len(t.Numbers) + len(t.Flags) }

func (t DerivedTotals) Equal(o DerivedTotals) bool {
	if len(t.Numbers) != len(o.Numbers) || len(t.Flags) != len(o.Flags) {
		return false
	}
	for k, v := range t.Numbers {
		ov, ok := o.Numbers[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	for k, v := range t.Flags {
		ov, ok := o.Flags[k]
		if !ok || v != ov {
			return false
		}
	}
	return true
}

// MarshalJSON writes one flat object; amounts are bare JSON numbers.
func (t DerivedTotals) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, t.Len())
	for k, v := range t.Numbers {
		out[k] = json.Number(v.String())
	}
	for k, v := range t.Flags {
		out[k] = v
	}
	return json.Marshal(out)
}
