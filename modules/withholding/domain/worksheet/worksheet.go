package worksheet

import (
	"slices"

	"github.com/shopspring/decimal"
)

// FlagWeight is one boolean allowance flag and what it is worth when set.
type FlagWeight struct {
	On     bool
	Weight decimal.Decimal
}

func Flag(on bool, weight int64) FlagWeight {
	return FlagWeight{On: on, Weight: decimal.NewFromInt(weight)}
}

// WeightedFlags sums the weights of the flags that are set. Eligibility is the
// caller's concern.
func WeightedFlags(flags ...FlagWeight) decimal.Decimal {
	total := decimal.Zero
	for _, f := range flags {
		if f.On {
			total = total.Add(Max0(f.Weight))
		}
	}
	return total
}

// CountFlags is WeightedFlags with every weight equal to one.
func CountFlags(flags ...bool) int64 {
	var n int64
	for _, on := range flags {
		if on {
			n++
		}
	}
	return n
}

// Itemized is the deductions-and-adjustments worksheet shared by several
// certificates.
type Itemized struct {
	Itemized      decimal.Decimal
	Standard      decimal.Decimal
	Adjustments   decimal.Decimal
	NonWageIncome decimal.Decimal
	PerAllowance  decimal.Decimal
}

type ItemizedResult struct {
	ReducedBase      decimal.Decimal
	AfterAdjustments decimal.Decimal
	AfterNonWage     decimal.Decimal
	Allowances       decimal.Decimal
}

func (w Itemized) Compute() ItemizedResult {
	reducedBase := Max0(Max0(w.Itemized).Sub(Max0(w.Standard)))
	afterAdjustments := reducedBase.Add(Max0(w.Adjustments))
	afterNonWage := Max0(afterAdjustments.Sub(Max0(w.NonWageIncome)))
	return ItemizedResult{
		ReducedBase:      reducedBase,
		AfterAdjustments: afterAdjustments,
		AfterNonWage:     afterNonWage,
		Allowances:       FloorDiv(afterNonWage, w.PerAllowance),
	}
}

// FilingStatusTable maps a filing-status option to its base amount. Unknown
// statuses are worth zero.
type FilingStatusTable map[string]decimal.Decimal

func NewFilingStatusTable(dollars map[string]int64) FilingStatusTable {
	t := make(FilingStatusTable, len(dollars))
	for status, amount := range dollars {
		t[status] = decimal.NewFromInt(amount)
	}
	return t
}

func (t FilingStatusTable) Amount(status string) decimal.Decimal {
	if v, ok := t[status]; ok {
		return v
	}
	return decimal.Zero
}

func (t FilingStatusTable) Statuses() []string {
	out := make([]string, 0, len(t))
	for status := range t {
		out = append(out, status)
	}
	slices.Sort(out)
	return out
}

// Tier is one step of a threshold table. A zero UpTo marks the open-ended top
// tier.
type Tier struct {
	UpTo   decimal.Decimal
	Amount decimal.Decimal
}

func Tiers(pairs ...[2]int64) []Tier {
	out := make([]Tier, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Tier{UpTo: decimal.NewFromInt(p[0]), Amount: decimal.NewFromInt(p[1])})
	}
	return out
}

// TierAmount returns the amount of the first tier whose ceiling is at or above x.
func TierAmount(tiers []Tier, x decimal.Decimal) decimal.Decimal {
	x = Max0(x)
	for _, t := range tiers {
		if t.UpTo.IsZero() || x.LessThanOrEqual(t.UpTo) {
			return t.Amount
		}
	}
	return decimal.Zero
}
