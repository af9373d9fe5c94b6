package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
	"github.com/shopspring/decimal"
)

var orStandardDeduction = worksheet.NewFilingStatusTable(map[string]int64{
	"single":  2745,
	"married": 5495,
})

// Income above which the personal exemption credit phases out entirely.
var orPhaseout = worksheet.NewFilingStatusTable(map[string]int64{
	"single":  100_000,
	"married": 200_000,
})

var orPerAllowance = worksheet.Dollars(2745)

func oregonW4() types.Definition {
	return types.Definition{
		StateCode: "OR",
		FormID:    "OR-W4",
		Title:     "Form OR-W-4 Oregon Employee's Withholding Statement and Exemption Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married")),
			number("expected_income", "Expected federal adjusted gross income"),
			number("basic_allowances", "Allowances for yourself, spouse and dependents"),
			number("itemized_deductions", "Estimated Oregon itemized deductions"),
			number("adjustments_income", "Adjustments to income"),
			additionalWithholding(),
			claimExempt(),
		},
		Reads: reads(
			"filing_status", "expected_income", "basic_allowances",
			"itemized_deductions", "adjustments_income", "additional_withholding", "claim_exempt",
		),
		Compute: computeOregonW4,
	}
}

func computeOregonW4(in types.Inputs) types.DerivedTotals {
	status := in.Text("filing_status")
	basic := worksheet.Int(in.Count("basic_allowances"))
	phaseout := orPhaseout.Amount(status)
	if !phaseout.IsZero() && in.Number("expected_income").GreaterThan(phaseout) {
		basic = decimal.Zero
	}
	b := worksheet.Itemized{
		Itemized:     in.Number("itemized_deductions"),
		Standard:     orStandardDeduction.Amount(status),
		Adjustments:  in.Number("adjustments_income"),
		PerAllowance: orPerAllowance,
	}.Compute()
	return types.NewDerivedTotals().
		Set("basicAllowances", basic).
		Set("worksheetAllowances", b.Allowances).
		Set("totalAllowances", basic.Add(b.Allowances)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
