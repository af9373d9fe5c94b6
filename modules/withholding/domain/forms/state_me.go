package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var meStandardDeduction = worksheet.NewFilingStatusTable(map[string]int64{
	"single":              14_600,
	"married":             29_200,
	"married_single_rate": 14_600,
})

var mePerAllowance = worksheet.Dollars(5000)

func maineW4ME() types.Definition {
	return types.Definition{
		StateCode: "ME",
		FormID:    "ME-W4ME",
		Title:     "Form W-4ME Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married", "married_single_rate")),
			number("basic_allowances", "Allowances for yourself, spouse and dependents"),
			number("itemized_deductions", "Estimated itemized deductions"),
			number("adjustments_income", "Adjustments to income"),
			number("non_wage_income", "Non-wage income"),
			additionalWithholding(),
			claimExempt(),
		},
		Reads: reads(
			"filing_status", "basic_allowances", "itemized_deductions", "adjustments_income",
			"non_wage_income", "additional_withholding", "claim_exempt",
		),
		Compute: computeMaineW4ME,
	}
}

func computeMaineW4ME(in types.Inputs) types.DerivedTotals {
	basic := in.Count("basic_allowances")
	b := worksheet.Itemized{
		Itemized:      in.Number("itemized_deductions"),
		Standard:      meStandardDeduction.Amount(in.Text("filing_status")),
		Adjustments:   in.Number("adjustments_income"),
		NonWageIncome: in.Number("non_wage_income"),
		PerAllowance:  mePerAllowance,
	}.Compute()
	return types.NewDerivedTotals().
		SetInt("basicAllowances", basic).
		Set("deductionsExcess", b.ReducedBase).
		Set("worksheetAllowances", b.Allowances).
		Set("totalAllowances", worksheet.Int(basic).Add(b.Allowances)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
