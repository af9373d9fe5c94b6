package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var ncStandardDeduction = worksheet.NewFilingStatusTable(map[string]int64{
	"single":             12_750,
	"married_joint":      25_500,
	"head_of_household":  19_125,
	"qualifying_widower": 25_500,
})

var ncPerAllowance = worksheet.Dollars(2500)

func northCarolinaNC4() types.Definition {
	return types.Definition{
		StateCode: "NC",
		FormID:    "NC-NC4",
		Title:     "Form NC-4 Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married_joint", "head_of_household", "qualifying_widower")),
			number("child_deduction_allowances", "Allowances for the child deduction"),
			number("itemized_deductions", "N.C. itemized deductions"),
			number("adjustments_income", "Adjustments to income"),
			number("non_wage_income", "Non-wage income"),
			additionalWithholding(),
			claimExempt(),
		},
		Reads: reads(
			"filing_status", "child_deduction_allowances", "itemized_deductions",
			"adjustments_income", "non_wage_income", "additional_withholding", "claim_exempt",
		),
		Compute: computeNorthCarolinaNC4,
	}
}

func computeNorthCarolinaNC4(in types.Inputs) types.DerivedTotals {
	child := in.Count("child_deduction_allowances")
	b := worksheet.Itemized{
		Itemized:      in.Number("itemized_deductions"),
		Standard:      ncStandardDeduction.Amount(in.Text("filing_status")),
		Adjustments:   in.Number("adjustments_income"),
		NonWageIncome: in.Number("non_wage_income"),
		PerAllowance:  ncPerAllowance,
	}.Compute()
	return types.NewDerivedTotals().
		SetInt("childAllowances", child).
		Set("deductionAllowances", b.Allowances).
		Set("totalAllowances", worksheet.Int(child).Add(b.Allowances)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
