package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var mnStandardDeduction = worksheet.NewFilingStatusTable(map[string]int64{
	"single":            14_575,
	"married":           29_150,
	"head_of_household": 21_900,
})

var mnPerAllowance = worksheet.Dollars(5050)

func minnesotaW4MN() types.Definition {
	return types.Definition{
		StateCode: "MN",
		FormID:    "MN-W4MN",
		Title:     "Form W-4MN Minnesota Employee Withholding Allowance/Exemption Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married", "head_of_household")),
			flag("allow_self", "Allowance for yourself"),
			flag("allow_spouse", "Allowance for your spouse"),
			number("dependents", "Dependents"),
			number("itemized_deductions", "Estimated itemized deductions"),
			number("adjustments_income", "Adjustments to income"),
			number("non_wage_income", "Non-wage income"),
			additionalWithholding(),
			claimExempt(),
		},
		Sections: []types.Section{
			{Name: "spouse", When: `filing_status == "married"`, Show: []string{"allow_spouse"}},
		},
		Reads: reads(
			"filing_status", "allow_self", "allow_spouse", "dependents",
			"itemized_deductions", "adjustments_income", "non_wage_income",
			"additional_withholding", "claim_exempt",
		),
		Compute: computeMinnesotaW4MN,
	}
}

func computeMinnesotaW4MN(in types.Inputs) types.DerivedTotals {
	basic := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse")) + in.Count("dependents")
	b := worksheet.Itemized{
		Itemized:      in.Number("itemized_deductions"),
		Standard:      mnStandardDeduction.Amount(in.Text("filing_status")),
		Adjustments:   in.Number("adjustments_income"),
		NonWageIncome: in.Number("non_wage_income"),
		PerAllowance:  mnPerAllowance,
	}.Compute()
	return types.NewDerivedTotals().
		SetInt("basicAllowances", basic).
		Set("worksheetAllowances", b.Allowances).
		Set("totalAllowances", worksheet.Int(basic).Add(b.Allowances)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
