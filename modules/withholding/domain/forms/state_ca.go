package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var (
	caStandardDeduction = worksheet.Dollars(5540)
	caPerAllowance      = worksheet.Dollars(1000)
)

func californiaDE4() types.Definition {
	return types.Definition{
		StateCode: "CA",
		FormID:    "CA-DE4",
		Title:     "DE 4 Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married", "head_of_household")),
			flag("allow_self", "Regular withholding allowance for yourself"),
			flag("allow_spouse", "Allowance for your spouse"),
			flag("allow_blind_self", "You are blind"),
			flag("allow_blind_spouse", "Your spouse is blind"),
			number("allow_dependents", "Dependents"),
			flag("claims_itemized", "Use the deductions worksheet"),
			number("itemized_deductions", "Estimated itemized deductions"),
			number("adjustments_income", "Adjustments to income"),
			number("non_wage_income", "Non-wage income"),
			additionalWithholding(),
			claimExempt(),
			flag("exempt_military_spouse", "Military spouse (MSRRA) exemption"),
			stateAbbrev("exempt_domicile_state", "State of domicile"),
		},
		Sections: []types.Section{
			{
				Name:    "deductions_worksheet",
				When:    "claims_itemized",
				Require: []string{"itemized_deductions"},
				Show:    []string{"itemized_deductions", "adjustments_income", "non_wage_income"},
			},
			{
				Name: "exemption",
				When: "claim_exempt",
				Show: []string{"exempt_military_spouse"},
			},
			{
				Name:    "military_spouse",
				When:    "claim_exempt && exempt_military_spouse",
				Require: []string{"exempt_domicile_state"},
				Show:    []string{"exempt_domicile_state"},
			},
		},
		Reads: reads(
			"allow_self", "allow_spouse", "allow_blind_self", "allow_blind_spouse", "allow_dependents",
			"itemized_deductions", "adjustments_income", "non_wage_income",
			"additional_withholding", "claim_exempt",
		),
		Compute: computeCaliforniaDE4,
	}
}

// Worksheet A counts allowances, worksheet B converts deductions beyond the
// standard deduction into additional allowances.
func computeCaliforniaDE4(in types.Inputs) types.DerivedTotals {
	worksheetA := worksheet.CountFlags(
		in.Flag("allow_self"),
		in.Flag("allow_spouse"),
		in.Flag("allow_blind_self"),
		in.Flag("allow_blind_spouse"),
	) + in.Count("allow_dependents")

	b := worksheet.Itemized{
		Itemized:      in.Number("itemized_deductions"),
		Standard:      caStandardDeduction,
		Adjustments:   in.Number("adjustments_income"),
		NonWageIncome: in.Number("non_wage_income"),
		PerAllowance:  caPerAllowance,
	}.Compute()

	return types.NewDerivedTotals().
		SetInt("worksheetATotal", worksheetA).
		Set("line3", b.ReducedBase).
		Set("line5", b.AfterAdjustments).
		Set("line7", b.AfterNonWage).
		Set("worksheetBAllowances", b.Allowances).
		Set("totalAllowances", worksheet.Int(worksheetA).Add(b.Allowances)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
