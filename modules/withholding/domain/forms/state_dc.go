package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var dcStandardDeduction = worksheet.NewFilingStatusTable(map[string]int64{
	"single":            14_600,
	"married_joint":     29_200,
	"married_separate":  14_600,
	"head_of_household": 21_900,
})

var dcPerAllowance = worksheet.Dollars(4150)

func districtOfColumbiaD4() types.Definition {
	return types.Definition{
		StateCode: "DC",
		FormID:    "DC-D4",
		Title:     "Form D-4 DC Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Tax filing status", "single", "married_joint", "married_separate", "head_of_household")),
			flag("allow_self", "Allowance for yourself"),
			flag("age65_self", "You are 65 or older"),
			flag("blind_self", "You are blind"),
			flag("allow_spouse", "Allowance for your spouse (joint filers)"),
			flag("age65_spouse", "Spouse is 65 or older"),
			flag("blind_spouse", "Spouse is blind"),
			number("dependents", "Dependents"),
			number("itemized_deductions", "Estimated itemized deductions"),
			additionalWithholding(),
			claimExempt(),
			stateAbbrev("domicile_state", "State of legal residence"),
		},
		Sections: []types.Section{
			{
				Name: "spouse",
				When: `filing_status == "married_joint"`,
				Show: []string{"allow_spouse", "age65_spouse", "blind_spouse"},
			},
			{
				Name:    "nonresident",
				When:    "claim_exempt",
				Require: []string{"domicile_state"},
				Show:    []string{"domicile_state"},
			},
		},
		Reads: reads(
			"filing_status", "allow_self", "age65_self", "blind_self", "allow_spouse", "age65_spouse", "blind_spouse",
			"dependents", "itemized_deductions", "additional_withholding", "claim_exempt",
		),
		Compute: computeDistrictOfColumbiaD4,
	}
}

func computeDistrictOfColumbiaD4(in types.Inputs) types.DerivedTotals {
	// The spouse section only controls visibility; checked boxes always count.
	base := worksheet.CountFlags(
		in.Flag("allow_self"), in.Flag("age65_self"), in.Flag("blind_self"),
		in.Flag("allow_spouse"), in.Flag("age65_spouse"), in.Flag("blind_spouse"),
	) + in.Count("dependents")

	itemized := worksheet.Itemized{
		Itemized:     in.Number("itemized_deductions"),
		Standard:     dcStandardDeduction.Amount(in.Text("filing_status")),
		PerAllowance: dcPerAllowance,
	}.Compute()

	return types.NewDerivedTotals().
		SetInt("worksheetTotal", base).
		Set("itemizedAllowances", itemized.Allowances).
		Set("totalAllowances", worksheet.Int(base).Add(itemized.Allowances)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
