package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

func oklahomaW4() types.Definition {
	return types.Definition{
		StateCode: "OK",
		FormID:    "OK-W4",
		Title:     "Form OK-W-4 Employee's State Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married", "married_single_rate")),
			flag("allow_self", "Allowance for yourself"),
			flag("allow_spouse", "Allowance for your spouse"),
			number("dependents", "Dependents"),
			number("other_allowances", "Other allowances"),
			additionalWithholding(),
			claimExempt(),
		},
		Sections: []types.Section{
			{Name: "spouse", When: `filing_status == "married"`, Show: []string{"allow_spouse"}},
		},
		Reads:   reads("allow_self", "allow_spouse", "dependents", "other_allowances", "additional_withholding", "claim_exempt"),
		Compute: computeOklahomaW4,
	}
}

func computeOklahomaW4(in types.Inputs) types.DerivedTotals {
	allowances := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse")) +
		in.Count("dependents") + in.Count("other_allowances")
	return types.NewDerivedTotals().
		SetInt("totalAllowances", allowances).
		Set("allowanceDollars", worksheet.Times(allowances, 1000)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
