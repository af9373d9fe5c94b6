package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

const nePerAllowance = 2340

func nebraskaW4N() types.Definition {
	return types.Definition{
		StateCode: "NE",
		FormID:    "NE-W4N",
		Title:     "Form W-4N Nebraska Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married")),
			number("allowances", "Total number of allowances"),
			additionalWithholding(),
			claimExempt(),
		},
		Reads:   reads("allowances", "additional_withholding", "claim_exempt"),
		Compute: computeNebraskaW4N,
	}
}

func computeNebraskaW4N(in types.Inputs) types.DerivedTotals {
	allowances := in.Count("allowances")
	return types.NewDerivedTotals().
		SetInt("totalAllowances", allowances).
		Set("allowanceDollars", worksheet.Times(allowances, nePerAllowance)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
