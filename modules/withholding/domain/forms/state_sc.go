package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

const scPerAllowance = 4610

func southCarolinaW4() types.Definition {
	return types.Definition{
		StateCode: "SC",
		FormID:    "SC-W4",
		Title:     "Form SC W-4 South Carolina Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			number("allowances", "Total number of allowances"),
			additionalWithholding(),
			claimExempt(),
		},
		Reads:   reads("allowances", "additional_withholding", "claim_exempt"),
		Compute: computeSouthCarolinaW4,
	}
}

func computeSouthCarolinaW4(in types.Inputs) types.DerivedTotals {
	allowances := in.Count("allowances")
	return types.NewDerivedTotals().
		SetInt("totalAllowances", allowances).
		Set("allowanceDollars", worksheet.Times(allowances, scPerAllowance)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
