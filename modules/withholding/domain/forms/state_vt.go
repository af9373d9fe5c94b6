package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

func vermontW4VT() types.Definition {
	return types.Definition{
		StateCode: "VT",
		FormID:    "VT-W4VT",
		Title:     "Form W-4VT Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married", "married_single_rate")),
			number("allowances", "Total number of allowances"),
			additionalWithholding(),
			claimExempt(),
		},
		Reads:   reads("allowances", "additional_withholding", "claim_exempt"),
		Compute: computeVermontW4,
	}
}

func computeVermontW4(in types.Inputs) types.DerivedTotals {
	allowances := in.Count("allowances")
	return types.NewDerivedTotals().
		SetInt("totalAllowances", allowances).
		Set("allowanceDollars", worksheet.Times(allowances, 5100)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
