package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

const riPerExemption = 4950

var riPhaseoutIncome = worksheet.Dollars(241_850)

func rhodeIslandW4() types.Definition {
	return types.Definition{
		StateCode: "RI",
		FormID:    "RI-W4",
		Title:     "Form RI W-4 Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married", "married_single_rate")),
			number("allowances", "Total number of allowances"),
			number("expected_income", "Expected annual wages"),
			additionalWithholding(),
			claimExempt(),
		},
		Reads:   reads("allowances", "expected_income", "additional_withholding", "claim_exempt"),
		Compute: computeRhodeIslandW4,
	}
}

func computeRhodeIslandW4(in types.Inputs) types.DerivedTotals {
	allowances := in.Count("allowances")
	if in.Number("expected_income").GreaterThan(riPhaseoutIncome) {
		allowances = 0
	}
	return types.NewDerivedTotals().
		SetInt("totalAllowances", allowances).
		Set("allowanceDollars", worksheet.Times(allowances, riPerExemption)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
