package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var ksAllowanceRate = worksheet.NewFilingStatusTable(map[string]int64{
	"single": 3000,
	"joint":  6000,
})

func kansasK4() types.Definition {
	return types.Definition{
		StateCode: "KS",
		FormID:    "KS-K4",
		Title:     "K-4 Kansas Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("allowance_rate", "Allowance rate", "single", "joint")),
			number("dependents", "Dependents"),
			additionalWithholding(),
			claimExempt(),
		},
		Reads:   reads("allowance_rate", "dependents", "additional_withholding", "claim_exempt"),
		Compute: computeKansasK4,
	}
}

func computeKansasK4(in types.Inputs) types.DerivedTotals {
	rate := ksAllowanceRate.Amount(in.Text("allowance_rate"))
	dependents := worksheet.Times(in.Count("dependents"), 2250)
	return types.NewDerivedTotals().
		Set("allowanceRateDollars", rate).
		Set("dependentDollars", dependents).
		Set("totalAllowanceDollars", rate.Add(dependents)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
