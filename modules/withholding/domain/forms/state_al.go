package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var alPersonalExemption = worksheet.NewFilingStatusTable(map[string]int64{
	"none":             0,
	"single":           1500,
	"married_separate": 1500,
	"married":          3000,
	"head_of_family":   3000,
})

// Dependent exemption per dependent falls as expected income rises.
var alDependentExemption = worksheet.Tiers(
	[2]int64{20_000, 1000},
	[2]int64{100_000, 500},
	[2]int64{0, 300},
)

func alabamaA4() types.Definition {
	return types.Definition{
		StateCode: "AL",
		FormID:    "AL-A4",
		Title:     "Form A-4 Employee's Withholding Exemption Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Personal exemption", "none", "single", "married_separate", "married", "head_of_family")),
			number("dependents", "Number of dependents"),
			number("expected_annual_income", "Expected annual income"),
			additionalWithholding(),
			claimExempt(),
		},
		Sections: []types.Section{
			{
				Name:    "dependent_income",
				When:    "dependents > 0.0",
				Require: []string{"expected_annual_income"},
				Show:    []string{"expected_annual_income"},
			},
		},
		Reads:   reads("filing_status", "dependents", "expected_annual_income", "additional_withholding", "claim_exempt"),
		Compute: computeAlabamaA4,
	}
}

func computeAlabamaA4(in types.Inputs) types.DerivedTotals {
	personal := alPersonalExemption.Amount(in.Text("filing_status"))
	each := worksheet.TierAmount(alDependentExemption, in.Number("expected_annual_income"))
	dependents := worksheet.Int(in.Count("dependents")).Mul(each)
	return types.NewDerivedTotals().
		Set("personalExemption", personal).
		Set("dependentExemptionEach", each).
		Set("dependentExemption", dependents).
		Set("totalExemptionDollars", personal.Add(dependents)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
