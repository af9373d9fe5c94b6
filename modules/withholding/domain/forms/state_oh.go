package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

// Exemption value per dependent by modified adjusted gross income.
var ohExemptionValue = worksheet.Tiers(
	[2]int64{40_000, 2400},
	[2]int64{80_000, 2150},
	[2]int64{0, 1900},
)

func ohioIT4() types.Definition {
	return types.Definition{
		StateCode: "OH",
		FormID:    "OH-IT4",
		Title:     "Form IT 4 Employee's Withholding Exemption Certificate",
		Fields: []types.Field{
			code("school_district_number", "Public school district of residence number", 4),
			flag("allow_self", "Exemption for yourself"),
			flag("allow_spouse", "Exemption for your spouse"),
			number("dependents", "Dependents"),
			number("expected_income", "Expected Ohio adjusted gross income"),
			additionalWithholding(),
			claimExempt(),
			enum("exempt_reason", "Reason for exemption", "military_spouse", "reciprocal_state", "no_liability"),
			stateAbbrev("reciprocal_state", "State of residence"),
		},
		Sections: []types.Section{
			{
				Name:    "exemption",
				When:    "claim_exempt",
				Require: []string{"exempt_reason"},
				Show:    []string{"exempt_reason"},
			},
			{
				Name:    "reciprocal",
				When:    `claim_exempt && exempt_reason == "reciprocal_state"`,
				Require: []string{"reciprocal_state"},
				Show:    []string{"reciprocal_state"},
			},
		},
		Reads: reads(
			"allow_self", "allow_spouse", "dependents", "expected_income", "additional_withholding", "claim_exempt",
		),
		Compute: computeOhioIT4,
	}
}

func computeOhioIT4(in types.Inputs) types.DerivedTotals {
	exemptions := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse")) + in.Count("dependents")
	each := worksheet.TierAmount(ohExemptionValue, in.Number("expected_income"))
	return types.NewDerivedTotals().
		SetInt("totalExemptions", exemptions).
		Set("exemptionValue", each).
		Set("exemptionDollars", worksheet.Int(exemptions).Mul(each)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
