package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

const miPersonalExemption = 5600

var miExemptReasons = []string{"no_liability", "renaissance_zone", "military_spouse", "native_american"}

func michiganW4() types.Definition {
	return types.Definition{
		StateCode: "MI",
		FormID:    "MI-W4",
		Title:     "MI-W4 Employee's Michigan Withholding Exemption Certificate",
		Fields: []types.Field{
			text("drivers_license", "Driver's license number"),
			flag("new_hire", "New employee"),
			date("hire_date", "Date of hire"),
			number("personal_exemptions", "Personal and dependent exemptions"),
			additionalWithholding(),
			claimExempt(),
			enum("exempt_reason", "Reason for exemption", miExemptReasons...),
		},
		Sections: []types.Section{
			{
				Name: "new_hire",
				When: "new_hire",
				Show: []string{"hire_date"},
			},
			{
				Name:    "exemption",
				When:    "claim_exempt",
				Require: []string{"exempt_reason"},
				Show:    []string{"exempt_reason"},
			},
		},
		Reads:   reads("personal_exemptions", "additional_withholding", "claim_exempt"),
		Compute: computeMichiganW4,
	}
}

func computeMichiganW4(in types.Inputs) types.DerivedTotals {
	exemptions := in.Count("personal_exemptions")
	return types.NewDerivedTotals().
		SetInt("totalExemptions", exemptions).
		Set("exemptionDollars", worksheet.Times(exemptions, miPersonalExemption)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
