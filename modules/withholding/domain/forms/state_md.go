package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

// Value of each exemption by expected federal AGI.
var mdExemptionValue = worksheet.Tiers(
	[2]int64{100_000, 3200},
	[2]int64{125_000, 1600},
	[2]int64{150_000, 800},
	[2]int64{0, 0},
)

var mdExemptReasons = []string{"none", "no_liability", "resident_of_pa", "resident_of_dc_va_wv", "military_spouse"}

func marylandMW507() types.Definition {
	return types.Definition{
		StateCode: "MD",
		FormID:    "MD-MW507",
		Title:     "Form MW507 Employee's Maryland Withholding Exemption Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married_joint", "married_separate", "head_of_household")),
			number("expected_agi", "Expected federal adjusted gross income"),
			number("personal_exemptions", "Personal exemptions"),
			number("dependent_exemptions", "Dependent exemptions"),
			additionalWithholding(),
			enum("exempt_reason", "Exemption from withholding", mdExemptReasons...),
			text("county_of_residence", "Maryland county of residence"),
			stateAbbrev("domicile_state", "State of domicile"),
		},
		Sections: []types.Section{
			{
				Name:    "resident_county",
				When:    `exempt_reason == "none"`,
				Require: []string{"county_of_residence"},
				Show:    []string{"county_of_residence"},
			},
			{
				Name:    "military_spouse",
				When:    `exempt_reason == "military_spouse"`,
				Require: []string{"domicile_state"},
				Show:    []string{"domicile_state"},
			},
		},
		Reads: reads(
			"expected_agi", "personal_exemptions", "dependent_exemptions", "additional_withholding", "exempt_reason",
		),
		Compute: computeMarylandMW507,
	}
}

func computeMarylandMW507(in types.Inputs) types.DerivedTotals {
	each := worksheet.TierAmount(mdExemptionValue, in.Number("expected_agi"))
	count := in.Count("personal_exemptions") + in.Count("dependent_exemptions")
	reason := in.Text("exempt_reason")
	return types.NewDerivedTotals().
		Set("exemptionValue", each).
		SetInt("totalExemptions", count).
		Set("exemptionDollars", worksheet.Int(count).Mul(each)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", reason != "" && reason != "none")
}
