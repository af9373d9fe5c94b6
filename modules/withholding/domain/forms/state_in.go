package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

func indianaWH4() types.Definition {
	return types.Definition{
		StateCode: "IN",
		FormID:    "IN-WH4",
		Title:     "WH-4 Employee's Withholding Exemption and County Status Certificate",
		Fields: []types.Field{
			code("county_residence", "County of residence code (Jan 1)", 2),
			code("county_principal_employment", "County of principal employment code (Jan 1)", 2),
			flag("allow_self", "Exemption for yourself"),
			flag("allow_spouse", "Exemption for your spouse"),
			number("dependents", "Dependents"),
			number("additional_dependents", "Qualifying dependent children"),
			flag("age65_self", "You are 65 or older"),
			flag("blind_self", "You are blind"),
			flag("age65_spouse", "Spouse is 65 or older"),
			flag("blind_spouse", "Spouse is blind"),
			additionalWithholding(),
			number("additional_county_withholding", "Additional county withholding"),
		},
		Sections: []types.Section{
			{
				Name:    "nonresident_county",
				When:    `county_residence == ""`,
				Require: []string{"county_principal_employment"},
			},
		},
		Reads: reads(
			"allow_self", "allow_spouse", "dependents", "additional_dependents",
			"age65_self", "blind_self", "age65_spouse", "blind_spouse",
			"additional_withholding", "additional_county_withholding",
		),
		Compute: computeIndianaWH4,
	}
}

func computeIndianaWH4(in types.Inputs) types.DerivedTotals {
	personal := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse")) + in.Count("dependents")
	extraDependents := in.Count("additional_dependents")
	ageBlind := worksheet.CountFlags(in.Flag("age65_self"), in.Flag("blind_self"), in.Flag("age65_spouse"), in.Flag("blind_spouse"))
	return types.NewDerivedTotals().
		SetInt("personalExemptions", personal).
		SetInt("additionalDependentExemptions", extraDependents).
		SetInt("ageBlindExemptions", ageBlind).
		Set("exemptionDollars", worksheet.Sum(
			worksheet.Times(personal, 1000),
			worksheet.Times(extraDependents, 1500),
			worksheet.Times(ageBlind, 1000),
		)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		Set("additionalCountyWithholding", in.Number("additional_county_withholding"))
}
