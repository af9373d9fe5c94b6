package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

func massachusettsM4() types.Definition {
	return types.Definition{
		StateCode: "MA",
		FormID:    "MA-M4",
		Title:     "Form M-4 Massachusetts Employee's Withholding Exemption Certificate",
		Fields: []types.Field{
			flag("allow_self", "Personal exemption for yourself"),
			flag("allow_spouse", "Personal exemption for your spouse"),
			number("dependents", "Dependents"),
			flag("age65_self", "You are 65 or older"),
			flag("blind_self", "You are blind"),
			flag("age65_spouse", "Spouse is 65 or older"),
			flag("blind_spouse", "Spouse is blind"),
			flag("head_of_household", "Head of household"),
			flag("full_time_student", "Full-time student exempt from FICA"),
			additionalWithholding(),
		},
		Reads: reads(
			"allow_self", "allow_spouse", "dependents",
			"age65_self", "blind_self", "age65_spouse", "blind_spouse",
			"head_of_household", "additional_withholding",
		),
		Compute: computeMassachusettsM4,
	}
}

func computeMassachusettsM4(in types.Inputs) types.DerivedTotals {
	exemptions := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse")) + in.Count("dependents")
	ageBlind := worksheet.CountFlags(in.Flag("age65_self"), in.Flag("blind_self"), in.Flag("age65_spouse"), in.Flag("blind_spouse"))
	return types.NewDerivedTotals().
		SetInt("totalExemptions", exemptions).
		SetInt("ageBlindExemptions", ageBlind).
		Set("exemptionDollars", worksheet.Sum(
			worksheet.Times(exemptions, 1000),
			worksheet.Times(ageBlind, 2200),
		)).
		SetFlag("headOfHousehold", in.Flag("head_of_household")).
		Set("additionalWithholding", in.Number("additional_withholding"))
}
