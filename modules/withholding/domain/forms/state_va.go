package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

func virginiaVA4() types.Definition {
	return types.Definition{
		StateCode: "VA",
		FormID:    "VA-VA4",
		Title:     "Form VA-4 Employee's Virginia Income Tax Withholding Exemption Certificate",
		Fields: []types.Field{
			flag("allow_self", "Exemption for yourself"),
			flag("allow_spouse", "Exemption for your spouse"),
			number("dependents", "Dependents"),
			flag("age65_self", "You are 65 or older"),
			flag("blind_self", "You are blind"),
			flag("age65_spouse", "Spouse is 65 or older"),
			flag("blind_spouse", "Spouse is blind"),
			additionalWithholding(),
			claimExempt(),
			flag("military_spouse", "Military spouse exemption"),
		},
		Sections: []types.Section{
			{Name: "exemption", When: "claim_exempt", Show: []string{"military_spouse"}},
		},
		Reads: reads(
			"allow_self", "allow_spouse", "dependents",
			"age65_self", "blind_self", "age65_spouse", "blind_spouse",
			"additional_withholding", "claim_exempt",
		),
		Compute: computeVirginiaVA4,
	}
}

func computeVirginiaVA4(in types.Inputs) types.DerivedTotals {
	personal := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse")) + in.Count("dependents")
	ageBlind := worksheet.CountFlags(in.Flag("age65_self"), in.Flag("blind_self"), in.Flag("age65_spouse"), in.Flag("blind_spouse"))
	return types.NewDerivedTotals().
		SetInt("personalExemptions", personal).
		SetInt("ageBlindExemptions", ageBlind).
		Set("exemptionDollars", worksheet.Times(personal, 930).Add(worksheet.Times(ageBlind, 800))).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
