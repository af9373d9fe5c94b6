package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

const (
	ilBasicAllowance      = 2850
	ilAdditionalAllowance = 1000
)

func illinoisW4() types.Definition {
	return types.Definition{
		StateCode: "IL",
		FormID:    "IL-W4",
		Title:     "IL-W-4 Employee's and other Payee's Illinois Withholding Allowance Certificate",
		Fields: []types.Field{
			flag("allow_self", "Claim yourself"),
			flag("allow_spouse", "Claim your spouse"),
			number("dependents", "Dependents"),
			flag("age65_self", "You are 65 or older"),
			flag("blind_self", "You are legally blind"),
			flag("age65_spouse", "Spouse is 65 or older"),
			flag("blind_spouse", "Spouse is legally blind"),
			additionalWithholding(),
		},
		Reads: reads(
			"allow_self", "allow_spouse", "dependents",
			"age65_self", "blind_self", "age65_spouse", "blind_spouse", "additional_withholding",
		),
		Compute: computeIllinoisW4,
	}
}

func computeIllinoisW4(in types.Inputs) types.DerivedTotals {
	basic := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse")) + in.Count("dependents")
	additional := worksheet.CountFlags(in.Flag("age65_self"), in.Flag("blind_self"), in.Flag("age65_spouse"), in.Flag("blind_spouse"))
	return types.NewDerivedTotals().
		SetInt("basicAllowances", basic).
		SetInt("additionalAllowances", additional).
		Set("allowanceDollars", worksheet.Times(basic, ilBasicAllowance).Add(worksheet.Times(additional, ilAdditionalAllowance))).
		Set("additionalWithholding", in.Number("additional_withholding"))
}
