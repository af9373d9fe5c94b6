package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

const dePersonalCredit = 110

func delawareW4() types.Definition {
	return types.Definition{
		StateCode: "DE",
		FormID:    "DE-W4",
		Title:     "Delaware Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married")),
			flag("allow_self", "Allowance for yourself"),
			flag("allow_spouse", "Allowance for your spouse"),
			flag("age60_self", "You are 60 or older"),
			flag("age60_spouse", "Spouse is 60 or older"),
			flag("blind_self", "You are blind"),
			flag("blind_spouse", "Spouse is blind"),
			number("dependents", "Dependents"),
			additionalWithholding(),
		},
		Sections: []types.Section{
			{
				Name: "spouse",
				When: `filing_status == "married"`,
				Show: []string{"allow_spouse", "age60_spouse", "blind_spouse"},
			},
		},
		Reads: reads(
			"allow_self", "allow_spouse", "age60_self", "age60_spouse", "blind_self", "blind_spouse",
			"dependents", "additional_withholding",
		),
		Compute: computeDelawareW4,
	}
}

func computeDelawareW4(in types.Inputs) types.DerivedTotals {
	allowances := worksheet.CountFlags(
		in.Flag("allow_self"), in.Flag("allow_spouse"),
		in.Flag("age60_self"), in.Flag("age60_spouse"),
		in.Flag("blind_self"), in.Flag("blind_spouse"),
	) + in.Count("dependents")
	return types.NewDerivedTotals().
		SetInt("totalAllowances", allowances).
		Set("personalCreditDollars", worksheet.Times(allowances, dePersonalCredit)).
		Set("additionalWithholding", in.Number("additional_withholding"))
}
