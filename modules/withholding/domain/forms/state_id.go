package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

func idahoW4() types.Definition {
	return types.Definition{
		StateCode: "ID",
		FormID:    "ID-W4",
		Title:     "ID W-4 Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married", "married_single_rate")),
			flag("allow_self", "Allowance for yourself"),
			flag("allow_spouse", "Allowance for your spouse"),
			number("children", "Children"),
			additionalWithholding(),
		},
		Sections: []types.Section{
			{Name: "spouse", When: `filing_status == "married"`, Show: []string{"allow_spouse"}},
		},
		Reads:   reads("allow_self", "allow_spouse", "children", "additional_withholding"),
		Compute: computeIdahoW4,
	}
}

func computeIdahoW4(in types.Inputs) types.DerivedTotals {
	allowances := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse")) + in.Count("children")
	return types.NewDerivedTotals().
		SetInt("totalAllowances", allowances).
		Set("additionalWithholding", in.Number("additional_withholding"))
}
