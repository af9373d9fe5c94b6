package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

func newJerseyW4() types.Definition {
	return types.Definition{
		StateCode: "NJ",
		FormID:    "NJ-W4",
		Title:     "Form NJ-W4 Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status",
				"single", "married_joint", "married_separate", "head_of_household", "qualifying_widower")),
			enum("rate_table", "Wage chart rate table", "default", "A", "B", "C", "D", "E"),
			number("allowances", "Total number of allowances"),
			additionalWithholding(),
			claimExempt(),
		},
		Sections: []types.Section{
			{
				Name: "rate_table",
				When: `filing_status == "married_joint" || filing_status == "married_separate" || filing_status == "qualifying_widower"`,
				Show: []string{"rate_table"},
			},
		},
		Reads:   reads("rate_table", "allowances", "additional_withholding", "claim_exempt"),
		Compute: computeNewJerseyW4,
	}
}

func computeNewJerseyW4(in types.Inputs) types.DerivedTotals {
	allowances := in.Count("allowances")
	table := in.Text("rate_table")
	return types.NewDerivedTotals().
		SetInt("totalAllowances", allowances).
		Set("allowanceDollars", worksheet.Times(allowances, 1000)).
		SetFlag("rateTableOverride", table != "" && table != "default").
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
