package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var arBaseExemptions = worksheet.NewFilingStatusTable(map[string]int64{
	"single":            1,
	"married_joint":     2,
	"head_of_household": 2,
})

func arkansasAR4EC() types.Definition {
	return types.Definition{
		StateCode: "AR",
		FormID:    "AR-AR4EC",
		Title:     "AR4EC Employee's Withholding Exemption Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married_joint", "head_of_household")),
			number("dependents", "Number of dependents"),
			flag("age65_self", "You are 65 or older"),
			flag("age65_spouse", "Spouse is 65 or older"),
			flag("blind_self", "You are blind"),
			flag("blind_spouse", "Spouse is blind"),
			additionalWithholding(),
			flag("low_income_exempt", "Low income tax table exemption"),
		},
		Sections: []types.Section{
			{
				Name: "spouse",
				When: `filing_status == "married_joint"`,
				Show: []string{"age65_spouse", "blind_spouse"},
			},
		},
		Reads: reads(
			"filing_status", "dependents", "age65_self", "age65_spouse", "blind_self", "blind_spouse",
			"additional_withholding", "low_income_exempt",
		),
		Compute: computeArkansasAR4EC,
	}
}

func computeArkansasAR4EC(in types.Inputs) types.DerivedTotals {
	base := arBaseExemptions.Amount(in.Text("filing_status"))
	extra := worksheet.CountFlags(in.Flag("age65_self"), in.Flag("age65_spouse"), in.Flag("blind_self"), in.Flag("blind_spouse"))
	dependents := worksheet.Int(in.Count("dependents"))
	return types.NewDerivedTotals().
		Set("baseExemptions", base).
		SetInt("additionalExemptions", extra).
		Set("dependentExemptions", dependents).
		Set("totalExemptions", base.Add(worksheet.Int(extra)).Add(dependents)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("low_income_exempt"))
}
