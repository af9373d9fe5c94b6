package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
	"github.com/shopspring/decimal"
)

var msPersonalExemption = worksheet.NewFilingStatusTable(map[string]int64{
	"single":                    6000,
	"married_spouse_unemployed": 12_000,
	"married_spouse_employed":   12_000,
	"head_of_family":            9500,
})

var msSpouseCap = worksheet.Dollars(12_000)

func mississippi89350() types.Definition {
	return types.Definition{
		StateCode: "MS",
		FormID:    "MS-89-350",
		Title:     "Form 89-350 Mississippi Employee's Withholding Exemption Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Personal exemption",
				"single", "married_spouse_unemployed", "married_spouse_employed", "head_of_family")),
			number("spouse_claim_amount", "Exemption amount claimed by you (spouse employed)"),
			number("dependents", "Dependents"),
			flag("age65_self", "You are 65 or older"),
			flag("blind_self", "You are blind"),
			flag("age65_spouse", "Spouse is 65 or older"),
			flag("blind_spouse", "Spouse is blind"),
			additionalWithholding(),
			claimExempt(),
		},
		Sections: []types.Section{
			{
				Name:    "married_spouse_employed",
				When:    `filing_status == "married_spouse_employed"`,
				Require: []string{"spouse_claim_amount"},
				Show:    []string{"spouse_claim_amount"},
			},
		},
		Reads: reads(
			"filing_status", "spouse_claim_amount", "dependents",
			"age65_self", "blind_self", "age65_spouse", "blind_spouse",
			"additional_withholding", "claim_exempt",
		),
		Compute: computeMississippi89350,
	}
}

func computeMississippi89350(in types.Inputs) types.DerivedTotals {
	status := in.Text("filing_status")
	personal := msPersonalExemption.Amount(status)
	if status == "married_spouse_employed" {
		personal = decimal.Min(in.Number("spouse_claim_amount"), msSpouseCap)
	}
	dependents := worksheet.Times(in.Count("dependents"), 1500)
	ageBlind := worksheet.Times(worksheet.CountFlags(
		in.Flag("age65_self"), in.Flag("blind_self"), in.Flag("age65_spouse"), in.Flag("blind_spouse"),
	), 1500)
	return types.NewDerivedTotals().
		Set("personalExemption", personal).
		Set("dependentExemption", dependents).
		Set("ageBlindExemption", ageBlind).
		Set("totalExemptionDollars", worksheet.Sum(personal, dependents, ageBlind)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
