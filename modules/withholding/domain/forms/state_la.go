package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var laPersonalExemption = worksheet.NewFilingStatusTable(map[string]int64{
	"none":          0,
	"single":        4500,
	"married_joint": 9000,
})

func louisianaL4() types.Definition {
	return types.Definition{
		StateCode: "LA",
		FormID:    "LA-L4",
		Title:     "Form L-4 Employee Withholding Exemption Certificate",
		Fields: []types.Field{
			required(enum("exemption_status", "Personal exemptions", "none", "single", "married_joint")),
			number("dependents", "Dependency credits"),
			additionalWithholding(),
			number("reduced_withholding", "Reduced withholding per pay period"),
		},
		Reads:   reads("exemption_status", "dependents", "additional_withholding", "reduced_withholding"),
		Compute: computeLouisianaL4,
	}
}

func computeLouisianaL4(in types.Inputs) types.DerivedTotals {
	personal := laPersonalExemption.Amount(in.Text("exemption_status"))
	dependents := worksheet.Times(in.Count("dependents"), 1000)
	return types.NewDerivedTotals().
		Set("personalExemption", personal).
		Set("dependencyCredit", dependents).
		Set("totalExemptionDollars", personal.Add(dependents)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		Set("reducedWithholding", in.Number("reduced_withholding"))
}
