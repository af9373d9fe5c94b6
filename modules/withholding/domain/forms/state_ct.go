package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

// Withholding codes are keyed like filing statuses.
var ctCodeExemption = worksheet.NewFilingStatusTable(map[string]int64{
	"A": 12_000,
	"B": 19_000,
	"C": 24_000,
	"D": 0,
	"E": 0,
	"F": 15_000,
})

func connecticutCTW4() types.Definition {
	return types.Definition{
		StateCode: "CT",
		FormID:    "CT-W4",
		Title:     "Form CT-W4 Employee's Withholding Certificate",
		Fields: []types.Field{
			required(enum("withholding_code", "Withholding code", "A", "B", "C", "D", "E", "F")),
			additionalWithholding(),
			number("reduced_withholding", "Reduced withholding amount per pay period"),
			flag("code_e_certify", "I certify I expect no Connecticut income tax liability"),
		},
		Sections: []types.Section{
			{
				Name:    "no_withholding",
				When:    `withholding_code == "E"`,
				Require: []string{"code_e_certify"},
				Show:    []string{"code_e_certify"},
			},
		},
		Reads:   reads("withholding_code", "additional_withholding", "reduced_withholding"),
		Compute: computeConnecticutCTW4,
	}
}

func computeConnecticutCTW4(in types.Inputs) types.DerivedTotals {
	code := in.Text("withholding_code")
	additional := in.Number("additional_withholding")
	reduced := in.Number("reduced_withholding")
	return types.NewDerivedTotals().
		Set("exemptionDollars", ctCodeExemption.Amount(code)).
		Set("additionalWithholding", worksheet.Max0(additional.Sub(reduced))).
		Set("reducedWithholding", worksheet.Max0(reduced.Sub(additional))).
		SetFlag("noWithholding", code == "E")
}
