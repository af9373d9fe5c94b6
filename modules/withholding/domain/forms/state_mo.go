package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var moStandardDeduction = worksheet.NewFilingStatusTable(map[string]int64{
	"single":             14_600,
	"married_joint":      29_200,
	"married_separate":   14_600,
	"head_of_household":  21_900,
	"spouse_works":       14_600,
	"qualifying_widower": 29_200,
})

func missouriW4() types.Definition {
	return types.Definition{
		StateCode: "MO",
		FormID:    "MO-W4",
		Title:     "Form MO W-4 Employee's Withholding Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status",
				"single", "married_joint", "married_separate", "head_of_household", "spouse_works", "qualifying_widower")),
			additionalWithholding(),
			number("reduced_withholding", "Reduced withholding per pay period"),
			claimExempt(),
			enum("exempt_reason", "Reason for exemption", "no_liability", "military_spouse", "reservation"),
		},
		Sections: []types.Section{
			{
				Name:    "exemption",
				When:    "claim_exempt",
				Require: []string{"exempt_reason"},
				Show:    []string{"exempt_reason"},
			},
		},
		Reads:   reads("filing_status", "additional_withholding", "reduced_withholding", "claim_exempt"),
		Compute: computeMissouriW4,
	}
}

func computeMissouriW4(in types.Inputs) types.DerivedTotals {
	return types.NewDerivedTotals().
		Set("standardDeduction", moStandardDeduction.Amount(in.Text("filing_status"))).
		Set("additionalWithholding", in.Number("additional_withholding")).
		Set("reducedWithholding", in.Number("reduced_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
