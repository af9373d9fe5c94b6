package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

var kyExemptReasons = []string{"none", "no_liability", "reciprocal_state", "military_spouse", "fort_campbell"}

func kentuckyK4() types.Definition {
	return types.Definition{
		StateCode: "KY",
		FormID:    "KY-K4",
		Title:     "Form K-4 Kentucky's Withholding Certificate",
		Fields: []types.Field{
			enum("exempt_reason", "Exemption from withholding", kyExemptReasons...),
			stateAbbrev("reciprocal_state", "State of residence"),
			stateAbbrev("domicile_state", "State of domicile"),
			additionalWithholding(),
		},
		Sections: []types.Section{
			{
				Name:    "reciprocal",
				When:    `exempt_reason == "reciprocal_state"`,
				Require: []string{"reciprocal_state"},
				Show:    []string{"reciprocal_state"},
			},
			{
				Name:    "military_spouse",
				When:    `exempt_reason == "military_spouse"`,
				Require: []string{"domicile_state"},
				Show:    []string{"domicile_state"},
			},
		},
		Reads:   reads("exempt_reason", "additional_withholding"),
		Compute: computeKentuckyK4,
	}
}

func computeKentuckyK4(in types.Inputs) types.DerivedTotals {
	reason := in.Text("exempt_reason")
	return types.NewDerivedTotals().
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", reason != "" && reason != "none")
}
