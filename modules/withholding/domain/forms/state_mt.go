package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

var mtExemptReasons = []string{"none", "no_liability", "reservation", "military_spouse", "north_dakota_resident"}

func montanaMW4() types.Definition {
	return types.Definition{
		StateCode: "MT",
		FormID:    "MT-MW4",
		Title:     "Form MW-4 Montana Employee's Withholding Certificate",
		Fields: []types.Field{
			additionalWithholding(),
			enum("exempt_reason", "Exemption from withholding", mtExemptReasons...),
			stateAbbrev("domicile_state", "State of legal residence"),
		},
		Sections: []types.Section{
			{
				Name:    "military_spouse",
				When:    `exempt_reason == "military_spouse"`,
				Require: []string{"domicile_state"},
				Show:    []string{"domicile_state"},
			},
		},
		Reads:   reads("additional_withholding", "exempt_reason"),
		Compute: computeMontanaMW4,
	}
}

func computeMontanaMW4(in types.Inputs) types.DerivedTotals {
	reason := in.Text("exempt_reason")
	return types.NewDerivedTotals().
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", reason != "" && reason != "none")
}
