package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

// REV-419 is a nonwithholding application. PA has no allowance worksheet, so
// the only totals are the exemption flags.
func pennsylvaniaREV419() types.Definition {
	return types.Definition{
		StateCode: "PA",
		FormID:    "PA-REV419",
		Title:     "REV-419 Employee's Nonwithholding Application Certificate",
		Fields: []types.Field{
			code("psd_code", "Resident PSD code", 6),
			flag("no_liability", "I expect no Pennsylvania income tax liability"),
			flag("reciprocal_resident", "Resident of a reciprocal state"),
			stateAbbrev("resident_state", "State of residence"),
		},
		Sections: []types.Section{
			{
				Name:    "reciprocal",
				When:    "reciprocal_resident",
				Require: []string{"resident_state"},
				Show:    []string{"resident_state"},
			},
		},
		Reads:   reads("no_liability", "reciprocal_resident"),
		Compute: computePennsylvaniaREV419,
	}
}

func computePennsylvaniaREV419(in types.Inputs) types.DerivedTotals {
	noLiability := in.Flag("no_liability")
	reciprocal := in.Flag("reciprocal_resident")
	return types.NewDerivedTotals().
		SetFlag("noLiability", noLiability).
		SetFlag("reciprocal", reciprocal).
		SetFlag("exempt", noLiability || reciprocal)
}
