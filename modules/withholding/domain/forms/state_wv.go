package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

func westVirginiaIT104() types.Definition {
	return types.Definition{
		StateCode: "WV",
		FormID:    "WV-IT104",
		Title:     "Form WV/IT-104 West Virginia Employee's Withholding Exemption Certificate",
		Fields: []types.Field{
			flag("allow_self", "Exemption for yourself"),
			flag("allow_spouse", "Exemption for your spouse"),
			number("dependents", "Dependents"),
			flag("lower_rate", "Withhold at the lower rate (two earners)"),
			additionalWithholding(),
		},
		Reads:   reads("allow_self", "allow_spouse", "dependents", "lower_rate", "additional_withholding"),
		Compute: computeWestVirginiaIT104,
	}
}

func computeWestVirginiaIT104(in types.Inputs) types.DerivedTotals {
	exemptions := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse")) + in.Count("dependents")
	return types.NewDerivedTotals().
		SetInt("totalExemptions", exemptions).
		Set("exemptionDollars", worksheet.Times(exemptions, 2000)).
		SetFlag("lowerRate", in.Flag("lower_rate")).
		Set("additionalWithholding", in.Number("additional_withholding"))
}
