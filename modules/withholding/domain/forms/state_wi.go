package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

func wisconsinWT4() types.Definition {
	return types.Definition{
		StateCode: "WI",
		FormID:    "WI-WT4",
		Title:     "Form WT-4 Employee's Wisconsin Withholding Exemption Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married", "married_single_rate")),
			flag("allow_self", "Exemption for yourself"),
			flag("allow_spouse", "Exemption for your spouse"),
			number("dependents", "Dependents"),
			additionalWithholding(),
			claimExempt(),
		},
		Reads:   reads("allow_self", "allow_spouse", "dependents", "additional_withholding", "claim_exempt"),
		Compute: computeWisconsinWT4,
	}
}

func computeWisconsinWT4(in types.Inputs) types.DerivedTotals {
	exemptions := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse")) + in.Count("dependents")
	return types.NewDerivedTotals().
		SetInt("totalExemptions", exemptions).
		Set("exemptionDollars", worksheet.Times(exemptions, 700)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
