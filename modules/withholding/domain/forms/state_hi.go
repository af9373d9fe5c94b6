package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var hiStandardDeduction = worksheet.NewFilingStatusTable(map[string]int64{
	"single":               2200,
	"married":              4400,
	"married_single_rate":  2200,
	"certified_disability": 0,
})

var hiPerAllowance = worksheet.Dollars(1144)

func hawaiiHW4() types.Definition {
	return types.Definition{
		StateCode: "HI",
		FormID:    "HI-HW4",
		Title:     "Form HW-4 Employee's Withholding Allowance and Status Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Marital status", "single", "married", "married_single_rate", "certified_disability")),
			flag("allow_self", "Allowance for yourself"),
			flag("allow_spouse", "Allowance for your spouse"),
			flag("age65_self", "You are 65 or older"),
			flag("age65_spouse", "Spouse is 65 or older"),
			number("dependents", "Dependents"),
			number("itemized_deductions", "Estimated itemized deductions"),
			number("adjustments_income", "Adjustments to income"),
			additionalWithholding(),
			text("disability_certificate", "Certificate of disability number"),
		},
		Sections: []types.Section{
			{
				Name:    "disabled",
				When:    `filing_status == "certified_disability"`,
				Require: []string{"disability_certificate"},
				Show:    []string{"disability_certificate"},
			},
		},
		Reads: reads(
			"filing_status", "allow_self", "allow_spouse", "age65_self", "age65_spouse", "dependents",
			"itemized_deductions", "adjustments_income", "additional_withholding",
		),
		Compute: computeHawaiiHW4,
	}
}

func computeHawaiiHW4(in types.Inputs) types.DerivedTotals {
	status := in.Text("filing_status")
	base := worksheet.CountFlags(in.Flag("allow_self"), in.Flag("allow_spouse"), in.Flag("age65_self"), in.Flag("age65_spouse")) +
		in.Count("dependents")

	b := worksheet.Itemized{
		Itemized:     in.Number("itemized_deductions"),
		Standard:     hiStandardDeduction.Amount(status),
		Adjustments:  in.Number("adjustments_income"),
		PerAllowance: hiPerAllowance,
	}.Compute()

	return types.NewDerivedTotals().
		SetInt("basicAllowances", base).
		Set("deductionAllowances", b.Allowances).
		Set("totalAllowances", worksheet.Int(base).Add(b.Allowances)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", status == "certified_disability")
}
