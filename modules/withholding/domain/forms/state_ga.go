package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

// Marital status letters follow the G-4 line 3 boxes.
var gaStandardDeduction = worksheet.NewFilingStatusTable(map[string]int64{
	"A": 12_000, // single
	"B": 24_000, // married filing joint, both spouses working
	"C": 24_000, // married filing joint, one spouse working
	"D": 12_000, // married filing separate
	"E": 12_000, // head of household
})

var gaPerAllowance = worksheet.Dollars(3000)

func georgiaG4() types.Definition {
	return types.Definition{
		StateCode: "GA",
		FormID:    "GA-G4",
		Title:     "Form G-4 State of Georgia Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("marital_status", "Marital status", "A", "B", "C", "D", "E")),
			number("personal_allowances", "Personal allowances"),
			number("dependent_allowances", "Dependent allowances"),
			flag("age65_self", "You are 65 or older"),
			flag("blind_self", "You are blind"),
			flag("age65_spouse", "Spouse is 65 or older"),
			flag("blind_spouse", "Spouse is blind"),
			number("itemized_deductions", "Estimated itemized deductions"),
			number("non_wage_income", "Non-wage income"),
			additionalWithholding(),
			claimExempt(),
		},
		Sections: []types.Section{
			{
				Name: "spouse",
				When: `marital_status == "B" || marital_status == "C"`,
				Show: []string{"age65_spouse", "blind_spouse"},
			},
		},
		Reads: reads(
			"marital_status", "personal_allowances", "dependent_allowances",
			"age65_self", "blind_self", "age65_spouse", "blind_spouse",
			"itemized_deductions", "non_wage_income", "additional_withholding", "claim_exempt",
		),
		Compute: computeGeorgiaG4,
	}
}

func computeGeorgiaG4(in types.Inputs) types.DerivedTotals {
	ageBlind := worksheet.CountFlags(in.Flag("age65_self"), in.Flag("blind_self"), in.Flag("age65_spouse"), in.Flag("blind_spouse"))
	additional := worksheet.Itemized{
		Itemized: in.Number("itemized_deductions"),
		Standard: gaStandardDeduction.Amount(in.Text("marital_status")).Add(worksheet.WeightedFlags(
			worksheet.Flag(in.Flag("age65_self"), 1300),
			worksheet.Flag(in.Flag("blind_self"), 1300),
			worksheet.Flag(in.Flag("age65_spouse"), 1300),
			worksheet.Flag(in.Flag("blind_spouse"), 1300),
		)),
		NonWageIncome: in.Number("non_wage_income"),
		PerAllowance:  gaPerAllowance,
	}.Compute()

	personal := in.Count("personal_allowances")
	dependents := in.Count("dependent_allowances")
	return types.NewDerivedTotals().
		SetInt("personalAllowances", personal).
		SetInt("dependentAllowances", dependents).
		SetInt("ageBlindCount", ageBlind).
		Set("worksheetExcess", additional.AfterNonWage).
		Set("additionalAllowances", additional.Allowances).
		Set("totalAllowances", worksheet.Int(personal+dependents).Add(additional.Allowances)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
