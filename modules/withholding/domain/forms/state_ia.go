package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var iaPersonalAllowances = worksheet.NewFilingStatusTable(map[string]int64{
	"single":            1,
	"married":           2,
	"head_of_household": 2,
})

var iaPerAllowance = worksheet.Dollars(600)

func iowaW4() types.Definition {
	return types.Definition{
		StateCode: "IA",
		FormID:    "IA-W4",
		Title:     "IA W-4 Employee Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married", "head_of_household")),
			number("dependents", "Dependents"),
			number("deductions", "Estimated deductions and adjustments"),
			additionalWithholding(),
			claimExempt(),
		},
		Reads:   reads("filing_status", "dependents", "deductions", "additional_withholding", "claim_exempt"),
		Compute: computeIowaW4,
	}
}

func computeIowaW4(in types.Inputs) types.DerivedTotals {
	personal := iaPersonalAllowances.Amount(in.Text("filing_status"))
	deduction := worksheet.FloorDiv(in.Number("deductions"), iaPerAllowance)
	dependents := worksheet.Int(in.Count("dependents"))
	return types.NewDerivedTotals().
		Set("personalAllowances", personal).
		Set("dependentAllowances", dependents).
		Set("deductionAllowances", deduction).
		Set("totalAllowances", worksheet.Sum(personal, dependents, deduction)).
		Set("additionalWithholding", in.Number("additional_withholding")).
		SetFlag("exempt", in.Flag("claim_exempt"))
}
