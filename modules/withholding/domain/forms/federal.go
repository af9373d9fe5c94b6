package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

const (
	FederalEquivalentFormID = "FED-W4"
	NoTaxExemptionFormID    = "NO-TAX-EXEMPT"
)

var federalStandardDeduction = worksheet.NewFilingStatusTable(map[string]int64{
	"single":            14_600,
	"married_joint":     29_200,
	"head_of_household": 21_900,
})

// FederalEquivalent is the generic federal certificate accepted in place of a
// state form. The state code stays the employee's work state.
func FederalEquivalent(state string) types.Definition {
	return types.Definition{
		StateCode: types.NormalizeStateCode(state),
		FormID:    FederalEquivalentFormID,
		Title:     "Employee's Withholding Certificate (federal form accepted by state)",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married_joint", "head_of_household")),
			flag("multiple_jobs", "Multiple jobs or spouse works"),
			number("qualifying_children", "Qualifying children under 17"),
			number("other_dependents", "Other dependents"),
			number("other_income", "Other income (not from jobs)"),
			number("deductions", "Expected deductions"),
			number("extra_withholding", "Extra withholding each pay period"),
		},
		Reads:   reads("filing_status", "qualifying_children", "other_dependents", "other_income", "deductions", "extra_withholding"),
		Compute: computeFederalEquivalent,
	}
}

func computeFederalEquivalent(in types.Inputs) types.DerivedTotals {
	credits := worksheet.Sum(
		worksheet.Times(in.Count("qualifying_children"), 2000),
		worksheet.Times(in.Count("other_dependents"), 500),
	)
	standard := federalStandardDeduction.Amount(in.Text("filing_status"))
	return types.NewDerivedTotals().
		Set("dependentCredits", credits).
		Set("otherIncome", in.Number("other_income")).
		Set("deductionsOverStandard", worksheet.Max0(in.Number("deductions").Sub(standard))).
		Set("additionalWithholding", in.Number("extra_withholding"))
}

// NoTaxExemption is the single-confirmation form for states without wage
// income tax. It has no worksheet.
func NoTaxExemption(state string) types.Definition {
	return types.Definition{
		StateCode: types.NormalizeStateCode(state),
		FormID:    NoTaxExemptionFormID,
		Title:     "No state income tax withholding required",
		Exempt:    true,
		Fields: []types.Field{
			{Name: "exempt", Kind: types.FieldBoolean, Label: "Exempt from state withholding", Default: true},
		},
	}
}
