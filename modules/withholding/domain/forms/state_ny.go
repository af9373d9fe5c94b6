package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
)

var nyStandardDeduction = worksheet.NewFilingStatusTable(map[string]int64{
	"single":              8000,
	"married":             16_050,
	"married_single_rate": 8000,
})

var nyPerAllowance = worksheet.Dollars(1000)

// IT-2104 carries separate allowance counts and extra amounts for New York
// State, New York City and Yonkers.
func newYorkIT2104() types.Definition {
	return types.Definition{
		StateCode: "NY",
		FormID:    "NY-IT2104",
		Title:     "Form IT-2104 Employee's Withholding Allowance Certificate",
		Fields: []types.Field{
			required(enum("filing_status", "Filing status", "single", "married", "married_single_rate")),
			flag("nyc_resident", "Resident of New York City"),
			flag("yonkers_resident", "Resident of Yonkers"),
			number("state_allowances", "New York State allowances"),
			number("city_allowances", "New York City allowances"),
			number("itemized_deductions", "Estimated New York itemized deductions"),
			number("non_wage_income", "Non-wage income"),
			number("state_additional", "Additional New York State withholding"),
			number("city_additional", "Additional New York City withholding"),
			number("yonkers_additional", "Additional Yonkers withholding"),
			claimExempt(),
		},
		Sections: []types.Section{
			{
				Name:    "new_york_city",
				When:    "nyc_resident",
				Require: []string{"city_allowances"},
				Show:    []string{"city_allowances", "city_additional"},
			},
			{
				Name: "yonkers",
				When: "yonkers_resident",
				Show: []string{"yonkers_additional"},
			},
		},
		Reads: reads(
			"filing_status", "nyc_resident", "yonkers_resident", "state_allowances", "city_allowances",
			"itemized_deductions", "non_wage_income",
			"state_additional", "city_additional", "yonkers_additional", "claim_exempt",
		),
		Compute: computeNewYorkIT2104,
	}
}

func computeNewYorkIT2104(in types.Inputs) types.DerivedTotals {
	b := worksheet.Itemized{
		Itemized:      in.Number("itemized_deductions"),
		Standard:      nyStandardDeduction.Amount(in.Text("filing_status")),
		NonWageIncome: in.Number("non_wage_income"),
		PerAllowance:  nyPerAllowance,
	}.Compute()
	state := worksheet.Int(in.Count("state_allowances")).Add(b.Allowances)

	out := types.NewDerivedTotals().
		Set("worksheetAllowances", b.Allowances).
		Set("stateAllowances", state).
		Set("stateAdditional", in.Number("state_additional")).
		SetFlag("exempt", in.Flag("claim_exempt"))
	if in.Flag("nyc_resident") {
		out.SetInt("cityAllowances", in.Count("city_allowances")).
			Set("cityAdditional", in.Number("city_additional"))
	}
	if in.Flag("yonkers_resident") {
		out.Set("yonkersAdditional", in.Number("yonkers_additional"))
	}
	return out
}
