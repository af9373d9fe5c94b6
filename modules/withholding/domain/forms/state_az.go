package forms

import (
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/worksheet"
	"github.com/shopspring/decimal"
)

var azRates = []string{"2.0", "0.5", "1.0", "1.5", "2.5", "3.0", "3.5"}

func arizonaA4() types.Definition {
	return types.Definition{
		StateCode: "AZ",
		FormID:    "AZ-A4",
		Title:     "Form A-4 Employee's Arizona Withholding Election",
		Fields: []types.Field{
			required(enum("withholding_percent", "Percentage of gross taxable wages", azRates...)),
			number("extra_withholding", "Extra amount each pay period"),
			flag("zero_withholding", "Elect zero withholding"),
			flag("expects_no_liability", "I expect to have no Arizona tax liability this year"),
		},
		Sections: []types.Section{
			{
				Name:    "zero_withholding",
				When:    "zero_withholding",
				Require: []string{"expects_no_liability"},
				Show:    []string{"expects_no_liability"},
			},
		},
		Reads:   reads("withholding_percent", "extra_withholding", "zero_withholding"),
		Compute: computeArizonaA4,
	}
}

func computeArizonaA4(in types.Inputs) types.DerivedTotals {
	zero := in.Flag("zero_withholding")
	percent := decimal.Zero
	if !zero {
		percent = worksheet.CleanNumber(in.Text("withholding_percent"))
	}
	return types.NewDerivedTotals().
		Set("withholdingPercent", percent).
		Set("additionalWithholding", in.Number("extra_withholding")).
		SetFlag("zeroWithholding", zero)
}
