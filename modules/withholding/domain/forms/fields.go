package forms

import "github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"

func text(name string, label string) types.Field {
	return types.Field{Name: name, Kind: types.FieldText, Label: label}
}

func number(name string, label string) types.Field {
	return types.Field{Name: name, Kind: types.FieldNumber, Label: label}
}

func flag(name string, label string) types.Field {
	return types.Field{Name: name, Kind: types.FieldBoolean, Label: label, Default: false}
}

func date(name string, label string) types.Field {
	return types.Field{Name: name, Kind: types.FieldDate, Label: label}
}

// enum's first option is its default.
func enum(name string, label string, options ...string) types.Field {
	f := types.Field{Name: name, Kind: types.FieldEnum, Label: label, Options: options}
	if len(options) > 0 {
		f.Default = options[0]
	}
	return f
}

func required(f types.Field) types.Field {
	f.Required = true
	return f
}

// code is a short agency/jurisdiction code: digits only, truncated to n.
func code(name string, label string, n int) types.Field {
	f := text(name, label)
	f.DigitsOnly = true
	f.MaxLength = n
	return f
}

func stateAbbrev(name string, label string) types.Field {
	f := text(name, label)
	f.MaxLength = 2
	return f
}

func additionalWithholding() types.Field {
	return number("additional_withholding", "Additional amount to withhold each pay period")
}

func claimExempt() types.Field {
	return flag("claim_exempt", "Claim exemption from withholding")
}

func reads(names ...string) []string { return names }
