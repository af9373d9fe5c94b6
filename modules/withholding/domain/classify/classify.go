package classify

import "github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"

// Classifier maps a raw state identifier to a disposition. The zero value
// classifies everything as unsupported.
type Classifier struct {
	forms   map[types.StateCode]string
	federal map[types.StateCode]struct{}
	noTax   map[types.StateCode]struct{}
}

// New builds a classifier over a state -> form id map and two membership sets.
// Inputs are copied and normalised.
func New(forms map[string]string, federal []string, noTax []string) Classifier {
	c := Classifier{
		forms:   make(map[types.StateCode]string, len(forms)),
		federal: make(map[types.StateCode]struct{}, len(federal)),
		noTax:   make(map[types.StateCode]struct{}, len(noTax)),
	}
	for state, formID := range forms {
		code := types.NormalizeStateCode(state)
		if code == "" || formID == "" {
			continue
		}
		c.forms[code] = formID
	}
	for _, state := range federal {
		if code := types.NormalizeStateCode(state); code != "" {
			c.federal[code] = struct{}{}
		}
	}
	for _, state := range noTax {
		if code := types.NormalizeStateCode(state); code != "" {
			c.noTax[code] = struct{}{}
		}
	}
	return c
}

// Classify never fails: a dedicated form wins over federal-equivalent, which
// wins over no-tax; anything else is unsupported.
func (c Classifier) Classify(raw string) types.Disposition {
	code := types.NormalizeStateCode(raw)
	if code == "" {
		return types.Unsupported()
	}
	if formID, ok := c.forms[code]; ok {
		return types.SpecificForm(formID)
	}
	if _, ok := c.federal[code]; ok {
		return types.FederalEquivalent()
	}
	if _, ok := c.noTax[code]; ok {
		return types.NoTaxRequired()
	}
	return types.Unsupported()
}

var (
	// FederalEquivalentStates accept the federal W-4 in place of a state certificate.
	FederalEquivalentStates = []string{"CO", "ND", "NM", "UT"}
	// NoTaxStates levy no wage income tax.
	NoTaxStates = []string{"AK", "FL", "NH", "NV", "SD", "TN", "TX", "WA", "WY"}
)
