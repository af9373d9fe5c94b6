package types

import "strings"

// StateCode is a two-letter US state (or DC) identifier, upper-cased.
type StateCode string

func NormalizeStateCode(raw string) StateCode {
	return StateCode(strings.ToUpper(strings.TrimSpace(raw)))
}

func (s StateCode) String() string { return string(s) }

type DispositionKind string

const (
	DispositionSpecificForm      DispositionKind = "specific_form"
	DispositionFederalEquivalent DispositionKind = "federal_equivalent"
	DispositionNoTaxRequired     DispositionKind = "no_tax_required"
	DispositionUnsupported       DispositionKind = "unsupported"
)

// Disposition is the classification outcome for a state code. FormID is only
// set for DispositionSpecificForm.
type Disposition struct {
	Kind   DispositionKind `json:"kind"`
	FormID string          `json:"form_id,omitempty"`
}

func SpecificForm(formID string) Disposition {
	return Disposition{Kind: DispositionSpecificForm, FormID: formID}
}

func FederalEquivalent() Disposition { return Disposition{Kind: DispositionFederalEquivalent} }

func NoTaxRequired() Disposition { return Disposition{Kind: DispositionNoTaxRequired} }

func Unsupported() Disposition { return Disposition{Kind: DispositionUnsupported} }
