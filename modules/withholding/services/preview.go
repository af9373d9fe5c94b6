package services

import (
	"fmt"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/classify"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/forms"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

// resolve classifies a work state and picks the definition a session for it
// would use.
func resolve(c classify.Classifier, workState string, useFederal bool) (types.Disposition, types.Definition, Mode, error) {
	disposition := c.Classify(workState)
	state := types.NormalizeStateCode(workState)

	switch disposition.Kind {
	case types.DispositionSpecificForm:
		def, ok := forms.Lookup(string(state))
		if !ok {
			return disposition, types.Definition{}, "", fmt.Errorf("%w: %s", types.ErrUnsupportedState, state)
		}
		return disposition, def, ModeForm, nil
	case types.DispositionFederalEquivalent:
		if !useFederal {
			return disposition, types.Definition{}, "", ErrFederalChoiceRequired
		}
		return disposition, forms.FederalEquivalent(string(state)), ModeForm, nil
	case types.DispositionNoTaxRequired:
		return disposition, forms.NoTaxExemption(string(state)), ModeExemption, nil
	default:
		return disposition, types.Definition{}, "", fmt.Errorf("%w: %q", types.ErrUnsupportedState, workState)
	}
}

// Preview is a stateless worksheet run: what a session for State would show
// after the given values were entered.
type Preview struct {
	Disposition    types.Disposition   `json:"disposition"`
	StateCode      types.StateCode     `json:"state"`
	FormID         string              `json:"form_id"`
	Mode           Mode                `json:"mode"`
	Totals         types.DerivedTotals `json:"derived_totals"`
	ActiveSections []string            `json:"active_sections"`
	Required       []string            `json:"required"`
	Hidden         []string            `json:"hidden"`
}

// PreviewOptions mirror OpenOptions for a stateless run.
type PreviewOptions struct {
	UseFederalEquivalent bool
}

// Compute runs the worksheet for state over defaults overlaid with values.
// Unknown fields are rejected the same way Apply rejects them.
func Compute(c classify.Classifier, state string, values types.RawValues, opts PreviewOptions) (Preview, error) {
	disposition, def, mode, err := resolve(c, state, opts.UseFederalEquivalent)
	if err != nil {
		return Preview{}, err
	}
	out := Preview{
		Disposition: disposition,
		StateCode:   def.StateCode,
		FormID:      def.FormID,
		Mode:        mode,
		Totals:      types.NewDerivedTotals(),
	}
	if mode != ModeForm {
		if len(values) > 0 {
			return Preview{}, ErrWrongMode
		}
		return out, nil
	}

	merged := def.Defaults()
	for name, v := range values {
		if _, ok := def.Field(name); !ok {
			return Preview{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if v == nil {
			delete(merged, name)
			continue
		}
		merged[name] = v
	}
	if def.Compute != nil {
		out.Totals = def.Compute(merged)
	}
	for _, sec := range forms.ActiveSections(def, merged) {
		out.ActiveSections = append(out.ActiveSections, sec.Name)
	}
	out.Required = forms.RequiredFields(def, merged)
	out.Hidden = forms.HiddenFields(def, merged)
	return out, nil
}
