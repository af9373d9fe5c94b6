package forms

import (
	"fmt"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"go.uber.org/multierr"
)

// Validate checks the structural invariants of one definition and reports
// every problem found.
func Validate(def types.Definition) error {
	var err error
	if def.StateCode == "" {
		err = multierr.Append(err, fmt.Errorf("%s: missing state code", def.FormID))
	}
	if def.FormID == "" {
		err = multierr.Append(err, fmt.Errorf("%s: missing form id", def.StateCode))
	}
	if def.Compute == nil && !def.Exempt {
		err = multierr.Append(err, fmt.Errorf("%s: missing compute", def.FormID))
	}

	fields := make(map[string]types.Field, len(def.Fields))
	for _, f := range def.Fields {
		if f.Name == "" {
			err = multierr.Append(err, fmt.Errorf("%s: field without name", def.FormID))
			continue
		}
		if _, dup := fields[f.Name]; dup {
			err = multierr.Append(err, fmt.Errorf("%s: duplicate field %s", def.FormID, f.Name))
		}
		fields[f.Name] = f
		err = multierr.Append(err, validateField(def.FormID, f))
	}

	for _, name := range def.Reads {
		if _, ok := fields[name]; !ok {
			err = multierr.Append(err, fmt.Errorf("%s: compute reads unknown field %s", def.FormID, name))
		}
	}

	for _, s := range def.Sections {
		for _, name := range append(append([]string{}, s.Require...), s.Show...) {
			if _, ok := fields[name]; !ok {
				err = multierr.Append(err, fmt.Errorf("%s: section %s references unknown field %s", def.FormID, s.Name, name))
			}
		}
		if _, cerr := compileSection(def, s.When); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: section %s: %w", def.FormID, s.Name, cerr))
		}
	}
	return err
}

func validateField(formID string, f types.Field) error {
	switch f.Kind {
	case types.FieldText, types.FieldNumber, types.FieldBoolean, types.FieldDate, types.FieldRaster:
		return nil
	case types.FieldEnum:
		if len(f.Options) == 0 {
			return fmt.Errorf("%s: enum %s has no options", formID, f.Name)
		}
		if f.Default == nil {
			return nil
		}
		for _, opt := range f.Options {
			if f.Default == opt {
				return nil
			}
		}
		return fmt.Errorf("%s: enum %s default %v not among options", formID, f.Name, f.Default)
	default:
		return fmt.Errorf("%s: field %s has unknown kind %q", formID, f.Name, f.Kind)
	}
}

// ValidateAll validates every registered definition plus the federal
// equivalent and no-tax forms.
func ValidateAll() error {
	var err error
	for _, def := range definitions {
		err = multierr.Append(err, Validate(def))
	}
	err = multierr.Append(err, Validate(FederalEquivalent("CO")))
	err = multierr.Append(err, Validate(NoTaxExemption("TX")))
	return err
}
