package forms

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

var (
	sectionEnvCache     sync.Map
	sectionProgramCache sync.Map
)

// sectionEnv declares one CEL variable per field, so an expression naming a
// field the form does not have fails to compile.
func sectionEnv(def types.Definition) (*cel.Env, error) {
	key := envCacheKey(def)
	if cached, ok := sectionEnvCache.Load(key); ok {
		return cached.(*cel.Env), nil
	}
	opts := make([]cel.EnvOption, 0, len(def.Fields))
	for _, f := range def.Fields {
		opts = append(opts, cel.Variable(f.Name, celType(f.Kind)))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, err
	}
	sectionEnvCache.Store(key, env)
	return env, nil
}

func envCacheKey(def types.Definition) string {
	names := make([]string, 0, len(def.Fields))
	for _, f := range def.Fields {
		names = append(names, f.Name+":"+string(f.Kind))
	}
	return def.FormID + "|" + strings.Join(names, ",")
}

func celType(kind types.FieldKind) *cel.Type {
	switch kind {
	case types.FieldNumber:
		return cel.DoubleType
	case types.FieldBoolean:
		return cel.BoolType
	case types.FieldRaster:
		return cel.BytesType
	default:
		return cel.StringType
	}
}

func compileSection(def types.Definition, expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("expression required")
	}
	key := envCacheKey(def) + "|" + expr
	if cached, ok := sectionProgramCache.Load(key); ok {
		return cached.(cel.Program), nil
	}
	env, err := sectionEnv(def)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must evaluate to bool", expr)
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	sectionProgramCache.Store(key, program)
	return program, nil
}

// activation presents every field to CEL with its cleaned value; missing
// values take the zero value of their kind.
func activation(def types.Definition, values types.RawValues) map[string]any {
	out := make(map[string]any, len(def.Fields))
	for _, f := range def.Fields {
		switch f.Kind {
		case types.FieldNumber:
			out[f.Name] = values.Number(f.Name).InexactFloat64()
		case types.FieldBoolean:
			out[f.Name] = values.Flag(f.Name)
		case types.FieldRaster:
			b, _ := values[f.Name].([]byte)
			out[f.Name] = b
		default:
			out[f.Name] = values.Text(f.Name)
		}
	}
	return out
}

func evalSection(def types.Definition, s types.Section, vars map[string]any) (bool, error) {
	program, err := compileSection(def, s.When)
	if err != nil {
		return false, err
	}
	out, _, err := program.Eval(vars)
	if err != nil {
		return false, err
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("section %s: non-bool result", s.Name)
	}
	return v, nil
}

// ActiveSections returns the sections whose condition holds for values. A
// section that cannot be evaluated is treated as inactive; Validate reports
// such sections for registered forms.
func ActiveSections(def types.Definition, values types.RawValues) []types.Section {
	if len(def.Sections) == 0 {
		return nil
	}
	vars := activation(def, values)
	var out []types.Section
	for _, s := range def.Sections {
		on, err := evalSection(def, s, vars)
		if err != nil || !on {
			continue
		}
		out = append(out, s)
	}
	return out
}

// RequiredFields lists, in field order, every field that must be non-blank:
// statically required ones plus those pulled in by active sections.
func RequiredFields(def types.Definition, values types.RawValues) []string {
	need := map[string]bool{}
	for _, f := range def.Fields {
		if f.Required {
			need[f.Name] = true
		}
	}
	for _, s := range ActiveSections(def, values) {
		for _, name := range s.Require {
			need[name] = true
		}
	}
	out := make([]string, 0, len(need))
	for _, f := range def.Fields {
		if need[f.Name] {
			out = append(out, f.Name)
		}
	}
	return out
}

// HiddenFields lists fields that only appear through a section that is not
// currently active.
func HiddenFields(def types.Definition, values types.RawValues) []string {
	gated := map[string]bool{}
	for _, s := range def.Sections {
		for _, name := range s.Show {
			gated[name] = true
		}
	}
	for _, s := range ActiveSections(def, values) {
		for _, name := range s.Show {
			delete(gated, name)
		}
	}
	out := make([]string, 0, len(gated))
	for _, f := range def.Fields {
		if gated[f.Name] {
			out = append(out, f.Name)
		}
	}
	return out
}
