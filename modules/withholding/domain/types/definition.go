package types

type FieldKind string

const (
	FieldText    FieldKind = "text"
	FieldNumber  FieldKind = "number"
	FieldBoolean FieldKind = "boolean"
	FieldDate    FieldKind = "date"
	FieldEnum    FieldKind = "enum"
	FieldRaster  FieldKind = "raster"
)

type Field struct {
	Name       string    `json:"name"`
	Kind       FieldKind `json:"kind"`
	Label      string    `json:"label,omitempty"`
	Required   bool      `json:"required"`
	Default    any       `json:"default,omitempty"`
	Options    []string  `json:"options,omitempty"`
	MaxLength  int       `json:"max_length,omitempty"`
	DigitsOnly bool      `json:"digits_only,omitempty"`
}

// Section is a conditional block: when When evaluates true against the raw
// values, Require fields become required and Show fields become visible.
type Section struct {
	Name    string   `json:"name"`
	When    string   `json:"when"`
	Require []string `json:"require,omitempty"`
	Show    []string `json:"show,omitempty"`
}

type ComputeFunc func(Inputs) DerivedTotals

// Definition is the static schema of one withholding certificate.
type Definition struct {
	StateCode StateCode   `json:"state"`
	FormID    string      `json:"form_id"`
	Title     string      `json:"title"`
	Exempt    bool        `json:"exempt,omitempty"`
	Fields    []Field     `json:"fields"`
	Sections  []Section   `json:"sections,omitempty"`
	Reads     []string    `json:"reads,omitempty"`
	Compute   ComputeFunc `json:"-"`
}

func (d Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Defaults returns the declared default for every field that has one.
func (d Definition) Defaults() RawValues {
	out := RawValues{}
	for _, f := range d.Fields {
		if f.Default != nil {
			out[f.Name] = f.Default
		}
	}
	return out
}

func (d Definition) Clone() Definition {
	out := d
	out.Fields = make([]Field, len(d.Fields))
	for i, f := range d.Fields {
		f.Options = append([]string(nil), f.Options...)
		out.Fields[i] = f
	}
	out.Sections = make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		s.Require = append([]string(nil), s.Require...)
		s.Show = append([]string(nil), s.Show...)
		out.Sections[i] = s
	}
	out.Reads = append([]string(nil), d.Reads...)
	return out
}
