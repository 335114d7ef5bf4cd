package css

import (
	"strconv"
	"strings"
)

// Value is a parsed CSS property value.
type Value struct {
	Raw     string  // original value text
	Value   float64 // numeric value if applicable
	Unit    string  // unit for numeric values (px, pt, em, %, etc.)
	Keyword string  // keyword value (bold, italic, etc.)
}

// IsNumeric returns true if the value has a numeric component.
func (v Value) IsNumeric() bool {
	if v.Value != 0 || v.Unit != "" {
		return true
	}
	if v.Keyword != "" {
		return false
	}
	raw := strings.TrimSpace(v.Raw)
	if raw == "" {
		return false
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil
}

// IsKeyword returns true if the value is a keyword.
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Value == 0 && v.Unit == ""
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    Value
}

// Declarations keeps declarations in source order. Later declarations of
// the same property win.
type Declarations []Declaration

// Get returns last value declared for property.
func (d Declarations) Get(property string) (Value, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Property == property {
			return d[i].Value, true
		}
	}
	return Value{}, false
}

// Set replaces value of property or appends it.
func (d *Declarations) Set(property, raw string) {
	for i := range *d {
		if (*d)[i].Property == property {
			(*d)[i].Value = Value{Raw: raw}
			return
		}
	}
	*d = append(*d, Declaration{Property: property, Value: Value{Raw: raw}})
}

// String renders declarations as value of HTML style attribute.
func (d Declarations) String() string {
	var b strings.Builder
	for i, decl := range d {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(decl.Property)
		b.WriteString(": ")
		b.WriteString(decl.Value.Raw)
		b.WriteByte(';')
	}
	return b.String()
}
