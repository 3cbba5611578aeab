package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of date fields.
const DateLayout = "2006-01-02"

// Problems collects per-field messages produced while normalizing input.
type Problems map[string]string

func (p Problems) add(field, msg string) {
	if _, ok := p[field]; !ok {
		p[field] = msg
	}
}

// Normalize converts raw input (decoded JSON or form values) into a record
// holding only writable fields with canonical Go types: string, int64,
// float64, bool or nil. Keys naming read-only fields, computed keys and "id"
// are dropped; any other unknown key is reported.
func (e *Entity) Normalize(raw Record) (Record, Problems) {
	out := Record{}
	problems := Problems{}

	for key := range raw {
		if key == "id" || slices.Contains(e.Computed, key) {
			continue
		}
		if f, ok := e.Field(key); ok && f.ReadOnly {
			continue
		}
		if _, ok := e.Field(key); !ok {
			problems.add(key, "unknown field")
		}
	}

	for _, f := range e.Writable() {
		v, present := raw[f.Name]
		if present {
			v = blankToNil(f, v)
		}
		if !present || v == nil {
			switch {
			case f.Default != nil:
				out[f.Name] = f.Default
			case f.Required:
				problems.add(f.Name, "this field is required")
			case f.Kind == Text || f.Kind == Email:
				out[f.Name] = ""
			case f.Kind == Boolean:
				out[f.Name] = false
			default:
				out[f.Name] = nil
			}
			continue
		}

		cv, err := coerce(f, v)
		if err != nil {
			problems.add(f.Name, err.Error())
			continue
		}
		out[f.Name] = cv
	}

	if len(problems) == 0 {
		problems = nil
	}
	return out, problems
}

func blankToNil(f Field, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if strings.TrimSpace(s) == "" && f.Kind != Text && f.Kind != Email {
		return nil
	}
	if strings.TrimSpace(s) == "" && f.Required {
		return nil
	}
	return v
}

func coerce(f Field, v any) (any, error) {
	switch f.Kind {
	case Text, Email:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		return strings.TrimSpace(s), nil

	case Integer, Reference:
		n, ok := asInt(v)
		if !ok {
			return nil, fmt.Errorf("must be an integer")
		}
		if f.Kind == Reference && n <= 0 {
			return nil, fmt.Errorf("must be a valid %s id", f.Ref)
		}
		return n, nil

	case Decimal:
		x, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("must be a number")
		}
		return x, nil

	case Boolean:
		b, ok := asBool(v)
		if !ok {
			return nil, fmt.Errorf("must be a boolean")
		}
		return b, nil

	case Date:
		switch t := v.(type) {
		case time.Time:
			return t.Format(DateLayout), nil
		case string:
			d, err := time.Parse(DateLayout, strings.TrimSpace(t))
			if err != nil {
				return nil, fmt.Errorf("must be a date in YYYY-MM-DD format")
			}
			return d.Format(DateLayout), nil
		}
		return nil, fmt.Errorf("must be a date in YYYY-MM-DD format")

	case Choice:
		s, ok := v.(string)
		if !ok || !slices.Contains(f.Choices, strings.TrimSpace(s)) {
			return nil, fmt.Errorf("must be one of %s", strings.Join(f.Choices, ", "))
		}
		return strings.TrimSpace(s), nil
	}
	return nil, fmt.Errorf("unsupported value")
}

// Merge overlays a partial update onto an existing record.
func Merge(base, patch Record) Record {
	out := make(Record, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// DecodeForm turns submitted form values into a raw record. Boolean fields
// are rendered as checkboxes, so a missing key means false.
func (e *Entity) DecodeForm(form url.Values) Record {
	raw := Record{}
	for _, f := range e.Writable() {
		if f.Kind == Boolean {
			raw[f.Name] = form.Has(f.Name) && form.Get(f.Name) != "false"
			continue
		}
		if form.Has(f.Name) {
			raw[f.Name] = form.Get(f.Name)
		}
	}
	return raw
}

// ParseFilter converts a query parameter value to the type of the filtered
// field. Contains filters always compare strings.
func (e *Entity) ParseFilter(flt Filter, value string) (any, error) {
	if flt.Op == Contains {
		return value, nil
	}
	f, ok := e.Field(flt.Field)
	if !ok {
		return nil, fmt.Errorf("unknown filter field %q", flt.Field)
	}
	v, err := coerce(Field{Name: f.Name, Kind: f.Kind, Ref: f.Ref, Choices: f.Choices}, value)
	if err != nil {
		return nil, fmt.Errorf("%s %w", flt.Param, err)
	}
	return v, nil
}

// FilterFor looks up a filter by its query parameter.
func (e *Entity) FilterFor(param string) (Filter, bool) {
	for _, f := range e.Filters {
		if f.Param == param {
			return f, true
		}
	}
	return Filter{}, false
}

// Format renders a record value for display.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', 2, 64)
	case json.Number:
		return t.String()
	case *int64:
		if t == nil {
			return ""
		}
		return strconv.FormatInt(*t, 10)
	case *float64:
		if t == nil {
			return ""
		}
		return Format(*t)
	case time.Time:
		return t.Format(DateLayout)
	}
	return fmt.Sprint(v)
}

func asInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case json.Number:
		x, err := t.Float64()
		return x, err == nil
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "on", "yes":
			return true, true
		case "false", "0", "off", "no":
			return false, true
		}
	}
	return false, false
}
