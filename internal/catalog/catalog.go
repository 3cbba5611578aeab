// Package catalog holds the declarative description of every back-office
// entity: its fields, list filters, search and ordering fields, and what
// happens to referencing rows on delete. Storage, the JSON API, the HTML
// views and the OpenAPI document are all generated from it.
package catalog

import "strings"

// Kind is the value type of a field.
type Kind int

const (
	Text Kind = iota
	Email
	Integer
	Decimal
	Boolean
	Date
	Choice
	Reference
)

// Field describes one stored attribute. Name is both the column name and
// the JSON key; reference fields are stored in Column (e.g. route_id).
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	MaxLen   int
	Unique   bool
	Choices  []string
	Ref      string // referenced entity name
	Default  any
	ReadOnly bool
	List     bool // shown as a list column
}

// Column returns the storage column of the field.
func (f Field) Column() string {
	if f.Kind == Reference {
		return f.Name + "_id"
	}
	return f.Name
}

// Op is the comparison a list filter applies.
type Op int

const (
	Contains Op = iota
	Equal
	Min
	Max
)

// Filter maps a query parameter onto a field comparison.
type Filter struct {
	Param string
	Field string
	Op    Op
	Label string
}

// DeleteAction says what deleting a record does to rows that reference it.
type DeleteAction int

const (
	// Protect blocks the delete while references exist.
	Protect DeleteAction = iota
	// SetNull clears the referencing column.
	SetNull
	// Detach clears the referencing column and flags the row for reassignment.
	Detach
)

// Referrer is an incoming foreign key from another table.
type Referrer struct {
	Table  string
	Column string
	Label  string
	Action DeleteAction
}

// FlagColumn is set by Detach actions.
const FlagColumn = "needs_reassignment"

// Record is an entity value keyed by field name, as exchanged with the HTML
// views and the JSON API.
type Record map[string]any

// ID returns the record id, or 0 when absent.
func (r Record) ID() int64 {
	id, _ := asInt(r["id"])
	return id
}

// Entity is the metadata of one back-office resource.
type Entity struct {
	Name         string // HTML slug, e.g. "vehicle"
	Path         string // API collection, e.g. "vehicles"
	Table        string
	Label        string
	LabelPlural  string
	Fields       []Field
	Computed     []string // read-only keys added by the API layer
	Filters      []Filter
	Search       []string
	Ordering     []string
	DefaultOrder []string
	ReferencedBy []Referrer

	// PublicRead allows anonymous API reads.
	PublicRead bool
	// PublicList allows anonymous HTML list pages.
	PublicList bool

	Display func(Record) string
}

// Field looks up a field by name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Writable returns the fields accepted on input, in declaration order.
func (e *Entity) Writable() []Field {
	out := make([]Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		if !f.ReadOnly {
			out = append(out, f)
		}
	}
	return out
}

// ListFields returns the fields shown as list columns.
func (e *Entity) ListFields() []Field {
	out := make([]Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.List {
			out = append(out, f)
		}
	}
	return out
}

// DisplayOf renders a record's human label.
func (e *Entity) DisplayOf(r Record) string {
	if e.Display != nil {
		return e.Display(r)
	}
	return e.Label + " " + Format(r["id"])
}

// OrderBy parses an ordering parameter ("field" or "-field").
// An empty parameter yields the default order; an unknown field is rejected.
func (e *Entity) OrderBy(param string) ([]string, bool) {
	param = strings.TrimSpace(param)
	if param == "" {
		return e.DefaultOrder, true
	}

	name := strings.TrimPrefix(param, "-")
	for _, allowed := range e.Ordering {
		if allowed == name {
			return []string{param}, true
		}
	}
	return nil, false
}

var registry = []*Entity{
	RouteEntity,
	VehicleEntity,
	AircraftEntity,
	DriverEntity,
	PilotEntity,
	ClientEntity,
	CargoEntity,
	DispatchEntity,
}

// All returns every entity in navigation order.
func All() []*Entity {
	out := make([]*Entity, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds an entity by its name.
func Lookup(name string) (*Entity, bool) {
	for _, e := range registry {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}
