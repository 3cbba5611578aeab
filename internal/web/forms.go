package web

import (
	"context"
	"fmt"

	"logistics-service/internal/catalog"
	"logistics-service/internal/ports"
)

// choiceLimit bounds the records offered in a reference select.
const choiceLimit = 500

type option struct {
	Value    string
	Label    string
	Selected bool
}

// formField is one input of an entity form or a list filter form.
type formField struct {
	Name     string
	Label    string
	Widget   string // text, email, number, decimal, date, checkbox, select
	Value    string
	Checked  bool
	Required bool
	Options  []option
	Error    string
}

// refLabels maps referenced record ids to their display labels, per entity.
type refLabels map[string]map[string]string

// labelsFor loads the display labels of every record of the referenced
// entities.
func (h *Handler) labelsFor(ctx context.Context, refs ...string) (refLabels, error) {
	out := refLabels{}
	for _, ref := range refs {
		if _, done := out[ref]; done {
			continue
		}
		res, ok := h.Resources.Lookup(ref)
		if !ok {
			return nil, fmt.Errorf("no resource for %s", ref)
		}
		page, err := res.List(ctx, ports.ListQuery{PageSize: choiceLimit, Clamp: true})
		if err != nil {
			return nil, fmt.Errorf("load %s choices: %w", ref, err)
		}
		labels := make(map[string]string, len(page.Items))
		for _, rec := range page.Items {
			labels[catalog.Format(rec["id"])] = res.Entity().DisplayOf(rec)
		}
		out[ref] = labels
	}
	return out, nil
}

// refOptions renders a select for one referenced entity, ordered as listed.
func (h *Handler) refOptions(ctx context.Context, ref, selected string) ([]option, error) {
	res, ok := h.Resources.Lookup(ref)
	if !ok {
		return nil, fmt.Errorf("no resource for %s", ref)
	}
	page, err := res.List(ctx, ports.ListQuery{PageSize: choiceLimit, Clamp: true})
	if err != nil {
		return nil, fmt.Errorf("load %s choices: %w", ref, err)
	}

	opts := []option{{Value: "", Label: "---------", Selected: selected == ""}}
	for _, rec := range page.Items {
		id := catalog.Format(rec["id"])
		opts = append(opts, option{Value: id, Label: res.Entity().DisplayOf(rec), Selected: id == selected})
	}
	return opts, nil
}

func choiceOptions(choices []string, selected string, blank bool) []option {
	var opts []option
	if blank {
		opts = append(opts, option{Value: "", Label: "---------", Selected: selected == ""})
	}
	for _, c := range choices {
		opts = append(opts, option{Value: c, Label: c, Selected: c == selected})
	}
	return opts
}

func widgetFor(k catalog.Kind) string {
	switch k {
	case catalog.Email:
		return "email"
	case catalog.Integer:
		return "number"
	case catalog.Decimal:
		return "decimal"
	case catalog.Boolean:
		return "checkbox"
	case catalog.Date:
		return "date"
	case catalog.Choice, catalog.Reference:
		return "select"
	}
	return "text"
}

// entityForm builds the inputs of e from a record of current values.
func (h *Handler) entityForm(ctx context.Context, e *catalog.Entity, values catalog.Record, errs map[string]string) ([]formField, error) {
	fields := make([]formField, 0, len(e.Fields))
	for _, f := range e.Writable() {
		ff := formField{
			Name:     f.Name,
			Label:    f.Label,
			Widget:   widgetFor(f.Kind),
			Value:    catalog.Format(values[f.Name]),
			Required: f.Required,
			Error:    errs[f.Name],
		}
		switch f.Kind {
		case catalog.Boolean:
			b, _ := values[f.Name].(bool)
			ff.Checked = b
		case catalog.Choice:
			if ff.Value == "" && f.Default != nil {
				ff.Value = catalog.Format(f.Default)
			}
			ff.Options = choiceOptions(f.Choices, ff.Value, false)
		case catalog.Reference:
			opts, err := h.refOptions(ctx, f.Ref, ff.Value)
			if err != nil {
				return nil, err
			}
			ff.Options = opts
		}
		fields = append(fields, ff)
	}
	return fields, nil
}

// filterForm builds the filter inputs of e from the query string.
func (h *Handler) filterForm(ctx context.Context, e *catalog.Entity, query map[string][]string, errs map[string]string) ([]formField, error) {
	get := func(k string) string {
		if v := query[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	fields := make([]formField, 0, len(e.Filters))
	for _, flt := range e.Filters {
		f, _ := e.Field(flt.Field)
		ff := formField{Name: flt.Param, Label: flt.Label, Widget: "text", Value: get(flt.Param), Error: errs[flt.Param]}

		switch {
		case flt.Op == catalog.Contains:
		case f.Kind == catalog.Boolean:
			ff.Widget = "select"
			ff.Options = []option{
				{Value: "", Label: "All", Selected: ff.Value == ""},
				{Value: "true", Label: "Yes", Selected: ff.Value == "true"},
				{Value: "false", Label: "No", Selected: ff.Value == "false"},
			}
		case f.Kind == catalog.Reference:
			opts, err := h.refOptions(ctx, f.Ref, ff.Value)
			if err != nil {
				return nil, err
			}
			ff.Widget, ff.Options = "select", opts
		case f.Kind == catalog.Choice:
			ff.Widget, ff.Options = "select", choiceOptions(f.Choices, ff.Value, true)
		default:
			ff.Widget = widgetFor(f.Kind)
		}
		fields = append(fields, ff)
	}
	return fields, nil
}
