package wizard

import (
	"net/url"
	"strings"

	"github.com/vbonduro/briefdesk/internal/domain"
)

// FormActions turns a posted step form into SetField/SetList actions for the
// fields of the active step. Unchecked tag boxes and checkboxes are absent
// from a form post, so missing list and flag fields clear. When the state or
// LGA changed in the same post, the dependent values posted alongside it were
// picked from the old parent's options and are dropped.
func FormActions(d *domain.Draft, values url.Values) []Action {
	s, _ := Current(d)

	var (
		acts         []Action
		stateChanged bool
		lgaChanged   bool
	)
	for _, f := range s.Fields {
		spec, ok := Lookup(f)
		if !ok || spec.IsMedia() {
			continue
		}
		key := string(f)
		switch {
		case spec.IsList():
			acts = append(acts, SetList(f, values[key]))
			continue
		case spec.IsFlag():
			acts = append(acts, SetField(f, values.Get(key)))
			continue
		}

		if _, posted := values[key]; !posted {
			continue
		}
		v := values.Get(key)
		switch f {
		case FieldState:
			stateChanged = strings.TrimSpace(v) != d.State
		case FieldLGA:
			if stateChanged {
				continue
			}
			lgaChanged = strings.TrimSpace(v) != d.LGA
		case FieldArea:
			if stateChanged || lgaChanged {
				continue
			}
		}
		acts = append(acts, SetField(f, v))
	}
	return acts
}

// FieldInStep reports whether f is rendered on the active step of d.
func FieldInStep(d *domain.Draft, f Field) bool {
	s, _ := Current(d)
	for _, sf := range s.Fields {
		if sf == f {
			return true
		}
	}
	return false
}
