package wizard

import (
	"strings"

	"github.com/vbonduro/briefdesk/internal/domain"
)

// StepErrors returns every problem with step i of d keyed by field: missing
// required answers, malformed values and failed cross-field checks. It reads
// only the draft, so it is safe to recompute on every change.
func StepErrors(d *domain.Draft, i int) map[Field]string {
	v := Resolve(d)
	if v == nil || i < 0 || i >= len(v.Steps) {
		return nil
	}
	s := v.Steps[i]

	errs := map[Field]string{}
	for _, f := range s.Fields {
		spec, ok := Lookup(f)
		if !ok {
			continue
		}
		if p := spec.Problem(d); p != "" {
			errs[f] = p
			continue
		}
		if s.Required[f] && !spec.Present(d) {
			errs[f] = requiredMessage(spec)
		}
	}

	for _, c := range s.Checks {
		if _, bad := errs[c.Field]; bad || !allPresent(d, c.Needs) {
			continue
		}
		if !c.OK(d) {
			errs[c.Field] = c.Message
		}
	}
	return errs
}

// StepValid reports whether step i of d can be left with Advance.
func StepValid(d *domain.Draft, i int) bool {
	return len(StepErrors(d, i)) == 0
}

// FirstInvalid returns the index of the first step that does not validate.
func FirstInvalid(d *domain.Draft) (int, bool) {
	v := Resolve(d)
	if v == nil {
		return 0, true
	}
	for i := range v.Steps {
		if !StepValid(d, i) {
			return i, true
		}
	}
	return 0, false
}

// Errors returns the inline messages for the active step, limited to fields
// the user has touched.
func Errors(d *domain.Draft) map[Field]string {
	_, i := Current(d)
	out := map[Field]string{}
	for f, msg := range StepErrors(d, i) {
		if d.Touched[string(f)] {
			out[f] = msg
		}
	}
	return out
}

func allPresent(d *domain.Draft, fields []Field) bool {
	for _, f := range fields {
		spec, ok := Lookup(f)
		if !ok || !spec.Present(d) {
			return false
		}
	}
	return true
}

func requiredMessage(s *Spec) string {
	switch s.Input {
	case InputMedia:
		return "Add at least one " + strings.TrimSuffix(strings.ToLower(s.Label), "s")
	case InputCheckbox:
		return "You must confirm this declaration"
	case InputTags:
		return "Select at least one of " + strings.ToLower(s.Label)
	}
	return s.Label + " is required"
}
