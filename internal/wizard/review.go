package wizard

import (
	"fmt"
	"strings"

	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/format"
)

type ReviewRow struct {
	Label string
	Value string
}

type ReviewSection struct {
	Step  int
	Label string
	Rows  []ReviewRow
}

// Review lists the answered fields of every step for the summary screen.
func Review(d *domain.Draft) []ReviewSection {
	v := Resolve(d)
	if v == nil {
		return nil
	}
	out := make([]ReviewSection, 0, len(v.Steps))
	for i, s := range v.Steps {
		sec := ReviewSection{Step: i, Label: s.Label}
		for _, f := range s.Fields {
			spec, ok := Lookup(f)
			if !ok || !spec.Present(d) {
				continue
			}
			sec.Rows = append(sec.Rows, ReviewRow{Label: spec.Label, Value: Display(spec, d)})
		}
		out = append(out, sec)
	}
	return out
}

// Display renders a field value for read-only views.
func Display(s *Spec, d *domain.Draft) string {
	switch {
	case s.IsFlag():
		if s.Present(d) {
			return "Yes"
		}
		return "No"
	case s.IsList():
		return strings.Join(s.Values(d), ", ")
	case s.IsMedia():
		n := 0
		for _, m := range s.Media(d) {
			if m.Ready() {
				n++
			}
		}
		return fmt.Sprintf("%d uploaded", n)
	}

	v := s.Value(d)
	switch s.Input {
	case InputCurrency:
		return format.NairaString(v)
	case InputDate:
		if t, err := format.ParseDate(v); err == nil {
			return format.Date(t)
		}
	}
	return v
}
