package wizard

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/vbonduro/briefdesk/internal/domain"
	"github.com/vbonduro/briefdesk/internal/format"
	"github.com/vbonduro/briefdesk/internal/location"
)

// ActionKind enumerates every way a draft can change.
type ActionKind int

const (
	ActionSetField ActionKind = iota
	ActionSetList
	ActionToggleTag
	ActionAddMedia
	ActionMediaUploaded
	ActionMediaFailed
	ActionRemoveMedia
	ActionTouch
	ActionAdvance
	ActionRetreat
	ActionReset
)

func (k ActionKind) String() string {
	switch k {
	case ActionSetField:
		return "set_field"
	case ActionSetList:
		return "set_list"
	case ActionToggleTag:
		return "toggle_tag"
	case ActionAddMedia:
		return "add_media"
	case ActionMediaUploaded:
		return "media_uploaded"
	case ActionMediaFailed:
		return "media_failed"
	case ActionRemoveMedia:
		return "remove_media"
	case ActionTouch:
		return "touch"
	case ActionAdvance:
		return "advance"
	case ActionRetreat:
		return "retreat"
	case ActionReset:
		return "reset"
	}
	return "unknown"
}

type Action struct {
	Kind    ActionKind
	Field   Field
	Value   string
	Values  []string
	Fields  []Field
	Media   domain.Media
	MediaID string
}

func SetField(f Field, v string) Action { return Action{Kind: ActionSetField, Field: f, Value: v} }
func SetList(f Field, vs []string) Action { return Action{Kind: ActionSetList, Field: f, Values: vs} }
func ToggleTag(f Field, tag string) Action { return Action{Kind: ActionToggleTag, Field: f, Value: tag} }
func AddMedia(m domain.Media) Action { return Action{Kind: ActionAddMedia, Media: m} }
func MediaUploaded(id, url string) Action { return Action{Kind: ActionMediaUploaded, MediaID: id, Value: url} }
func MediaFailed(id string) Action { return Action{Kind: ActionMediaFailed, MediaID: id} }
func RemoveMedia(id string) Action { return Action{Kind: ActionRemoveMedia, MediaID: id} }
func Touch(fs ...Field) Action { return Action{Kind: ActionTouch, Fields: fs} }
func Advance() Action { return Action{Kind: ActionAdvance} }
func Retreat() Action { return Action{Kind: ActionRetreat} }
func Reset() Action { return Action{Kind: ActionReset} }

// Apply returns a copy of d with the actions applied in order. d is not
// modified.
func Apply(d *domain.Draft, actions ...Action) *domain.Draft {
	next := clone(d)
	for _, a := range actions {
		apply(next, a)
	}
	next.UpdatedAt = time.Now().UTC()
	return next
}

func apply(d *domain.Draft, a Action) {
	switch a.Kind {
	case ActionSetField:
		setField(d, a.Field, a.Value)
	case ActionSetList:
		if s, ok := Lookup(a.Field); ok && s.IsList() {
			*s.list(d) = dedupe(a.Values)
		}
	case ActionToggleTag:
		if s, ok := Lookup(a.Field); ok && s.IsList() {
			tags := s.list(d)
			if i := slices.Index(*tags, a.Value); i >= 0 {
				*tags = slices.Delete(*tags, i, i+1)
			} else if a.Value != "" {
				*tags = append(*tags, a.Value)
			}
		}
	case ActionAddMedia:
		if a.Media.Kind == domain.MediaVideo {
			d.Videos = append(d.Videos, a.Media)
		} else {
			d.Images = append(d.Images, a.Media)
		}
	case ActionMediaUploaded:
		updateMedia(d, a.MediaID, func(m *domain.Media) {
			m.URL = a.Value
			m.IsUploading = false
			m.Failed = false
			m.StagingKey = ""
		})
	case ActionMediaFailed:
		updateMedia(d, a.MediaID, func(m *domain.Media) {
			m.IsUploading = false
			m.Failed = true
			m.StagingKey = ""
		})
	case ActionRemoveMedia:
		match := func(m domain.Media) bool { return m.ID == a.MediaID }
		d.Images = slices.DeleteFunc(d.Images, match)
		d.Videos = slices.DeleteFunc(d.Videos, match)
	case ActionTouch:
		for _, f := range a.Fields {
			d.Touched[string(f)] = true
		}
	case ActionAdvance:
		advance(d)
	case ActionRetreat:
		retreat(d)
	case ActionReset:
		fresh := domain.NewDraft(d.Kind, d.Type)
		fresh.ID = d.ID
		fresh.CreatedAt = d.CreatedAt
		*d = *fresh
	}
}

func setField(d *domain.Draft, f Field, v string) {
	s, ok := Lookup(f)
	if !ok {
		return
	}
	switch {
	case s.IsFlag():
		*s.flag(d) = v == "true" || v == "on" || v == "1"
		return
	case s.IsList(), s.IsMedia():
		return
	}

	if s.Input != InputTextarea {
		v = strings.TrimSpace(v)
	}
	if s.Input == InputCurrency {
		v = format.FormatCurrency(v)
	}

	level, cascades := locationLevel(f)
	if !cascades {
		*s.str(d) = v
		return
	}
	prev := selection(d)
	*s.str(d) = v
	sel := location.DeriveDependents(prev, selection(d), level)
	d.State, d.LGA, d.Area = sel.State, sel.LGA, sel.Area
}

func locationLevel(f Field) (location.Level, bool) {
	switch f {
	case FieldState:
		return location.LevelState, true
	case FieldLGA:
		return location.LevelLGA, true
	case FieldArea:
		return location.LevelArea, true
	}
	return 0, false
}

func selection(d *domain.Draft) location.Selection {
	return location.Selection{State: d.State, LGA: d.LGA, Area: d.Area}
}

// advance moves past the active step when it validates; at the last step it
// opens the summary. An invalid step stays put with its fields touched.
func advance(d *domain.Draft) {
	v := Resolve(d)
	if v == nil {
		return
	}
	s, i := Current(d)
	if !StepValid(d, i) {
		for _, f := range s.Fields {
			d.Touched[string(f)] = true
		}
		d.Step = i
		return
	}
	if i == len(v.Steps)-1 {
		d.Step = i
		d.ShowSummary = true
		return
	}
	d.Step = i + 1
}

func retreat(d *domain.Draft) {
	if d.ShowSummary {
		d.ShowSummary = false
		return
	}
	_, i := Current(d)
	if i > 0 {
		i--
	}
	d.Step = i
}

func updateMedia(d *domain.Draft, id string, fn func(m *domain.Media)) {
	for i := range d.Images {
		if d.Images[i].ID == id {
			fn(&d.Images[i])
		}
	}
	for i := range d.Videos {
		if d.Videos[i].ID == id {
			fn(&d.Videos[i])
		}
	}
}

func dedupe(vs []string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func clone(d *domain.Draft) *domain.Draft {
	c := *d
	c.Features = slices.Clone(d.Features)
	c.Documents = slices.Clone(d.Documents)
	c.Images = slices.Clone(d.Images)
	c.Videos = slices.Clone(d.Videos)
	c.Touched = maps.Clone(d.Touched)
	if c.Touched == nil {
		c.Touched = map[string]bool{}
	}
	return &c
}
