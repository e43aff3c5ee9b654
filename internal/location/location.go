// Package location resolves the state -> LGA -> area option cascade used by
// the location selects, and clears dependent selections when a parent changes.
package location

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locations.yaml
var defaultData string

type Level int

const (
	LevelState Level = iota
	LevelLGA
	LevelArea
)

// Selection is the three-level location picked on a form. Values need not be
// present in the catalog: users may type a region that is not listed.
type Selection struct {
	State string
	LGA   string
	Area  string
}

type catalogFile struct {
	States []struct {
		Name string `yaml:"name"`
		LGAs []struct {
			Name  string   `yaml:"name"`
			Areas []string `yaml:"areas"`
		} `yaml:"lgas"`
	} `yaml:"states"`
}

type lga struct {
	name  string
	areas []string
}

type state struct {
	name string
	lgas []lga
}

type Catalog struct {
	states []state
}

// Load parses a catalog from YAML.
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode location catalog: %w", err)
	}
	c := &Catalog{}
	for _, s := range f.States {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("location catalog: state without name")
		}
		st := state{name: s.Name}
		for _, l := range s.LGAs {
			st.lgas = append(st.lgas, lga{name: l.Name, areas: l.Areas})
		}
		c.states = append(c.states, st)
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(strings.NewReader(defaultData))
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func (c *Catalog) States() []string {
	out := make([]string, 0, len(c.states))
	for _, s := range c.states {
		out = append(out, s.name)
	}
	return out
}

// LGAs returns the local government areas of state, or nil if unknown.
func (c *Catalog) LGAs(stateName string) []string {
	s := c.findState(stateName)
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.lgas))
	for _, l := range s.lgas {
		out = append(out, l.name)
	}
	return out
}

// Areas returns the neighbourhoods of an LGA, or nil if either level is unknown.
func (c *Catalog) Areas(stateName, lgaName string) []string {
	s := c.findState(stateName)
	if s == nil {
		return nil
	}
	for _, l := range s.lgas {
		if strings.EqualFold(l.name, strings.TrimSpace(lgaName)) {
			return append([]string(nil), l.areas...)
		}
	}
	return nil
}

func (c *Catalog) findState(name string) *state {
	name = strings.TrimSpace(name)
	for i := range c.states {
		if strings.EqualFold(c.states[i].name, name) {
			return &c.states[i]
		}
	}
	return nil
}

// DeriveDependents returns next with the levels below changed cleared when the
// value at changed differs from prev. It does not consult the catalog, so
// free-typed values cascade exactly like listed ones.
func DeriveDependents(prev, next Selection, changed Level) Selection {
	switch changed {
	case LevelState:
		if next.State != prev.State {
			next.LGA = ""
			next.Area = ""
		}
	case LevelLGA:
		if next.LGA != prev.LGA {
			next.Area = ""
		}
	}
	return next
}
