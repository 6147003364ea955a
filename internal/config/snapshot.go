package config

import (
	"fmt"
	"maps"
	"slices"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Shortcut is one path substitution, e.g. "p" -> "~/projects".
type Shortcut struct {
	Key   string
	Value string
}

// Shortcuts keeps path substitutions in the order they appear in the file.
// Order matters: later keys see the result of earlier replacements.
type Shortcuts []Shortcut

// UnmarshalYAML decodes a YAML mapping while preserving key order, which a
// plain map[string]string would lose.
func (s *Shortcuts) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: shortcuts must be a mapping", node.Line)
	}
	out := make(Shortcuts, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: shortcut entries must be scalar key/value pairs", k.Line)
		}
		if k.Value == "" {
			continue
		}
		out = append(out, Shortcut{Key: k.Value, Value: v.Value})
	}
	*s = out
	return nil
}

// MarshalYAML writes the shortcuts back as a mapping in file order.
func (s Shortcuts) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, sc := range s {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: sc.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: sc.Value})
	}
	return node, nil
}

// DefaultFlagAliases maps the single-letter query flags to terminal ids.
var DefaultFlagAliases = map[string]string{
	"k": "konsole",
	"y": "yakuake-session",
	"t": "terminator",
	"s": "st",
	"c": "custom",
}

// Snapshot is the immutable view of the configuration the matching core
// works on. A reload produces a new Snapshot; existing ones never change.
type Snapshot struct {
	DefaultProgram                 string
	EnableFlags                    bool
	EnableSubtool                  bool
	EnableNewSessionByPartialMatch bool
	Trigger                        string
	Shortcuts                      []Shortcut
	Custom                         CustomProgram
	FlagAliases                    map[string]string
	Subtool                        Subtool
	Home                           string
}

// Snapshot freezes the config into a Snapshot using home for path expansion.
func (c *Config) Snapshot(home string) Snapshot {
	return Snapshot{
		DefaultProgram:                 c.Program,
		EnableFlags:                    c.EnableFlags,
		EnableSubtool:                  c.EnableTmuxinator,
		EnableNewSessionByPartialMatch: c.AddNewByPartMatch,
		Trigger:                        c.Trigger,
		Shortcuts:                      slices.Clone(c.Shortcuts),
		Custom:                         c.Custom,
		FlagAliases:                    maps.Clone(DefaultFlagAliases),
		Subtool:                        c.Tmuxinator,
		Home:                           home,
	}
}

// Store publishes the current Snapshot. Readers get a copy of whatever was
// last published; publishing never blocks readers.
type Store struct {
	cur atomic.Pointer[Snapshot]
}

// NewStore creates a store holding s.
func NewStore(s Snapshot) *Store {
	st := &Store{}
	st.Publish(s)
	return st
}

// Load returns the current snapshot.
func (st *Store) Load() Snapshot {
	return *st.cur.Load()
}

// Publish replaces the current snapshot.
func (st *Store) Publish(s Snapshot) {
	st.cur.Store(&s)
}
