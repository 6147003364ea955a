// Package query turns the text typed into the launcher into a structured
// request: an optional terminal override flag, an optional tmuxinator
// clause, and a session name with an optional start directory.
//
// Free text never produces an error; malformed pieces are left in place or
// yield empty fields.
package query

import (
	"strings"
	"unicode"
)

// Options controls which query features are active.
type Options struct {
	FlagsEnabled   bool
	SubtoolEnabled bool
	// SubtoolTrigger is the word that switches to project mode ("inator").
	SubtoolTrigger string
	// FlagAliases maps a flag letter to a terminal id.
	FlagAliases map[string]string
}

// Parsed is the structured form of a query.
type Parsed struct {
	// Term is the query as it was given to Parse.
	Term string

	// FilterText is what is left after the flag and tmuxinator clause are
	// removed. It is the text the session passes match against.
	FilterText string
	// TerminalOverride is the terminal chosen by a recognized flag, or "".
	TerminalOverride string
	// FlagSuffix is appended to every match text, e.g. " in konsole".
	FlagSuffix string
	// InvalidFlag is set when a flag was given but not recognized.
	InvalidFlag bool

	SubtoolMode   bool
	SubtoolFilter string
	SubtoolArgs   string

	// Name and PathSuffix are FilterText split into session name and
	// start directory.
	Name       string
	PathSuffix string
}

// Parse runs all parsing steps in order.
func Parse(term string, opts Options) Parsed {
	p := Parsed{Term: term}

	if opts.FlagsEnabled {
		var letter string
		var ok bool
		term, letter, ok = StripFlag(term)
		if ok {
			if id := opts.FlagAliases[letter]; id != "" {
				p.TerminalOverride = id
				p.FlagSuffix = " in " + DisplayName(id)
			} else {
				p.InvalidFlag = true
				p.FlagSuffix = " default (invalid flag)"
			}
		}
	}

	if opts.SubtoolEnabled {
		var clause Subtool
		var ok bool
		term, clause, ok = StripSubtool(term, opts.SubtoolTrigger)
		if ok {
			p.SubtoolMode = true
			p.SubtoolFilter = clause.Filter
			p.SubtoolArgs = clause.Args
		}
	}

	p.FilterText = term
	p.Name, p.PathSuffix = SplitNamePath(term)
	return p
}

// DisplayName shortens a terminal id for match texts ("yakuake-session" -> "yakuake").
func DisplayName(id string) string {
	return strings.TrimSuffix(id, "-session")
}

// StripTrigger removes the launcher keyword and the spaces after it. ok is
// false when term does not start with trigger; an empty trigger accepts
// every term unchanged.
//
// "tmuxinator foo" with trigger "tmux" yields "inator foo", which is how the
// tmuxinator clause is reached.
func StripTrigger(term, trigger string) (string, bool) {
	if trigger == "" {
		return term, true
	}
	if !strings.HasPrefix(term, trigger) {
		return term, false
	}
	return strings.TrimLeft(term[len(trigger):], " "), true
}

// StripFlag removes a trailing " -x" flag (or a term that is exactly "-x")
// and returns the letter. Anything else leaves term untouched.
func StripFlag(term string) (rest, letter string, ok bool) {
	n := len(term)
	if n < 2 {
		return term, "", false
	}
	c := term[n-1]
	if c < 'a' || c > 'z' || term[n-2] != '-' {
		return term, "", false
	}
	switch {
	case n == 2:
		return "", string(c), true
	case term[n-3] == ' ':
		return term[:n-3], string(c), true
	}
	return term, "", false
}

// Subtool is the tmuxinator clause of a query.
type Subtool struct {
	// Filter is the project name prefix; empty matches every project.
	Filter string
	// Args are passed verbatim to the session manager.
	Args string
}

// StripSubtool recognizes "<trigger> [filter [args...]]" at the start of
// term. The trigger, filter and args are consumed; only text glued directly
// onto the trigger ("inatorfoo" -> "foo") is returned as rest.
func StripSubtool(term, trigger string) (rest string, clause Subtool, ok bool) {
	if trigger == "" || !strings.HasPrefix(term, trigger) {
		return term, Subtool{}, false
	}
	after := term[len(trigger):]
	if after == "" || !startsWithSpace(after) {
		return after, Subtool{}, true
	}

	after = strings.TrimLeftFunc(after, unicode.IsSpace)
	end := strings.IndexFunc(after, unicode.IsSpace)
	if end < 0 {
		return "", Subtool{Filter: after}, true
	}
	clause.Filter = after[:end]
	clause.Args = strings.TrimLeftFunc(after[end:], unicode.IsSpace)
	return "", clause, true
}

// SplitNamePath splits "name [path]". The name is a run of letters, digits,
// '_' and '-' and must be followed by whitespace or the end of term;
// otherwise both results are empty. The path is the literal text after the
// whitespace and may itself contain spaces.
func SplitNamePath(term string) (name, path string) {
	end := strings.IndexFunc(term, func(r rune) bool { return !isNameRune(r) })
	if end < 0 {
		return term, ""
	}
	if end == 0 {
		return "", ""
	}
	rest := term[end:]
	if !startsWithSpace(rest) {
		return "", ""
	}
	return term[:end], strings.TrimLeftFunc(rest, unicode.IsSpace)
}

// FirstToken returns the text before the first whitespace, or all of term.
func FirstToken(term string) string {
	if i := strings.IndexFunc(term, unicode.IsSpace); i >= 0 {
		return term[:i]
	}
	return term
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func startsWithSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}
